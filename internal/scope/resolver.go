// Package scope resolves a raw file path reported by the compiler into a
// canonical project-relative form, or classifies it as outside the
// project's scope entirely.
package scope

import (
	"path/filepath"
	"strings"
)

// Resolver normalizes paths against a fixed project root and build
// directory, and excludes configured third-party subpaths. Configuration
// is immutable after construction. Separators are normalized to "/"
// throughout, matching the forward-slash paths clang emits; behavior on
// Windows-style paths is undefined.
type Resolver struct {
	projectRoot string
	buildDir    string
	excluded    []string
}

// New creates a Resolver. projectRoot and buildDir must be absolute
// paths; excludedSubpaths must be normalized, project-root-relative paths
// with no trailing slash (an empty entry is rejected).
func New(projectRoot, buildDir string, excludedSubpaths []string) (*Resolver, error) {
	if !filepath.IsAbs(projectRoot) {
		return nil, &InvalidConfigError{Field: "project_root", Value: projectRoot, Reason: "must be absolute"}
	}
	if !filepath.IsAbs(buildDir) {
		return nil, &InvalidConfigError{Field: "build_dir", Value: buildDir, Reason: "must be absolute"}
	}
	cleaned := make([]string, len(excludedSubpaths))
	for i, e := range excludedSubpaths {
		if e == "" {
			return nil, &InvalidConfigError{Field: "excluded_subpaths", Value: e, Reason: "empty subpath is forbidden"}
		}
		if strings.HasSuffix(e, "/") {
			return nil, &InvalidConfigError{Field: "excluded_subpaths", Value: e, Reason: "must not have a trailing slash"}
		}
		cleaned[i] = filepath.ToSlash(filepath.Clean(e))
	}
	return &Resolver{
		projectRoot: filepath.Clean(projectRoot),
		buildDir:    filepath.Clean(buildDir),
		excluded:    cleaned,
	}, nil
}

// InvalidConfigError reports a malformed Resolver configuration.
type InvalidConfigError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return "scope: invalid " + e.Field + " (" + e.Value + "): " + e.Reason
}

// Resolve normalizes path per spec §4.B: a relative path is joined onto
// the build directory, then made relative to the project root; paths
// outside the root, or inside an excluded subpath, resolve to "".
func (r *Resolver) Resolve(path string) string {
	if path == "" {
		return ""
	}

	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(r.buildDir, abs)
	}
	abs = filepath.Clean(abs)

	rel, err := filepath.Rel(r.projectRoot, abs)
	if err != nil {
		return ""
	}
	rel = filepath.ToSlash(rel)

	if rel == ".." || strings.HasPrefix(rel, "../") {
		return ""
	}

	for _, e := range r.excluded {
		if rel == e || strings.HasPrefix(rel, e+"/") {
			return ""
		}
	}

	return rel
}

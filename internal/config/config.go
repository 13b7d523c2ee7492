// Package config loads finddead's run configuration — project root, build
// directory, and excluded subpaths — merging a .finddead.kdl document with
// command-line overrides, following the layering the teacher project uses
// for its own .lci.kdl files.
package config

import (
	"os"
	"path/filepath"
)

// Config holds everything needed to construct a scope.Resolver and drive a
// scan run.
type Config struct {
	// ProjectRoot is the absolute, normalized project root directory.
	ProjectRoot string
	// BuildDir is the absolute, normalized compiler working directory.
	// Defaults to ProjectRoot when unset.
	BuildDir string
	// Exclude is the project-root-relative list of excluded third-party
	// subpaths.
	Exclude []string
	// JSON selects the JSON report format instead of the plain text one.
	JSON bool
}

// Default returns a Config rooted at the current working directory with no
// exclusions.
func Default() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return &Config{ProjectRoot: wd, BuildDir: wd}, nil
}

// Load reads path as a .finddead.kdl document if it exists, returning a
// default configuration rooted at rootDir when it does not. Relative
// fields in the file are resolved against the directory containing it.
func Load(path, rootDir string) (*Config, error) {
	if path == "" {
		path = filepath.Join(rootDir, ".finddead.kdl")
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if rootDir == "" {
			return Default()
		}
		abs, err := filepath.Abs(rootDir)
		if err != nil {
			return nil, err
		}
		return &Config{ProjectRoot: abs, BuildDir: abs}, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg, err := parseKDL(string(content))
	if err != nil {
		return nil, err
	}

	configDir := filepath.Dir(path)
	if cfg.ProjectRoot == "" {
		cfg.ProjectRoot = configDir
	}
	if !filepath.IsAbs(cfg.ProjectRoot) {
		cfg.ProjectRoot = filepath.Join(configDir, cfg.ProjectRoot)
	}
	cfg.ProjectRoot = filepath.Clean(cfg.ProjectRoot)

	if cfg.BuildDir == "" {
		cfg.BuildDir = cfg.ProjectRoot
	}
	if !filepath.IsAbs(cfg.BuildDir) {
		cfg.BuildDir = filepath.Join(configDir, cfg.BuildDir)
	}
	cfg.BuildDir = filepath.Clean(cfg.BuildDir)

	return cfg, nil
}

// ApplyOverrides layers CLI flag values over cfg, mirroring the teacher's
// loadConfigWithOverrides: flags that were actually set on the command line
// take precedence, and --exclude is additive rather than replacing.
func (c *Config) ApplyOverrides(root, buildDir string, exclude []string) error {
	if root != "" {
		abs, err := filepath.Abs(root)
		if err != nil {
			return err
		}
		c.ProjectRoot = abs
	}
	if buildDir != "" {
		abs, err := filepath.Abs(buildDir)
		if err != nil {
			return err
		}
		c.BuildDir = abs
	} else if c.BuildDir == "" {
		c.BuildDir = c.ProjectRoot
	}
	if len(exclude) > 0 {
		c.Exclude = mergeExclusions(c.Exclude, exclude)
	}
	return nil
}

// mergeExclusions combines base and extra exclusion patterns, deduplicated,
// following the teacher's mergeConfigs exclusion-union behavior.
func mergeExclusions(base, extra []string) []string {
	seen := make(map[string]bool, len(base)+len(extra))
	out := make([]string, 0, len(base)+len(extra))
	for _, p := range base {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, p := range extra {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

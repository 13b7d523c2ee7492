package config

import (
	"fmt"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// parseKDL parses a .finddead.kdl document of the shape:
//
//	root "/abs/or/relative/project/root"
//	build-dir "/abs/or/relative/build/dir"
//	exclude "third_party/lib"
//	exclude "vendor"
//	json #true
//
// adapted from the teacher's parseKDL in internal/config/kdl_config.go,
// trimmed to the fields this resolver/CLI actually needs.
func parseKDL(content string) (*Config, error) {
	cfg := &Config{}

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "root":
			if s, ok := firstStringArg(n); ok {
				cfg.ProjectRoot = s
			}
		case "build-dir":
			if s, ok := firstStringArg(n); ok {
				cfg.BuildDir = s
			}
		case "exclude":
			if s, ok := firstStringArg(n); ok {
				cfg.Exclude = append(cfg.Exclude, s)
			}
		case "json":
			if b, ok := firstBoolArg(n); ok {
				cfg.JSON = b
			}
		}
	}

	return cfg, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

// KDL config loading: `.tdgraph.kdl` parsed via github.com/sblinch/kdl-go
// into this pipeline's recognised option set (include/exclude/
// parallel_workers/cache/dag/complexity/tdg/satd/dead_code/output),
// traversed with a node-name switch over doc.Nodes/n.Children and a
// firstIntArg/firstStringArg/firstBoolArg/firstFloatArg/collectStringArgs
// helper family.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	"github.com/standardbeagle/tdgraph/internal/types"
)

// configFileName is the KDL file LoadKDL looks for at a project root.
const configFileName = ".tdgraph.kdl"

// LoadKDL loads `.tdgraph.kdl` from projectRoot, merging its values onto
// Default(). Returns Default() unchanged, with no error, when the file is
// absent — only a malformed file is a ConfigError.
func LoadKDL(projectRoot string) (*Config, error) {
	path := filepath.Join(projectRoot, configFileName)

	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", configFileName, err)
	}

	cfg, err := parseKDL(string(content))
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseKDL parses content onto a fresh Default() config; empty content
// parses to the defaults unchanged.
func parseKDL(content string) (*Config, error) {
	cfg := Default()

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "include":
			cfg.Include = append(cfg.Include, collectStringArgs(n)...)
		case "exclude":
			cfg.Exclude = append(cfg.Exclude, collectStringArgs(n)...)
		case "parallel_workers":
			if v, ok := firstIntArg(n); ok {
				cfg.ParallelWorkers = v
			}
		case "cache_enabled":
			if b, ok := firstBoolArg(n); ok {
				cfg.CacheEnabled = b
			}
		case "cache_ttl_seconds":
			if v, ok := firstIntArg(n); ok {
				cfg.CacheTTLSeconds = v
			}
		case "cache_dir":
			if s, ok := firstStringArg(n); ok {
				cfg.CacheDir = s
			}
		case "dag":
			parseDAGSection(cfg, n)
		case "complexity":
			parseComplexitySection(cfg, n)
		case "tdg":
			parseTDGSection(cfg, n)
		case "satd":
			parseSATDSection(cfg, n)
		case "dead_code":
			parseDeadCodeSection(cfg, n)
		case "output":
			parseOutputSection(cfg, n)
		}
	}

	return cfg, nil
}

func parseDAGSection(cfg *Config, n *document.Node) {
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "target_nodes":
			if v, ok := firstIntArg(cn); ok {
				cfg.DAG.TargetNodes = v
			}
		case "edge_budget":
			if v, ok := firstIntArg(cn); ok {
				cfg.DAG.EdgeBudget = v
			}
		case "grouping":
			if s, ok := firstStringArg(cn); ok {
				cfg.DAG.Grouping = Grouping(s)
			}
		}
	}
}

func parseComplexitySection(cfg *Config, n *document.Node) {
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "max_cyclomatic":
			if v, ok := firstIntArg(cn); ok {
				cfg.Complexity.MaxCyclomatic = uint32(v)
			}
		case "max_cognitive":
			if v, ok := firstIntArg(cn); ok {
				cfg.Complexity.MaxCognitive = uint32(v)
			}
		}
	}
}

func parseTDGSection(cfg *Config, n *document.Node) {
	for _, cn := range n.Children {
		if nodeName(cn) != "weights" {
			continue
		}
		args := cn.Arguments
		for i := 0; i < len(args) && i < 5; i++ {
			if v, ok := floatValue(args[i].Value); ok {
				cfg.TDG.Weights[i] = v
			}
		}
	}
}

func parseSATDSection(cfg *Config, n *document.Node) {
	for _, cn := range n.Children {
		if nodeName(cn) == "min_severity" {
			if s, ok := firstStringArg(cn); ok {
				cfg.SATD.MinSeverity = types.Severity(s)
			}
		}
	}
}

func parseDeadCodeSection(cfg *Config, n *document.Node) {
	for _, cn := range n.Children {
		if nodeName(cn) == "include_tests" {
			if b, ok := firstBoolArg(cn); ok {
				cfg.DeadCode.IncludeTests = b
			}
		}
	}
}

func parseOutputSection(cfg *Config, n *document.Node) {
	for _, cn := range n.Children {
		if nodeName(cn) == "formats" {
			cfg.Output.Formats = collectStringArgs(cn)
		}
	}
}

func floatValue(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}

// --- kdl-go document model helpers --------------------------------------

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
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

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

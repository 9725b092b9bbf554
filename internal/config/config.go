// Package config loads and validates the pipeline's recognised options:
// include/exclude globs, worker/cache sizing, per-analyzer thresholds,
// and output format selection.
package config

import (
	"runtime"

	"github.com/standardbeagle/tdgraph/internal/types"
)

// Grouping selects the DAG Builder's node-collapsing strategy.
type Grouping string

const (
	GroupingModule    Grouping = "module"
	GroupingDirectory Grouping = "directory"
	GroupingNone      Grouping = "none"
)

// DAGConfig configures C4's pruning and grouping behaviour.
type DAGConfig struct {
	TargetNodes int
	EdgeBudget  int
	Grouping    Grouping
}

// ComplexityConfig sets the SARIF emission thresholds for C5.
type ComplexityConfig struct {
	MaxCyclomatic uint32
	MaxCognitive  uint32
}

// TDGConfig carries the five composite weights C8 multiplies together.
// Order matches types.TDGComponents: Complexity, Churn, Coupling, Debt,
// Duplicate.
type TDGConfig struct {
	Weights [5]float64
}

// SATDConfig filters C6's ranked summary by minimum severity.
type SATDConfig struct {
	MinSeverity types.Severity
}

// DeadCodeConfig toggles whether C7 treats test-attributed functions as
// entry points.
type DeadCodeConfig struct {
	IncludeTests bool
}

// OutputConfig selects which renderings C13 produces.
type OutputConfig struct {
	Formats []string // subset of {markdown, json, sarif, mermaid}
}

// Config is the fully-resolved set of recognised options.
type Config struct {
	Include []string
	Exclude []string

	ParallelWorkers int
	CacheEnabled    bool
	CacheTTLSeconds int
	CacheDir        string

	DAG        DAGConfig
	Complexity ComplexityConfig
	TDG        TDGConfig
	SATD       SATDConfig
	DeadCode   DeadCodeConfig
	Output     OutputConfig
}

// Default returns the configuration the pipeline runs with absent a
// `.tdgraph.kdl` file or CLI overrides.
func Default() *Config {
	return &Config{
		Include:         nil,
		Exclude:         nil,
		ParallelWorkers: runtime.NumCPU(),
		CacheEnabled:    true,
		CacheTTLSeconds: 0,
		CacheDir:        ".tdgraph-cache",
		DAG: DAGConfig{
			TargetNodes: 100,
			EdgeBudget:  400,
			Grouping:    GroupingNone,
		},
		Complexity: ComplexityConfig{
			MaxCyclomatic: 10,
			MaxCognitive:  15,
		},
		TDG: TDGConfig{
			Weights: [5]float64{0.30, 0.35, 0.15, 0.10, 0.10},
		},
		SATD: SATDConfig{
			MinSeverity: types.SeverityLow,
		},
		DeadCode: DeadCodeConfig{
			IncludeTests: false,
		},
		Output: OutputConfig{
			Formats: []string{"markdown"},
		},
	}
}

package types

import "time"

// StageTiming records one pipeline stage's wall-clock duration, used for
// the pipeline's cache hit-rate / total wall-time reporting.
type StageTiming struct {
	Stage    string
	Duration time.Duration
	CacheHit bool
	Degraded bool
}

// Metadata describes one analysis run.
type Metadata struct {
	RunID       string
	Root        string
	GeneratedAt time.Time
	Config      map[string]string
}

// DeepContext is the top-level result of C13's analyze_deep_context
// operation: every analysis the pipeline fans out to, assembled under one
// envelope, plus the diagnostics and timings collected along the way.
type DeepContext struct {
	Metadata   Metadata
	Summary    ProjectSummary
	Files      []FileContext
	Dag        *DependencyGraph
	Complexity ComplexityReport
	Satd       SatdSummary
	DeadCode   []DeadCodeItem
	Tdg        []TDGScore
	Duplicates CloneReport
	Proof      []ProofAnnotation
	Diagnostics []Diagnostic
	Timings    []StageTiming
	CacheHitRate float64
}

package config

import (
	"fmt"
	"runtime"

	"github.com/standardbeagle/tdgraph/internal/errors"
	"github.com/standardbeagle/tdgraph/internal/types"
)

var validGroupings = map[Grouping]bool{
	GroupingModule:    true,
	GroupingDirectory: true,
	GroupingNone:      true,
}

var validSeverities = map[types.Severity]bool{
	types.SeverityCritical: true,
	types.SeverityHigh:     true,
	types.SeverityMedium:   true,
	types.SeverityLow:      true,
}

var validFormats = map[string]bool{
	"markdown": true,
	"json":     true,
	"sarif":    true,
	"mermaid":  true,
}

// Validator checks a Config against the recognised option set and
// fills in smart defaults for anything left at its zero value.
type Validator struct{}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults normalises cfg in place and returns a ConfigError
// (fatal, reported before any work begins) on the first
// value outside its allowed domain.
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if cfg.ParallelWorkers <= 0 {
		cfg.ParallelWorkers = max(1, runtime.NumCPU())
	}
	if cfg.CacheTTLSeconds < 0 {
		return errors.New(errors.KindConfig, "config.Validate", fmt.Errorf("cache_ttl_seconds must be >= 0, got %d", cfg.CacheTTLSeconds))
	}
	if cfg.DAG.TargetNodes <= 0 {
		cfg.DAG.TargetNodes = 100
	}
	if cfg.DAG.EdgeBudget <= 0 {
		cfg.DAG.EdgeBudget = 400
	}
	if cfg.DAG.Grouping == "" {
		cfg.DAG.Grouping = GroupingNone
	}
	if !validGroupings[cfg.DAG.Grouping] {
		return errors.New(errors.KindConfig, "config.Validate", fmt.Errorf("dag.grouping: unrecognised value %q", cfg.DAG.Grouping))
	}
	if cfg.Complexity.MaxCyclomatic == 0 {
		cfg.Complexity.MaxCyclomatic = 10
	}
	if cfg.Complexity.MaxCognitive == 0 {
		cfg.Complexity.MaxCognitive = 15
	}
	if err := v.normalizeTDGWeights(cfg); err != nil {
		return err
	}
	if cfg.SATD.MinSeverity == "" {
		cfg.SATD.MinSeverity = types.SeverityLow
	}
	if !validSeverities[cfg.SATD.MinSeverity] {
		return errors.New(errors.KindConfig, "config.Validate", fmt.Errorf("satd.min_severity: unrecognised value %q", cfg.SATD.MinSeverity))
	}
	if len(cfg.Output.Formats) == 0 {
		cfg.Output.Formats = []string{"markdown"}
	}
	for _, f := range cfg.Output.Formats {
		if !validFormats[f] {
			return errors.New(errors.KindConfig, "config.Validate", fmt.Errorf("output.formats: unrecognised value %q", f))
		}
	}
	return nil
}

// normalizeTDGWeights rescales the five weights to sum to 1.0 when they
// don't already. An all-zero weight vector falls back to the built-in
// default distribution.
func (v *Validator) normalizeTDGWeights(cfg *Config) error {
	var sum float64
	for _, w := range cfg.TDG.Weights {
		if w < 0 {
			return errors.New(errors.KindConfig, "config.Validate", fmt.Errorf("tdg.weights: negative weight %v", w))
		}
		sum += w
	}
	if sum == 0 {
		cfg.TDG.Weights = [5]float64{0.30, 0.35, 0.15, 0.10, 0.10}
		return nil
	}
	if sum != 1.0 {
		for i := range cfg.TDG.Weights {
			cfg.TDG.Weights[i] /= sum
		}
	}
	return nil
}

// ValidateConfig is a convenience wrapper for one-shot validation.
func ValidateConfig(cfg *Config) error {
	return NewValidator().ValidateAndSetDefaults(cfg)
}

package config

import (
	"testing"

	"github.com/standardbeagle/tdgraph/internal/types"
)

func TestValidateAndSetDefaults_FillsZeroValues(t *testing.T) {
	cfg := &Config{}

	if err := NewValidator().ValidateAndSetDefaults(cfg); err != nil {
		t.Fatalf("ValidateAndSetDefaults failed: %v", err)
	}

	if cfg.ParallelWorkers <= 0 {
		t.Errorf("ParallelWorkers should have been defaulted, got %d", cfg.ParallelWorkers)
	}
	if cfg.DAG.TargetNodes != 100 {
		t.Errorf("DAG.TargetNodes default = %d, want 100", cfg.DAG.TargetNodes)
	}
	if cfg.DAG.Grouping != GroupingNone {
		t.Errorf("DAG.Grouping default = %q, want none", cfg.DAG.Grouping)
	}
	if cfg.SATD.MinSeverity != types.SeverityLow {
		t.Errorf("SATD.MinSeverity default = %q, want Low", cfg.SATD.MinSeverity)
	}
	if len(cfg.Output.Formats) != 1 || cfg.Output.Formats[0] != "markdown" {
		t.Errorf("Output.Formats default = %v, want [markdown]", cfg.Output.Formats)
	}
	var sum float64
	for _, w := range cfg.TDG.Weights {
		sum += w
	}
	if sum < 0.999 || sum > 1.001 {
		t.Errorf("TDG.Weights should sum to 1.0, got %v (sum=%v)", cfg.TDG.Weights, sum)
	}
}

func TestValidateAndSetDefaults_NormalizesTDGWeights(t *testing.T) {
	cfg := Default()
	cfg.TDG.Weights = [5]float64{1, 1, 1, 1, 1}

	if err := NewValidator().ValidateAndSetDefaults(cfg); err != nil {
		t.Fatalf("ValidateAndSetDefaults failed: %v", err)
	}
	for _, w := range cfg.TDG.Weights {
		if w != 0.2 {
			t.Errorf("expected normalized weight 0.2, got %v", w)
		}
	}
}

func TestValidateAndSetDefaults_RejectsUnknownGrouping(t *testing.T) {
	cfg := Default()
	cfg.DAG.Grouping = "bogus"

	if err := NewValidator().ValidateAndSetDefaults(cfg); err == nil {
		t.Fatal("expected an error for an unrecognised dag.grouping value")
	}
}

func TestValidateAndSetDefaults_RejectsUnknownOutputFormat(t *testing.T) {
	cfg := Default()
	cfg.Output.Formats = []string{"yaml"}

	if err := NewValidator().ValidateAndSetDefaults(cfg); err == nil {
		t.Fatal("expected an error for an unrecognised output format")
	}
}

func TestValidateAndSetDefaults_RejectsNegativeCacheTTL(t *testing.T) {
	cfg := Default()
	cfg.CacheTTLSeconds = -1

	if err := NewValidator().ValidateAndSetDefaults(cfg); err == nil {
		t.Fatal("expected an error for a negative cache_ttl_seconds")
	}
}

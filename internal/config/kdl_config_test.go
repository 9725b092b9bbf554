package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/tdgraph/internal/types"
)

func TestParseKDL_Defaults(t *testing.T) {
	cfg, err := parseKDL("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 100, cfg.DAG.TargetNodes)
	assert.Equal(t, 400, cfg.DAG.EdgeBudget)
	assert.Equal(t, GroupingNone, cfg.DAG.Grouping)
	assert.Equal(t, uint32(10), cfg.Complexity.MaxCyclomatic)
	assert.Equal(t, [5]float64{0.30, 0.35, 0.15, 0.10, 0.10}, cfg.TDG.Weights)
	assert.Equal(t, types.SeverityLow, cfg.SATD.MinSeverity)
	assert.True(t, cfg.CacheEnabled)
}

func TestParseKDL_DAGSection(t *testing.T) {
	kdlContent := `
dag {
    target_nodes 50
    edge_budget 200
    grouping "module"
}
`
	cfg, err := parseKDL(kdlContent)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.DAG.TargetNodes)
	assert.Equal(t, 200, cfg.DAG.EdgeBudget)
	assert.Equal(t, GroupingModule, cfg.DAG.Grouping)
}

func TestParseKDL_TDGWeights(t *testing.T) {
	kdlContent := `
tdg {
    weights 0.2 0.2 0.2 0.2 0.2
}
`
	cfg, err := parseKDL(kdlContent)
	require.NoError(t, err)
	assert.Equal(t, [5]float64{0.2, 0.2, 0.2, 0.2, 0.2}, cfg.TDG.Weights)
}

func TestParseKDL_SATDAndDeadCode(t *testing.T) {
	kdlContent := `
satd {
    min_severity "High"
}
dead_code {
    include_tests true
}
`
	cfg, err := parseKDL(kdlContent)
	require.NoError(t, err)
	assert.Equal(t, types.SeverityHigh, cfg.SATD.MinSeverity)
	assert.True(t, cfg.DeadCode.IncludeTests)
}

func TestParseKDL_IncludeExcludeAndOutput(t *testing.T) {
	kdlContent := `
include "src/**"
exclude "**/.git/**" "**/node_modules/**"
output {
    formats "json" "mermaid"
}
parallel_workers 4
cache_enabled false
cache_ttl_seconds 60
`
	cfg, err := parseKDL(kdlContent)
	require.NoError(t, err)
	assert.Contains(t, cfg.Include, "src/**")
	assert.Contains(t, cfg.Exclude, "**/.git/**")
	assert.Contains(t, cfg.Exclude, "**/node_modules/**")
	assert.Equal(t, []string{"json", "mermaid"}, cfg.Output.Formats)
	assert.Equal(t, 4, cfg.ParallelWorkers)
	assert.False(t, cfg.CacheEnabled)
	assert.Equal(t, 60, cfg.CacheTTLSeconds)
}

func TestLoadKDL_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadKDL(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default().DAG, cfg.DAG)
}

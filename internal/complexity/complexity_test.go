package complexity

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/tdgraph/internal/types"
)

func sampleProject() *types.ProjectContext {
	return &types.ProjectContext{
		Files: []types.FileContext{
			{
				Path: "hot.go",
				Items: []types.AstItem{
					types.FunctionItem("Complicated", 10, types.VisPublic, false, 20, 30, nil),
					types.FunctionItem("Simple", 40, types.VisPublic, false, 1, 1, nil),
				},
			},
			{
				Path:  "empty.go",
				Items: nil,
			},
		},
	}
}

func TestAnalyze_AggregatesPerFile(t *testing.T) {
	r := Analyze(sampleProject(), 5)

	require.Len(t, r.Files, 2)
	hot := r.Files[0]
	assert.Equal(t, "hot.go", hot.File)
	assert.Equal(t, 2, hot.FunctionCount)
	assert.Equal(t, uint32(21), hot.TotalCyclomatic)
	assert.Equal(t, uint32(20), hot.MaxCyclomatic)
}

func TestAnalyze_EmptyFileContributesZero(t *testing.T) {
	r := Analyze(sampleProject(), 5)

	empty := r.Files[1]
	assert.Equal(t, "empty.go", empty.File)
	assert.Equal(t, 0, empty.FunctionCount)
	assert.Equal(t, 0.0, empty.Score)
}

func TestAnalyze_HotspotsRankedDescending(t *testing.T) {
	r := Analyze(sampleProject(), 5)

	require.Len(t, r.Hotspots, 2)
	assert.Equal(t, "Complicated", r.Hotspots[0].Name)
	assert.Equal(t, "Simple", r.Hotspots[1].Name)
}

func TestAnalyze_Percentiles(t *testing.T) {
	r := Analyze(sampleProject(), 5)
	assert.GreaterOrEqual(t, r.P95Cyclomatic, r.P50Cyclomatic)
}

func TestRenderJSON_RoundTrips(t *testing.T) {
	r := Analyze(sampleProject(), 5)
	data, err := RenderJSON(r)
	require.NoError(t, err)

	var decoded types.ComplexityReport
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, len(r.Files), len(decoded.Files))
}

func TestRenderSARIF_OneResultPerThresholdExceedance(t *testing.T) {
	r := Analyze(sampleProject(), 5)
	data, err := RenderSARIF(r, 10, 10)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "Complicated"))
	assert.False(t, strings.Contains(string(data), "\"Simple\""))
}

func TestRenderTable_ContainsHeader(t *testing.T) {
	r := Analyze(sampleProject(), 5)
	table := RenderTable(r)
	assert.Contains(t, table, "FILE")
	assert.Contains(t, table, "hot.go")
}

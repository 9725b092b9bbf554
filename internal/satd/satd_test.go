package satd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/tdgraph/internal/types"
)

func TestScan_DetectsTodoAndFixme(t *testing.T) {
	src := []byte("package x\n\n// TODO: refactor this\nfunc f() {}\n\n// FIXME: broken on nil input\nfunc g() {}\n")
	items := Scan("x.go", types.LangGo, src)

	require.Len(t, items, 2)
	// "refactor" is a Design cue, which the pattern table ranks above TODO.
	assert.Equal(t, types.DebtDesign, items[0].Category)
	assert.Equal(t, types.SeverityMedium, items[0].Severity)
	assert.Equal(t, types.DebtDefect, items[1].Category)
	assert.Equal(t, types.SeverityHigh, items[1].Severity)
}

func TestScan_TodoWithBugCueReadsAsDefect(t *testing.T) {
	src := []byte("# TODO: fix race in worker pool\n")
	items := Scan("worker.py", types.LangPython, src)

	require.Len(t, items, 1)
	assert.Equal(t, types.DebtDefect, items[0].Category)
	assert.Equal(t, types.SeverityHigh, items[0].Severity)
}

func TestScan_IgnoreDirectiveSuppressesMatch(t *testing.T) {
	src := []byte("// TODO: cleanup satd:ignore\n")
	items := Scan("x.go", types.LangGo, src)
	assert.Empty(t, items)
}

func TestScan_SecurityContextEscalatesSeverity(t *testing.T) {
	src := []byte("// HACK: workaround for auth bypass\n")
	items := Scan("internal/auth/login.go", types.LangGo, src)

	require.Len(t, items, 1)
	assert.Equal(t, types.SeverityHigh, items[0].Severity) // Medium escalated to High
}

func TestScan_TestFileReducesSeverity(t *testing.T) {
	src := []byte("// FIXME: flaky assertion\n")
	items := Scan("pkg_test.go", types.LangGo, src)

	require.Len(t, items, 1)
	assert.Equal(t, types.SeverityMedium, items[0].Severity) // High reduced to Medium
}

func TestScan_ContextHashStableAcrossRepeatedScans(t *testing.T) {
	src := []byte("// TODO: one\n// TODO: two\n// TODO: three\n")
	first := Scan("x.go", types.LangGo, src)
	second := Scan("x.go", types.LangGo, src)

	require.Len(t, first, 3)
	require.Len(t, second, 3)
	for i := range first {
		assert.Equal(t, first[i].ContextHash, second[i].ContextHash)
	}
	assert.NotEqual(t, first[0].ContextHash, first[1].ContextHash)
}

func TestSummarize_RanksBySeverityThenFile(t *testing.T) {
	items := []types.SatdItem{
		{File: "b.go", Line: 1, Severity: types.SeverityLow, Category: types.DebtRequirement},
		{File: "a.go", Line: 1, Severity: types.SeverityCritical, Category: types.DebtDefect},
	}
	summary := Summarize(items)

	require.Len(t, summary.Items, 2)
	assert.Equal(t, "a.go", summary.Items[0].File)
	assert.Equal(t, 2, summary.FilesWithDebt)
}

func TestAnalyzeProject_FiltersByMinSeverity(t *testing.T) {
	pc := &types.ProjectContext{Files: []types.FileContext{{Path: "x.go", Language: types.LangGo}}}
	sources := map[string][]byte{
		"x.go": []byte("// TODO: low priority\n// FIXME: urgent\n"),
	}

	summary := AnalyzeProject(pc, sources, types.SeverityHigh)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, types.SeverityHigh, summary.Items[0].Severity)
}

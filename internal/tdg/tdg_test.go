package tdg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/tdgraph/internal/config"
	"github.com/standardbeagle/tdgraph/internal/types"
)

type fakeChurn struct {
	stats map[string]ChurnStats
}

func (f fakeChurn) RecentChanges(path string, windowDays int) (ChurnStats, bool) {
	s, ok := f.stats[path]
	return s, ok
}

func sampleCalculator(churn ChurnSource) *Calculator {
	return NewCalculator(config.Default(), churn)
}

func sampleProject() *types.ProjectContext {
	return &types.ProjectContext{
		Files: []types.FileContext{
			{Path: "clean.go", Language: types.LangGo, SourceLines: 100},
			{Path: "messy.go", Language: types.LangGo, SourceLines: 100},
		},
	}
}

func TestAnalyze_ChurnUnavailableYieldsZeroDeltaAndFlag(t *testing.T) {
	calc := sampleCalculator(nil)
	pc := sampleProject()
	report := types.ComplexityReport{}

	scores := Analyze(calc, pc, nil, report, nil, types.CloneReport{})

	require.Len(t, scores, 2)
	for _, s := range scores {
		assert.Equal(t, 0.0, s.Components.Churn)
		assert.False(t, s.ChurnAvailable)
		assert.Equal(t, 0.0, s.Value) // Δ=0 zeroes the multiplicative product
		assert.Equal(t, types.TDGNormal, s.Severity)
	}
}

func TestAnalyze_ChurnAvailableMakesValueNonZero(t *testing.T) {
	churn := fakeChurn{stats: map[string]ChurnStats{
		"clean.go": {CommitsRecent: 1},
		"messy.go": {CommitsRecent: 10},
	}}
	calc := sampleCalculator(churn)
	pc := sampleProject()
	report := types.ComplexityReport{Files: []types.FileComplexity{
		{File: "clean.go", FunctionCount: 2, TotalCyclomatic: 2},
		{File: "messy.go", FunctionCount: 2, TotalCyclomatic: 40},
	}}
	satdItems := []types.SatdItem{
		{File: "messy.go", Line: 1, Severity: types.SeverityCritical, Category: types.DebtDefect},
	}
	// S(f) is a factor of the product, so both files need fan-in and fan-out.
	g := types.NewDependencyGraph()
	cleanID := types.NewDagNodeID(types.LangGo, "clean.go", "clean.go")
	messyID := types.NewDagNodeID(types.LangGo, "messy.go", "messy.go")
	g.AddNode(types.DagNode{ID: cleanID, Kind: types.NodeFile, File: "clean.go"})
	g.AddNode(types.DagNode{ID: messyID, Kind: types.NodeFile, File: "messy.go"})
	g.AddEdge(types.DagEdge{From: cleanID, To: messyID, Kind: types.EdgeImport, Weight: 1})
	g.AddEdge(types.DagEdge{From: messyID, To: cleanID, Kind: types.EdgeImport, Weight: 1})

	scores := Analyze(calc, pc, g, report, satdItems, types.CloneReport{})

	require.Len(t, scores, 2)
	assert.Equal(t, "messy.go", scores[0].File, "messy.go should rank above clean.go")
	assert.Greater(t, scores[0].Value, scores[1].Value)
	assert.True(t, scores[0].ChurnAvailable)
}

func TestAnalyze_HighComplexityChurnDebtCrossesWarningThreshold(t *testing.T) {
	churn := fakeChurn{stats: map[string]ChurnStats{"hot.go": {CommitsRecent: 30}}}
	calc := sampleCalculator(churn)
	pc := &types.ProjectContext{Files: []types.FileContext{{Path: "hot.go", Language: types.LangGo, SourceLines: 200}}}
	report := types.ComplexityReport{Files: []types.FileComplexity{
		{File: "hot.go", FunctionCount: 1, TotalCyclomatic: 20},
	}}
	satdItems := []types.SatdItem{
		{File: "hot.go", Severity: types.SeverityCritical},
		{File: "hot.go", Severity: types.SeverityCritical},
		{File: "hot.go", Severity: types.SeverityHigh},
	}
	g := types.NewDependencyGraph()
	hotID := types.NewDagNodeID(types.LangGo, "hot.go", "hot.go")
	dep1 := types.NewDagNodeID(types.LangGo, "dep1.go", "dep1.go")
	dep2 := types.NewDagNodeID(types.LangGo, "dep2.go", "dep2.go")
	g.AddNode(types.DagNode{ID: hotID, Kind: types.NodeFile, File: "hot.go"})
	g.AddNode(types.DagNode{ID: dep1, Kind: types.NodeFile, File: "dep1.go"})
	g.AddNode(types.DagNode{ID: dep2, Kind: types.NodeFile, File: "dep2.go"})
	g.AddEdge(types.DagEdge{From: hotID, To: dep1, Kind: types.EdgeImport, Weight: 1})
	g.AddEdge(types.DagEdge{From: hotID, To: dep2, Kind: types.EdgeImport, Weight: 1})
	g.AddEdge(types.DagEdge{From: dep1, To: hotID, Kind: types.EdgeImport, Weight: 1})
	g.AddEdge(types.DagEdge{From: dep2, To: hotID, Kind: types.EdgeImport, Weight: 1})

	scores := Analyze(calc, pc, g, report, satdItems, types.CloneReport{})

	require.Len(t, scores, 1)
	assert.Greater(t, scores[0].Value, 0.8)
	assert.NotEqual(t, types.TDGNormal, scores[0].Severity)
}

func TestAnalyze_CouplingFactorUsesGraphFanInOut(t *testing.T) {
	calc := sampleCalculator(fakeChurn{stats: map[string]ChurnStats{"a.go": {CommitsRecent: 5}}})
	pc := &types.ProjectContext{Files: []types.FileContext{{Path: "a.go", Language: types.LangGo, SourceLines: 10}}}
	g := types.NewDependencyGraph()
	fileID := types.NewDagNodeID(types.LangGo, "a.go", "a.go")
	other := types.NewDagNodeID(types.LangGo, "b.go", "b.go")
	g.AddNode(types.DagNode{ID: fileID, Kind: types.NodeFile, File: "a.go"})
	g.AddNode(types.DagNode{ID: other, Kind: types.NodeFile, File: "b.go"})
	g.AddEdge(types.DagEdge{From: fileID, To: other, Kind: types.EdgeImport, Weight: 1})
	g.AddEdge(types.DagEdge{From: other, To: fileID, Kind: types.EdgeImport, Weight: 1})

	scores := Analyze(calc, pc, g, types.ComplexityReport{}, nil, types.CloneReport{})

	require.Len(t, scores, 1)
	assert.Greater(t, scores[0].Components.Coupling, 0.0)
}

func TestAnalyze_DuplicationRaisesDupFactor(t *testing.T) {
	calc := sampleCalculator(fakeChurn{stats: map[string]ChurnStats{"dup.go": {CommitsRecent: 1}}})
	pc := &types.ProjectContext{Files: []types.FileContext{{Path: "dup.go", Language: types.LangGo, SourceLines: 100}}}
	clones := types.CloneReport{Groups: []types.CloneGroup{
		{Type: types.CloneType1, Members: []types.CloneMember{{File: "dup.go", StartLine: 1, EndLine: 50}}},
	}}

	scores := Analyze(calc, pc, nil, types.ComplexityReport{}, nil, clones)

	require.Len(t, scores, 1)
	assert.Greater(t, scores[0].Components.Duplicate, 1.0)
}

func TestAnalyze_SortsDescendingByValueThenFile(t *testing.T) {
	calc := sampleCalculator(nil)
	pc := &types.ProjectContext{Files: []types.FileContext{
		{Path: "z.go", Language: types.LangGo},
		{Path: "a.go", Language: types.LangGo},
	}}

	scores := Analyze(calc, pc, nil, types.ComplexityReport{}, nil, types.CloneReport{})

	require.Len(t, scores, 2)
	assert.Equal(t, "a.go", scores[0].File)
	assert.Equal(t, "z.go", scores[1].File)
}

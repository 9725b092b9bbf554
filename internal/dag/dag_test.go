package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/tdgraph/internal/config"
	"github.com/standardbeagle/tdgraph/internal/types"
)

func sampleProject() *types.ProjectContext {
	pc := &types.ProjectContext{
		Files: []types.FileContext{
			{
				Path:     "a.go",
				Language: types.LangGo,
				Items: []types.AstItem{
					types.FunctionItem("Main", 1, types.VisPublic, false, 2, 2, []string{"Helper"}),
					{Kind: types.ItemImport, Name: "fmt", Line: 1, ImportPath: "fmt"},
				},
			},
			{
				Path:     "b.go",
				Language: types.LangGo,
				Items: []types.AstItem{
					types.FunctionItem("Helper", 3, types.VisPrivate, false, 1, 1, nil),
				},
			},
		},
	}
	pc.SortFiles()
	pc.BuildSummary()
	return pc
}

func TestBuild_ProducesClosedGraph(t *testing.T) {
	g := Build(sampleProject())

	assert.True(t, g.IsClosed())
	assert.GreaterOrEqual(t, g.NodeCount(), 4) // 2 files + 2 functions + 1 import target
}

func TestBuild_CallEdgeResolvesAcrossFiles(t *testing.T) {
	g := Build(sampleProject())

	var found bool
	for _, e := range g.Edges() {
		if e.Kind == types.EdgeCall {
			found = true
		}
	}
	assert.True(t, found, "expected a Call edge from Main to Helper")
}

func TestRank_ScoresSumCloseToOne(t *testing.T) {
	g := Build(sampleProject())
	scores := Rank(g)
	require.NotEmpty(t, scores)

	var sum float64
	for _, s := range scores {
		sum += s
	}
	assert.InDelta(t, 1.0, sum, 0.05)
}

func TestRank_IsDeterministicAcrossRuns(t *testing.T) {
	g1 := Build(sampleProject())
	g2 := Build(sampleProject())

	s1 := Rank(g1)
	s2 := Rank(g2)

	for id, v := range s1 {
		assert.InDelta(t, v, s2[id], 1e-12)
	}
}

func TestPrune_KeepsTopKAndRespectsEdgeBudget(t *testing.T) {
	g := Build(sampleProject())
	Rank(g)

	pruned := Prune(g, 2, 10)
	assert.LessOrEqual(t, pruned.NodeCount(), 2+pruned.EdgeCount())
	assert.True(t, pruned.IsClosed())
}

func TestPrune_NoopBelowTargetNodes(t *testing.T) {
	g := Build(sampleProject())
	Rank(g)

	pruned := Prune(g, 1000, 400)
	assert.Equal(t, g.NodeCount(), pruned.NodeCount())
}

func TestGroup_NoneIsIdentity(t *testing.T) {
	g := Build(sampleProject())
	grouped := Group(g, config.GroupingNone)
	assert.Equal(t, g.NodeCount(), grouped.NodeCount())
}

func TestGroup_DirectoryCollapsesSameDirFiles(t *testing.T) {
	g := Build(sampleProject())
	grouped := Group(g, config.GroupingDirectory)

	assert.True(t, grouped.IsClosed())
	assert.Less(t, grouped.NodeCount(), g.NodeCount())
}

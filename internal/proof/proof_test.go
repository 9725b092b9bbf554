package proof

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/tdgraph/internal/types"
)

func TestStore_AddIsAdditiveNotDeduplicating(t *testing.T) {
	s := NewStore()
	id := types.DagNodeID("node-1")
	ann := types.ProofAnnotation{NodeID: id, Property: types.PropPureFn, Confidence: 0.9, Method: types.MethodHeuristic}

	s.Add(ann)
	s.Add(ann)

	assert.Len(t, s.Get(id), 2)
}

func TestStore_FilterByMinConfidenceAndProperty(t *testing.T) {
	s := NewStore()
	id := types.DagNodeID("node-1")
	s.AddAll([]types.ProofAnnotation{
		{NodeID: id, Property: types.PropPureFn, Confidence: 0.9, Method: types.MethodHeuristic},
		{NodeID: id, Property: types.PropPureFn, Confidence: 0.2, Method: types.MethodHeuristic},
		{NodeID: id, Property: types.PropNoPanic, Confidence: 0.9, Method: types.MethodBorrowCheck},
	})

	high := s.Filter(id, ByProperty(types.PropPureFn), ByMinConfidence(0.5))
	require.Len(t, high, 1)
	assert.Equal(t, 0.9, high[0].Confidence)

	bySource := s.Filter(id, BySource(types.MethodBorrowCheck))
	require.Len(t, bySource, 1)
	assert.Equal(t, types.PropNoPanic, bySource[0].Property)
}

func TestStore_SnapshotIsSortedByNodeID(t *testing.T) {
	s := NewStore()
	s.Add(types.ProofAnnotation{NodeID: "zzz", Property: types.PropPureFn})
	s.Add(types.ProofAnnotation{NodeID: "aaa", Property: types.PropNoPanic})

	snap := s.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, types.DagNodeID("aaa"), snap[0].NodeID)
	assert.Equal(t, types.DagNodeID("zzz"), snap[1].NodeID)
}

func TestRustHeuristicSource_SkipsNonRustFiles(t *testing.T) {
	pc := &types.ProjectContext{
		Files: []types.FileContext{
			{
				Path:     "a.go",
				Language: types.LangGo,
				Items:    []types.AstItem{types.FunctionItem("Alpha", 1, types.VisPublic, false, 1, 1, nil)},
			},
		},
	}
	assert.Empty(t, RustHeuristicSource(pc))
}

func TestRustHeuristicSource_PureLeafFunctionGetsPureFnAndNoPanic(t *testing.T) {
	pc := &types.ProjectContext{
		Files: []types.FileContext{
			{
				Path:     "lib.rs",
				Language: types.LangRust,
				Items:    []types.AstItem{types.FunctionItem("add", 1, types.VisPublic, false, 1, 1, nil)},
			},
		},
	}

	anns := RustHeuristicSource(pc)
	var sawPure, sawNoPanic bool
	for _, a := range anns {
		switch a.Property {
		case types.PropPureFn:
			sawPure = true
		case types.PropNoPanic:
			sawNoPanic = true
		}
	}
	assert.True(t, sawPure)
	assert.True(t, sawNoPanic)
}

func TestRustHeuristicSource_PanickingCallSuppressesNoPanic(t *testing.T) {
	pc := &types.ProjectContext{
		Files: []types.FileContext{
			{
				Path:     "lib.rs",
				Language: types.LangRust,
				Items:    []types.AstItem{types.FunctionItem("risky", 1, types.VisPublic, false, 1, 1, []string{"unwrap"})},
			},
		},
	}

	anns := RustHeuristicSource(pc)
	for _, a := range anns {
		assert.NotEqual(t, types.PropNoPanic, a.Property)
	}
}

package dag

import (
	"sort"

	"github.com/standardbeagle/tdgraph/internal/types"
)

// Prune implements §4.4 step 5: when the graph exceeds targetNodes, keep
// the top-K nodes by PageRank plus all their direct predecessors, subject
// to edgeBudget, and drop any edge left dangling by the cut. Scores must
// already be populated (via Rank) on every node.
func Prune(g *types.DependencyGraph, targetNodes, edgeBudget int) *types.DependencyGraph {
	nodes := g.Nodes()
	if targetNodes <= 0 || len(nodes) <= targetNodes {
		return g
	}

	ranked := append([]types.DagNode(nil), nodes...)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].PageRankScore != ranked[j].PageRankScore {
			return ranked[i].PageRankScore > ranked[j].PageRankScore
		}
		return ranked[i].ID < ranked[j].ID
	})

	keep := make(map[types.DagNodeID]bool, targetNodes)
	for i := 0; i < targetNodes && i < len(ranked); i++ {
		keep[ranked[i].ID] = true
	}

	// Add direct predecessors of kept nodes, in deterministic (to,from)
	// order, so which predecessors survive a tight edge budget never
	// depends on map iteration order.
	var predecessorEdges []types.DagEdge
	for _, e := range g.Edges() {
		if keep[e.To] && !keep[e.From] {
			predecessorEdges = append(predecessorEdges, e)
		}
	}
	sort.Slice(predecessorEdges, func(i, j int) bool {
		a, b := predecessorEdges[i], predecessorEdges[j]
		if a.To != b.To {
			return a.To < b.To
		}
		if a.From != b.From {
			return a.From < b.From
		}
		return a.Kind < b.Kind
	})

	out := types.NewDependencyGraph()
	for _, node := range ranked {
		if keep[node.ID] {
			out.AddNode(node)
		}
	}

	edgesAdded := 0
	for _, e := range g.Edges() {
		if keep[e.From] && keep[e.To] {
			out.AddEdge(e)
			edgesAdded++
		}
	}
	for _, e := range predecessorEdges {
		if edgesAdded >= edgeBudget {
			break
		}
		if !out.HasNode(e.From) {
			if n, ok := g.Node(e.From); ok {
				out.AddNode(n)
				keep[e.From] = true
			}
		}
		out.AddEdge(e)
		edgesAdded++
	}

	return out
}

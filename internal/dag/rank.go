package dag

import (
	"math"
	"sort"

	"github.com/standardbeagle/tdgraph/internal/types"
)

// PageRank constants per §4.4: damping 0.85, tolerance 1e-6, max 100
// iterations. Grounded on XTheocharis-crush's internal/repomap/pagerank.go,
// which uses these exact values for the same reason — a hard iteration cap
// and a pinned sort-by-id order are what make the result reproducible
// across runs and machines.
const (
	damping    = 0.85
	tolerance  = 1e-6
	iterations = 100
)

// Rank computes PageRank over g and writes each node's score back via
// SetNode, then returns the same scores keyed by id for callers (pruning)
// that need them directly. Nodes are sorted by id before any arithmetic so
// floating-point summation order, and therefore the result, stays
// identical across runs.
func Rank(g *types.DependencyGraph) map[types.DagNodeID]float64 {
	nodes := g.Nodes() // already ascending by id
	n := len(nodes)
	if n == 0 {
		return nil
	}

	index := make(map[types.DagNodeID]int, n)
	for i, node := range nodes {
		index[node.ID] = i
	}

	outWeight := make([]float64, n)
	type inbound struct {
		from   int
		weight float64
	}
	incoming := make([][]inbound, n)

	for _, e := range g.Edges() {
		fromIdx, okFrom := index[e.From]
		toIdx, okTo := index[e.To]
		if !okFrom || !okTo {
			continue
		}
		w := float64(e.Weight)
		outWeight[fromIdx] += w
		incoming[toIdx] = append(incoming[toIdx], inbound{from: fromIdx, weight: w})
	}
	for i := range incoming {
		sort.Slice(incoming[i], func(a, b int) bool { return incoming[i][a].from < incoming[i][b].from })
	}

	uniform := 1.0 / float64(n)
	rank := make([]float64, n)
	for i := range rank {
		rank[i] = uniform
	}

	for iter := 0; iter < iterations; iter++ {
		next := make([]float64, n)
		for i := range next {
			next[i] = (1 - damping) * uniform
		}

		var danglingMass float64
		for i, w := range outWeight {
			if w <= 0 {
				danglingMass += rank[i]
			}
		}
		if danglingMass > 0 {
			scaled := damping * danglingMass * uniform
			for i := range next {
				next[i] += scaled
			}
		}

		for toIdx, inEdges := range incoming {
			var inSum float64
			for _, in := range inEdges {
				if outWeight[in.from] <= 0 {
					continue
				}
				inSum += rank[in.from] * (in.weight / outWeight[in.from])
			}
			next[toIdx] += damping * inSum
		}

		var delta float64
		for i := range next {
			delta += math.Abs(next[i] - rank[i])
		}
		rank = next
		if delta < tolerance {
			break
		}
	}

	scores := make(map[types.DagNodeID]float64, n)
	for i, node := range nodes {
		scores[node.ID] = rank[i]
		node.PageRankScore = rank[i]
		g.SetNode(node)
	}
	return scores
}

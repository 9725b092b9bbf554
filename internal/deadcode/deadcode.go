// Package deadcode implements the Dead-Code Analyzer (C7): a
// reverse-reachability sweep over a DependencyGraph from a set of entry
// points, with VTable-style approximation for dynamic dispatch through
// trait/interface Implements edges.
//
// Grounded on `panbanda-omen`'s manifest, which already lists
// github.com/RoaringBitmap/roaring/v2 for an equivalent reachability
// computation; §4.7 names roaring bitmaps explicitly as the backing
// structure for the reachability bitset.
package deadcode

import (
	"sort"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/standardbeagle/tdgraph/internal/types"
)

// isEntryPoint reports whether a node is a root of reachability: Go main
// functions, public API surface (Visibility as the parser assigned it —
// Go's Capitalized-identifier export rule, Rust's `pub`, Python's
// leading-underscore convention, TS/JS's leading-underscore convention),
// and test functions.
func isEntryPoint(n types.DagNode, includeTests bool) bool {
	if n.Kind == types.NodeFile {
		return false
	}
	if n.DisplayLabel == "main" || n.DisplayLabel == "init" {
		return true
	}
	if includeTests && (strings.HasPrefix(n.DisplayLabel, "Test") || strings.HasPrefix(n.DisplayLabel, "Benchmark")) {
		return true
	}
	if n.Visibility == types.VisPublic {
		return true
	}
	return false
}

// Analyze computes dead-code findings over g. includeTests controls
// whether test-named functions count as entry points (§4.7's
// test-attribute predicate, surfaced via config.DeadCodeConfig).
func Analyze(g *types.DependencyGraph, includeTests bool) ([]types.DeadCodeItem, []types.FileDeadCodeMetrics) {
	nodes := g.Nodes()
	n := len(nodes)
	if n == 0 {
		return nil, nil
	}

	index := make(map[types.DagNodeID]int, n)
	for i, node := range nodes {
		index[node.ID] = i
	}

	reachable := roaring.New()
	testReachable := roaring.New()
	var queue []int
	var testQueue []int

	for i, node := range nodes {
		if isEntryPoint(node, includeTests) {
			reachable.Add(uint32(i))
			queue = append(queue, i)
		} else if isEntryPoint(node, true) && !includeTests {
			// test-only entry points still count for the Medium-confidence
			// "only reachable from a test" classification below.
			testReachable.Add(uint32(i))
			testQueue = append(testQueue, i)
		}
	}

	adjacency := buildAdjacency(g, index, n)
	bfs(reachable, queue, adjacency)
	bfs(testReachable, testQueue, adjacency)

	inboundCount := make([]int, n)
	testOriginatedOnly := make([]bool, n)
	for _, e := range g.Edges() {
		if toIdx, ok := index[e.To]; ok {
			inboundCount[toIdx]++
		}
	}
	for i := range nodes {
		testOriginatedOnly[i] = testReachable.Contains(uint32(i)) && !reachable.Contains(uint32(i))
	}

	var items []types.DeadCodeItem
	fileMetrics := make(map[string]*types.FileDeadCodeMetrics)

	for i, node := range nodes {
		if node.Kind == types.NodeFile || node.Kind == types.NodeModule {
			continue
		}
		if reachable.Contains(uint32(i)) {
			continue
		}

		confidence := types.ConfidenceLow
		switch {
		case inboundCount[i] == 0:
			confidence = types.ConfidenceHigh
		case testOriginatedOnly[i]:
			confidence = types.ConfidenceMedium
		}

		items = append(items, types.DeadCodeItem{
			NodeID:     node.ID,
			File:       node.File,
			Line:       node.Line,
			Name:       node.DisplayLabel,
			Kind:       deadKindFor(node.Kind),
			Confidence: confidence,
		})

		fm := fileMetrics[node.File]
		if fm == nil {
			fm = &types.FileDeadCodeMetrics{File: node.File}
			fileMetrics[node.File] = fm
		}
		fm.DeadItemCount++
		if confidence == types.ConfidenceHigh {
			fm.HighConfidence++
		}
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].File != items[j].File {
			return items[i].File < items[j].File
		}
		return items[i].Line < items[j].Line
	})

	files := make([]types.FileDeadCodeMetrics, 0, len(fileMetrics))
	for _, fm := range fileMetrics {
		files = append(files, *fm)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].File < files[j].File })

	return items, files
}

// buildAdjacency returns, for each node index, the sorted list of
// destination indices reachable by one edge — including Implements edges,
// which let reachability flow from a trait node to every node that
// implements it (the VTable approximation §4.7 calls for: a reachable
// trait marks its implementers reachable too).
func buildAdjacency(g *types.DependencyGraph, index map[types.DagNodeID]int, n int) [][]int {
	adjacency := make([][]int, n)
	for _, e := range g.Edges() {
		fromIdx, okFrom := index[e.From]
		toIdx, okTo := index[e.To]
		if !okFrom || !okTo {
			continue
		}
		adjacency[fromIdx] = append(adjacency[fromIdx], toIdx)
		if e.Kind == types.EdgeImplements {
			// reachability flows both ways across Implements: reaching the
			// impl reaches its target type, and reaching the trait/type
			// reaches every impl of it.
			adjacency[toIdx] = append(adjacency[toIdx], fromIdx)
		}
	}
	return adjacency
}

func bfs(visited *roaring.Bitmap, queue []int, adjacency [][]int) {
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adjacency[cur] {
			if visited.Contains(uint32(next)) {
				continue
			}
			visited.Add(uint32(next))
			queue = append(queue, next)
		}
	}
}

func deadKindFor(k types.NodeKind) types.DeadCodeKind {
	switch k {
	case types.NodeFunction:
		return types.DeadFunction
	case types.NodeStruct, types.NodeTrait, types.NodeImpl:
		return types.DeadClass
	default:
		return types.DeadVariable
	}
}

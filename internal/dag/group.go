package dag

import (
	"path"

	"github.com/standardbeagle/tdgraph/internal/config"
	"github.com/standardbeagle/tdgraph/internal/types"
)

// Group implements §4.4 step 6: an optional, deterministic collapse of
// nodes into directory or module clusters. GroupingNone returns g
// unchanged. Collapsed edges between two nodes in the same cluster
// (self-loops) are dropped; cross-cluster edges are deduped and summed by
// DependencyGraph.AddEdge exactly as ungrouped edges are.
func Group(g *types.DependencyGraph, grouping config.Grouping) *types.DependencyGraph {
	if grouping == config.GroupingNone || grouping == "" {
		return g
	}

	clusterOf := make(map[types.DagNodeID]types.DagNodeID)
	out := types.NewDependencyGraph()

	for _, n := range g.Nodes() {
		key := clusterKey(n, grouping)
		clusterID := types.NewDagNodeID(types.LangUnknown, "", key)
		clusterOf[n.ID] = clusterID
		if !out.HasNode(clusterID) {
			out.AddNode(types.DagNode{ID: clusterID, DisplayLabel: key, Kind: types.NodeModule})
		}
	}

	for _, e := range g.Edges() {
		from, to := clusterOf[e.From], clusterOf[e.To]
		if from == to {
			continue
		}
		out.AddEdge(types.DagEdge{From: from, To: to, Kind: e.Kind, Weight: e.Weight})
	}

	return out
}

// clusterKey names the cluster a node belongs to: its containing
// directory for GroupingDirectory, or its top-level path segment
// ("module") for GroupingModule. Nodes with no File (pseudo import
// targets) cluster under their own display label so they aren't merged
// with unrelated file-backed nodes.
func clusterKey(n types.DagNode, grouping config.Grouping) string {
	if n.File == "" {
		return "external:" + n.DisplayLabel
	}
	dir := path.Dir(n.File)
	if grouping == config.GroupingDirectory {
		return dir
	}

	segments := splitPath(dir)
	if len(segments) == 0 {
		return "."
	}
	return segments[0]
}

func splitPath(p string) []string {
	var out []string
	for _, seg := range pathSegments(p) {
		if seg != "" && seg != "." {
			out = append(out, seg)
		}
	}
	return out
}

func pathSegments(p string) []string {
	var segs []string
	start := 0
	for i := 0; i < len(p); i++ {
		if p[i] == '/' {
			segs = append(segs, p[start:i])
			start = i + 1
		}
	}
	segs = append(segs, p[start:])
	return segs
}

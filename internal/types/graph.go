package types

import (
	"encoding/json"
	"sort"
)

// edgeKey identifies an edge for dedupe purposes: multi-edges between the
// same pair with the same kind are collapsed by summing weights.
type edgeKey struct {
	from DagNodeID
	to   DagNodeID
	kind EdgeKind
}

// DependencyGraph is the deduplicated DAG of code entities and their
// relations. Nodes are keyed by id; iteration over Nodes()/Edges() is
// always in ascending id / (from,to,kind) order regardless of insertion
// order, so any hash taken over the graph is reproducible.
type DependencyGraph struct {
	nodes map[DagNodeID]DagNode
	edges map[edgeKey]DagEdge
}

// NewDependencyGraph returns an empty graph ready for AddNode/AddEdge.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		nodes: make(map[DagNodeID]DagNode),
		edges: make(map[edgeKey]DagEdge),
	}
}

// AddNode inserts or overwrites a node by id.
func (g *DependencyGraph) AddNode(n DagNode) {
	g.nodes[n.ID] = n
}

// HasNode reports whether id exists in the node set.
func (g *DependencyGraph) HasNode(id DagNodeID) bool {
	_, ok := g.nodes[id]
	return ok
}

// Node returns the node for id, if present.
func (g *DependencyGraph) Node(id DagNodeID) (DagNode, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// SetNode replaces a node's stored value (used to write back PageRank
// scores after ranking).
func (g *DependencyGraph) SetNode(n DagNode) { g.nodes[n.ID] = n }

// AddEdge inserts an edge, summing weight into any existing edge with the
// same (from,to,kind). Both endpoints must already exist as nodes; the
// graph-closure invariant is the caller's responsibility to
// satisfy before calling AddEdge, since the graph itself has no notion
// of "pending" nodes.
func (g *DependencyGraph) AddEdge(e DagEdge) {
	if e.Weight < 1 {
		e.Weight = 1
	}
	k := edgeKey{e.From, e.To, e.Kind}
	if existing, ok := g.edges[k]; ok {
		existing.Weight += e.Weight
		g.edges[k] = existing
		return
	}
	g.edges[k] = e
}

// RemoveNode deletes a node and every edge touching it. Used by pruning.
func (g *DependencyGraph) RemoveNode(id DagNodeID) {
	delete(g.nodes, id)
	for k := range g.edges {
		if k.from == id || k.to == id {
			delete(g.edges, k)
		}
	}
}

// NodeCount and EdgeCount report the current graph size.
func (g *DependencyGraph) NodeCount() int { return len(g.nodes) }
func (g *DependencyGraph) EdgeCount() int { return len(g.edges) }

// Nodes returns every node sorted ascending by id.
func (g *DependencyGraph) Nodes() []DagNode {
	out := make([]DagNode, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Edges returns every edge sorted ascending by (from,to,kind).
func (g *DependencyGraph) Edges() []DagEdge {
	out := make([]DagEdge, 0, len(g.edges))
	for _, e := range g.edges {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.From != b.From {
			return a.From < b.From
		}
		if a.To != b.To {
			return a.To < b.To
		}
		return a.Kind < b.Kind
	})
	return out
}

// OutEdges returns edges leaving id, in (to,kind) order.
func (g *DependencyGraph) OutEdges(id DagNodeID) []DagEdge {
	var out []DagEdge
	for _, e := range g.edges {
		if e.From == id {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].To != out[j].To {
			return out[i].To < out[j].To
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

// InEdges returns edges arriving at id, in (from,kind) order.
func (g *DependencyGraph) InEdges(id DagNodeID) []DagEdge {
	var out []DagEdge
	for _, e := range g.edges {
		if e.To == id {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

// graphJSON is DependencyGraph's wire shape: nodes and edges in the same
// sorted order Nodes()/Edges() already guarantee, so serializing a graph
// twice over unchanged data produces byte-identical JSON.
type graphJSON struct {
	Nodes []DagNode `json:"nodes"`
	Edges []DagEdge `json:"edges"`
}

// MarshalJSON implements json.Marshaler. DependencyGraph's fields are
// unexported (the map representation is an implementation detail, not
// part of the wire contract), so encoding/json needs an explicit escape
// hatch to reach them at all.
func (g *DependencyGraph) MarshalJSON() ([]byte, error) {
	return json.Marshal(graphJSON{Nodes: g.Nodes(), Edges: g.Edges()})
}

// UnmarshalJSON implements json.Unmarshaler, the inverse of MarshalJSON.
func (g *DependencyGraph) UnmarshalJSON(data []byte) error {
	var gj graphJSON
	if err := json.Unmarshal(data, &gj); err != nil {
		return err
	}
	*g = *NewDependencyGraph()
	for _, n := range gj.Nodes {
		g.AddNode(n)
	}
	for _, e := range gj.Edges {
		g.AddEdge(e)
	}
	return nil
}

// IsClosed reports the graph-closure property: every edge endpoint
// exists in the node set.
func (g *DependencyGraph) IsClosed() bool {
	for _, e := range g.edges {
		if !g.HasNode(e.From) || !g.HasNode(e.To) {
			return false
		}
	}
	return true
}

// Package proof implements the Proof/Annotation Store (C15): a
// column-oriented mapping from DAG node id to the sequence of
// ProofAnnotation values pluggable sources have attached to it, with an
// additive (never deduplicating) merge policy.
//
// The store is deliberately source-agnostic: any producer of
// []types.ProofAnnotation can write into the same column store (see
// rustheuristic.go for the one concrete source this module ships), rather
// than hard-coding a single analysis into the annotation shape.
package proof

import (
	"sort"
	"sync"

	"github.com/standardbeagle/tdgraph/internal/types"
)

// Store is the column store: node_id -> []ProofAnnotation. Safe for
// concurrent writers, matching the fan-out shape C13's pipeline runs
// analyzers under.
type Store struct {
	mu   sync.RWMutex
	data map[types.DagNodeID][]types.ProofAnnotation
}

// NewStore returns an empty annotation store.
func NewStore() *Store {
	return &Store{data: make(map[types.DagNodeID][]types.ProofAnnotation)}
}

// Add appends one annotation. Per §4.15's merge policy this is pure
// append: no deduplication, even if an identical annotation already
// exists for the node — callers that care about uniqueness filter on
// read.
func (s *Store) Add(ann types.ProofAnnotation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[ann.NodeID] = append(s.data[ann.NodeID], ann)
}

// AddAll appends every annotation in anns.
func (s *Store) AddAll(anns []types.ProofAnnotation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range anns {
		s.data[a.NodeID] = append(s.data[a.NodeID], a)
	}
}

// Get returns every annotation recorded for id, in insertion order.
func (s *Store) Get(id types.DagNodeID) []types.ProofAnnotation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.ProofAnnotation, len(s.data[id]))
	copy(out, s.data[id])
	return out
}

// FilterOption narrows a Filter call to a source or a confidence floor,
// per §4.15's "consumers may filter by source/confidence".
type FilterOption func(types.ProofAnnotation) bool

// BySource keeps only annotations from the named method.
func BySource(method types.ProofMethod) FilterOption {
	return func(a types.ProofAnnotation) bool { return a.Method == method }
}

// ByMinConfidence keeps only annotations at or above min.
func ByMinConfidence(min float64) FilterOption {
	return func(a types.ProofAnnotation) bool { return a.Confidence >= min }
}

// ByProperty keeps only annotations for the given property.
func ByProperty(prop types.ProofProperty) FilterOption {
	return func(a types.ProofAnnotation) bool { return a.Property == prop }
}

// Filter returns every stored annotation for id matching every opt.
func (s *Store) Filter(id types.DagNodeID, opts ...FilterOption) []types.ProofAnnotation {
	var out []types.ProofAnnotation
	for _, a := range s.Get(id) {
		if matchesAll(a, opts) {
			out = append(out, a)
		}
	}
	return out
}

func matchesAll(a types.ProofAnnotation, opts []FilterOption) bool {
	for _, opt := range opts {
		if !opt(a) {
			return false
		}
	}
	return true
}

// Snapshot returns every (node id, annotations) pair sorted ascending by
// node id, for deterministic serialization alongside the rest of a
// pipeline run's output.
func (s *Store) Snapshot() []NodeAnnotations {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]NodeAnnotations, 0, len(s.data))
	for id, anns := range s.data {
		cp := make([]types.ProofAnnotation, len(anns))
		copy(cp, anns)
		out = append(out, NodeAnnotations{NodeID: id, Annotations: cp})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NodeID < out[j].NodeID })
	return out
}

// NodeAnnotations pairs a node id with its full annotation sequence, the
// shape Snapshot serializes.
type NodeAnnotations struct {
	NodeID      types.DagNodeID
	Annotations []types.ProofAnnotation
}

// Count returns the total number of annotations across every node.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, anns := range s.data {
		n += len(anns)
	}
	return n
}

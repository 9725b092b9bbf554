// Package dag implements the DAG Builder (C4): it collapses a
// types.ProjectContext into a types.DependencyGraph, ranks it with
// PageRank, and prunes/groups it for presentation.
//
// Grounded on XTheocharis-crush's internal/repomap package for the
// PageRank algorithm (see rank.go) and on this module's own
// types.DependencyGraph for the node/edge model §4.4 specifies.
package dag

import (
	"sort"

	"github.com/standardbeagle/tdgraph/internal/types"
)

// itemNodeKind maps an AstItem's kind to the DAG node kind it becomes.
// Import items never become nodes directly; they resolve to Import edges.
func itemNodeKind(k types.ItemKind) (types.NodeKind, bool) {
	switch k {
	case types.ItemFunction:
		return types.NodeFunction, true
	case types.ItemStruct:
		return types.NodeStruct, true
	case types.ItemEnum:
		return types.NodeStruct, true
	case types.ItemTrait:
		return types.NodeTrait, true
	case types.ItemImpl:
		return types.NodeImpl, true
	case types.ItemModule:
		return types.NodeModule, true
	default:
		return 0, false
	}
}

// Build collapses pc into a DependencyGraph per §4.4 steps 1-3: node
// creation, edge extraction, and dedupe (the last handled by
// DependencyGraph.AddEdge summing weights for repeated (from,to,kind)).
func Build(pc *types.ProjectContext) *types.DependencyGraph {
	g := types.NewDependencyGraph()

	// byName indexes every function node by its bare name, for best-effort
	// Call edge resolution; ties are broken by picking the lexicographically
	// smallest node id, so resolution never depends on file iteration order.
	byName := make(map[string][]types.DagNodeID)
	// fileNodeOf maps a file path to its own NodeFile id, for Contains edges.
	fileNodeOf := make(map[string]types.DagNodeID)
	// itemNodeOf resolves an (file, item-name) pair to its node id, for
	// Implements-edge lookups of an impl's target type.
	itemNodeOf := make(map[string]map[string]types.DagNodeID)

	for _, fc := range pc.Files {
		fileID := types.NewDagNodeID(fc.Language, fc.Path, fc.Path)
		fileNodeOf[fc.Path] = fileID
		g.AddNode(types.DagNode{
			ID:           fileID,
			DisplayLabel: fc.Path,
			Kind:         types.NodeFile,
			File:         fc.Path,
		})
		itemNodeOf[fc.Path] = make(map[string]types.DagNodeID)

		for _, item := range fc.Items {
			kind, ok := itemNodeKind(item.Kind)
			if !ok {
				continue
			}
			id := types.NewDagNodeID(fc.Language, fc.Path, item.Name)
			g.AddNode(types.DagNode{
				ID:           id,
				DisplayLabel: item.Name,
				Kind:         kind,
				File:         fc.Path,
				Line:         item.Line,
				Complexity:   item.Cyclomatic,
				Visibility:   item.Visibility,
			})
			itemNodeOf[fc.Path][item.Name] = id
			if item.Kind == types.ItemFunction {
				byName[item.Name] = append(byName[item.Name], id)
			}
			g.AddEdge(types.DagEdge{From: fileID, To: id, Kind: types.EdgeContains, Weight: 1})
		}
	}

	for name := range byName {
		sort.Slice(byName[name], func(i, j int) bool { return byName[name][i] < byName[name][j] })
	}

	for _, fc := range pc.Files {
		fileID := fileNodeOf[fc.Path]
		for _, item := range fc.Items {
			switch item.Kind {
			case types.ItemImport:
				addImportEdge(g, fileID, fc.Language, item)
			case types.ItemFunction:
				callerID := types.NewDagNodeID(fc.Language, fc.Path, item.Name)
				for _, callee := range item.CallNames {
					targets, ok := byName[callee]
					if !ok || len(targets) == 0 {
						continue
					}
					g.AddEdge(types.DagEdge{From: callerID, To: targets[0], Kind: types.EdgeCall, Weight: 1})
				}
			case types.ItemImpl:
				implID := types.NewDagNodeID(fc.Language, fc.Path, item.Name)
				if item.Target == "" {
					continue
				}
				if targetID, ok := itemNodeOf[fc.Path][item.Target]; ok {
					g.AddEdge(types.DagEdge{From: implID, To: targetID, Kind: types.EdgeImplements, Weight: 1})
				} else if targetID, ok := resolveCrossFile(itemNodeOf, item.Target); ok {
					g.AddEdge(types.DagEdge{From: implID, To: targetID, Kind: types.EdgeImplements, Weight: 1})
				}
			}
		}
	}

	return g
}

// addImportEdge resolves an Import item to a pseudo-module node (the
// import target may be external to the project) and records an Import
// edge from the importing file to it.
func addImportEdge(g *types.DependencyGraph, fileID types.DagNodeID, lang types.Language, item types.AstItem) {
	target := item.ImportPath
	if target == "" {
		target = item.Name
	}
	if target == "" {
		return
	}
	targetID := types.NewDagNodeID(lang, "", target)
	if !g.HasNode(targetID) {
		g.AddNode(types.DagNode{ID: targetID, DisplayLabel: target, Kind: types.NodeModule})
	}
	g.AddEdge(types.DagEdge{From: fileID, To: targetID, Kind: types.EdgeImport, Weight: 1})
}

// resolveCrossFile looks for name in any file's item index, returning the
// first match in path-sorted order for determinism.
func resolveCrossFile(itemNodeOf map[string]map[string]types.DagNodeID, name string) (types.DagNodeID, bool) {
	paths := make([]string, 0, len(itemNodeOf))
	for p := range itemNodeOf {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		if id, ok := itemNodeOf[p][name]; ok {
			return id, true
		}
	}
	return "", false
}

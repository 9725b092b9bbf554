package proof

import (
	"github.com/standardbeagle/tdgraph/internal/types"
)

// panicCallNames are the callee names a Rust function body referencing
// any of disqualifies it from the NoPanic annotation — a conservative
// heuristic substitute for a real borrow-checker-grade "BorrowCheck"
// proof method; this source instead tags its evidence
// with MethodHeuristic, since it only inspects the call-name list C2's
// Rust parser already extracts rather than proving anything.
var panicCallNames = map[string]bool{
	"panic":       true,
	"unwrap":      true,
	"expect":      true,
	"unreachable": true,
	"assert":      true,
	"assert_eq":   true,
	"assert_ne":   true,
}

// RustHeuristicSource derives NoPanic, PureFn and ThreadSafe
// ProofAnnotations for every Rust function in pc from the call names,
// cyclomatic count and async flag C2 already attaches to each AstItem,
// without any real data-flow or borrow analysis. It is the one concrete
// proof source this module ships; there is no ProofSource interface
// type, and the pipeline passes its result straight to Store.AddAll.
func RustHeuristicSource(pc *types.ProjectContext) []types.ProofAnnotation {
	var out []types.ProofAnnotation
	for _, fc := range pc.Files {
		if fc.Language != types.LangRust {
			continue
		}
		for _, item := range fc.Items {
			if item.Kind != types.ItemFunction {
				continue
			}
			nodeID := types.NewDagNodeID(fc.Language, fc.Path, item.Name)

			if noPanic := !callsAnyOf(item.CallNames, panicCallNames); noPanic {
				out = append(out, types.ProofAnnotation{
					NodeID:       nodeID,
					Property:     types.PropNoPanic,
					Confidence:   0.5,
					Method:       types.MethodHeuristic,
					EvidenceKind: "no-panic-call-names",
				})
			}

			if item.Cyclomatic <= 1 && len(item.CallNames) == 0 {
				out = append(out, types.ProofAnnotation{
					NodeID:       nodeID,
					Property:     types.PropPureFn,
					Confidence:   0.6,
					Method:       types.MethodHeuristic,
					EvidenceKind: "no-calls-linear-body",
				})
			}

			if !item.IsAsync {
				out = append(out, types.ProofAnnotation{
					NodeID:       nodeID,
					Property:     types.PropThreadSafe,
					Confidence:   0.3,
					Method:       types.MethodHeuristic,
					EvidenceKind: "synchronous-body",
				})
			}
		}
	}
	return out
}

func callsAnyOf(calls []string, set map[string]bool) bool {
	for _, c := range calls {
		if set[c] {
			return true
		}
	}
	return false
}

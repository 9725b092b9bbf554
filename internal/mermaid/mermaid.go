// Package mermaid implements the Deterministic Mermaid Engine (C10): a
// pure function from a types.DependencyGraph to stable Mermaid flowchart
// text (nodes then edges, both in fixed sort order, with a trailing
// complexity-bucket styling block).
//
// Built with direct string formatting and no templating dependency; see
// DESIGN.md's standard-library-only justification for why no third-party
// dependency fits a fixed, escape-heavy text format better than that.
package mermaid

import (
	"fmt"
	"sort"
	"strings"

	"github.com/standardbeagle/tdgraph/internal/types"
)

// complexityBucket classifies a node's complexity into the three bands
// §4.10 step 4 names for the styling block.
type complexityBucket string

const (
	bucketLow  complexityBucket = "low"
	bucketMid  complexityBucket = "mid"
	bucketHigh complexityBucket = "high"
)

func bucketFor(complexity uint32) complexityBucket {
	switch {
	case complexity >= 15:
		return bucketHigh
	case complexity >= 5:
		return bucketMid
	default:
		return bucketLow
	}
}

// arrowFor returns the Mermaid arrow token for one edge kind, per §4.10
// step 3: "-->": Call, "-.->": Import, "==>": Inherits, "--o": Contains.
func arrowFor(kind types.EdgeKind) string {
	switch kind {
	case types.EdgeImport:
		return "-.->"
	case types.EdgeInherits:
		return "==>"
	case types.EdgeContains:
		return "--o"
	case types.EdgeImplements:
		return "-->"
	default: // EdgeCall
		return "-->"
	}
}

// escapeReplacer replaces every Mermaid-reserved character §4.10 step 2
// names with its HTML entity. strings.Replacer substitutes in a single
// pass over the input, so the '&' of an emitted entity is never escaped
// again.
var escapeReplacer = strings.NewReplacer(
	"&", "&amp;",
	"\"", "&quot;",
	"|", "&#124;",
	"<", "&lt;",
	">", "&gt;",
	"{", "&#123;",
	"}", "&#125;",
	"\n", "&#10;",
	"\r", "",
)

// escapeLabel applies the Mermaid escape routine, falling back to a
// prefix of the node id when the label would otherwise render empty.
func escapeLabel(label string, id types.DagNodeID) string {
	escaped := escapeReplacer.Replace(label)
	if strings.TrimSpace(escaped) == "" {
		escaped = string(id)
		if len(escaped) > 8 {
			escaped = escaped[:8]
		}
	}
	return escaped
}

// Render renders g to a complete Mermaid flowchart document. The output
// is a pure function of g: byte-identical across runs and machines, no
// timestamps, no absolute paths, and ends with exactly one trailing
// newline, per §4.10's post-condition.
func Render(g *types.DependencyGraph) string {
	var b strings.Builder
	b.WriteString("graph TD\n")

	nodes := g.Nodes() // already ascending by id
	for _, n := range nodes {
		label := escapeLabel(n.DisplayLabel, n.ID)
		fmt.Fprintf(&b, "  %s[\"%s\"]\n", n.ID, label)
	}

	edges := g.Edges() // already ascending by (from,to,kind)
	for _, e := range edges {
		fmt.Fprintf(&b, "  %s %s %s\n", e.From, arrowFor(e.Kind), e.To)
	}

	writeStyling(&b, nodes)

	return b.String()
}

// writeStyling emits the classDef/class block from §4.10 step 4: one
// classDef per complexity bucket that actually occurs, followed by class
// assignments grouped per bucket, both in sorted order so the block is
// reproducible regardless of map iteration order.
func writeStyling(b *strings.Builder, nodes []types.DagNode) {
	buckets := map[complexityBucket][]types.DagNodeID{}
	for _, n := range nodes {
		bucket := bucketFor(n.Complexity)
		buckets[bucket] = append(buckets[bucket], n.ID)
	}

	present := make([]complexityBucket, 0, 3)
	for _, bucket := range []complexityBucket{bucketLow, bucketMid, bucketHigh} {
		if len(buckets[bucket]) > 0 {
			present = append(present, bucket)
		}
	}
	if len(present) == 0 {
		return
	}

	classDefs := map[complexityBucket]string{
		bucketLow:  "classDef low fill:#d4f7d4,stroke:#2e7d32,color:#1b1b1b;",
		bucketMid:  "classDef mid fill:#fff3cd,stroke:#a67c00,color:#1b1b1b;",
		bucketHigh: "classDef high fill:#f8d7da,stroke:#b02a37,color:#1b1b1b;",
	}
	for _, bucket := range present {
		b.WriteString(classDefs[bucket])
		b.WriteString("\n")
	}
	for _, bucket := range present {
		ids := buckets[bucket]
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		strs := make([]string, len(ids))
		for i, id := range ids {
			strs[i] = string(id)
		}
		fmt.Fprintf(b, "class %s %s;\n", strings.Join(strs, ","), bucket)
	}
}

package parser

import (
	"bytes"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// countLines returns the number of newline-terminated lines in content,
// counting a trailing partial line as one more.
func countLines(content []byte) int {
	if len(content) == 0 {
		return 0
	}
	n := bytes.Count(content, []byte{'\n'})
	if content[len(content)-1] != '\n' {
		n++
	}
	return n
}

// extractCallNames walks root's subtree collecting the best-effort
// callee name of every node whose kind matches callNodeKind (the
// grammar-specific call expression kind), feeding the DAG Builder's
// best-effort Call edge resolution (internal/dag.Build). A callee like
// `pkg.Thing.Method()` contributes only its terminal identifier,
// "Method" — cross-package/receiver resolution isn't attempted, matching
// the DAG builder's own by-bare-name Call edge heuristic.
func extractCallNames(root tree_sitter.Node, content []byte, callNodeKind string) []string {
	var names []string
	var walk func(n tree_sitter.Node)
	walk = func(n tree_sitter.Node) {
		if n.Kind() == callNodeKind {
			if fn := n.ChildByFieldName("function"); fn != nil {
				if name := terminalIdentifier(*fn, content); name != "" {
					names = append(names, name)
				}
			}
		}
		count := n.ChildCount()
		for i := uint(0); i < count; i++ {
			if c := n.Child(i); c != nil {
				walk(*c)
			}
		}
	}
	walk(root)
	return names
}

// terminalIdentifier resolves a call's callee expression to the single
// identifier that names the thing actually being called: the bare name
// for a direct call, or the rightmost segment for a selector/member/
// attribute/field-access expression across Go, Rust, Python, and
// JS/TS's differently-named but structurally similar grammars.
func terminalIdentifier(n tree_sitter.Node, content []byte) string {
	switch n.Kind() {
	case "identifier", "field_identifier", "property_identifier", "type_identifier":
		return string(content[n.StartByte():n.EndByte()])
	}
	for _, field := range []string{"field", "property", "attribute", "name"} {
		if child := n.ChildByFieldName(field); child != nil {
			return terminalIdentifier(*child, content)
		}
	}
	count := n.ChildCount()
	if count > 0 {
		if last := n.Child(count - 1); last != nil {
			return terminalIdentifier(*last, content)
		}
	}
	return ""
}

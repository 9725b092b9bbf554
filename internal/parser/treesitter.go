package parser

import (
	"fmt"
	"strings"
	"unsafe"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// queryCapture is one "primary" (dot-free) named capture from a single
// query match, carrying the node it matched plus the text of every
// dotted sub-capture in the same match (e.g. "function.name",
// "import.path") — tree-sitter's way of attaching a name or sub-field to
// a declaration whose own node kind doesn't expose it as a direct field.
type queryCapture struct {
	Name  string
	Node  tree_sitter.Node
	Extra map[string]string // dotted capture name -> captured text, scoped to this match
}

// sub looks up a dotted sub-capture belonging to c's primary capture,
// e.g. c.sub("name") for "function.name".
func (c queryCapture) sub(suffix string) (string, bool) {
	v, ok := c.Extra[c.Name+"."+suffix]
	return v, ok
}

// runQuery parses content with grammar, executes queryStr against the
// resulting tree, and returns one queryCapture per dot-free capture in
// source order; dotted captures only fill each queryCapture's Extra map.
func runQuery(grammarPtr unsafe.Pointer, queryStr string, content []byte) (*tree_sitter.Tree, []queryCapture, error) {
	language := tree_sitter.NewLanguage(grammarPtr)
	ts := tree_sitter.NewParser()
	defer ts.Close()
	if err := ts.SetLanguage(language); err != nil {
		return nil, nil, fmt.Errorf("set language: %w", err)
	}

	tree := ts.Parse(content, nil)
	if tree == nil {
		return nil, nil, fmt.Errorf("parse produced no tree")
	}

	query, queryErr := tree_sitter.NewQuery(language, queryStr)
	if query == nil {
		return tree, nil, fmt.Errorf("compile query: %v", queryErr)
	}
	defer query.Close()

	cursor := tree_sitter.NewQueryCursor()
	defer cursor.Close()

	matches := cursor.Matches(query, tree.RootNode(), content)
	captureNames := query.CaptureNames()

	var out []queryCapture
	for {
		match := matches.Next()
		if match == nil {
			break
		}
		extra := make(map[string]string, 2)
		for _, c := range match.Captures {
			cn := captureNames[c.Index]
			if strings.Contains(cn, ".") {
				extra[cn] = string(content[c.Node.StartByte():c.Node.EndByte()])
			}
		}
		for _, c := range match.Captures {
			cn := captureNames[c.Index]
			if strings.Contains(cn, ".") {
				continue
			}
			out = append(out, queryCapture{Name: cn, Node: c.Node, Extra: extra})
		}
	}
	return tree, out, nil
}

// nodeName resolves a capture's declared name: prefer the matching
// "<capture>.name" sub-capture from the same match, falling back to the
// node's own "name" field (languages like Go/JS expose it directly).
func nodeName(c queryCapture, content []byte) string {
	if n, ok := c.sub("name"); ok {
		return n
	}
	if nameNode := c.Node.ChildByFieldName("name"); nameNode != nil {
		return string(content[nameNode.StartByte():nameNode.EndByte()])
	}
	return ""
}

func lineOf(n tree_sitter.Node) uint32 {
	return uint32(n.StartPosition().Row) + 1
}

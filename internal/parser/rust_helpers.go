package parser

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/tdgraph/internal/types"
)

// hasChildOfKind reports whether any direct child of node has the given
// node kind, also looking one level into a function_modifiers child:
// Python and TS/JS attach `async` directly to the declaration node, while
// tree-sitter-rust wraps `async`/`const`/`unsafe` in function_modifiers.
func hasChildOfKind(node *tree_sitter.Node, kind string) bool {
	if node == nil {
		return false
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if child.Kind() == kind {
			return true
		}
		if child.Kind() == "function_modifiers" && hasChildOfKind(child, kind) {
			return true
		}
	}
	return false
}

// rustVisibility inspects the item's leading modifier children for a
// visibility_modifier node (tree-sitter-rust's representation of `pub`,
// `pub(crate)`, etc.); anything else defaults to private.
func rustVisibility(node *tree_sitter.Node) types.Visibility {
	if node == nil {
		return types.VisPrivate
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil && child.Kind() == "visibility_modifier" {
			return types.VisPublic
		}
	}
	return types.VisPrivate
}

func countStructFields(node *tree_sitter.Node) uint32 {
	if node == nil {
		return 0
	}
	var count uint32
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if child.Kind() == "field_declaration_list" || child.Kind() == "ordered_field_declaration_list" {
			for j := uint(0); j < child.ChildCount(); j++ {
				if field := child.Child(j); field != nil && (field.Kind() == "field_declaration" || field.Kind() == "ordered_field_declaration") {
					count++
				}
			}
		}
	}
	return count
}

func countEnumVariants(node *tree_sitter.Node) uint32 {
	if node == nil {
		return 0
	}
	var count uint32
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || child.Kind() != "enum_variant_list" {
			continue
		}
		for j := uint(0); j < child.ChildCount(); j++ {
			if variant := child.Child(j); variant != nil && variant.Kind() == "enum_variant" {
				count++
			}
		}
	}
	return count
}

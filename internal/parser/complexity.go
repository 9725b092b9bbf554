package parser

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// complexityRules names the tree-sitter node kinds that contribute to
// cyclomatic and cognitive complexity for one language: a shared walker
// driven by a per-language table, rather than one function with every
// language's node kinds mixed into a single switch.
type complexityRules struct {
	decisionKinds map[string]bool
	nestingKinds  map[string]bool // kinds that add a nesting level for cognitive weight
}

func decisionSet(kinds ...string) map[string]bool {
	m := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		m[k] = true
	}
	return m
}

var rustComplexity = complexityRules{
	decisionKinds: decisionSet(
		"if_expression", "match_arm", "while_expression", "while_let_expression",
		"for_expression", "loop_expression", "&&", "||", "?",
	),
	nestingKinds: decisionSet("if_expression", "while_expression", "for_expression", "loop_expression", "match_expression"),
}

var tsjsComplexity = complexityRules{
	decisionKinds: decisionSet(
		"if_statement", "for_statement", "for_in_statement", "while_statement",
		"do_statement", "switch_case", "ternary_expression", "&&", "||", "catch_clause",
	),
	nestingKinds: decisionSet("if_statement", "for_statement", "for_in_statement", "while_statement", "do_statement", "switch_statement"),
}

var pythonComplexity = complexityRules{
	decisionKinds: decisionSet(
		"if_statement", "elif_clause", "for_statement", "while_statement",
		"except_clause", "and", "or", "list_comprehension", "dictionary_comprehension", "set_comprehension", "generator_expression",
	),
	nestingKinds: decisionSet("if_statement", "elif_clause", "for_statement", "while_statement", "except_clause"),
}

var goComplexity = complexityRules{
	decisionKinds: decisionSet(
		"if_statement", "for_statement", "expression_case", "type_case",
		"communication_case", "&&", "||",
	),
	nestingKinds: decisionSet("if_statement", "for_statement", "select_statement", "switch_statement"),
}

// cyclomaticAndCognitive walks the subtree rooted at node counting decision
// points (cyclomatic, base 1) and nesting-weighted decision points
// (cognitive).
func cyclomaticAndCognitive(node *tree_sitter.Node, rules complexityRules) (uint32, uint32) {
	cyclomatic := uint32(1)
	cognitive := uint32(0)
	walkComplexity(node, rules, 0, &cyclomatic, &cognitive)
	return cyclomatic, cognitive
}

func walkComplexity(node *tree_sitter.Node, rules complexityRules, depth int, cyclomatic, cognitive *uint32) {
	if node == nil {
		return
	}
	kind := node.Kind()
	nextDepth := depth
	if rules.decisionKinds[kind] {
		*cyclomatic++
		*cognitive += 1 + uint32(depth)
	}
	if rules.nestingKinds[kind] {
		nextDepth = depth + 1
	}
	// &&/||/and/or tokens appear as their own anonymous child node
	// (Kind() == "&&" etc.) in every grammar here, so the walk below
	// already visits and counts them via decisionKinds — no separate
	// operator-field check is needed, and adding one would double-count.
	count := node.ChildCount()
	for i := uint(0); i < count; i++ {
		walkComplexity(node.Child(i), rules, nextDepth, cyclomatic, cognitive)
	}
}

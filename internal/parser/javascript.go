package parser

import (
	"context"

	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"

	"github.com/standardbeagle/tdgraph/internal/types"
)

// jsQuery captures function declarations, generators, arrow/function
// expressions assigned to a variable, and class declarations.
const jsQuery = `
        (function_declaration name: (identifier) @function.name) @function
        (generator_function_declaration name: (identifier) @function.name) @function
        (variable_declarator
            name: (identifier) @function.name
            value: [(arrow_function) (function_expression) (generator_function)]) @function
        (method_definition name: (property_identifier) @method.name) @method
        (class_declaration name: (identifier) @class.name) @class
        (import_statement source: (string) @import.source) @import
    `

type JavaScriptStrategy struct{}

func NewJavaScriptStrategy() *JavaScriptStrategy { return &JavaScriptStrategy{} }

func (s *JavaScriptStrategy) LanguageTag() types.Language   { return types.LangJavaScript }
func (s *JavaScriptStrategy) SupportedExtensions() []string { return types.LangJavaScript.Extensions() }

func (s *JavaScriptStrategy) ParseFile(ctx context.Context, path string, content []byte) (types.FileContext, error) {
	items, err := extractTSFamily(tree_sitter_javascript.Language(), jsQuery, content)
	if err != nil {
		return types.FileContext{}, err
	}
	return types.FileContext{Path: path, Language: types.LangJavaScript, Items: items, SourceLines: countLines(content)}, nil
}

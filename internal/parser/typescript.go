package parser

import (
	"context"

	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/standardbeagle/tdgraph/internal/types"
)

// tsQuery captures functions, methods, classes, and interfaces.
const tsQuery = `
        (function_declaration name: (identifier) @function.name) @function
        (generator_function_declaration name: (identifier) @function.name) @function
        (method_definition name: (property_identifier) @method.name) @method
        (function_expression name: (identifier) @function.name) @function
        (class_declaration name: (type_identifier) @class.name) @class
        (interface_declaration name: (type_identifier) @interface.name) @interface
        (enum_declaration name: (identifier) @enum.name) @enum
        (import_statement source: (string) @import.source) @import
    `

type TypeScriptStrategy struct{}

func NewTypeScriptStrategy() *TypeScriptStrategy { return &TypeScriptStrategy{} }

func (s *TypeScriptStrategy) LanguageTag() types.Language   { return types.LangTypeScript }
func (s *TypeScriptStrategy) SupportedExtensions() []string { return types.LangTypeScript.Extensions() }

func (s *TypeScriptStrategy) ParseFile(ctx context.Context, path string, content []byte) (types.FileContext, error) {
	items, err := extractTSFamily(tree_sitter_typescript.LanguageTypescript(), tsQuery, content)
	if err != nil {
		return types.FileContext{}, err
	}
	return types.FileContext{Path: path, Language: types.LangTypeScript, Items: items, SourceLines: countLines(content)}, nil
}

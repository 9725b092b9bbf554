package parser

import (
	"context"
	"strings"

	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"

	"github.com/standardbeagle/tdgraph/internal/types"
)

// goQuery captures functions, methods, and struct/interface declarations.
// Go is a bonus fourth language demonstrating the registry is open for
// extension beyond the three contractually-required languages.
const goQuery = `
        (function_declaration name: (identifier) @function.name) @function
        (method_declaration
            receiver: (parameter_list) @method.receiver
            name: (field_identifier) @method.name) @method
        (type_declaration
            (type_spec name: (type_identifier) @type.name)) @type
        (func_literal) @function
        (import_spec path: (interpreted_string_literal) @import.path) @import
    `

// GoStrategy extracts functions, methods, named types, and imports from
// Go source via tree-sitter-go.
type GoStrategy struct{}

func NewGoStrategy() *GoStrategy { return &GoStrategy{} }

func (s *GoStrategy) LanguageTag() types.Language   { return types.LangGo }
func (s *GoStrategy) SupportedExtensions() []string { return types.LangGo.Extensions() }

func (s *GoStrategy) ParseFile(ctx context.Context, path string, content []byte) (types.FileContext, error) {
	_, captures, err := runQuery(tree_sitter_go.Language(), goQuery, content)
	if err != nil {
		return types.FileContext{}, err
	}

	var items []types.AstItem
	for _, c := range captures {
		if c.Name == "import" {
			importPath, _ := c.sub("path")
			importPath = strings.Trim(importPath, `"`)
			items = append(items, types.AstItem{Kind: types.ItemImport, Name: importPath, Line: lineOf(c.Node), ImportPath: importPath})
			continue
		}

		name := nodeName(c, content)
		if name == "" {
			continue
		}
		switch c.Name {
		case "function", "method":
			cyc, cog := cyclomaticAndCognitive(&c.Node, goComplexity)
			vis := types.VisPrivate
			if len(name) > 0 && name[0] >= 'A' && name[0] <= 'Z' {
				vis = types.VisPublic
			}
			calls := extractCallNames(c.Node, content, "call_expression")
			items = append(items, types.FunctionItem(name, lineOf(c.Node), vis, false, cyc, cog, calls))
		case "type":
			items = append(items, types.AstItem{Kind: types.ItemStruct, Name: name, Line: lineOf(c.Node)})
		}
	}

	return types.FileContext{
		Path:        path,
		Language:    types.LangGo,
		Items:       items,
		SourceLines: countLines(content),
	}, nil
}

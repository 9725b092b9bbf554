package parser

import (
	"context"
	"strings"

	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/standardbeagle/tdgraph/internal/types"
)

// pyQuery captures class-nested methods, top-level functions, and the
// class declaration itself as its own item kind.
const pyQuery = `
        (class_definition
            body: (block
                (function_definition name: (identifier) @method.name))) @method
        (function_definition name: (identifier) @function.name) @function
        (class_definition name: (identifier) @class.name) @class
        (import_statement) @import
        (import_from_statement) @import
    `

type PythonStrategy struct{}

func NewPythonStrategy() *PythonStrategy { return &PythonStrategy{} }

func (s *PythonStrategy) LanguageTag() types.Language   { return types.LangPython }
func (s *PythonStrategy) SupportedExtensions() []string { return types.LangPython.Extensions() }

func (s *PythonStrategy) ParseFile(ctx context.Context, path string, content []byte) (types.FileContext, error) {
	_, captures, err := runQuery(tree_sitter_python.Language(), pyQuery, content)
	if err != nil {
		return types.FileContext{}, err
	}

	var items []types.AstItem
	for _, c := range captures {
		switch c.Name {
		case "function", "method":
			name := nodeName(c, content)
			if name == "" {
				continue
			}
			cyc, cog := cyclomaticAndCognitive(&c.Node, pythonComplexity)
			isAsync := hasChildOfKind(&c.Node, "async")
			vis := types.VisPublic
			if strings.HasPrefix(name, "_") {
				vis = types.VisPrivate
			}
			calls := extractCallNames(c.Node, content, "call")
			items = append(items, types.FunctionItem(name, lineOf(c.Node), vis, isAsync, cyc, cog, calls))
		case "class":
			name := nodeName(c, content)
			if name == "" {
				continue
			}
			items = append(items, types.AstItem{Kind: types.ItemStruct, Name: name, Line: lineOf(c.Node)})
		case "import":
			text := strings.TrimSpace(string(content[c.Node.StartByte():c.Node.EndByte()]))
			items = append(items, types.AstItem{Kind: types.ItemImport, Name: text, Line: lineOf(c.Node), ImportPath: text})
		}
	}

	return types.FileContext{
		Path:        path,
		Language:    types.LangPython,
		Items:       items,
		SourceLines: countLines(content),
	}, nil
}

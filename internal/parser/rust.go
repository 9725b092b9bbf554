package parser

import (
	"context"
	"strings"

	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"

	"github.com/standardbeagle/tdgraph/internal/types"
)

// rustQuery captures fn/struct/enum/trait/impl/mod/use declarations, the
// full item-kind set Rust dependency and dead-code analysis needs.
const rustQuery = `
        (impl_item type: (type_identifier) @impl.target
            body: (declaration_list
                (function_item name: (identifier) @method.name))) @method
        (trait_item name: (type_identifier) @trait.name) @trait
        (function_item name: (identifier) @function.name) @function
        (struct_item name: (type_identifier) @struct.name) @struct
        (enum_item name: (type_identifier) @enum.name) @enum
        (use_declaration) @import
        (mod_item name: (identifier) @module.name) @module
    `

type RustStrategy struct{}

func NewRustStrategy() *RustStrategy { return &RustStrategy{} }

func (s *RustStrategy) LanguageTag() types.Language   { return types.LangRust }
func (s *RustStrategy) SupportedExtensions() []string { return types.LangRust.Extensions() }

func (s *RustStrategy) ParseFile(ctx context.Context, path string, content []byte) (types.FileContext, error) {
	_, captures, err := runQuery(tree_sitter_rust.Language(), rustQuery, content)
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
			cyc, cog := cyclomaticAndCognitive(&c.Node, rustComplexity)
			vis := rustVisibility(&c.Node)
			isAsync := hasChildOfKind(&c.Node, "async")
			calls := extractCallNames(c.Node, content, "call_expression")
			fn := types.FunctionItem(name, lineOf(c.Node), vis, isAsync, cyc, cog, calls)
			if c.Name == "method" {
				if target, ok := c.Extra["impl.target"]; ok {
					fn.Target = target
				}
			}
			items = append(items, fn)
		case "struct":
			name := nodeName(c, content)
			if name == "" {
				continue
			}
			items = append(items, types.AstItem{Kind: types.ItemStruct, Name: name, Line: lineOf(c.Node), FieldCount: countStructFields(&c.Node)})
		case "enum":
			name := nodeName(c, content)
			if name == "" {
				continue
			}
			items = append(items, types.AstItem{Kind: types.ItemEnum, Name: name, Line: lineOf(c.Node), VariantCount: countEnumVariants(&c.Node)})
		case "trait":
			name := nodeName(c, content)
			if name == "" {
				continue
			}
			items = append(items, types.AstItem{Kind: types.ItemTrait, Name: name, Line: lineOf(c.Node)})
		case "module":
			name := nodeName(c, content)
			if name == "" {
				continue
			}
			items = append(items, types.AstItem{Kind: types.ItemModule, Name: name, Line: lineOf(c.Node)})
		case "import":
			text := string(content[c.Node.StartByte():c.Node.EndByte()])
			text = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(text), "use "), ";")
			items = append(items, types.AstItem{Kind: types.ItemImport, Name: text, Line: lineOf(c.Node), ImportPath: text})
		}
	}

	return types.FileContext{
		Path:        path,
		Language:    types.LangRust,
		Items:       items,
		SourceLines: countLines(content),
	}, nil
}


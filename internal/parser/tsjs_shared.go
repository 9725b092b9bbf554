package parser

import (
	"strings"
	"unsafe"

	"github.com/standardbeagle/tdgraph/internal/types"
)

// extractTSFamily extracts AstItems common to the TypeScript and
// JavaScript grammars: function/method declarations, classes,
// interfaces, enums (TS only — absent from the JS query, so harmless
// no-ops there), and imports. Shared because both grammars expose the
// same capture shape for every declaration kind §4.2 requires, differing
// only in the grammar package and query text the caller supplies.
func extractTSFamily(grammarPtr unsafe.Pointer, queryStr string, content []byte) ([]types.AstItem, error) {
	_, captures, err := runQuery(grammarPtr, queryStr, content)
	if err != nil {
		return nil, err
	}

	var items []types.AstItem
	for _, c := range captures {
		switch c.Name {
		case "function", "method":
			name := nodeName(c, content)
			if name == "" {
				continue
			}
			cyc, cog := cyclomaticAndCognitive(&c.Node, tsjsComplexity)
			isAsync := hasChildOfKind(&c.Node, "async")
			vis := types.VisPublic
			if strings.HasPrefix(name, "_") {
				vis = types.VisPrivate
			}
			calls := extractCallNames(c.Node, content, "call_expression")
			items = append(items, types.FunctionItem(name, lineOf(c.Node), vis, isAsync, cyc, cog, calls))
		case "class":
			name := nodeName(c, content)
			if name == "" {
				continue
			}
			items = append(items, types.AstItem{Kind: types.ItemStruct, Name: name, Line: lineOf(c.Node)})
		case "interface":
			name := nodeName(c, content)
			if name == "" {
				continue
			}
			items = append(items, types.AstItem{Kind: types.ItemTrait, Name: name, Line: lineOf(c.Node)})
		case "enum":
			name := nodeName(c, content)
			if name == "" {
				continue
			}
			items = append(items, types.AstItem{Kind: types.ItemEnum, Name: name, Line: lineOf(c.Node)})
		case "import":
			src, _ := c.sub("source")
			src = strings.Trim(src, `"'`)
			items = append(items, types.AstItem{Kind: types.ItemImport, Name: src, Line: lineOf(c.Node), ImportPath: src})
		}
	}
	return items, nil
}

package duplicate

import "regexp"

// tokenPattern splits source into identifier, numeric, and operator/
// punctuation tokens, close enough to a real lexer for shingling purposes
// without needing one of C2's language-specific tree-sitter grammars.
var tokenPattern = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*|[0-9]+(\.[0-9]+)?|[^\sA-Za-z0-9_]`)

// tokenize splits raw source bytes into a flat token stream.
func tokenize(content []byte) []string {
	return tokenPattern.FindAllString(string(content), -1)
}

var keywords = map[string]bool{
	"func": true, "return": true, "if": true, "else": true, "for": true,
	"switch": true, "case": true, "break": true, "continue": true,
	"package": true, "import": true, "var": true, "const": true, "type": true,
	"struct": true, "interface": true, "map": true, "range": true, "go": true,
	"defer": true, "nil": true, "true": true, "false": true, "def": true,
	"class": true, "from": true, "let": true,
	"function": true, "async": true, "await": true, "fn": true, "impl": true,
	"trait": true, "mod": true, "pub": true, "use": true,
}

// normalize replaces every non-keyword identifier with a placeholder so
// two fragments that differ only by identifier renaming (Type-3 clones,
// §4.9) produce the same token stream. Numeric and string literals are
// likewise folded, since renaming a loop variable often comes with
// renumbering its bounds.
func normalize(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		switch {
		case keywords[tok]:
			out = append(out, tok)
		case isIdentifier(tok):
			out = append(out, "\x00ID")
		case isNumeric(tok):
			out = append(out, "\x00NUM")
		default:
			out = append(out, tok)
		}
	}
	return out
}

func isIdentifier(tok string) bool {
	if tok == "" {
		return false
	}
	c := tok[0]
	return c == '_' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func isNumeric(tok string) bool {
	if tok == "" {
		return false
	}
	for _, c := range tok {
		if (c < '0' || c > '9') && c != '.' {
			return false
		}
	}
	return true
}

// Package types holds the data model shared by every analysis stage:
// languages, AST items, file/project contexts, the dependency graph, and
// the report shapes each analyzer produces.
package types

import "strings"

// Language tags a source file with the parser strategy that handles it.
type Language string

const (
	LangRust       Language = "rust"
	LangTypeScript Language = "typescript"
	LangJavaScript Language = "javascript"
	LangPython     Language = "python"
	LangGo         Language = "go"
	LangUnknown    Language = "unknown"
)

// extensionLanguage maps a lowercase file extension (with leading dot) to
// its language. TSX/JSX share their base language's parser.
var extensionLanguage = map[string]Language{
	".rs":  LangRust,
	".ts":  LangTypeScript,
	".tsx": LangTypeScript,
	".js":  LangJavaScript,
	".jsx": LangJavaScript,
	".mjs": LangJavaScript,
	".cjs": LangJavaScript,
	".py":  LangPython,
	".pyi": LangPython,
	".go":  LangGo,
}

// LanguageFromExtension classifies a path by its file extension. It never
// returns an error; unrecognised extensions map to LangUnknown.
func LanguageFromExtension(path string) Language {
	ext := strings.ToLower(extOf(path))
	if lang, ok := extensionLanguage[ext]; ok {
		return lang
	}
	return LangUnknown
}

func extOf(path string) string {
	idx := strings.LastIndexByte(path, '.')
	slash := strings.LastIndexByte(path, '/')
	if idx <= slash {
		return ""
	}
	return path[idx:]
}

// Extensions lists the extensions a language's parser strategy declares
// support for. Order follows map iteration and is not significant.
func (l Language) Extensions() []string {
	var out []string
	for ext, lang := range extensionLanguage {
		if lang == l {
			out = append(out, ext)
		}
	}
	return out
}

func (l Language) String() string { return string(l) }

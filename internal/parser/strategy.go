// Package parser implements the language parser strategies (C2): one
// tree-sitter-backed strategy per language, dispatched through a registry
// that enforces a per-file timeout and size guard before handing bytes to
// any strategy.
//
// Each language owns its own tree-sitter query string and an entry in
// complexity.go's language-parameterized cyclomatic/cognitive walker,
// behind one shared capability-set contract rather than one god-object
// parser with a per-language switch buried inside it.
package parser

import (
	"context"
	"fmt"
	"time"

	"github.com/standardbeagle/tdgraph/internal/errors"
	"github.com/standardbeagle/tdgraph/internal/types"
)

// DefaultTimeout and DefaultMaxSize are the per-file guards enforced
// before any strategy sees file content; both are overridable per Registry.
const (
	DefaultTimeout = 2 * time.Second
	DefaultMaxSize = 5 * 1024 * 1024
)

// Strategy is the capability set every language parser satisfies.
type Strategy interface {
	ParseFile(ctx context.Context, path string, content []byte) (types.FileContext, error)
	SupportedExtensions() []string
	LanguageTag() types.Language
}

// Registry dispatches ParseFile calls to the strategy matching a file's
// detected language, enforcing the timeout and size guard uniformly so no
// individual strategy has to re-implement either.
type Registry struct {
	strategies map[types.Language]Strategy
	Timeout    time.Duration
	MaxSize    int64
}

// NewRegistry builds a Registry with the default timeout/size guard and no
// strategies registered; call Register for each language.
func NewRegistry() *Registry {
	return &Registry{
		strategies: make(map[types.Language]Strategy),
		Timeout:    DefaultTimeout,
		MaxSize:    DefaultMaxSize,
	}
}

// NewDefaultRegistry wires every strategy this module ships: Rust,
// TypeScript, JavaScript, Python, and the bonus Go strategy.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewRustStrategy())
	r.Register(NewTypeScriptStrategy())
	r.Register(NewJavaScriptStrategy())
	r.Register(NewPythonStrategy())
	r.Register(NewGoStrategy())
	return r
}

// Register adds or replaces the strategy for its LanguageTag.
func (r *Registry) Register(s Strategy) {
	r.strategies[s.LanguageTag()] = s
}

// ParseFile enforces the size guard unconditionally, runs the matching
// strategy under a per-call timeout, and never panics: a parse failure, a
// timeout, or a language with no registered strategy produces a
// FileContext with no items and a diagnostic; no error is returned.
func (r *Registry) ParseFile(ctx context.Context, path string, lang types.Language, content []byte) types.FileContext {
	strat, ok := r.strategies[lang]
	if !ok {
		return types.FileContext{
			Path:     path,
			Language: lang,
			Diagnostics: []types.Diagnostic{{
				Kind:    types.DiagParseError,
				File:    path,
				Message: fmt.Sprintf("no parser strategy registered for language %q", lang),
			}},
		}
	}

	if int64(len(content)) > r.MaxSize {
		return types.FileContext{
			Path:     path,
			Language: lang,
			Diagnostics: []types.Diagnostic{{
				Kind:    types.DiagDegraded,
				File:    path,
				Message: fmt.Sprintf("file exceeds max parse size (%d bytes)", r.MaxSize),
			}},
		}
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		fc  types.FileContext
		err error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- result{err: fmt.Errorf("panic in parser strategy: %v", rec)}
			}
		}()
		fc, err := strat.ParseFile(callCtx, path, content)
		done <- result{fc: fc, err: err}
	}()

	select {
	case <-callCtx.Done():
		return types.FileContext{
			Path:     path,
			Language: lang,
			Diagnostics: []types.Diagnostic{{
				Kind:    types.DiagTimeout,
				File:    path,
				Message: errors.New(errors.KindTimeout, "parser.ParseFile", callCtx.Err()).Error(),
			}},
		}
	case r := <-done:
		if r.err != nil {
			return types.FileContext{
				Path:     path,
				Language: lang,
				Diagnostics: []types.Diagnostic{{
					Kind:    types.DiagParseError,
					File:    path,
					Message: errors.New(errors.KindParse, "parser.ParseFile", r.err).WithFile(path).Error(),
				}},
			}
		}
		return r.fc
	}
}

// Package ast implements the Unified AST Engine (C3): it drives discovery
// (internal/classify) and per-language parsing (internal/parser) behind the
// layered cache (internal/cache), and assembles the sorted, deterministic
// types.ProjectContext every downstream analyzer consumes.
//
// Parsing fans out over a bounded worker pool
// (golang.org/x/sync/errgroup.SetLimit) so concurrent file reads don't
// overrun the configured parallelism; discovery itself is one sequential
// directory walk.
package ast

import (
	"context"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/tdgraph/internal/cache"
	"github.com/standardbeagle/tdgraph/internal/classify"
	"github.com/standardbeagle/tdgraph/internal/config"
	"github.com/standardbeagle/tdgraph/internal/errors"
	"github.com/standardbeagle/tdgraph/internal/parser"
	"github.com/standardbeagle/tdgraph/internal/types"

	"lukechampine.com/blake3"
)

// Engine wires discovery, caching, and parsing into one ParseProject call.
type Engine struct {
	Registry *parser.Registry
	Cache    *cache.Cache
}

// New builds an Engine with the default parser registry. cache may be nil,
// in which case every file is parsed uncached.
func New(c *cache.Cache) *Engine {
	return &Engine{Registry: parser.NewDefaultRegistry(), Cache: c}
}

// ParseProject discovers every candidate file under root per cfg's
// include/exclude filters, parses each (cache-checked) under bounded
// concurrency, and returns the sorted, summarized ProjectContext.
func (e *Engine) ParseProject(ctx context.Context, root string, cfg *config.Config) (*types.ProjectContext, error) {
	classifier, err := classify.New(root, classify.Options{Include: cfg.Include, Exclude: cfg.Exclude})
	if err != nil {
		return nil, err
	}
	result, err := classifier.Discover()
	if err != nil {
		return nil, err
	}

	pc := &types.ProjectContext{Root: root}
	for _, skipped := range result.Skipped {
		if skipped.Kind == classify.SkipVendored {
			pc.Diagnostics = append(pc.Diagnostics, types.Diagnostic{
				Kind: types.DiagSkippedVendor,
				File: skipped.Path,
			})
		}
	}

	workers := cfg.ParallelWorkers
	if workers <= 0 {
		workers = 1
	}

	files := make([]types.FileContext, len(result.Candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, candidate := range result.Candidates {
		i, candidate := i, candidate
		g.Go(func() error {
			fc, perr := e.parseOne(gctx, candidate)
			if perr != nil {
				return perr
			}
			files[i] = fc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.New(errors.KindCancellation, "ast.ParseProject", err)
	}

	pc.Files = files
	pc.SortFiles()
	pc.BuildSummary()
	return pc, nil
}

// parseOne reads one candidate's bytes, checks the L1/L2 cache keyed on
// (language, content hash), and parses on miss.
func (e *Engine) parseOne(ctx context.Context, candidate classify.Candidate) (types.FileContext, error) {
	content, err := os.ReadFile(candidate.AbsPath)
	if err != nil {
		return types.FileContext{
			Path:     candidate.Path,
			Language: candidate.Language,
			Diagnostics: []types.Diagnostic{{
				Kind:    types.DiagParseError,
				File:    candidate.Path,
				Message: errors.New(errors.KindParse, "ast.parseOne", err).WithFile(candidate.Path).Error(),
			}},
		}, nil
	}

	contentHash := hashContent(content)

	if e.Cache != nil {
		raw, err := e.Cache.GetOrCompute(ctx, cache.StrategyAST, string(candidate.Language), contentHash, func(ctx context.Context) ([]byte, error) {
			fc := e.Registry.ParseFile(ctx, candidate.Path, candidate.Language, content)
			fc.ContentHash = contentHash
			return encodeFileContext(fc)
		})
		if err == nil {
			fc, decodeErr := decodeFileContext(raw)
			if decodeErr == nil {
				return fc, nil
			}
		}
	}

	fc := e.Registry.ParseFile(ctx, candidate.Path, candidate.Language, content)
	fc.ContentHash = contentHash
	return fc, nil
}

func hashContent(content []byte) string {
	sum := blake3.Sum256(content)
	return hashHex(sum[:16])
}

const hexDigits = "0123456789abcdef"

func hashHex(b []byte) string {
	out := make([]byte, len(b)*2)
	for i, v := range b {
		out[i*2] = hexDigits[v>>4]
		out[i*2+1] = hexDigits[v&0x0f]
	}
	return string(out)
}

// Package pipeline implements the Canonical Pipeline (C13): the single
// ordered entry point, analyze_deep_context. It drives discovery/parsing
// (C3), fans out the independent analyzers (C5 complexity, C6 SATD, C9
// duplicates, C15 proof annotations) and the DAG build (C4) concurrently,
// then runs the analyzers that depend on the DAG (C7 dead-code, C8 TDG)
// once it is ready, and assembles the result into one types.DeepContext.
//
// The fan-out stage uses golang.org/x/sync/errgroup, the same dependency
// internal/ast already uses for its own discover-then-parse fan-out: the
// pipeline's stages are a fixed, known-in-advance set rather than an open
// queue of caller-submitted operations, so a plain errgroup barrier fits
// better than a worker-queue abstraction would. Per-stage timing is
// recorded into types.StageTiming for the caller's cache-hit-rate and
// wall-time reporting.
package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/tdgraph/internal/artifact"
	"github.com/standardbeagle/tdgraph/internal/ast"
	"github.com/standardbeagle/tdgraph/internal/cache"
	"github.com/standardbeagle/tdgraph/internal/complexity"
	"github.com/standardbeagle/tdgraph/internal/config"
	"github.com/standardbeagle/tdgraph/internal/dag"
	"github.com/standardbeagle/tdgraph/internal/deadcode"
	"github.com/standardbeagle/tdgraph/internal/duplicate"
	"github.com/standardbeagle/tdgraph/internal/errors"
	"github.com/standardbeagle/tdgraph/internal/obslog"
	"github.com/standardbeagle/tdgraph/internal/proof"
	"github.com/standardbeagle/tdgraph/internal/satd"
	"github.com/standardbeagle/tdgraph/internal/tdg"
	"github.com/standardbeagle/tdgraph/internal/types"
)

// Pipeline owns the collaborators every stage of analyze_deep_context
// shares: the layered cache, an optional churn source, and the ambient
// logger. A Pipeline is reused across runs; it holds no per-run state.
type Pipeline struct {
	Cache  *cache.Cache
	Churn  tdg.ChurnSource
	Logger *obslog.Logger
}

// New builds a Pipeline. cache and churn may both be nil: a nil cache
// disables the L1/L2 layers (every file is parsed uncached) and a nil
// churn source makes every file's Δ(f) unavailable.
func New(c *cache.Cache, churn tdg.ChurnSource, logger *obslog.Logger) *Pipeline {
	if logger == nil {
		logger = obslog.Discard()
	}
	return &Pipeline{Cache: c, Churn: churn, Logger: logger}
}

// stageTimer records one stage's wall time into timings on Stop.
type stageTimer struct {
	stage    string
	start    time.Time
	timings  *[]types.StageTiming
	cacheHit bool
}

func (p *Pipeline) startStage(timings *[]types.StageTiming, stage string) *stageTimer {
	p.Logger.Debug(stage, "start")
	return &stageTimer{stage: stage, start: time.Now(), timings: timings}
}

func (t *stageTimer) stop() {
	*t.timings = append(*t.timings, types.StageTiming{
		Stage:    t.stage,
		Duration: time.Since(t.start),
		CacheHit: t.cacheHit,
	})
}

// AnalyzeDeepContext runs the full pipeline over root and returns the
// assembled DeepContext, following these ordered steps:
//
//  1. resolve config (apply defaults/validate)
//  2. discover + parse (C3) -> ProjectContext
//  3. fan out: complexity (C5), SATD (C6), duplicates (C9), proof
//     annotations (C15), and the DAG build+rank (C4) all run
//     concurrently since none depends on another's output
//  4. dead-code (C7), which needs the ranked DAG
//  5. TDG (C8), which needs complexity, SATD, the DAG, and duplicates
//  6. assemble the DeepContext
func (p *Pipeline) AnalyzeDeepContext(ctx context.Context, root string, cfg *config.Config) (*types.DeepContext, error) {
	runStart := time.Now()
	if cfg == nil {
		cfg = config.Default()
	}
	if err := config.NewValidator().ValidateAndSetDefaults(cfg); err != nil {
		return nil, err
	}

	var timings []types.StageTiming

	t := p.startStage(&timings, "ast.parse_project")
	engine := ast.New(p.Cache)
	pc, err := engine.ParseProject(ctx, root, cfg)
	t.stop()
	if err != nil {
		return nil, err
	}

	t = p.startStage(&timings, "pipeline.read_sources")
	sources := readSources(root, pc)
	t.stop()

	var (
		complexityReport types.ComplexityReport
		satdItems        []types.SatdItem
		duplicates       types.CloneReport
		proofStore       = proof.NewStore()
		graph            *types.DependencyGraph
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		t := p.startStage(&timings, "complexity.analyze")
		defer t.stop()
		complexityReport = complexity.Analyze(pc, complexityTopN)
		return gctx.Err()
	})

	g.Go(func() error {
		t := p.startStage(&timings, "satd.analyze")
		defer t.stop()
		summary := satd.AnalyzeProject(pc, sources, cfg.SATD.MinSeverity)
		satdItems = summary.Items
		return gctx.Err()
	})

	g.Go(func() error {
		t := p.startStage(&timings, "duplicate.analyze")
		defer t.stop()
		duplicates = duplicate.Analyze(pc, sources)
		return gctx.Err()
	})

	g.Go(func() error {
		t := p.startStage(&timings, "proof.rust_heuristic")
		defer t.stop()
		proofStore.AddAll(proof.RustHeuristicSource(pc))
		return gctx.Err()
	})

	g.Go(func() error {
		t := p.startStage(&timings, "dag.build")
		defer t.stop()
		built := dag.Build(pc)
		ranks := dag.Rank(built)
		for id, score := range ranks {
			if n, ok := built.Node(id); ok {
				n.PageRankScore = score
				built.SetNode(n)
			}
		}
		built = dag.Prune(built, cfg.DAG.TargetNodes, cfg.DAG.EdgeBudget)
		built = dag.Group(built, cfg.DAG.Grouping)
		graph = built
		return gctx.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, errors.New(errors.KindCancellation, "pipeline.fan_out", err)
	}

	t = p.startStage(&timings, "deadcode.analyze")
	deadItems, _ := deadcode.Analyze(graph, cfg.DeadCode.IncludeTests)
	t.stop()

	t = p.startStage(&timings, "tdg.analyze")
	calc := tdg.NewCalculator(cfg, p.Churn)
	scores := tdg.Analyze(calc, pc, graph, complexityReport, satdItems, duplicates)
	t.stop()

	cacheHitRate := 0.0
	if p.Cache != nil {
		cacheHitRate = p.Cache.HitRate()
	}

	dc := &types.DeepContext{
		Metadata: types.Metadata{
			RunID:       uuid.NewString(),
			Root:        root,
			GeneratedAt: runStart,
			Config:      summarizeConfig(cfg),
		},
		Summary:      pc.Summary,
		Files:        pc.Files,
		Dag:          graph,
		Complexity:   complexityReport,
		Satd:         satd.Summarize(satdItems),
		DeadCode:     deadItems,
		Tdg:          scores,
		Duplicates:   duplicates,
		Proof:        flattenProof(proofStore),
		Diagnostics:  pc.Diagnostics,
		Timings:      timings,
		CacheHitRate: cacheHitRate,
	}
	return dc, nil
}

// AnalyzeAndWrite runs AnalyzeDeepContext and persists its renderings
// (per cfg.Output.Formats) to outputDir via internal/artifact's
// atomic-write-then-manifest discipline.
func (p *Pipeline) AnalyzeAndWrite(ctx context.Context, root, outputDir string, cfg *config.Config) (*types.DeepContext, artifact.Manifest, error) {
	dc, err := p.AnalyzeDeepContext(ctx, root, cfg)
	if err != nil {
		return nil, artifact.Manifest{}, err
	}

	w, err := artifact.NewWriter(outputDir)
	if err != nil {
		return dc, artifact.Manifest{}, err
	}

	formats := cfg.Output.Formats
	if len(formats) == 0 {
		formats = []string{"markdown"}
	}
	for _, format := range formats {
		rendered, relPath, err := Render(dc, format)
		if err != nil {
			return dc, artifact.Manifest{}, err
		}
		if err := w.Write(relPath, rendered); err != nil {
			return dc, artifact.Manifest{}, err
		}
	}

	manifest, err := w.Finalize()
	return dc, manifest, err
}

const complexityTopN = 25

func readSources(root string, pc *types.ProjectContext) map[string][]byte {
	out := make(map[string][]byte, len(pc.Files))
	for _, fc := range pc.Files {
		content, err := os.ReadFile(filepath.Join(root, fc.Path))
		if err != nil {
			continue
		}
		out[fc.Path] = content
	}
	return out
}

// flattenProof converts the Store's per-node grouping into the flat,
// NodeID-ordered slice types.DeepContext carries.
func flattenProof(store *proof.Store) []types.ProofAnnotation {
	snap := store.Snapshot()
	var out []types.ProofAnnotation
	for _, na := range snap {
		out = append(out, na.Annotations...)
	}
	return out
}

func summarizeConfig(cfg *config.Config) map[string]string {
	return map[string]string{
		"dag.grouping": string(cfg.DAG.Grouping),
		"satd.min_severity": string(cfg.SATD.MinSeverity),
	}
}

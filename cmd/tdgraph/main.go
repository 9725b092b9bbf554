// Command tdgraph is the CLI surface for the source-intelligence
// pipeline: `context`, `analyze {complexity|dag|dead-code|satd|tdg|
// deep-context|duplicates}`, `demo`, and `serve`, with exit codes 0
// (success), 1 (analysis error), 2 (usage error), 3 (quality-gate
// failure).
//
// Built on urfave/cli/v2: an App with a shared config-loading-plus-
// flag-override helper (the KDL config is read from <root>/.tdgraph.kdl),
// global --root/--include/--exclude/--format/--output/--no-cache/--quiet
// flags, and os/signal-driven context cancellation for long-running
// commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/tdgraph/internal/cache"
	"github.com/standardbeagle/tdgraph/internal/churn"
	"github.com/standardbeagle/tdgraph/internal/config"
	"github.com/standardbeagle/tdgraph/internal/obslog"
	"github.com/standardbeagle/tdgraph/internal/pipeline"
	"github.com/standardbeagle/tdgraph/internal/version"
)

const (
	exitSuccess      = 0
	exitAnalysisErr  = 1
	exitUsageErr     = 2
	exitQualityGate  = 3
)

func main() {
	app := &cli.App{
		Name:    "tdgraph",
		Usage:   "deterministic multi-language source-code intelligence",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "root", Aliases: []string{"r"}, Value: ".", Usage: "project root to analyze"},
			&cli.StringSliceFlag{Name: "include", Usage: "include glob (repeatable)"},
			&cli.StringSliceFlag{Name: "exclude", Usage: "exclude glob (repeatable)"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "markdown", Usage: "output format: markdown|json|sarif|mermaid"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "directory to persist rendered artifacts into (optional; used by analyze deep-context)"},
			&cli.BoolFlag{Name: "no-cache", Usage: "disable the layered cache"},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "suppress diagnostic logging"},
		},
		Commands: []*cli.Command{
			contextCommand(),
			analyzeCommand(),
			demoCommand(),
			serveCommand(),
		},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if code, ok := err.(exitCoder); ok {
			os.Exit(code.ExitCode())
		}
		os.Exit(exitAnalysisErr)
	}
}

// exitCoder lets a command's returned error carry a specific exit code
// (e.g. exitQualityGate) through urfave/cli's error path.
type exitCoder interface {
	error
	ExitCode() int
}

type codedError struct {
	err  error
	code int
}

func (e codedError) Error() string { return e.err.Error() }
func (e codedError) ExitCode() int { return e.code }

func usageError(format string, args ...interface{}) error {
	return codedError{err: fmt.Errorf(format, args...), code: exitUsageErr}
}

func analysisError(err error) error {
	return codedError{err: err, code: exitAnalysisErr}
}

// buildPipeline resolves root/config from cli flags and wires a
// Pipeline with the layered cache and, if root is a git repository, a
// real churn source.
func buildPipeline(c *cli.Context) (*pipeline.Pipeline, string, *config.Config, error) {
	root, err := filepath.Abs(c.String("root"))
	if err != nil {
		return nil, "", nil, usageError("resolve root: %v", err)
	}

	cfg, err := config.LoadKDL(root)
	if err != nil {
		return nil, "", nil, usageError("load config: %v", err)
	}
	if include := c.StringSlice("include"); len(include) > 0 {
		cfg.Include = include
	}
	if exclude := c.StringSlice("exclude"); len(exclude) > 0 {
		cfg.Exclude = append(cfg.Exclude, exclude...)
	}
	if format := c.String("format"); format != "" {
		cfg.Output.Formats = []string{format}
	}

	logger := obslog.New(os.Stderr, obslog.LevelInfo)
	if c.Bool("quiet") {
		logger.SetQuiet(true)
	}

	var ch *cache.Cache
	if cfg.CacheEnabled && !c.Bool("no-cache") {
		cacheDir := cfg.CacheDir
		if !filepath.IsAbs(cacheDir) {
			cacheDir = filepath.Join(root, cacheDir)
		}
		ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
		ch, err = cache.New(cache.Options{L2Dir: cacheDir, TTL: ttl})
		if err != nil {
			logger.Warn("cli", "cache disabled: %v", err)
			ch = nil
		}
	}

	var churnSource *churn.GitSource
	if src, err := churn.NewGitSource(c.Context, root); err == nil {
		churnSource = src
	}

	var p *pipeline.Pipeline
	if churnSource != nil {
		p = pipeline.New(ch, churnSource, logger)
	} else {
		p = pipeline.New(ch, nil, logger)
	}
	return p, root, cfg, nil
}

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/tdgraph/internal/config"
	"github.com/standardbeagle/tdgraph/internal/pipeline"
	"github.com/standardbeagle/tdgraph/internal/types"
)

// analyzeCommand implements `tdgraph analyze {complexity|dag|dead-code|
// satd|tdg|deep-context|duplicates}`. Every subcommand runs the full
// pipeline (the cheapest stages are inexpensive and the DAG-dependent
// ones need it anyway) and prints just the requested section, selected
// after the run rather than by building N partial pipelines.
func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "run one analysis and print its result",
		Subcommands: []*cli.Command{
			analysisSubcommand("complexity", func(dc *types.DeepContext) interface{} { return dc.Complexity }),
			analysisSubcommand("dag", func(dc *types.DeepContext) interface{} { return dc.Dag }),
			analysisSubcommand("dead-code", func(dc *types.DeepContext) interface{} { return dc.DeadCode }),
			analysisSubcommand("satd", func(dc *types.DeepContext) interface{} { return dc.Satd }),
			analysisSubcommand("tdg", func(dc *types.DeepContext) interface{} { return dc.Tdg }),
			analysisSubcommand("duplicates", func(dc *types.DeepContext) interface{} { return dc.Duplicates }),
			deepContextSubcommand(),
		},
	}
}

func analysisSubcommand(name string, extract func(*types.DeepContext) interface{}) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: fmt.Sprintf("run the %s analysis", name),
		Action: func(c *cli.Context) error {
			dc, err := runAnalysis(c)
			if err != nil {
				return err
			}
			return emitJSON(extract(dc))
		},
	}
}

// deepContextSubcommand additionally enforces the quality gate (exit
// code 3): any TDG score at TDGCritical severity, or any
// function exceeding the configured complexity thresholds, fails the
// gate after the report is printed. With --output it also writes the
// rendered artifacts and their manifest into that directory.
func deepContextSubcommand() *cli.Command {
	return &cli.Command{
		Name:  "deep-context",
		Usage: "run the full analysis and print the assembled report",
		Action: func(c *cli.Context) error {
			p, root, cfg, err := buildPipeline(c)
			if err != nil {
				return err
			}
			var dc *types.DeepContext
			if outDir := c.String("output"); outDir != "" {
				dc, _, err = p.AnalyzeAndWrite(c.Context, root, outDir, cfg)
			} else {
				dc, err = p.AnalyzeDeepContext(c.Context, root, cfg)
			}
			if err != nil {
				return analysisError(err)
			}

			format := c.String("format")
			rendered, _, err := pipeline.Render(dc, format)
			if err != nil {
				return usageError("%v", err)
			}
			if _, err := os.Stdout.Write(rendered); err != nil {
				return analysisError(err)
			}

			if reason, failed := qualityGateFailure(dc, cfg); failed {
				return codedError{err: fmt.Errorf("quality gate failed: %s", reason), code: exitQualityGate}
			}
			return nil
		},
	}
}

// qualityGateFailure implements the exit-code-3 condition: any
// file at TDG-critical severity, or any function exceeding the
// configured complexity ceiling, fails the gate.
func qualityGateFailure(dc *types.DeepContext, cfg *config.Config) (string, bool) {
	for _, score := range dc.Tdg {
		if score.Severity == types.TDGCritical {
			return fmt.Sprintf("%s has a critical technical debt gradient (%.3f)", score.File, score.Value), true
		}
	}
	for _, fn := range dc.Complexity.Hotspots {
		if fn.Cyclomatic > cfg.Complexity.MaxCyclomatic || fn.Cognitive > cfg.Complexity.MaxCognitive {
			return fmt.Sprintf("%s:%d %s exceeds the configured complexity ceiling", fn.File, fn.Line, fn.Name), true
		}
	}
	return "", false
}

func runAnalysis(c *cli.Context) (*types.DeepContext, error) {
	p, root, cfg, err := buildPipeline(c)
	if err != nil {
		return nil, err
	}
	dc, err := p.AnalyzeDeepContext(c.Context, root, cfg)
	if err != nil {
		return nil, analysisError(err)
	}
	return dc, nil
}

func emitJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

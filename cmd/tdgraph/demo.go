package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/tdgraph/internal/pipeline"
)

// demoCommand implements `tdgraph demo`: runs the full pipeline over
// --root (defaulting to the current directory) and prints a markdown
// report, for a zero-configuration first look at the tool.
func demoCommand() *cli.Command {
	return &cli.Command{
		Name:  "demo",
		Usage: "analyze the current project and print a markdown summary",
		Action: func(c *cli.Context) error {
			p, root, cfg, err := buildPipeline(c)
			if err != nil {
				return err
			}
			cfg.Output.Formats = []string{"markdown"}

			fmt.Fprintf(os.Stderr, "analyzing %s...\n", root)
			dc, err := p.AnalyzeDeepContext(c.Context, root, cfg)
			if err != nil {
				return analysisError(err)
			}

			rendered, _, err := pipeline.Render(dc, "markdown")
			if err != nil {
				return analysisError(err)
			}
			_, err = os.Stdout.Write(rendered)
			return err
		},
	}
}

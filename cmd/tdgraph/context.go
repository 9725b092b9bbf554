package main

import (
	"encoding/json"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/tdgraph/internal/ast"
)

// contextCommand implements `tdgraph context`: discovery + parsing only
// (C1-C3), printing the unified AST forest without running any
// downstream analyzer.
func contextCommand() *cli.Command {
	return &cli.Command{
		Name:  "context",
		Usage: "parse the project into the unified AST forest",
		Action: func(c *cli.Context) error {
			p, root, cfg, err := buildPipeline(c)
			if err != nil {
				return err
			}
			engine := ast.New(p.Cache)
			pc, err := engine.ParseProject(c.Context, root, cfg)
			if err != nil {
				return analysisError(err)
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(pc)
		},
	}
}

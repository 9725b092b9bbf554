package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/tdgraph/internal/httpapi"
	"github.com/standardbeagle/tdgraph/internal/rpcapi"
)

// serveCommand implements `tdgraph serve`: an HTTP REST server by
// default, or the JSON-RPC stdio surface with --stdio.
func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "serve the HTTP or JSON-RPC stdio surface",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Value: ":8080", Usage: "HTTP listen address"},
			&cli.BoolFlag{Name: "stdio", Usage: "serve JSON-RPC 2.0 over stdin/stdout instead of HTTP"},
		},
		Action: func(c *cli.Context) error {
			p, _, _, err := buildPipeline(c)
			if err != nil {
				return err
			}

			if c.Bool("stdio") {
				server := rpcapi.NewServer(p, p.Logger)
				return server.Serve(c.Context, os.Stdin, os.Stdout)
			}

			addr := c.String("addr")
			server := httpapi.NewServer(p, p.Logger)
			fmt.Fprintf(os.Stderr, "tdgraph serving on %s\n", addr)
			if err := httpapi.Serve(c.Context, addr, server.Handler()); err != nil && err != http.ErrServerClosed {
				return analysisError(err)
			}
			return nil
		},
	}
}

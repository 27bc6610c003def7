package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/gritql/internal/mcpserver"
)

var mcpCommand = &cli.Command{
	Name:  "mcp",
	Usage: "serve compile_pattern/apply_pattern/check_pattern over MCP on stdio",
	Action: func(c *cli.Context) error {
		cfg, err := loadProjectConfig(c)
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		return mcpserver.NewServer(cfg, languages).Run(ctx)
	},
}

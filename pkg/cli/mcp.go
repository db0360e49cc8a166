package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/vast-data/vast-admin-mcp/pkg/logging"
	"github.com/vast-data/vast-admin-mcp/pkg/mcp"
)

func (a *app) mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the list commands as MCP tools over stdio",
		Description: `Speaks JSON-RPC 2.0 (Model Context Protocol) on stdin/stdout. Each list
command is exposed as a list_<command>_vast tool, next to list_clusters_vast,
list_fields_vast and describe_tool_vast. Logs go to stderr as JSON.`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			// stdout carries protocol traffic only
			logging.SetDefaultStructuredLoggerWithLevel(name, version, cmd.String("log-level"))

			runner, err := a.runner(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			var in io.Reader = os.Stdin
			if a.stdin != nil {
				in = a.stdin
			}
			return mcp.NewServer(name, version, runner, runner.Set(), in, a.out()).Run(ctx)
		},
	}
}

package cli

import (
	"context"

	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"

	"github.com/vast-data/vast-admin-mcp/pkg/api"
	"github.com/vast-data/vast-admin-mcp/pkg/server"
)

func (a *app) serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the list commands over HTTP",
		Description: `Starts the HTTP API:

  GET  /v1/commands          command metadata
  GET  /v1/commands/{name}   one command's arguments and fields
  POST /v1/commands/{name}   run a command; the body is a JSON object of arguments
  GET  /v1/clusters          configured clusters
  GET  /health, /ready, /metrics

PORT and LOG_LEVEL are honored when the flags are not given.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "address",
				Usage: "listen address (default: all interfaces)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "listen port (default: PORT or 8080)",
			},
			&cli.FloatFlag{
				Name:  "rate-limit",
				Usage: "requests per second across all clients (default: 100)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			runner, err := a.runner(cmd)
			if err != nil {
				return err
			}

			cfg := server.DefaultConfig()
			if cmd.IsSet("address") {
				cfg.Address = cmd.String("address")
			}
			if cmd.IsSet("port") {
				cfg.Port = int(cmd.Int("port"))
			}
			if cmd.IsSet("rate-limit") {
				cfg.RateLimit = rate.Limit(cmd.Float("rate-limit"))
			}
			if cmd.IsSet("log-level") {
				cfg.LogLevel = cmd.String("log-level")
			}
			return api.Serve(ctx, runner, cfg)
		},
	}
}

package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/vast-data/vast-admin-mcp/pkg/config"
)

const redacted = "********"

func (a *app) configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Inspect the cluster config",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print the cluster config with passwords redacted",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Value: config.FormatJSON,
						Usage: "config format (json, yaml, toml)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					loader := config.NewLoader(cmd.String("config"), nil)
					cfg, err := loader.Load(ctx)
					if err != nil {
						return err
					}

					out := &config.Config{Clusters: make([]config.Cluster, len(cfg.Clusters))}
					for i, cl := range cfg.Clusters {
						if cl.Password != "" {
							cl.Password = redacted
						}
						out.Clusters[i] = cl
					}

					data, err := config.Marshal(out, cmd.String("format"))
					if err != nil {
						return err
					}
					slog.Debug("showing cluster config", "location", loader.Location())
					_, err = fmt.Fprintf(a.out(), "%s\n", data)
					return err
				},
			},
		},
	}
}

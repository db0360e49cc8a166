package cli

import (
	"context"

	"github.com/urfave/cli/v3"
)

func (a *app) clustersCmd() *cli.Command {
	return &cli.Command{
		Name:      "clusters",
		Usage:     "List configured clusters",
		ArgsUsage: "[name|address ...]",
		Description: `Lists the clusters of the cluster config, or the named subset. Passwords
are never shown.`,
		Flags: []cli.Flag{
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			runner, err := a.runner(cmd)
			if err != nil {
				return err
			}
			rows, err := runner.Clusters(ctx, cmd.Args().Slice()...)
			if err != nil {
				return err
			}
			return a.writeOutput(ctx, cmd, rows)
		},
	}
}

package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	vaerrors "github.com/vast-data/vast-admin-mcp/pkg/errors"
	"github.com/vast-data/vast-admin-mcp/pkg/executor"
)

func (a *app) fieldsCmd() *cli.Command {
	return &cli.Command{
		Name:      "fields",
		Usage:     "List the output fields of a command",
		ArgsUsage: "<command>",
		Flags: []cli.Flag{
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			set, err := a.templates()
			if err != nil {
				return err
			}
			command := cmd.Args().First()
			if command == "" {
				return vaerrors.New(vaerrors.ErrCodeInvalidArgument, "a command name is required")
			}
			if _, ok := set.Command(command); !ok {
				if _, ok := set.Merged(command); !ok {
					return vaerrors.Newf(vaerrors.ErrCodeCommandNotFound, "Unknown command: %s", command)
				}
			}
			fields := set.Fields(command)
			rows := make([]*executor.Row, 0, len(fields))
			for _, f := range fields {
				row := executor.NewRow()
				row.Set("name", f.Name)
				row.Set("type", f.Type)
				row.Set("api_field", f.APIField)
				row.Set("description", f.Description)
				rows = append(rows, row)
			}
			return a.writeOutput(ctx, cmd, rows)
		},
	}
}

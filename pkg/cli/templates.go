package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	vaerrors "github.com/vast-data/vast-admin-mcp/pkg/errors"
	"github.com/vast-data/vast-admin-mcp/pkg/template"
)

func (a *app) templatesCmd() *cli.Command {
	return &cli.Command{
		Name:  "templates",
		Usage: "Inspect the template documents",
		Commands: []*cli.Command{
			{
				Name:  "validate",
				Usage: "Load and validate the template documents",
				Description: `Merges the default and modification documents and validates the result.
Prints "ok", or every problem as "path: Kind - detail" and exits non-zero.`,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "all",
						Usage: "print every problem instead of the first",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					if a.setErr == nil {
						fmt.Fprintln(a.out(), "ok")
						return nil
					}
					problems := template.Problems(a.setErr)
					if len(problems) == 0 {
						return a.setErr
					}
					if !cmd.Bool("all") {
						problems = problems[:1]
					}
					for _, p := range problems {
						fmt.Fprintln(a.out(), p.Error())
					}
					return vaerrors.Newf(vaerrors.ErrCodeConfig, "template validation failed with %d problem(s)",
						len(template.Problems(a.setErr)))
				},
			},
			{
				Name:      "show",
				Usage:     "Print the expanded description of a command",
				ArgsUsage: "<command>",
				Action: func(_ context.Context, cmd *cli.Command) error {
					set, err := a.templates()
					if err != nil {
						return err
					}
					command := cmd.Args().First()
					if _, ok := set.Command(command); !ok {
						if _, ok := set.Merged(command); !ok {
							return vaerrors.Newf(vaerrors.ErrCodeCommandNotFound, "Unknown command: %s", command)
						}
					}
					fmt.Fprintln(a.out(), set.Description(command))
					return nil
				},
			},
			{
				Name:  "commands",
				Usage: "List the command names",
				Action: func(_ context.Context, _ *cli.Command) error {
					set, err := a.templates()
					if err != nil {
						return err
					}
					for _, n := range set.CommandNames() {
						fmt.Fprintln(a.out(), n)
					}
					for _, n := range set.MergedNames() {
						fmt.Fprintln(a.out(), n+" (merged)")
					}
					return nil
				},
			},
		},
	}
}

package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/urfave/cli/v3"

	vaerrors "github.com/vast-data/vast-admin-mcp/pkg/errors"
	"github.com/vast-data/vast-admin-mcp/pkg/executor"
	"github.com/vast-data/vast-admin-mcp/pkg/template"
)

// reservedFlags are flag names the generated list commands own; template
// arguments with these names are only reachable through --arg.
var reservedFlags = []string{
	"output", "o", "format", "f", "arg", "help", "h",
	executor.ArgCluster, executor.ArgClusters, executor.ArgOrder, executor.ArgTop, executor.ArgInstance,
}

// listCmd holds one subcommand per template command and merged command.
func (a *app) listCmd() *cli.Command {
	cmd := &cli.Command{
		Name:  "list",
		Usage: "Run a list command across clusters",
		Description: `Runs a list command defined by the template documents. Every command
argument is a flag; filter arguments accept the filter grammar, for example:

  vast-admin-mcp list views --name 'prod*' --logical_used '>1TB' --order logical_used:desc --top 10

Arguments without a dedicated flag can be passed as --arg key=value.`,
		Action: func(_ context.Context, _ *cli.Command) error {
			set, err := a.templates()
			if err != nil {
				return err
			}
			names := append(set.CommandNames(), set.MergedNames()...)
			return vaerrors.Newf(vaerrors.ErrCodeInvalidArgument, "a command is required, one of: %v", names)
		},
	}

	set, err := a.templates()
	if err != nil {
		return cmd
	}
	for _, n := range set.CommandNames() {
		cmd.Commands = append(cmd.Commands, a.commandCmd(set, n, set.Arguments(n)))
	}
	for _, n := range set.MergedNames() {
		cmd.Commands = append(cmd.Commands, a.commandCmd(set, n, set.MergedArguments(n)))
	}
	return cmd
}

func (a *app) commandCmd(set *template.Set, command string, args []template.ArgumentInfo) *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:  executor.ArgCluster,
			Usage: "cluster names or addresses, comma-separated (default: all configured clusters)",
		},
		&cli.StringFlag{
			Name:  executor.ArgOrder,
			Usage: "ordering, e.g. name or logical_used:desc,name",
		},
		&cli.IntFlag{
			Name:  executor.ArgTop,
			Usage: "keep only the first N rows",
		},
		&cli.BoolFlag{
			Name:  executor.ArgInstance,
			Usage: "attach the source object to every row",
		},
		&cli.StringSliceFlag{
			Name:  "arg",
			Usage: "extra argument as key=value (can be repeated)",
		},
		outputFlag(),
		formatFlag(),
	}

	seen := slices.Clone(reservedFlags)
	var argFlags []string
	for _, arg := range args {
		if slices.Contains(seen, arg.Name) {
			continue
		}
		seen = append(seen, arg.Name)

		var aliases []string
		for _, al := range arg.Aliases {
			if !slices.Contains(seen, al) {
				seen = append(seen, al)
				aliases = append(aliases, al)
			}
		}
		flags = append(flags, &cli.StringFlag{
			Name:     arg.Name,
			Aliases:  aliases,
			Usage:    firstLine(arg.Description),
			Required: arg.Mandatory,
		})
		argFlags = append(argFlags, arg.Name)
	}

	description := set.Description(command)
	return &cli.Command{
		Name:        command,
		Usage:       firstLine(description),
		Description: description,
		Flags:       flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			invocation, err := parseKeyValues(cmd.StringSlice("arg"))
			if err != nil {
				return vaerrors.Wrap(vaerrors.ErrCodeInvalidArgument, "invalid --arg", err)
			}
			for _, n := range argFlags {
				if cmd.IsSet(n) {
					invocation[n] = cmd.String(n)
				}
			}
			if cmd.IsSet(executor.ArgCluster) {
				invocation[executor.ArgCluster] = cmd.String(executor.ArgCluster)
			}
			if cmd.IsSet(executor.ArgOrder) {
				invocation[executor.ArgOrder] = cmd.String(executor.ArgOrder)
			}
			if cmd.IsSet(executor.ArgTop) {
				invocation[executor.ArgTop] = int(cmd.Int(executor.ArgTop))
			}
			if cmd.Bool(executor.ArgInstance) {
				invocation[executor.ArgInstance] = true
			}

			runner, err := a.runner(cmd)
			if err != nil {
				return err
			}
			rows, err := runner.Execute(ctx, command, invocation)
			if err != nil {
				return fmt.Errorf("%s: %w", command, err)
			}
			return a.writeOutput(ctx, cmd, rows)
		},
	}
}

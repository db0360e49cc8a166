package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/vast-data/vast-admin-mcp/pkg/client"
	"github.com/vast-data/vast-admin-mcp/pkg/config"
	"github.com/vast-data/vast-admin-mcp/pkg/defaults"
	vaerrors "github.com/vast-data/vast-admin-mcp/pkg/errors"
	"github.com/vast-data/vast-admin-mcp/pkg/fanout"
	"github.com/vast-data/vast-admin-mcp/pkg/logging"
	"github.com/vast-data/vast-admin-mcp/pkg/serializer"
	"github.com/vast-data/vast-admin-mcp/pkg/template"
)

const name = "vast-admin-mcp"

var (
	// overridden during build with ldflags
	// e.g., -X "github.com/vast-data/vast-admin-mcp/pkg/cli.version=1.0.0"
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "output file path (default: stdout)",
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   string(serializer.FormatTable),
		Usage:   "output format (" + strings.Join(serializer.SupportedFormats(), ", ") + ")",
	}
}

// app carries what the commands share: the loaded template set and the
// process streams.
type app struct {
	set    *template.Set
	setErr error

	// dial overrides the REST transport; nil in production.
	dial client.Dialer

	stdin  io.Reader
	stdout io.Writer
}

// Execute runs the CLI with os.Args and exits non-zero on failure.
func Execute() {
	a := newApp(os.Args[1:])
	a.stdin = os.Stdin

	if err := a.rootCmd().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// newApp loads the template documents named by args, the environment or
// the defaults. A load failure is kept so that commands not needing
// templates still work and "templates validate" can report it.
func newApp(args []string) *app {
	base, override := templatePaths(args)
	set, err := loadTemplates(base, override)
	return &app{set: set, setErr: err}
}

func templatePaths(args []string) (base, override string) {
	base = defaults.DefaultTemplateFile()
	if v, ok := peekFlag(args, "default-template"); ok {
		base = v
	}
	override = defaults.TemplateModificationsFile()
	if v, ok := peekFlag(args, "template"); ok {
		override = v
	}
	return base, override
}

func loadTemplates(base, override string) (*template.Set, error) {
	if base == "" {
		return template.LoadWithDefault(override)
	}
	return template.LoadFiles(base, override)
}

func (a *app) rootCmd() *cli.Command {
	return &cli.Command{
		Name:                  name,
		Usage:                 "Query VAST clusters through declarative list commands",
		Version:               fmt.Sprintf("%s (commit: %s, date: %s, %s)", version, commit, date, runtime.Version()),
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Sources: cli.EnvVars(defaults.EnvConfigFile),
				Usage:   "cluster config file (.json, .yaml, .toml) or cm://namespace/name",
			},
			&cli.StringFlag{
				Name:    "template",
				Sources: cli.EnvVars(defaults.EnvTemplateModsFile),
				Usage:   "template modifications document merged over the default",
			},
			&cli.StringFlag{
				Name:    "default-template",
				Sources: cli.EnvVars(defaults.EnvDefaultTemplateFile),
				Usage:   "default template document (default: embedded)",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Sources: cli.EnvVars(logging.EnvLogLevel),
				Usage:   "log level (debug, info, warn, error)",
			},
			&cli.IntFlag{
				Name:    "parallelism",
				Value:   1,
				Sources: cli.EnvVars(defaults.EnvFanoutParallelism),
				Usage:   "number of clusters queried at once",
			},
			&cli.StringFlag{
				Name:  "kubeconfig",
				Usage: "kubeconfig used to read cm://namespace/name cluster configs (default: KUBECONFIG, ~/.kube/config, in-cluster)",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logging.SetDefaultLoggerWithLevel(name, version, cmd.String("log-level"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			a.listCmd(),
			a.clustersCmd(),
			a.fieldsCmd(),
			a.templatesCmd(),
			a.configCmd(),
			a.serveCmd(),
			a.mcpCmd(),
		},
	}
}

// templates returns the loaded template set or the load error.
func (a *app) templates() (*template.Set, error) {
	if a.setErr != nil {
		return nil, a.setErr
	}
	return a.set, nil
}

func (a *app) out() io.Writer {
	if a.stdout != nil {
		return a.stdout
	}
	return os.Stdout
}

// runner builds a fan-out runner over the cluster config named by --config.
func (a *app) runner(cmd *cli.Command) (*fanout.Runner, error) {
	set, err := a.templates()
	if err != nil {
		return nil, err
	}

	cache := config.NewCache()
	var opts []config.LoaderOption
	if kc := cmd.String("kubeconfig"); kc != "" {
		kube, err := config.BuildKubeClient(kc)
		if err != nil {
			return nil, vaerrors.Wrap(vaerrors.ErrCodeConfig, "failed to create kubernetes client", err)
		}
		opts = append(opts, config.WithKubeClient(kube))
	}
	loader := config.NewLoader(cmd.String("config"), cache, opts...)

	resolver := client.NewResolver(loader, cache, a.dial)
	return fanout.New(set, resolver, fanout.WithParallelism(int(cmd.Int("parallelism")))), nil
}

// exitCode maps usage errors to 2 and everything else to 1.
func exitCode(err error) int {
	var se *vaerrors.StructuredError
	if errors.As(err, &se) {
		switch se.Code {
		case vaerrors.ErrCodeInvalidArgument, vaerrors.ErrCodeCommandNotFound:
			return 2
		}
	}
	return 1
}

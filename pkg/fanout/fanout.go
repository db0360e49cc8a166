package fanout

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vast-data/vast-admin-mcp/pkg/client"
	"github.com/vast-data/vast-admin-mcp/pkg/defaults"
	vaerrors "github.com/vast-data/vast-admin-mcp/pkg/errors"
	"github.com/vast-data/vast-admin-mcp/pkg/executor"
	"github.com/vast-data/vast-admin-mcp/pkg/filter"
	"github.com/vast-data/vast-admin-mcp/pkg/template"
)

// Runner runs commands across clusters.
type Runner struct {
	set         *template.Set
	resolver    *client.Resolver
	parallelism int
	apiOpts     []client.Option
	execOpts    []executor.Option
}

// Option configures a Runner.
type Option func(*Runner)

// WithParallelism sets how many clusters run at once. Values below 1 mean
// sequential.
func WithParallelism(n int) Option {
	return func(r *Runner) {
		r.parallelism = max(1, n)
	}
}

// WithAPIOptions passes options to every cluster API.
func WithAPIOptions(opts ...client.Option) Option {
	return func(r *Runner) {
		r.apiOpts = append(r.apiOpts, opts...)
	}
}

// WithExecutorOptions passes options to every executor.
func WithExecutorOptions(opts ...executor.Option) Option {
	return func(r *Runner) {
		r.execOpts = append(r.execOpts, opts...)
	}
}

// ParallelismFromEnv reads VAST_ADMIN_MCP_PARALLELISM, defaulting to 1.
func ParallelismFromEnv() int {
	v := os.Getenv(defaults.EnvFanoutParallelism)
	if v == "" {
		return 1
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		slog.Warn("invalid parallelism, running clusters sequentially",
			"env", defaults.EnvFanoutParallelism, "value", v)
		return 1
	}
	return n
}

// New returns a Runner.
func New(set *template.Set, resolver *client.Resolver, opts ...Option) *Runner {
	r := &Runner{
		set:         set,
		resolver:    resolver,
		parallelism: 1,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Set returns the template set the runner executes.
func (r *Runner) Set() *template.Set {
	return r.set
}

// Execute runs a command or a merged command.
func (r *Runner) Execute(ctx context.Context, name string, args map[string]any) ([]*executor.Row, error) {
	if _, ok := r.set.Merged(name); ok {
		return r.RunMerged(ctx, name, args)
	}
	return r.Run(ctx, name, args)
}

// Run executes command on every requested cluster, or on every configured
// cluster when args name none. Rows are concatenated in cluster order, then
// ordered on raw values and cut to top.
func (r *Runner) Run(ctx context.Context, command string, args map[string]any) ([]*executor.Row, error) {
	cmd, ok := r.set.Command(command)
	if !ok {
		return nil, r.commandNotFound(command)
	}

	rows, err := r.run(ctx, command, args)
	if err != nil {
		return nil, err
	}
	return finish(rows, executor.OrderSpecs(cmd, args), args), nil
}

// RunMerged runs each source command of a merged command and aligns their
// rows on the union of their fields.
func (r *Runner) RunMerged(ctx context.Context, name string, args map[string]any) ([]*executor.Row, error) {
	m, ok := r.set.Merged(name)
	if !ok {
		return nil, r.commandNotFound(name)
	}

	var fields []string
	for _, f := range r.set.Fields(name) {
		fields = append(fields, executor.CanonicalName(f.Name))
	}
	var all []*executor.Row
	for _, fn := range m.Functions {
		rows, err := r.run(ctx, fn, r.sourceArgs(fn, args))
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			all = append(all, align(row, fields))
		}
	}
	return finish(all, executor.OrderSpecs(nil, args), args), nil
}

// sourceArgs keeps the arguments a source command understands.
func (r *Runner) sourceArgs(command string, args map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		switch k {
		case executor.ArgCluster, executor.ArgClusters, executor.ArgOrder,
			executor.ArgInstance, executor.ArgOutputFormat, executor.ArgTenantID:
			out[k] = v
			continue
		}
		if _, ok := r.set.Argument(command, k); ok {
			out[k] = v
		}
	}
	return out
}

// run executes one command per target and concatenates the rows with raw
// values still attached.
func (r *Runner) run(ctx context.Context, command string, args map[string]any) ([]*executor.Row, error) {
	start := time.Now()
	session := client.NewSession(r.resolver, client.Whitelist(r.set.Whitelist()), r.apiOpts...)

	targets, err := r.targets(ctx, session, args)
	if err != nil {
		return nil, err
	}

	results := make([][]*executor.Row, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallelism)
	for i, t := range targets {
		g.Go(func() error {
			rows, err := r.runOne(gctx, session, t, command, args)
			if err != nil {
				if vaerrors.IsHard(err) {
					return err
				}
				clustersTotal.WithLabelValues("skipped").Inc()
				slog.Warn("cluster failed, skipping",
					"command", command,
					"cluster", t.Name,
					"error", err)
				return nil
			}
			clustersTotal.WithLabelValues("success").Inc()
			results[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// a cancelled pass is not a set of per-cluster failures
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []*executor.Row
	for _, rows := range results {
		out = append(out, rows...)
	}
	runDuration.Observe(time.Since(start).Seconds())
	slog.Debug("fan-out complete",
		"command", command,
		"clusters", len(targets),
		"rows", len(out))
	return out, nil
}

func (r *Runner) runOne(ctx context.Context, s *client.Session, t client.Target, command string, args map[string]any) ([]*executor.Row, error) {
	api, err := s.API(ctx, t)
	if err != nil {
		return nil, err
	}
	clusterArgs := maps.Clone(args)
	if clusterArgs == nil {
		clusterArgs = map[string]any{}
	}
	delete(clusterArgs, executor.ArgClusters)
	clusterArgs[executor.ArgCluster] = t.Name

	opts := append([]executor.Option{executor.WithCluster(t.Name)}, r.execOpts...)
	return executor.New(r.set, api, opts...).Execute(ctx, command, clusterArgs)
}

// targets resolves the cluster argument. Unresolvable clusters are skipped;
// if none resolves the call fails.
func (r *Runner) targets(ctx context.Context, s *client.Session, args map[string]any) ([]client.Target, error) {
	ids := ClusterIDs(args)
	if len(ids) == 0 {
		cfg, err := s.Config(ctx)
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		ids = cfg.Addresses()
	}

	var (
		out     []client.Target
		lastErr error
		seen    = make(map[string]bool)
	)
	for _, id := range ids {
		t, err := s.Resolve(ctx, id)
		if err != nil {
			if vaerrors.IsCode(err, vaerrors.ErrCodeConfig) {
				return nil, err
			}
			clustersTotal.WithLabelValues("unresolved").Inc()
			slog.Warn("cluster not resolved, skipping", "cluster", id, "error", err)
			lastErr = err
			continue
		}
		if seen[t.Address()] {
			continue
		}
		seen[t.Address()] = true
		out = append(out, t)
	}

	if len(out) == 0 {
		return nil, vaerrors.Wrap(vaerrors.ErrCodeInvalidArgument,
			fmt.Sprintf("no cluster could be resolved from %s", strings.Join(ids, ", ")), lastErr)
	}
	return out, nil
}

// ClusterIDs returns the clusters named by the cluster or clusters
// argument, as a comma-separated string or a list.
func ClusterIDs(args map[string]any) []string {
	var ids []string
	for _, key := range []string{executor.ArgCluster, executor.ArgClusters} {
		var items []string
		switch v := args[key].(type) {
		case string:
			items = strings.Split(v, ",")
		case []string:
			items = v
		case []any:
			for _, it := range v {
				items = append(items, strings.Split(filter.ToString(it), ",")...)
			}
		}
		for _, id := range items {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

func (r *Runner) commandNotFound(name string) error {
	candidates := append(r.set.CommandNames(), r.set.MergedNames()...)
	msg := fmt.Sprintf("Unknown command: %s", name)
	if s := executor.Suggest(name, candidates); s != "" {
		msg += fmt.Sprintf(". Did you mean %q?", s)
	}
	return vaerrors.New(vaerrors.ErrCodeCommandNotFound, msg)
}

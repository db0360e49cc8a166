package executor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/agnivade/levenshtein"

	"github.com/vast-data/vast-admin-mcp/pkg/defaults"
	vaerrors "github.com/vast-data/vast-admin-mcp/pkg/errors"
	"github.com/vast-data/vast-admin-mcp/pkg/filter"
	"github.com/vast-data/vast-admin-mcp/pkg/template"
)

// Reserved argument names handled by the engine instead of the upstream.
const (
	ArgOrder        = "order"
	ArgTop          = "top"
	ArgInstance     = "instance"
	ArgOutputFormat = "_output_format"
	ArgCluster      = "cluster"
	ArgClusters     = "clusters"
	ArgTenantID     = "tenant_id"
)

// InstanceKey holds the pre-transform row when the instance argument is set.
const InstanceKey = "instance"

// Caller is the upstream view of one cluster. *client.API implements it.
type Caller interface {
	Call(ctx context.Context, endpoint, method string, params map[string]any, tenant string) ([]map[string]any, error)
}

// Executor runs list commands from a template set against one cluster.
type Executor struct {
	set       *template.Set
	api       Caller
	cluster   string
	jqTimeout time.Duration
	now       func() time.Time
}

// Option configures an Executor.
type Option func(*Executor)

// WithCluster sets the cluster name substituted for $(cluster) when the
// invocation does not name one.
func WithCluster(name string) Option {
	return func(e *Executor) {
		e.cluster = name
	}
}

// WithJQTimeout bounds each jq evaluation.
func WithJQTimeout(d time.Duration) Option {
	return func(e *Executor) {
		if d > 0 {
			e.jqTimeout = d
		}
	}
}

// WithClock replaces the clock used by time_delta conversion.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) {
		if now != nil {
			e.now = now
		}
	}
}

// New returns an Executor for set that calls the upstream through api.
func New(set *template.Set, api Caller, opts ...Option) *Executor {
	e := &Executor{
		set:       set,
		api:       api,
		jqTimeout: defaults.JQTimeout,
		now:       time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// run is the state of one Execute call as it moves through the stages.
type run struct {
	cmd     *template.Command
	args    map[string]any
	params  map[string]map[string]any
	tenant  string
	filters []*localFilter
	// lateOrder is set when an order key is only known after Transform.
	lateOrder []filter.OrderSpec
	data      map[string][]map[string]any
	rows      []map[string]any
	records   []*record
	out       []*Row
}

// Execute runs command with args and returns the materialized rows. The
// stages run in a fixed order: Validate, MapArgs, FetchRaw, FilterRaw, Join,
// PerRowFetch, Order, Transform, FilterComputed, Materialize. Per-endpoint
// and per-row upstream failures degrade to empty results; everything else
// aborts.
func (e *Executor) Execute(ctx context.Context, command string, args map[string]any) ([]*Row, error) {
	start := time.Now()
	cmd, ok := e.set.Command(command)
	if !ok {
		commandsTotal.WithLabelValues("not_found").Inc()
		return nil, e.commandNotFound(command)
	}

	r := &run{cmd: cmd}
	stages := []struct {
		name string
		fn   func(context.Context, *run) error
	}{
		{"validate", e.validate},
		{"map_args", e.mapArgs},
		{"fetch_raw", e.fetchRaw},
		{"filter_raw", e.filterRaw},
		{"join", e.join},
		{"per_row_fetch", e.perRowFetch},
		{"order", e.order},
		{"transform", e.transform},
		{"filter_computed", e.filterComputed},
		{"materialize", e.materialize},
	}

	r.args = e.normalizeArgs(cmd, args)
	for _, s := range stages {
		stageStart := time.Now()
		err := s.fn(ctx, r)
		stageDuration.WithLabelValues(s.name).Observe(time.Since(stageStart).Seconds())
		if err != nil {
			commandsTotal.WithLabelValues("error").Inc()
			slog.Debug("command aborted",
				"command", command,
				"cluster", e.cluster,
				"stage", s.name,
				"error", err)
			return nil, err
		}
	}

	commandsTotal.WithLabelValues("success").Inc()
	slog.Debug("command executed",
		"command", command,
		"cluster", e.cluster,
		"rows", len(r.out),
		"duration", time.Since(start))
	return r.out, nil
}

func (e *Executor) commandNotFound(name string) error {
	msg := fmt.Sprintf("Unknown command: %s", name)
	if s := Suggest(name, e.set.CommandNames()); s != "" {
		msg += fmt.Sprintf(". Did you mean %q?", s)
	}
	return vaerrors.New(vaerrors.ErrCodeCommandNotFound, msg)
}

// Suggest returns the candidate closest to name by edit distance, or "" when
// none is within a third of the name's length.
func Suggest(name string, candidates []string) string {
	best, bestDist := "", -1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(name, c)
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	if bestDist < 0 || bestDist > max(1, len(name)/3) {
		return ""
	}
	return best
}

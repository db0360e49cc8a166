package client

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/vast-data/vast-admin-mcp/pkg/defaults"
	vaerrors "github.com/vast-data/vast-admin-mcp/pkg/errors"
	"github.com/vast-data/vast-admin-mcp/pkg/filter"
)

// HTTP verbs accepted by Call.
const (
	MethodGet    = "get"
	MethodPost   = "post"
	MethodPatch  = "patch"
	MethodDelete = "delete"
)

const (
	paramPage         = "page"
	paramPageSize     = "page_size"
	paramOutputFormat = "_output_format"

	envelopeResults = "results"
	envelopeTotal   = "total"
)

// Request is one upstream call.
type Request struct {
	Endpoint string
	Method   string
	Params   map[string]any
	Tenant   string
}

// Caller performs a single upstream request and returns the decoded body:
// a map, a list or nil.
type Caller interface {
	Do(ctx context.Context, req Request) (any, error)
}

// CallerFunc adapts a function to Caller.
type CallerFunc func(ctx context.Context, req Request) (any, error)

// Do calls f.
func (f CallerFunc) Do(ctx context.Context, req Request) (any, error) {
	return f(ctx, req)
}

// API is the whitelist-checked, paginating view of one cluster.
type API struct {
	caller       Caller
	whitelist    Whitelist
	pageSize     int
	nonPaginated []string
	cluster      string
}

// Option configures an API.
type Option func(*API)

// WithPageSize overrides the page size requested from paginating endpoints.
func WithPageSize(n int) Option {
	return func(a *API) {
		if n > 0 {
			a.pageSize = n
		}
	}
}

// WithNonPaginated replaces the list of endpoints called exactly once.
func WithNonPaginated(endpoints ...string) Option {
	return func(a *API) {
		a.nonPaginated = endpoints
	}
}

// WithCluster labels log records with the cluster the API talks to.
func WithCluster(name string) Option {
	return func(a *API) {
		a.cluster = name
	}
}

// New returns an API issuing requests through caller.
func New(caller Caller, wl Whitelist, opts ...Option) *API {
	a := &API{
		caller:       caller,
		whitelist:    wl,
		pageSize:     defaults.PageSize,
		nonPaginated: defaults.NonPaginatedEndpoints,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Cluster returns the label set by WithCluster.
func (a *API) Cluster() string {
	return a.cluster
}

// Call checks the whitelist, issues the request and normalizes the response
// to a list of rows. GET requests against paginating endpoints fetch every
// page.
func (a *API) Call(ctx context.Context, endpoint, method string, params map[string]any, tenant string) ([]map[string]any, error) {
	method = strings.ToLower(method)
	if method == "" {
		method = MethodGet
	}
	if err := a.whitelist.Check(endpoint, method); err != nil {
		return nil, err
	}

	params = maps.Clone(params)
	if params == nil {
		params = map[string]any{}
	}
	delete(params, paramOutputFormat)

	start := time.Now()
	var (
		rows []map[string]any
		err  error
	)
	if method == MethodGet && !a.isNonPaginated(endpoint) {
		rows, err = a.paginate(ctx, endpoint, params, tenant)
	} else {
		var body any
		body, err = a.caller.Do(ctx, Request{Endpoint: endpoint, Method: method, Params: params, Tenant: tenant})
		if err == nil {
			rows = normalize(body)
		}
	}
	apiCallDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())

	if err != nil {
		apiCallsTotal.WithLabelValues(method, "error").Inc()
		return nil, upstreamError(endpoint, method, err)
	}
	apiCallsTotal.WithLabelValues(method, "success").Inc()

	slog.Debug("api call complete",
		"cluster", a.cluster,
		"endpoint", endpoint,
		"method", method,
		"rows", len(rows),
		"duration", time.Since(start))
	return rows, nil
}

func (a *API) paginate(ctx context.Context, endpoint string, params map[string]any, tenant string) ([]map[string]any, error) {
	if _, ok := params[paramPageSize]; !ok {
		params[paramPageSize] = a.pageSize
	}

	var all []map[string]any
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		params[paramPage] = page
		body, err := a.caller.Do(ctx, Request{Endpoint: endpoint, Method: MethodGet, Params: maps.Clone(params), Tenant: tenant})
		if err != nil {
			return nil, err
		}
		apiPagesTotal.Inc()

		switch v := body.(type) {
		case map[string]any:
			results, ok := v[envelopeResults]
			if !ok {
				return append(all, v), nil
			}
			pageRows := rowsOf(results)
			all = append(all, pageRows...)

			total := len(pageRows)
			if n, ok := filter.ToInt(v[envelopeTotal]); ok {
				total = int(n)
			}
			if len(all) >= total || len(pageRows) == 0 {
				return all, nil
			}
		case []any, []map[string]any:
			return append(all, rowsOf(v)...), nil
		case nil:
			return all, nil
		default:
			slog.Warn("unexpected response shape",
				"cluster", a.cluster,
				"endpoint", endpoint,
				"type", fmt.Sprintf("%T", body))
			return all, nil
		}
	}
}

// isNonPaginated reports whether endpoint must be called exactly once:
// a configured endpoint or a monitors.{id}.query style sub-endpoint.
func (a *API) isNonPaginated(endpoint string) bool {
	if slices.Contains(a.nonPaginated, endpoint) {
		return true
	}
	return strings.HasPrefix(endpoint, "monitors.") &&
		strings.Contains(endpoint, ".query") &&
		strings.Count(endpoint, ".") >= 2
}

// normalize turns a response body into rows: an envelope yields its
// results, an object yields itself and a list yields its elements.
func normalize(body any) []map[string]any {
	switch v := body.(type) {
	case map[string]any:
		if results, ok := v[envelopeResults]; ok {
			return rowsOf(results)
		}
		return []map[string]any{v}
	case []any:
		return rowsOf(v)
	case []map[string]any:
		return v
	default:
		return nil
	}
}

// rowsOf converts a decoded list to rows. Scalars are wrapped as
// {"value": v}.
func rowsOf(v any) []map[string]any {
	switch list := v.(type) {
	case []map[string]any:
		return list
	case []any:
		out := make([]map[string]any, 0, len(list))
		for _, it := range list {
			if m, ok := it.(map[string]any); ok {
				out = append(out, m)
			} else {
				out = append(out, map[string]any{"value": it})
			}
		}
		return out
	default:
		return nil
	}
}

func upstreamError(endpoint, method string, err error) error {
	if vaerrors.CodeOf(err) != vaerrors.ErrCodeInternal {
		return err
	}
	return vaerrors.WrapWithContext(vaerrors.ErrCodeUpstream,
		"upstream call failed", err,
		map[string]any{"endpoint": endpoint, "method": method})
}

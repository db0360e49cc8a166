package client

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/vast-data/vast-admin-mcp/pkg/config"
	"github.com/vast-data/vast-admin-mcp/pkg/defaults"
	vaerrors "github.com/vast-data/vast-admin-mcp/pkg/errors"
	"github.com/vast-data/vast-admin-mcp/pkg/filter"
)

const clustersEndpoint = "clusters"

// ConfigSource supplies the current cluster configuration. *config.Loader
// implements it.
type ConfigSource interface {
	Load(ctx context.Context) (*config.Config, error)
}

type staticSource struct {
	cfg *config.Config
}

func (s staticSource) Load(context.Context) (*config.Config, error) {
	return s.cfg, nil
}

// StaticConfig returns a ConfigSource that always yields cfg.
func StaticConfig(cfg *config.Config) ConfigSource {
	return staticSource{cfg: cfg}
}

// Target is a resolved cluster.
type Target struct {
	Cluster config.Cluster
	// Name is the configured name, the name learned from the cluster
	// itself, or the address when neither is known.
	Name string
}

// Address returns the cluster address.
func (t Target) Address() string {
	return t.Cluster.Address
}

// Resolver maps cluster names and addresses to configured clusters.
// Names that are not configured are looked up by querying the clusters
// whose address or name partially matches; what it learns is cached.
type Resolver struct {
	source ConfigSource
	cache  *config.Cache
	dial   Dialer
	ttl    time.Duration
}

// NewResolver returns a resolver. A nil cache gets a private one; a nil
// dial uses REST callers with default settings.
func NewResolver(src ConfigSource, cache *config.Cache, dial Dialer) *Resolver {
	if cache == nil {
		cache = config.NewCache()
	}
	if dial == nil {
		dial = DialREST()
	}
	return &Resolver{source: src, cache: cache, dial: dial, ttl: defaults.ClusterNameCacheTTL}
}

// Config returns the current configuration.
func (r *Resolver) Config(ctx context.Context) (*config.Config, error) {
	return r.source.Load(ctx)
}

// Resolve finds the cluster identified by id, a configured address or name,
// or a name reported by one of the configured clusters.
func (r *Resolver) Resolve(ctx context.Context, id string) (Target, error) {
	return r.resolve(ctx, id, r.dial)
}

func (r *Resolver) resolve(ctx context.Context, id string, dial Dialer) (Target, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Target{}, vaerrors.New(vaerrors.ErrCodeInvalidArgument, "cluster name or address is required")
	}

	cfg, err := r.source.Load(ctx)
	if err != nil {
		return Target{}, err
	}

	if cl, ok := cfg.Lookup(id); ok {
		clusterResolutionsTotal.WithLabelValues("config").Inc()
		return r.target(cl), nil
	}

	if v, ok := r.cache.Get(config.NamespaceClusterNames, id); ok {
		if cl, ok := cfg.ByAddress(v.(string)); ok {
			clusterResolutionsTotal.WithLabelValues("cache").Inc()
			return Target{Cluster: cl, Name: id}, nil
		}
	}

	if looksLikeAddress(id) {
		clusterResolutionsTotal.WithLabelValues("error").Inc()
		return Target{}, notFound(id)
	}

	candidates := potentialMatches(cfg, id)
	if len(candidates) == 0 {
		clusterResolutionsTotal.WithLabelValues("error").Inc()
		return Target{}, vaerrors.Newf(vaerrors.ErrCodeInvalidArgument,
			"Cluster %s not found in config and no potential matches to query.", id)
	}

	for _, cl := range candidates {
		names, err := r.clusterNames(ctx, cl, dial)
		if err != nil {
			slog.Warn("failed to query cluster names",
				"cluster", cl.Address,
				"error", err)
			continue
		}
		if slices.Contains(names, id) {
			clusterResolutionsTotal.WithLabelValues("query").Inc()
			return Target{Cluster: cl, Name: id}, nil
		}
	}

	clusterResolutionsTotal.WithLabelValues("error").Inc()
	return Target{}, notFound(id)
}

func (r *Resolver) target(cl config.Cluster) Target {
	name := cl.Name
	if name == "" {
		if v, ok := r.cache.Get(config.NamespaceClusterAddrs, cl.Address); ok {
			name, _ = v.(string)
		}
	}
	if name == "" {
		name = cl.Address
	}
	return Target{Cluster: cl, Name: name}
}

// clusterNames asks cl for the names it reports and caches them in both
// directions.
func (r *Resolver) clusterNames(ctx context.Context, cl config.Cluster, dial Dialer) ([]string, error) {
	caller, err := dial(ctx, cl)
	if err != nil {
		return nil, err
	}

	api := New(caller, Whitelist{clustersEndpoint: {MethodGet}}, WithCluster(cl.Address))
	rows, err := api.Call(ctx, clustersEndpoint, MethodGet, nil, "")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, row := range rows {
		name := filter.ToString(row["name"])
		if name == "" {
			continue
		}
		names = append(names, name)
		r.cache.Set(config.NamespaceClusterNames, name, cl.Address, r.ttl)
		r.cache.Set(config.NamespaceClusterAddrs, cl.Address, name, r.ttl)
	}
	return names, nil
}

// looksLikeAddress reports whether id is an IP address, host name or
// numeric id rather than a cluster name.
func looksLikeAddress(id string) bool {
	if strings.ContainsAny(id, ".:") {
		return true
	}
	stripped := strings.NewReplacer("-", "", "_", "").Replace(id)
	if stripped == "" {
		return false
	}
	for _, c := range stripped {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// potentialMatches returns clusters whose address or name contains id or is
// contained in it.
func potentialMatches(cfg *config.Config, id string) []config.Cluster {
	lid := strings.ToLower(id)
	related := func(s string) bool {
		s = strings.ToLower(s)
		return s != "" && (strings.Contains(s, lid) || strings.Contains(lid, s))
	}

	var out []config.Cluster
	for _, cl := range cfg.Clusters {
		if related(cl.Address) || related(cl.Name) {
			out = append(out, cl)
		}
	}
	return out
}

func notFound(id string) error {
	return vaerrors.WrapWithContext(vaerrors.ErrCodeInvalidArgument,
		"Cluster "+id+" not found in config.", nil,
		map[string]any{"cluster": id})
}

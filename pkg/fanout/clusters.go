package fanout

import (
	"context"
	"strings"

	"github.com/vast-data/vast-admin-mcp/pkg/config"
	vaerrors "github.com/vast-data/vast-admin-mcp/pkg/errors"
	"github.com/vast-data/vast-admin-mcp/pkg/executor"
)

// Clusters lists the configured clusters, or the named subset. Passwords are
// never listed.
func (r *Runner) Clusters(ctx context.Context, names ...string) ([]*executor.Row, error) {
	cfg, err := r.resolver.Config(ctx)
	if err != nil {
		return nil, err
	}

	clusters := cfg.Clusters
	if len(names) > 0 {
		clusters = nil
		var missing []string
		for _, n := range names {
			cl, ok := cfg.Lookup(n)
			if !ok {
				missing = append(missing, n)
				continue
			}
			clusters = append(clusters, cl)
		}
		if len(missing) > 0 {
			return nil, vaerrors.WrapWithContext(vaerrors.ErrCodeInvalidArgument,
				"Unknown clusters: "+strings.Join(missing, ", "), nil,
				map[string]any{"available": cfg.Addresses()})
		}
	}

	out := make([]*executor.Row, 0, len(clusters))
	for _, cl := range clusters {
		out = append(out, clusterRow(cl))
	}
	return out, nil
}

func clusterRow(cl config.Cluster) *executor.Row {
	row := executor.NewRow()
	row.Set("cluster", cl.Address)
	row.Set("name", cl.DisplayName())
	row.Set("tenant", cl.Tenant)
	row.Set("user_type", cl.UserType)
	row.Set("vast_version", cl.VastVersion)
	row.Set("super_admin", cl.IsSuperAdmin())
	return row
}

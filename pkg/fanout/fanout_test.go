package fanout

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vast-data/vast-admin-mcp/pkg/client"
	"github.com/vast-data/vast-admin-mcp/pkg/config"
	vaerrors "github.com/vast-data/vast-admin-mcp/pkg/errors"
	"github.com/vast-data/vast-admin-mcp/pkg/executor"
	"github.com/vast-data/vast-admin-mcp/pkg/template"
)

const fanoutDoc = `
api_whitelist: [views, quotas]
list_cmds:
  views:
    api_endpoints: [views]
    description: Views.
    fields:
      - name: cluster
      - name: name
        argument:
          type: str
          filter: true
      - name: logical used
        field: logical_capacity
        convert: AUTO
  quotas:
    api_endpoints: [quotas]
    description: Quotas.
    fields:
      - name: cluster
      - name: name
      - name: hard limit
        field: hard_limit
        convert: AUTO
      - name: owner
        hide: true
  denied:
    api_endpoints: [snapshots]
    description: Not whitelisted.
    fields:
      - name: name
merged_list_cmds:
  - name: everything
    functions: [views, quotas]
    description: |
      Views and quotas.
        {{$arguments}}
      {{$fields}}
`

var fanoutConfig = &config.Config{Clusters: []config.Cluster{
	{Address: "10.0.0.1", Name: "a", Username: "u"},
	{Address: "10.0.0.2", Name: "b", Username: "u"},
	{Address: "10.0.0.3", Name: "c", Username: "u"},
}}

type fakeClusters struct {
	mu    sync.Mutex
	data  map[string]map[string][]any
	fail  map[string]bool
	dials int
}

func (f *fakeClusters) dial(_ context.Context, cl config.Cluster) (client.Caller, error) {
	f.mu.Lock()
	f.dials++
	f.mu.Unlock()
	return client.CallerFunc(func(_ context.Context, req client.Request) (any, error) {
		if f.fail[cl.Address] {
			return nil, errors.New("connection reset by peer")
		}
		rows := f.data[cl.Address][req.Endpoint]
		if rows == nil {
			return []any{}, nil
		}
		return rows, nil
	}), nil
}

func newRunner(t *testing.T, opts ...Option) (*Runner, *fakeClusters) {
	t.Helper()
	set, err := template.Load([]byte(fanoutDoc), nil)
	require.NoError(t, err)

	fc := &fakeClusters{
		data: map[string]map[string][]any{
			"10.0.0.1": {
				"views": {
					map[string]any{"name": "v1", "logical_capacity": 100},
					map[string]any{"name": "v2", "logical_capacity": 3000},
				},
				"quotas": {
					map[string]any{"name": "q1", "hard_limit": 1024, "owner": "x"},
				},
			},
			"10.0.0.2": {
				"views": {map[string]any{"name": "never", "logical_capacity": 1}},
			},
			"10.0.0.3": {
				"views": {map[string]any{"name": "v3", "logical_capacity": 2048}},
			},
		},
		fail: map[string]bool{"10.0.0.2": true},
	}
	resolver := client.NewResolver(client.StaticConfig(fanoutConfig), config.NewCache(), fc.dial)
	return New(set, resolver, opts...), fc
}

func column(rows []*executor.Row, key string) []any {
	out := make([]any, 0, len(rows))
	for _, r := range rows {
		v, _ := r.Get(key)
		out = append(out, v)
	}
	return out
}

func TestRun_SkipsFailingClusterAndOrdersOnRawValues(t *testing.T) {
	for _, parallelism := range []int{1, 3} {
		r, _ := newRunner(t, WithParallelism(parallelism))

		rows, err := r.Run(context.Background(), "views", map[string]any{"order": "logical_used:desc"})
		require.NoError(t, err)

		assert.Equal(t, []any{"v2", "v3", "v1"}, column(rows, "name"))
		assert.Equal(t, []any{"a", "c", "a"}, column(rows, "cluster"))
		assert.Equal(t, []any{"2.93 KB", "2.00 KB", "100.00 B"}, column(rows, "logical_used"))
		for _, row := range rows {
			assert.False(t, row.HasRaw())
		}
	}
}

func TestRun_Top(t *testing.T) {
	r, _ := newRunner(t)
	rows, err := r.Run(context.Background(), "views", map[string]any{"top": 2})
	require.NoError(t, err)
	assert.Equal(t, []any{"v1", "v2"}, column(rows, "name"))
}

func TestRun_ClusterSelection(t *testing.T) {
	tests := []struct {
		name     string
		args     map[string]any
		want     []any
		wantCode vaerrors.ErrorCode
	}{
		{name: "by name", args: map[string]any{"cluster": "c"}, want: []any{"v3"}},
		{name: "by address", args: map[string]any{"cluster": "10.0.0.3"}, want: []any{"v3"}},
		{name: "list with unknown", args: map[string]any{"clusters": []any{"a", "zzz"}}, want: []any{"v1", "v2"}},
		{name: "comma string deduplicated", args: map[string]any{"cluster": "c, 10.0.0.3"}, want: []any{"v3"}},
		{name: "nothing resolves", args: map[string]any{"cluster": "zzz"}, wantCode: vaerrors.ErrCodeInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newRunner(t)
			rows, err := r.Run(context.Background(), "views", tt.args)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, vaerrors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, column(rows, "name"))
		})
	}
}

func TestRun_OneConnectionPerAddress(t *testing.T) {
	r, fc := newRunner(t)
	_, err := r.Run(context.Background(), "views", map[string]any{"cluster": "a,10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, 1, fc.dials)
}

func TestRun_HardErrorsPropagate(t *testing.T) {
	r, _ := newRunner(t)

	_, err := r.Run(context.Background(), "denied", map[string]any{"cluster": "a"})
	require.Error(t, err)
	assert.Equal(t, vaerrors.ErrCodeAccessDenied, vaerrors.CodeOf(err))

	_, err = r.Execute(context.Background(), "view", nil)
	require.Error(t, err)
	assert.Equal(t, vaerrors.ErrCodeCommandNotFound, vaerrors.CodeOf(err))
	assert.Contains(t, err.Error(), `Did you mean "views"?`)
}

func TestExecute_MergedAlignsFields(t *testing.T) {
	r, _ := newRunner(t)

	rows, err := r.Execute(context.Background(), "everything", map[string]any{"cluster": "a", "name": "v*"})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	for _, row := range rows {
		assert.Equal(t, []string{"cluster", "name", "logical_used", "hard_limit"}, row.Keys())
	}
	assert.Equal(t, []any{"v1", "v2", "q1"}, column(rows, "name"))
	assert.Equal(t, []any{"100.00 B", "2.93 KB", nil}, column(rows, "logical_used"))
	assert.Equal(t, []any{nil, nil, "1.00 KB"}, column(rows, "hard_limit"))
}

func TestExecute_MergedOrderAndTop(t *testing.T) {
	r, _ := newRunner(t)

	rows, err := r.Execute(context.Background(), "everything", map[string]any{"order": "-name", "top": 2})
	require.NoError(t, err)
	assert.Equal(t, []any{"v3", "v2"}, column(rows, "name"))
}

func TestClusters(t *testing.T) {
	r, _ := newRunner(t)

	rows, err := r.Clusters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []any{"10.0.0.1", "10.0.0.2", "10.0.0.3"}, column(rows, "cluster"))
	assert.Equal(t, []string{"cluster", "name", "tenant", "user_type", "vast_version", "super_admin"}, rows[0].Keys())

	rows, err = r.Clusters(context.Background(), "c")
	require.NoError(t, err)
	assert.Equal(t, []any{"c"}, column(rows, "name"))

	_, err = r.Clusters(context.Background(), "c", "nope")
	require.Error(t, err)
	assert.Equal(t, vaerrors.ErrCodeInvalidArgument, vaerrors.CodeOf(err))
	assert.Contains(t, err.Error(), "nope")
}

func TestClusterIDs(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, ClusterIDs(map[string]any{"cluster": "a, b", "clusters": []any{"c"}}))
	assert.Empty(t, ClusterIDs(map[string]any{"cluster": ""}))
	assert.Empty(t, ClusterIDs(nil))
}

func TestParallelismFromEnv(t *testing.T) {
	tests := map[string]int{"": 1, "4": 4, "0": 1, "x": 1}
	for v, want := range tests {
		t.Setenv("VAST_ADMIN_MCP_PARALLELISM", v)
		assert.Equal(t, want, ParallelismFromEnv(), v)
	}
}

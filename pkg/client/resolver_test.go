package client

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vast-data/vast-admin-mcp/pkg/config"
	vaerrors "github.com/vast-data/vast-admin-mcp/pkg/errors"
)

var testConfig = &config.Config{Clusters: []config.Cluster{
	{Address: "10.0.0.1", Name: "prod", Username: "u"},
	{Address: "vast-lab.example.com", Username: "u"},
	{Address: "10.0.0.3", Name: "backup", Username: "u"},
}}

// fakeDialer answers the clusters endpoint with one name per address and
// counts dials per address.
type fakeDialer struct {
	mu    sync.Mutex
	names map[string]string
	fail  map[string]bool
	dials map[string]int
	calls int
}

func (f *fakeDialer) dial(_ context.Context, cl config.Cluster) (Caller, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dials == nil {
		f.dials = map[string]int{}
	}
	f.dials[cl.Address]++
	return CallerFunc(func(context.Context, Request) (any, error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.calls++
		if f.fail[cl.Address] {
			return nil, errors.New("unreachable")
		}
		return []any{map[string]any{"name": f.names[cl.Address]}}, nil
	}), nil
}

func TestResolver_Resolve(t *testing.T) {
	fd := &fakeDialer{names: map[string]string{"vast-lab.example.com": "vast-lab"}}
	r := NewResolver(StaticConfig(testConfig), config.NewCache(), fd.dial)
	ctx := context.Background()

	tests := []struct {
		id       string
		wantAddr string
		wantName string
	}{
		{id: "prod", wantAddr: "10.0.0.1", wantName: "prod"},
		{id: "10.0.0.3", wantAddr: "10.0.0.3", wantName: "backup"},
		{id: "vast-lab.example.com", wantAddr: "vast-lab.example.com", wantName: "vast-lab.example.com"},
		{id: "vast-lab", wantAddr: "vast-lab.example.com", wantName: "vast-lab"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, err := r.Resolve(ctx, tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAddr, got.Address())
			assert.Equal(t, tt.wantName, got.Name)
		})
	}
}

func TestResolver_QueriedNamesAreCached(t *testing.T) {
	fd := &fakeDialer{names: map[string]string{"vast-lab.example.com": "vast-lab"}}
	r := NewResolver(StaticConfig(testConfig), config.NewCache(), fd.dial)

	for range 3 {
		got, err := r.Resolve(context.Background(), "vast-lab")
		require.NoError(t, err)
		assert.Equal(t, "vast-lab.example.com", got.Address())
	}
	assert.Equal(t, 1, fd.calls)

	// The learned name is used for the address afterwards.
	got, err := r.Resolve(context.Background(), "vast-lab.example.com")
	require.NoError(t, err)
	assert.Equal(t, "vast-lab", got.Name)
}

func TestResolver_NotFound(t *testing.T) {
	fd := &fakeDialer{
		names: map[string]string{"vast-lab.example.com": "vast-lab"},
		fail:  map[string]bool{"10.0.0.1": true},
	}
	r := NewResolver(StaticConfig(testConfig), config.NewCache(), fd.dial)

	tests := []struct {
		id      string
		wantErr string
	}{
		{id: "", wantErr: "required"},
		{id: "10.9.9.9", wantErr: "Cluster 10.9.9.9 not found in config."},
		{id: "12345", wantErr: "not found in config."},
		{id: "zzz", wantErr: "no potential matches to query"},
		{id: "vast", wantErr: "Cluster vast not found in config."},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			_, err := r.Resolve(context.Background(), tt.id)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, vaerrors.ErrCodeInvalidArgument, vaerrors.CodeOf(err))
		})
	}
	assert.Zero(t, fd.dials["10.0.0.3"])
}

func TestLooksLikeAddress(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"10.0.0.1", true},
		{"vms.example.com", true},
		{"fe80::1", true},
		{"12-34", true},
		{"prod", false},
		{"prod-1", false},
		{"-", false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, looksLikeAddress(tt.id))
		})
	}
}

func TestSession_ReusesConnections(t *testing.T) {
	fd := &fakeDialer{names: map[string]string{"vast-lab.example.com": "vast-lab"}}
	r := NewResolver(StaticConfig(testConfig), config.NewCache(), fd.dial)
	s := NewSession(r, Whitelist{"views": {"get"}})
	ctx := context.Background()

	target, err := s.Resolve(ctx, "vast-lab")
	require.NoError(t, err)

	for range 2 {
		api, err := s.API(ctx, target)
		require.NoError(t, err)
		assert.Equal(t, "vast-lab", api.Cluster())
	}
	assert.Equal(t, 1, fd.dials["vast-lab.example.com"])

	// A new pass opens a new connection.
	_, err = NewSession(r, nil).API(ctx, target)
	require.NoError(t, err)
	assert.Equal(t, 2, fd.dials["vast-lab.example.com"])
}

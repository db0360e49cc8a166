package client

import (
	"context"
	"sync"

	"github.com/vast-data/vast-admin-mcp/pkg/config"
)

// Session reuses one connection per cluster address for the duration of a
// fan-out pass. It is safe for concurrent use.
type Session struct {
	resolver  *Resolver
	whitelist Whitelist
	opts      []Option

	mu      sync.Mutex
	callers map[string]Caller
}

// NewSession starts a pass. Every API it hands out enforces wl.
func NewSession(r *Resolver, wl Whitelist, opts ...Option) *Session {
	return &Session{
		resolver:  r,
		whitelist: wl,
		opts:      opts,
		callers:   make(map[string]Caller),
	}
}

// Config returns the configuration the resolver reads.
func (s *Session) Config(ctx context.Context) (*config.Config, error) {
	return s.resolver.Config(ctx)
}

// Resolve resolves id, reusing connections opened earlier in the pass.
func (s *Session) Resolve(ctx context.Context, id string) (Target, error) {
	return s.resolver.resolve(ctx, id, s.dial)
}

// API returns the API for t.
func (s *Session) API(ctx context.Context, t Target) (*API, error) {
	caller, err := s.dial(ctx, t.Cluster)
	if err != nil {
		return nil, err
	}
	opts := append([]Option{WithCluster(t.Name)}, s.opts...)
	return New(caller, s.whitelist, opts...), nil
}

func (s *Session) dial(ctx context.Context, cl config.Cluster) (Caller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.callers[cl.Address]; ok {
		return c, nil
	}
	c, err := s.resolver.dial(ctx, cl)
	if err != nil {
		return nil, err
	}
	s.callers[cl.Address] = c
	return c, nil
}

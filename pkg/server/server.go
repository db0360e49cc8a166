package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/coreos/go-systemd/v22/daemon"
	"golang.org/x/time/rate"

	vaerrors "github.com/vast-data/vast-admin-mcp/pkg/errors"
)

// Server serves HTTP handlers behind shared middleware and system routes.
type Server struct {
	name     string
	version  string
	config   *Config
	handlers map[string]http.HandlerFunc
	limiter  *rate.Limiter

	mu    sync.RWMutex
	ready bool
}

// Option configures a Server.
type Option func(*Server)

// WithName sets the name reported on /.
func WithName(name string) Option {
	return func(s *Server) {
		s.name = name
	}
}

// WithVersion sets the version reported on /.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

// WithHandler adds handlers keyed by ServeMux pattern, e.g.
// "GET /v1/commands".
func WithHandler(handlers map[string]http.HandlerFunc) Option {
	return func(s *Server) {
		for k, v := range handlers {
			s.handlers[k] = v
		}
	}
}

// WithConfig replaces the default configuration.
func WithConfig(cfg *Config) Option {
	return func(s *Server) {
		if cfg != nil {
			s.config = cfg
		}
	}
}

// New returns a Server built from DefaultConfig and opts.
func New(opts ...Option) *Server {
	s := &Server{
		name:     "vast-admin-mcp",
		version:  "dev",
		config:   DefaultConfig(),
		handlers: make(map[string]http.HandlerFunc),
	}
	for _, o := range opts {
		o(s)
	}
	if s.config.RateLimit > 0 {
		s.limiter = rate.NewLimiter(s.config.RateLimit, max(1, s.config.RateLimitBurst))
	}
	return s
}

// Handler returns the routed handler without starting a listener.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// Ready reports whether the server accepts traffic.
func (s *Server) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// SetReady flips the readiness reported on /ready.
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	s.ready = ready
	s.mu.Unlock()
}

// Run serves until ctx is done or SIGINT/SIGTERM arrives, then shuts down
// gracefully within the configured timeout. Under systemd the service
// manager is notified of readiness and shutdown.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              s.config.ListenAddress(),
		Handler:           s.Handler(),
		ReadTimeout:       s.config.ReadTimeout,
		ReadHeaderTimeout: s.config.ReadTimeout,
		WriteTimeout:      s.config.WriteTimeout,
		IdleTimeout:       s.config.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			"name", s.name,
			"version", s.version,
			"address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	s.SetReady(true)
	notifySystemd(daemon.SdNotifyReady)

	select {
	case err, ok := <-errCh:
		s.SetReady(false)
		if ok && err != nil {
			return vaerrors.Wrap(vaerrors.ErrCodeUnavailable, "server failed", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.SetReady(false)
	notifySystemd(daemon.SdNotifyStopping)
	slog.Info("shutting down server", "timeout", s.config.ShutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return vaerrors.Wrap(vaerrors.ErrCodeTimeout, "graceful shutdown failed", err)
	}

	slog.Info("server stopped")
	return nil
}

func notifySystemd(state string) {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		slog.Warn("systemd notification failed", "state", state, "error", err)
		return
	}
	if sent {
		slog.Debug("systemd notified", "state", state)
	}
}

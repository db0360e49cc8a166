package api

import (
	"context"
	"log/slog"

	"github.com/vast-data/vast-admin-mcp/pkg/fanout"
	"github.com/vast-data/vast-admin-mcp/pkg/logging"
	"github.com/vast-data/vast-admin-mcp/pkg/server"
)

const (
	name           = "vast-admin-mcp-api"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags to reflect actual version info
	// e.g., -X "github.com/vast-data/vast-admin-mcp/pkg/api.version=1.0.0"
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Serve starts the API server over runner and blocks until ctx is done or
// the process is signalled. A nil cfg uses server.DefaultConfig.
func Serve(ctx context.Context, runner *fanout.Runner, cfg *server.Config) error {
	if cfg == nil {
		cfg = server.DefaultConfig()
	}

	logging.SetDefaultStructuredLoggerWithLevel(name, version, cfg.LogLevel)
	slog.Info("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"date", date,
		"commands", len(runner.Set().CommandNames()),
	)

	s := server.New(
		server.WithName(name),
		server.WithVersion(version),
		server.WithConfig(cfg),
		server.WithHandler(NewHandler(runner).Routes()),
	)

	if err := s.Run(ctx); err != nil {
		slog.Error("server exited with error", "error", err)
		return err
	}

	return nil
}

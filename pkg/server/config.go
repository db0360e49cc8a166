package server

import (
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/time/rate"

	"github.com/vast-data/vast-admin-mcp/pkg/defaults"
	"github.com/vast-data/vast-admin-mcp/pkg/logging"
)

// EnvPort overrides the listen port.
const EnvPort = "PORT"

// DefaultConfig returns defaults overridden by PORT and LOG_LEVEL.
func DefaultConfig() *Config {
	cfg := &Config{
		Port:            defaults.ServerPort,
		RateLimit:       rate.Limit(defaults.ServerRateLimit),
		RateLimitBurst:  defaults.ServerRateLimitBurst,
		ReadTimeout:     defaults.ServerReadTimeout,
		WriteTimeout:    defaults.ServerWriteTimeout,
		IdleTimeout:     defaults.ServerIdleTimeout,
		ShutdownTimeout: defaults.ServerShutdownTimeout,
		LogLevel:        slog.LevelInfo.String(),
	}

	if portStr := os.Getenv(EnvPort); portStr != "" {
		var port int
		if _, err := fmt.Sscanf(portStr, "%d", &port); err == nil && port > 0 {
			cfg.Port = port
		} else {
			slog.Warn("ignoring invalid port", "env", EnvPort, "value", portStr)
		}
	}

	if lvl := os.Getenv(logging.EnvLogLevel); lvl != "" {
		cfg.LogLevel = lvl
	}

	return cfg
}

// ListenAddress returns host:port.
func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Address, c.Port)
}

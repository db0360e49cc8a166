// Package logging configures the process-wide slog logger.
//
// Servers (HTTP and MCP) log JSON to stderr so stdout stays free for protocol
// traffic; the CLI logs text to stderr.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// EnvLogLevel names the environment variable consulted for the default level.
const EnvLogLevel = "LOG_LEVEL"

// ParseLevel converts a level name to slog.Level. Unknown names map to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetDefaultStructuredLogger installs a JSON logger on stderr tagged with the
// module name and version. The level is read from LOG_LEVEL.
func SetDefaultStructuredLogger(name, version string) {
	SetDefaultStructuredLoggerWithLevel(name, version, os.Getenv(EnvLogLevel))
}

// SetDefaultStructuredLoggerWithLevel is SetDefaultStructuredLogger with an
// explicit level name.
func SetDefaultStructuredLoggerWithLevel(name, version, level string) {
	slog.SetDefault(newLogger(os.Stderr, true, name, version, ParseLevel(level)))
}

// SetDefaultLoggerWithLevel installs a human-readable text logger on stderr.
func SetDefaultLoggerWithLevel(name, version, level string) {
	slog.SetDefault(newLogger(os.Stderr, false, name, version, ParseLevel(level)))
}

func newLogger(w io.Writer, structured bool, name, version string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var h slog.Handler
	if structured {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}

	return slog.New(h).With(
		slog.String("module", name),
		slog.String("version", version),
	)
}

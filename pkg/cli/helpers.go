package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/vast-data/vast-admin-mcp/pkg/serializer"
)

// parseOutputFormat extracts and validates the output format from CLI flags.
// Returns the validated format or an error if the format is unknown.
func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	outFormat := serializer.ParseFormat(cmd.String("format"))
	if outFormat.IsUnknown() {
		return "", fmt.Errorf("unknown output format: %q, valid formats are: %s",
			outFormat, strings.Join(serializer.SupportedFormats(), ", "))
	}
	return outFormat, nil
}

// writeOutput serializes data to --output in --format.
func (a *app) writeOutput(ctx context.Context, cmd *cli.Command, data any) error {
	outFormat, err := parseOutputFormat(cmd)
	if err != nil {
		return err
	}

	path := cmd.String("output")
	var ser *serializer.Writer
	if path == "" && a.stdout != nil {
		ser = serializer.NewWriter(outFormat, a.stdout)
	} else {
		ser, err = serializer.NewFileWriterOrStdout(outFormat, path)
		if err != nil {
			return err
		}
	}
	defer func() {
		if err := ser.Close(); err != nil {
			slog.Warn("failed to close serializer", "error", err)
		}
	}()

	return ser.Serialize(ctx, data)
}

// peekFlag returns the value of a long flag in args without parsing them,
// accepting both "--name value" and "--name=value".
func peekFlag(args []string, name string) (string, bool) {
	long := "--" + name
	for i, arg := range args {
		if arg == "--" {
			break
		}
		if v, ok := strings.CutPrefix(arg, long+"="); ok {
			return v, true
		}
		if arg == long && i+1 < len(args) {
			return args[i+1], true
		}
	}
	return "", false
}

// parseKeyValues turns repeated key=value flags into an argument map.
func parseKeyValues(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid argument %q, expected key=value", p)
		}
		out[k] = v
	}
	return out, nil
}

// firstLine returns the first non-blank line of s.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

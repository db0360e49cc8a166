package serializer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Serializer writes a result in some format.
type Serializer interface {
	Serialize(ctx context.Context, data any) error
}

// Closer is implemented by serializers that own their output.
type Closer interface {
	Close() error
}

// Writer serializes to an io.Writer in one format.
type Writer struct {
	format Format
	output io.Writer
	closer io.Closer

	closeOnce sync.Once
	closeErr  error
}

// NewWriter returns a writer for format on w. Unknown formats fall back to
// JSON with a warning; a nil w means stdout.
func NewWriter(format Format, w io.Writer) *Writer {
	if format.IsUnknown() {
		slog.Warn("unknown output format, using json", "format", string(format))
		format = FormatJSON
	}
	if w == nil {
		w = os.Stdout
	}
	return &Writer{format: format, output: w}
}

// NewStdoutWriter returns a writer for format on stdout.
func NewStdoutWriter(format Format) *Writer {
	return NewWriter(format, os.Stdout)
}

// NewFileWriterOrStdout writes to path, or to stdout when path is empty or
// "-". The caller closes the returned writer.
func NewFileWriterOrStdout(format Format, path string) (*Writer, error) {
	path = strings.TrimSpace(path)
	if path == "" || path == StdoutURI {
		return NewStdoutWriter(format), nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	w := NewWriter(format, f)
	w.closer = f
	return w, nil
}

// Format returns the format the writer uses.
func (w *Writer) Format() Format {
	return w.format
}

// Serialize writes data. Slices of ordered records (Keys and Get) are
// rendered as rows; other values are rendered generically.
func (w *Writer) Serialize(ctx context.Context, data any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var (
		out []byte
		err error
	)
	switch w.format {
	case FormatJSON:
		out, err = json.MarshalIndent(data, "", "  ")
		if err == nil {
			out = append(out, '\n')
		}
	case FormatYAML:
		out, err = yaml.Marshal(data)
	case FormatCSV:
		out, err = renderCSV(data)
	case FormatTable:
		out, err = renderTable(data)
	default:
		return fmt.Errorf("unsupported format %q", w.format)
	}
	if err != nil {
		return fmt.Errorf("failed to serialize to %s: %w", w.format, err)
	}

	if _, err := w.output.Write(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// Close closes a file output. It is safe to call more than once and is a
// no-op for stdout.
func (w *Writer) Close() error {
	w.closeOnce.Do(func() {
		if w.closer != nil {
			w.closeErr = w.closer.Close()
		}
	})
	return w.closeErr
}

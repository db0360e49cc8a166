package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/vast-data/vast-admin-mcp/pkg/defaults"
	vaerrors "github.com/vast-data/vast-admin-mcp/pkg/errors"
	"github.com/vast-data/vast-admin-mcp/pkg/executor"
	"github.com/vast-data/vast-admin-mcp/pkg/fanout"
	"github.com/vast-data/vast-admin-mcp/pkg/serializer"
	"github.com/vast-data/vast-admin-mcp/pkg/server"
	"github.com/vast-data/vast-admin-mcp/pkg/template"
)

// maxBodyBytes caps the size of a command arguments document.
const maxBodyBytes = 1 << 20

// Handler serves the command API over a fan-out runner.
type Handler struct {
	runner  *fanout.Runner
	timeout time.Duration
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithCommandTimeout bounds a single command run. Zero disables the bound.
func WithCommandTimeout(d time.Duration) HandlerOption {
	return func(h *Handler) {
		h.timeout = d
	}
}

// NewHandler returns a Handler over runner.
func NewHandler(runner *fanout.Runner, opts ...HandlerOption) *Handler {
	h := &Handler{
		runner:  runner,
		timeout: defaults.CommandTimeout,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Routes returns the handlers keyed by ServeMux pattern.
func (h *Handler) Routes() map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		"GET /v1/commands":         h.HandleCommands,
		"GET /v1/commands/{name}":  h.HandleCommand,
		"POST /v1/commands/{name}": h.HandleRun,
		"GET /v1/clusters":         h.HandleClusters,
	}
}

// ArgumentMeta describes one argument of a command.
type ArgumentMeta struct {
	Name        string   `json:"name" yaml:"name"`
	Type        string   `json:"type" yaml:"type"`
	Mandatory   bool     `json:"mandatory" yaml:"mandatory"`
	Filter      bool     `json:"filter" yaml:"filter"`
	List        bool     `json:"list,omitempty" yaml:"list,omitempty"`
	Aliases     []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Default     any      `json:"default,omitempty" yaml:"default,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
}

// CommandMeta describes a command or merged command.
type CommandMeta struct {
	Name        string               `json:"name" yaml:"name"`
	Merged      bool                 `json:"merged" yaml:"merged"`
	Functions   []string             `json:"functions,omitempty" yaml:"functions,omitempty"`
	Description string               `json:"description" yaml:"description"`
	Arguments   []ArgumentMeta       `json:"arguments" yaml:"arguments"`
	Fields      []template.FieldInfo `json:"fields" yaml:"fields"`
}

// RunResponse is the body of a successful command run.
type RunResponse struct {
	Command string          `json:"command" yaml:"command"`
	Count   int             `json:"count" yaml:"count"`
	Rows    []*executor.Row `json:"rows" yaml:"rows"`
}

// HandleCommands lists every command with its arguments and fields.
func (h *Handler) HandleCommands(w http.ResponseWriter, r *http.Request) {
	set := h.runner.Set()
	names := append(set.CommandNames(), set.MergedNames()...)

	out := make([]CommandMeta, 0, len(names))
	for _, n := range names {
		if meta, ok := describe(set, n); ok {
			out = append(out, meta)
		}
	}
	serializer.Respond(w, r, http.StatusOK, map[string]any{"commands": out})
}

// HandleCommand describes one command.
func (h *Handler) HandleCommand(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	meta, ok := describe(h.runner.Set(), name)
	if !ok {
		server.WriteError(w, r, http.StatusNotFound, vaerrors.ErrCodeCommandNotFound,
			"Unknown command: "+name, false, nil)
		return
	}
	serializer.Respond(w, r, http.StatusOK, meta)
}

// HandleRun runs a command. The body is an optional JSON object of
// arguments, the same keys the CLI and tools accept.
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	args, err := decodeArgs(w, r)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "invalid arguments", nil)
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	rows, err := h.runner.Execute(ctx, name, args)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = vaerrors.Wrap(vaerrors.ErrCodeTimeout, "command timed out", err)
		}
		server.WriteErrorFromErr(w, r, err, "command failed", map[string]any{"command": name})
		return
	}
	if rows == nil {
		rows = []*executor.Row{}
	}

	serializer.Respond(w, r, http.StatusOK, RunResponse{
		Command: name,
		Count:   len(rows),
		Rows:    rows,
	})
}

// HandleClusters lists configured clusters. Repeated name query parameters
// select a subset.
func (h *Handler) HandleClusters(w http.ResponseWriter, r *http.Request) {
	rows, err := h.runner.Clusters(r.Context(), r.URL.Query()["name"]...)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "failed to list clusters", nil)
		return
	}
	serializer.Respond(w, r, http.StatusOK, map[string]any{"clusters": rows})
}

func decodeArgs(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	args := map[string]any{}
	if r.Body == nil {
		return args, nil
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&args); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, vaerrors.WrapWithContext(vaerrors.ErrCodeInvalidRequest,
				"request body too large", err, map[string]any{"limit": tooLarge.Limit})
		}
		return nil, vaerrors.Wrap(vaerrors.ErrCodeInvalidRequest,
			"arguments must be a JSON object", err)
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

func describe(set *template.Set, name string) (CommandMeta, bool) {
	meta := CommandMeta{Name: name}

	var args []template.ArgumentInfo
	if m, ok := set.Merged(name); ok {
		meta.Merged = true
		meta.Functions = m.Functions
		args = set.MergedArguments(name)
	} else if _, ok := set.Command(name); ok {
		args = set.Arguments(name)
	} else {
		return CommandMeta{}, false
	}

	meta.Description = set.Description(name)
	meta.Fields = set.Fields(name)
	meta.Arguments = make([]ArgumentMeta, 0, len(args))
	for _, a := range args {
		meta.Arguments = append(meta.Arguments, ArgumentMeta{
			Name:        a.Name,
			Type:        a.Type,
			Mandatory:   a.Mandatory,
			Filter:      a.Filter,
			List:        a.List,
			Aliases:     a.Aliases,
			Default:     a.Default,
			Description: a.Description,
		})
	}
	return meta, true
}

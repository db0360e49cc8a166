package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vast-data/vast-admin-mcp/pkg/fanout"
	"github.com/vast-data/vast-admin-mcp/pkg/template"
)

// Server serves the list commands of a template set as MCP tools over a
// newline-delimited JSON-RPC stream.
type Server struct {
	name      string
	version   string
	runner    *fanout.Runner
	set       *template.Set
	transport *Transport

	tools    []Tool
	handlers map[string]toolHandler
}

type toolHandler func(ctx context.Context, args map[string]any) (any, error)

// NewServer returns a server reading requests from r and writing responses
// to w.
func NewServer(name, version string, runner *fanout.Runner, set *template.Set, r io.Reader, w io.Writer) *Server {
	s := &Server{
		name:      name,
		version:   version,
		runner:    runner,
		set:       set,
		transport: NewTransport(r, w),
		handlers:  make(map[string]toolHandler),
	}
	s.registerTools()
	return s
}

// Tools returns the tool definitions in listing order.
func (s *Server) Tools() []Tool {
	return s.tools
}

type readResult struct {
	msg *Message
	err error
}

// Run serves requests until the input ends or ctx is done. Requests are
// handled one at a time in arrival order.
func (s *Server) Run(ctx context.Context) error {
	slog.Info("mcp server starting",
		"name", s.name,
		"version", s.version,
		"tools", len(s.tools))

	msgs := make(chan readResult)
	go func() {
		defer close(msgs)
		for {
			msg, err := s.transport.ReadMessage()
			select {
			case msgs <- readResult{msg: msg, err: err}:
			case <-ctx.Done():
				return
			}
			var pe *ParseError
			if err != nil && !errors.As(err, &pe) {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			slog.Info("mcp server stopping", "reason", ctx.Err())
			return nil
		case res, ok := <-msgs:
			if !ok {
				return nil
			}
			if res.err != nil {
				var pe *ParseError
				switch {
				case errors.As(res.err, &pe):
					slog.Warn("discarding malformed message", "error", res.err)
					if err := s.transport.WriteError(nil, codeParseError, pe.Error()); err != nil {
						return err
					}
					continue
				case errors.Is(res.err, io.EOF):
					slog.Info("mcp input closed")
					return nil
				default:
					return res.err
				}
			}
			if err := s.handle(ctx, res.msg); err != nil {
				return err
			}
		}
	}
}

// handle dispatches one message. Only transport failures are returned.
func (s *Server) handle(ctx context.Context, msg *Message) error {
	log := slog.With(
		"request_id", uuid.NewString(),
		"method", msg.Method,
		"id", string(msg.ID))
	log.Debug("request received")

	switch msg.Method {
	case "initialize":
		var params initializeParams
		if len(msg.Params) > 0 {
			if err := json.Unmarshal(msg.Params, &params); err != nil {
				return s.transport.WriteError(msg.ID, codeInvalidParams, fmt.Sprintf("invalid initialize params: %v", err))
			}
		}
		log.Info("client connected",
			"client", params.ClientInfo.Name,
			"client_version", params.ClientInfo.Version,
			"protocol", params.ProtocolVersion)
		return s.transport.WriteResponse(msg.ID, initializeResult{
			ProtocolVersion: protocolVersion,
			Capabilities:    map[string]any{"tools": map[string]any{"listChanged": false}},
			ServerInfo:      serverInfo{Name: s.name, Version: s.version},
			Instructions:    instructions,
		})
	case "ping":
		return s.transport.WriteResponse(msg.ID, map[string]any{})
	case "tools/list":
		return s.transport.WriteResponse(msg.ID, toolsListResult{Tools: s.tools})
	case "tools/call":
		return s.handleToolsCall(ctx, log, msg)
	case "":
		if msg.IsNotification() {
			return nil
		}
		return s.transport.WriteError(msg.ID, codeInvalidRequest, "missing method")
	default:
		if msg.IsNotification() {
			return nil
		}
		return s.transport.WriteError(msg.ID, codeMethodNotFound, "Method not found: "+msg.Method)
	}
}

func (s *Server) handleToolsCall(ctx context.Context, log *slog.Logger, msg *Message) error {
	var params toolsCallParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.transport.WriteError(msg.ID, codeInvalidParams, fmt.Sprintf("invalid tools/call params: %v", err))
	}

	handler, ok := s.handlers[params.Name]
	if !ok {
		return s.transport.WriteError(msg.ID, codeInvalidParams, "Unknown tool: "+params.Name)
	}

	log = log.With("tool", params.Name)
	start := time.Now()
	result, err := handler(ctx, dropNulls(params.Arguments))
	toolCallDuration.WithLabelValues(params.Name).Observe(time.Since(start).Seconds())
	if err != nil {
		toolCallsTotal.WithLabelValues(params.Name, "error").Inc()
		log.Warn("tool call failed", "error", err, "duration", time.Since(start))
		return s.transport.WriteResponse(msg.ID, ToolsCallResult{
			Content: []Content{{Type: "text", Text: err.Error()}},
			IsError: true,
		})
	}

	text, err := json.Marshal(result)
	if err != nil {
		toolCallsTotal.WithLabelValues(params.Name, "error").Inc()
		return s.transport.WriteError(msg.ID, codeInternalError, fmt.Sprintf("failed to encode result: %v", err))
	}
	toolCallsTotal.WithLabelValues(params.Name, "success").Inc()
	log.Info("tool call complete", "duration", time.Since(start))
	return s.transport.WriteResponse(msg.ID, ToolsCallResult{
		Content: []Content{{Type: "text", Text: string(text)}},
	})
}

func dropNulls(args map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		if v != nil {
			out[k] = v
		}
	}
	return out
}

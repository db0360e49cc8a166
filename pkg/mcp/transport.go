package mcp

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

const jsonRPCVersion = "2.0"

// JSON-RPC error codes.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

// maxMessageSize bounds one newline-delimited message.
const maxMessageSize = 16 << 20

// Message is a JSON-RPC 2.0 request, notification or response.
type Message struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// IsNotification reports whether the message expects no response.
func (m *Message) IsNotification() bool {
	return len(m.ID) == 0 || bytes.Equal(m.ID, []byte("null"))
}

// RPCError is a JSON-RPC error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Transport reads and writes newline-delimited JSON-RPC messages.
type Transport struct {
	scanner *bufio.Scanner

	mu     sync.Mutex
	writer io.Writer
}

// NewTransport returns a transport over r and w, usually stdin and stdout.
func NewTransport(r io.Reader, w io.Writer) *Transport {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxMessageSize)
	return &Transport{scanner: sc, writer: w}
}

// ReadMessage reads the next non-empty line. It returns io.EOF at the end
// of input. A line that is not valid JSON yields a *ParseError.
func (t *Transport) ReadMessage() (*Message, error) {
	for t.scanner.Scan() {
		line := bytes.TrimSpace(t.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var msg Message
		if err := json.Unmarshal(line, &msg); err != nil {
			return nil, &ParseError{Err: err}
		}
		return &msg, nil
	}
	if err := t.scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read message: %w", err)
	}
	return nil, io.EOF
}

// WriteMessage writes one message followed by a newline.
func (t *Transport) WriteMessage(msg *Message) error {
	msg.JSONRPC = jsonRPCVersion
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON-RPC message: %w", err)
	}
	data = append(data, '\n')

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return nil
}

// WriteResponse writes a result for id.
func (t *Transport) WriteResponse(id json.RawMessage, result any) error {
	return t.WriteMessage(&Message{ID: id, Result: result})
}

// WriteError writes an error response for id.
func (t *Transport) WriteError(id json.RawMessage, code int, message string) error {
	slog.Debug("json-rpc error", "id", string(id), "code", code, "message", message)
	if len(id) == 0 {
		id = json.RawMessage("null")
	}
	return t.WriteMessage(&Message{ID: id, Error: &RPCError{Code: code, Message: message}})
}

// ParseError reports an input line that is not JSON.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "failed to parse JSON-RPC message: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

package serializer

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"gopkg.in/yaml.v3"
)

// Content types.
const (
	ContentTypeJSON = "application/json"
	ContentTypeYAML = "application/yaml"
)

// RespondJSON writes data as JSON with the given status. The body is encoded
// before any header is written so an encoding failure becomes a clean 500.
func RespondJSON(w http.ResponseWriter, statusCode int, data any) {
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(data); err != nil {
		slog.Error("json encoding failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	write(w, statusCode, ContentTypeJSON, buf.Bytes())
}

// Respond writes data as YAML when the request accepts YAML ahead of JSON,
// and as JSON otherwise.
func Respond(w http.ResponseWriter, r *http.Request, statusCode int, data any) {
	if !prefersYAML(r) {
		RespondJSON(w, statusCode, data)
		return
	}
	out, err := yaml.Marshal(data)
	if err != nil {
		slog.Error("yaml encoding failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	write(w, statusCode, ContentTypeYAML, out)
}

func write(w http.ResponseWriter, statusCode int, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(statusCode)
	if _, err := w.Write(body); err != nil {
		// connection is gone
		slog.Warn("response write failed", "error", err)
	}
}

func prefersYAML(r *http.Request) bool {
	if r == nil {
		return false
	}
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		switch mt {
		case ContentTypeYAML, "application/x-yaml", "text/yaml":
			return true
		case ContentTypeJSON, "*/*":
			return false
		}
	}
	return false
}

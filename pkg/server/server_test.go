package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/vast-data/vast-admin-mcp/pkg/serializer"
)

func testServer(cfg *Config, handlers map[string]http.HandlerFunc) *Server {
	return New(WithName("test"), WithVersion("1.2.3"), WithConfig(cfg), WithHandler(handlers))
}

func echoRequestID(w http.ResponseWriter, r *http.Request) {
	serializer.RespondJSON(w, http.StatusOK, map[string]string{"id": RequestID(r.Context())})
}

func TestServer_RequestIDAndVersionHeaders(t *testing.T) {
	s := testServer(nil, map[string]http.HandlerFunc{"GET /v1/echo": echoRequestID})
	h := s.Handler()

	req := httptest.NewRequest(http.MethodGet, "/v1/echo", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	id := w.Header().Get(HeaderRequestID)
	assert.NotEmpty(t, id)
	assert.Equal(t, DefaultAPIVersion, w.Header().Get(HeaderAPIVersion))

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, id, body["id"])

	const given = "3b241101-e2bb-4255-8caf-4136c566a962"
	req = httptest.NewRequest(http.MethodGet, "/v1/echo", nil)
	req.Header.Set(HeaderRequestID, given)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, given, w.Header().Get(HeaderRequestID))

	req = httptest.NewRequest(http.MethodGet, "/v1/echo", nil)
	req.Header.Set(HeaderRequestID, "not-a-uuid")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.NotEqual(t, "not-a-uuid", w.Header().Get(HeaderRequestID))
}

func TestServer_RateLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimit = rate.Every(time.Hour)
	cfg.RateLimitBurst = 1
	h := testServer(cfg, map[string]http.HandlerFunc{"GET /v1/echo": echoRequestID}).Handler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/echo", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/echo", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.True(t, decodeError(t, w).Retryable)

	// system routes are not limited
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_RecoversFromPanic(t *testing.T) {
	h := testServer(nil, map[string]http.HandlerFunc{
		"GET /v1/panic": func(http.ResponseWriter, *http.Request) { panic("boom") },
	}).Handler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "INTERNAL", resp.Code)
	assert.Equal(t, w.Header().Get(HeaderRequestID), resp.RequestID)
}

func TestServer_SystemRoutes(t *testing.T) {
	s := testServer(nil, map[string]http.HandlerFunc{"GET /v1/echo": echoRequestID})
	h := s.Handler()

	tests := []struct {
		name   string
		method string
		path   string
		ready  bool
		want   int
	}{
		{"health", http.MethodGet, "/health", false, http.StatusOK},
		{"health wrong method", http.MethodPost, "/health", false, http.StatusMethodNotAllowed},
		{"not ready", http.MethodGet, "/ready", false, http.StatusServiceUnavailable},
		{"ready", http.MethodGet, "/ready", true, http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", false, http.StatusOK},
		{"unknown path", http.MethodGet, "/nope", false, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s.SetReady(tt.ready)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestServer_DefaultRouteListsRoutes(t *testing.T) {
	h := testServer(nil, map[string]http.HandlerFunc{"GET /v1/echo": echoRequestID}).Handler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Name    string   `json:"name"`
		Version string   `json:"version"`
		Routes  []string `json:"routes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "test", body.Name)
	assert.Equal(t, "1.2.3", body.Version)
	assert.Contains(t, body.Routes, "GET /v1/echo")
	assert.Contains(t, body.Routes, "GET /metrics")
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Address = "127.0.0.1"
	cfg.Port = 0
	cfg.ShutdownTimeout = time.Second
	s := testServer(cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, s.Ready, time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.False(t, s.Ready())
}

func TestDefaultConfig_Env(t *testing.T) {
	t.Setenv(EnvPort, "9090")
	t.Setenv("LOG_LEVEL", "debug")
	cfg := DefaultConfig()
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ":9090", cfg.ListenAddress())

	t.Setenv(EnvPort, "bogus")
	assert.Equal(t, 8080, DefaultConfig().Port)
}

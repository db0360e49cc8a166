package serializer

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestRespondJSON(t *testing.T) {
	tests := []struct {
		name   string
		status int
		data   any
		body   string
	}{
		{name: "object", status: http.StatusOK, data: map[string]any{"name": "alpha"}, body: `{"name":"alpha"}`},
		{name: "created list", status: http.StatusCreated, data: []int{1, 2}, body: `[1,2]`},
		{name: "nil", status: http.StatusOK, data: nil, body: `null`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			RespondJSON(w, tt.status, tt.data)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, ContentTypeJSON, w.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}

func TestRespondJSON_EncodingErrorIsClean500(t *testing.T) {
	w := httptest.NewRecorder()
	RespondJSON(w, http.StatusOK, make(chan int))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotEqual(t, ContentTypeJSON, w.Header().Get("Content-Type"))
}

func TestRespond_NegotiatesFormat(t *testing.T) {
	tests := []struct {
		accept string
		want   string
	}{
		{accept: "", want: ContentTypeJSON},
		{accept: "application/json", want: ContentTypeJSON},
		{accept: "application/yaml", want: ContentTypeYAML},
		{accept: "text/yaml;q=0.9, application/json", want: ContentTypeYAML},
		{accept: "*/*, application/yaml", want: ContentTypeJSON},
		{accept: "not a media type", want: ContentTypeJSON},
	}
	for _, tt := range tests {
		t.Run(tt.accept, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.accept != "" {
				r.Header.Set("Accept", tt.accept)
			}
			w := httptest.NewRecorder()
			Respond(w, r, http.StatusOK, map[string]any{"count": 2})

			require.Equal(t, tt.want, w.Header().Get("Content-Type"))
			var got map[string]any
			if tt.want == ContentTypeYAML {
				require.NoError(t, yaml.Unmarshal(w.Body.Bytes(), &got))
				assert.Equal(t, 2, got["count"])
			} else {
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
				assert.InDelta(t, 2, got["count"], 0)
			}
		})
	}
}

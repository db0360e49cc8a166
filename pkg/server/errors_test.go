package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vaerrors "github.com/vast-data/vast-admin-mcp/pkg/errors"
)

func TestHTTPStatusFromCode(t *testing.T) {
	tests := []struct {
		code vaerrors.ErrorCode
		want int
	}{
		{vaerrors.ErrCodeInvalidRequest, http.StatusBadRequest},
		{vaerrors.ErrCodeInvalidArgument, http.StatusBadRequest},
		{vaerrors.ErrCodeUnauthorized, http.StatusUnauthorized},
		{vaerrors.ErrCodeAccessDenied, http.StatusForbidden},
		{vaerrors.ErrCodeNotFound, http.StatusNotFound},
		{vaerrors.ErrCodeCommandNotFound, http.StatusNotFound},
		{vaerrors.ErrCodeMethodNotAllowed, http.StatusMethodNotAllowed},
		{vaerrors.ErrCodeRateLimitExceeded, http.StatusTooManyRequests},
		{vaerrors.ErrCodeUpstream, http.StatusBadGateway},
		{vaerrors.ErrCodeUnavailable, http.StatusServiceUnavailable},
		{vaerrors.ErrCodeTimeout, http.StatusGatewayTimeout},
		{vaerrors.ErrCodeConfig, http.StatusInternalServerError},
		{vaerrors.ErrCodeInternal, http.StatusInternalServerError},
		{vaerrors.ErrorCode("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusFromCode(tt.code))
		})
	}
}

func TestRetryableFromCode(t *testing.T) {
	tests := []struct {
		code vaerrors.ErrorCode
		want bool
	}{
		{vaerrors.ErrCodeInvalidRequest, false},
		{vaerrors.ErrCodeInvalidArgument, false},
		{vaerrors.ErrCodeCommandNotFound, false},
		{vaerrors.ErrCodeAccessDenied, false},
		{vaerrors.ErrCodeConfig, false},
		{vaerrors.ErrCodeTimeout, true},
		{vaerrors.ErrCodeUnavailable, true},
		{vaerrors.ErrCodeRateLimitExceeded, true},
		{vaerrors.ErrCodeUpstream, true},
		{vaerrors.ErrCodeInternal, true},
		{vaerrors.ErrorCode("SOMETHING_ELSE"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, retryableFromCode(tt.code))
		})
	}
}

func TestMergeDetails(t *testing.T) {
	assert.Nil(t, mergeDetails(nil, nil))
	assert.Nil(t, mergeDetails(map[string]any{}, map[string]any{}))

	got := mergeDetails(
		map[string]any{"a": 1, "shared": "old"},
		map[string]any{"b": 2, "shared": "new"},
	)
	assert.Equal(t, map[string]any{"a": 1, "b": 2, "shared": "new"}, got)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestWriteError_WritesErrorResponse(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), contextKeyRequestID, "req-123"))
	w := httptest.NewRecorder()

	WriteError(w, req, http.StatusBadRequest, vaerrors.ErrCodeInvalidRequest, "bad request", false, map[string]any{"k": "v"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, string(vaerrors.ErrCodeInvalidRequest), resp.Code)
	assert.Equal(t, "bad request", resp.Message)
	assert.Equal(t, "req-123", resp.RequestID)
	assert.False(t, resp.Retryable)
	assert.Equal(t, "v", resp.Details["k"])
}

func TestWriteError_GeneratesRequestID(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusNotFound,
		vaerrors.ErrCodeNotFound, "missing", false, nil)

	resp := decodeError(t, w)
	assert.NotEmpty(t, resp.RequestID)
	assert.Nil(t, resp.Details)
}

func TestWriteErrorFromErr_StructuredErrorMapsStatusAndDetails(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	cause := errors.New("connection refused")
	err := vaerrors.WrapWithContext(vaerrors.ErrCodeUnavailable, "cluster unavailable", cause, map[string]any{"cluster": "a"})

	WriteErrorFromErr(w, req, err, "fallback", map[string]any{"extra": "yes"})

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, string(vaerrors.ErrCodeUnavailable), resp.Code)
	assert.Equal(t, "cluster unavailable", resp.Message)
	assert.True(t, resp.Retryable)
	assert.Equal(t, "a", resp.Details["cluster"])
	assert.Equal(t, "yes", resp.Details["extra"])
	assert.Equal(t, "connection refused", resp.Details["error"])
}

func TestWriteErrorFromErr_DomainCodes(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{vaerrors.New(vaerrors.ErrCodeCommandNotFound, "Unknown command: x"), http.StatusNotFound},
		{vaerrors.New(vaerrors.ErrCodeInvalidArgument, "bad filter"), http.StatusBadRequest},
		{vaerrors.New(vaerrors.ErrCodeAccessDenied, "not whitelisted"), http.StatusForbidden},
		{vaerrors.New(vaerrors.ErrCodeConfig, "no clusters"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		WriteErrorFromErr(w, httptest.NewRequest(http.MethodGet, "/", nil), tt.err, "fallback", nil)
		assert.Equal(t, tt.want, w.Code, tt.err.Error())
		assert.Equal(t, tt.err.Error(), decodeError(t, w).Message)
	}
}

func TestWriteErrorFromErr_NonStructuredFallsBackToInternal(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	WriteErrorFromErr(w, req, errors.New("boom"), "fallback", map[string]any{"x": "y"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, string(vaerrors.ErrCodeInternal), resp.Code)
	assert.Equal(t, "fallback", resp.Message)
	assert.True(t, resp.Retryable)
	assert.Equal(t, "y", resp.Details["x"])
	assert.Equal(t, "boom", resp.Details["error"])
}

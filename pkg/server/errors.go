package server

import (
	"errors"
	"maps"
	"net/http"
	"time"

	"github.com/google/uuid"

	vaerrors "github.com/vast-data/vast-admin-mcp/pkg/errors"
	"github.com/vast-data/vast-admin-mcp/pkg/serializer"
)

// WriteError writes an ErrorResponse carrying the request id of r.
func WriteError(w http.ResponseWriter, r *http.Request, statusCode int,
	code vaerrors.ErrorCode, message string, retryable bool, details map[string]any) {

	requestID := RequestID(r.Context())
	if requestID == "" {
		requestID = uuid.New().String()
	}

	errResp := ErrorResponse{
		Code:      string(code),
		Message:   message,
		Details:   details,
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
		Retryable: retryable,
	}

	serializer.RespondJSON(w, statusCode, errResp)
}

// WriteErrorFromErr maps err to a status and code. Structured errors keep
// their message and context; anything else becomes INTERNAL with
// fallbackMessage. The cause is reported under details.error.
func WriteErrorFromErr(w http.ResponseWriter, r *http.Request, err error, fallbackMessage string, extra map[string]any) {
	var se *vaerrors.StructuredError
	if !errors.As(err, &se) {
		details := mergeDetails(extra, map[string]any{"error": err.Error()})
		WriteError(w, r, http.StatusInternalServerError, vaerrors.ErrCodeInternal, fallbackMessage,
			retryableFromCode(vaerrors.ErrCodeInternal), details)
		return
	}

	details := mergeDetails(se.Context, extra)
	if se.Cause != nil {
		details = mergeDetails(details, map[string]any{"error": se.Cause.Error()})
	}
	WriteError(w, r, HTTPStatusFromCode(se.Code), se.Code, se.Message, retryableFromCode(se.Code), details)
}

// HTTPStatusFromCode maps an error code to an HTTP status. Unknown codes
// map to 500.
func HTTPStatusFromCode(code vaerrors.ErrorCode) int {
	switch code {
	case vaerrors.ErrCodeInvalidRequest, vaerrors.ErrCodeInvalidArgument:
		return http.StatusBadRequest
	case vaerrors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case vaerrors.ErrCodeAccessDenied:
		return http.StatusForbidden
	case vaerrors.ErrCodeNotFound, vaerrors.ErrCodeCommandNotFound:
		return http.StatusNotFound
	case vaerrors.ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case vaerrors.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case vaerrors.ErrCodeUpstream:
		return http.StatusBadGateway
	case vaerrors.ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	case vaerrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func retryableFromCode(code vaerrors.ErrorCode) bool {
	switch code {
	case vaerrors.ErrCodeTimeout, vaerrors.ErrCodeUnavailable, vaerrors.ErrCodeRateLimitExceeded,
		vaerrors.ErrCodeUpstream, vaerrors.ErrCodeInternal:
		return true
	default:
		return false
	}
}

// mergeDetails returns a new map with b's entries over a's, or nil when
// both are empty.
func mergeDetails(a, b map[string]any) map[string]any {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make(map[string]any, len(a)+len(b))
	maps.Copy(out, a)
	maps.Copy(out, b)
	return out
}

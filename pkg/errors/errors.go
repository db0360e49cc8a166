// Copyright (c) 2025, VAST Data Ltd.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package errors provides coded, structured errors shared by every layer of
// vast-admin-mcp.
//
// The engine surfaces five caller-visible kinds: ErrCodeConfig,
// ErrCodeCommandNotFound, ErrCodeInvalidArgument, ErrCodeAccessDenied and
// ErrCodeUpstream. The remaining codes describe transport-level failures of
// the HTTP and MCP front ends.
//
// Usage:
//
//	return vaerrors.New(vaerrors.ErrCodeCommandNotFound, "unknown command: "+name)
//
//	if vaerrors.IsCode(err, vaerrors.ErrCodeAccessDenied) { ... }
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a StructuredError.
type ErrorCode string

const (
	ErrCodeConfig          ErrorCode = "CONFIG_ERROR"
	ErrCodeCommandNotFound ErrorCode = "COMMAND_NOT_FOUND"
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	ErrCodeAccessDenied    ErrorCode = "ACCESS_DENIED"
	ErrCodeUpstream        ErrorCode = "UPSTREAM_ERROR"

	ErrCodeInvalidRequest    ErrorCode = "INVALID_REQUEST"
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrCodeMethodNotAllowed  ErrorCode = "METHOD_NOT_ALLOWED"
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrCodeUnavailable       ErrorCode = "UNAVAILABLE"
	ErrCodeTimeout           ErrorCode = "TIMEOUT"
	ErrCodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	ErrCodeInternal          ErrorCode = "INTERNAL"
)

// StructuredError carries a code, a human message, an optional cause and
// optional key/value context.
type StructuredError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

func (e *StructuredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// New creates a StructuredError without a cause.
func New(code ErrorCode, message string) *StructuredError {
	return &StructuredError{Code: code, Message: message}
}

// Newf is New with fmt.Sprintf formatting.
func Newf(code ErrorCode, format string, args ...any) *StructuredError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap creates a StructuredError around cause.
func Wrap(code ErrorCode, message string, cause error) *StructuredError {
	return &StructuredError{Code: code, Message: message, Cause: cause}
}

// WrapWithContext is Wrap with additional key/value context.
func WrapWithContext(code ErrorCode, message string, cause error, context map[string]any) *StructuredError {
	return &StructuredError{Code: code, Message: message, Cause: cause, Context: context}
}

// CodeOf returns the code of the first StructuredError in err's chain, or
// ErrCodeInternal when there is none.
func CodeOf(err error) ErrorCode {
	var se *StructuredError
	if errors.As(err, &se) {
		return se.Code
	}
	return ErrCodeInternal
}

// IsCode reports whether any StructuredError in err's chain has the given code.
func IsCode(err error, code ErrorCode) bool {
	for err != nil {
		var se *StructuredError
		if !errors.As(err, &se) {
			return false
		}
		if se.Code == code {
			return true
		}
		err = se.Cause
	}
	return false
}

// IsHard reports whether err must be surfaced to the caller instead of being
// degraded to a logged warning.
func IsHard(err error) bool {
	switch CodeOf(err) {
	case ErrCodeConfig, ErrCodeCommandNotFound, ErrCodeInvalidArgument, ErrCodeAccessDenied:
		return true
	default:
		return false
	}
}

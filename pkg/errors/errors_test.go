package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStructuredError_Error(t *testing.T) {
	assert.Equal(t, "boom", New(ErrCodeInternal, "boom").Error())
	assert.Equal(t, "call failed: eof", Wrap(ErrCodeUpstream, "call failed", errors.New("eof")).Error())
}

func TestIsCode(t *testing.T) {
	inner := New(ErrCodeAccessDenied, "denied")
	wrapped := fmt.Errorf("views: %w", inner)
	outer := Wrap(ErrCodeUpstream, "cluster a", wrapped)

	tests := []struct {
		name string
		err  error
		code ErrorCode
		want bool
	}{
		{"direct", inner, ErrCodeAccessDenied, true},
		{"fmt wrapped", wrapped, ErrCodeAccessDenied, true},
		{"outer code", outer, ErrCodeUpstream, true},
		{"nested code", outer, ErrCodeAccessDenied, true},
		{"absent", outer, ErrCodeConfig, false},
		{"plain error", errors.New("x"), ErrCodeInternal, false},
		{"nil", nil, ErrCodeInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCode(tt.err, tt.code))
		})
	}
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrCodeConfig, CodeOf(fmt.Errorf("load: %w", New(ErrCodeConfig, "bad"))))
	assert.Equal(t, ErrCodeInternal, CodeOf(errors.New("plain")))
}

func TestIsHard(t *testing.T) {
	assert.True(t, IsHard(New(ErrCodeInvalidArgument, "x")))
	assert.True(t, IsHard(New(ErrCodeAccessDenied, "x")))
	assert.False(t, IsHard(New(ErrCodeUpstream, "x")))
	assert.False(t, IsHard(errors.New("x")))
}

package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_ErrorString(t *testing.T) {
	plain := Server("upstream unavailable")
	assert.Equal(t, "upstream unavailable", plain.Error())

	cause := errors.New("dial tcp: connection refused")
	wrapped := Wrap(cause, ErrCodeNetwork, "network error")
	assert.Equal(t, "network error: dial tcp: connection refused", wrapped.Error())
}

func TestWrap_NilCause(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeServer, "ignored"))
	assert.Nil(t, Wrapf(nil, ErrCodeServer, "ignored %d", 1))
}

func TestUnwrapChain(t *testing.T) {
	cause := errors.New("boom")
	err := Wrapf(cause, ErrCodeInternal, "store write failed")

	require.True(t, errors.Is(err, cause))

	var appErr *AppError
	require.True(t, errors.As(fmt.Errorf("outer: %w", err), &appErr))
	assert.Equal(t, ErrCodeInternal, appErr.Code)
}

func TestCodePredicates(t *testing.T) {
	tests := []struct {
		err  error
		code ErrorCode
		pred func(error) bool
	}{
		{Network("network error"), ErrCodeNetwork, IsNetwork},
		{AuthExpired("token expired"), ErrCodeAuthExpired, IsAuthExpired},
		{AuthRejected("session invalid"), ErrCodeAuthRejected, IsAuthRejected},
		{Serverf("status %d", 503), ErrCodeServer, IsServer},
		{Validation("email already registered"), ErrCodeValidation, IsValidation},
		{Internal("marshal failed"), ErrCodeInternal, IsInternal},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.True(t, tt.pred(tt.err))
			assert.Equal(t, tt.code, GetCode(tt.err))
			// Predicates see through wrapping.
			assert.True(t, tt.pred(fmt.Errorf("wrapped: %w", tt.err)))
		})
	}

	assert.False(t, IsNetwork(AuthExpired("nope")))
	assert.Equal(t, ErrorCode(""), GetCode(errors.New("plain")))
}

func TestValidationField(t *testing.T) {
	err := ValidationField("email", "email already registered")
	assert.True(t, IsValidation(err))
	assert.Equal(t, "email", GetField(err))
	assert.Equal(t, "", GetField(errors.New("plain")))
}

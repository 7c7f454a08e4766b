package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapError(t *testing.T) {
	tests := []struct {
		name            string
		originalError   error
		message         string
		expectedMessage string
	}{
		{
			name:            "wrap simple error",
			originalError:   errors.New("original error"),
			message:         "wrapper message",
			expectedMessage: "wrapper message: original error",
		},
		{
			name:            "empty wrapper message",
			originalError:   errors.New("original error"),
			message:         "",
			expectedMessage: ": original error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrappedError := WrapError(tt.originalError, tt.message)
			assert.Error(t, wrappedError)
			assert.Equal(t, tt.expectedMessage, wrappedError.Error())
			assert.ErrorIs(t, wrappedError, tt.originalError)
		})
	}
}

func TestWrapError_Nil(t *testing.T) {
	assert.NoError(t, WrapError(nil, "nothing to wrap"))
	assert.NoError(t, WrapErrorf(nil, "nothing to wrap %d", 1))
}

func TestWrapErrorf(t *testing.T) {
	base := errors.New("connection refused")
	err := WrapErrorf(base, "fetch %s failed after %d attempts", "example.com", 3)
	assert.Equal(t, "fetch example.com failed after 3 attempts: connection refused", err.Error())
	assert.ErrorIs(t, err, base)
}

func TestNewError(t *testing.T) {
	tests := []struct {
		name            string
		format          string
		args            []interface{}
		expectedMessage string
	}{
		{
			name:            "simple message",
			format:          "simple error message",
			args:            nil,
			expectedMessage: "simple error message",
		},
		{
			name:            "formatted message",
			format:          "error with value: %d",
			args:            []interface{}{42},
			expectedMessage: "error with value: 42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewError(tt.format, tt.args...)
			assert.Error(t, err)
			assert.Equal(t, tt.expectedMessage, err.Error())
		})
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("threads", 0, "must be at least 1")
	assert.Equal(t, "validation failed for field 'threads': must be at least 1 (value: 0)", err.Error())
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	var validationErr *ValidationError
	assert.True(t, errors.As(WrapError(err, "config"), &validationErr))
	assert.Equal(t, "threads", validationErr.Field)
}

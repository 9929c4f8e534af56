package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	err := ErrInternal("analysis failed")
	assert.Equal(t, "analysis failed", err.Error())

	wrapped := err.WithCause(fmt.Errorf("connection reset"))
	assert.Equal(t, "analysis failed: connection reset", wrapped.Error())
	assert.EqualError(t, wrapped.Unwrap(), "connection reset")
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		err        *AppError
		wantCode   ErrorCode
		wantStatus int
	}{
		{ErrInternal("boom"), ErrCodeInternal, http.StatusInternalServerError},
		{ErrInvalidRequest("bad field"), ErrCodeInvalidRequest, http.StatusBadRequest},
		{ErrInvalidConfig("bad value"), ErrCodeInvalidConfig, http.StatusBadRequest},
		{ErrNotFound("session", "sess-1"), ErrCodeNotFound, http.StatusNotFound},
		{ErrUnavailable("queue full"), ErrCodeUnavailable, http.StatusServiceUnavailable},
	}
	for _, tc := range tests {
		t.Run(string(tc.wantCode), func(t *testing.T) {
			assert.Equal(t, tc.wantCode, tc.err.Code)
			assert.Equal(t, tc.wantStatus, tc.err.HTTPStatus)
		})
	}
}

func TestNotFoundMessageNamesEntity(t *testing.T) {
	err := ErrNotFound("policy", "AI-Policy-Laptop-17")
	assert.Contains(t, err.Message, "policy")
	assert.Contains(t, err.Message, "AI-Policy-Laptop-17")
}

func TestWithMessagef(t *testing.T) {
	err := ErrInvalidRequest("invalid").WithMessagef("invalid scenario %q", "moonbase")
	assert.Equal(t, `invalid scenario "moonbase"`, err.Message)
	assert.Equal(t, ErrCodeInvalidRequest, err.Code)
}

func TestAsAppError(t *testing.T) {
	app := ErrNotFound("device", "SIM-1234")
	require.Same(t, app, AsAppError(app))

	wrapped := fmt.Errorf("handler: %w", app)
	assert.Equal(t, ErrCodeNotFound, AsAppError(wrapped).Code)

	plain := AsAppError(fmt.Errorf("plain failure"))
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.Equal(t, http.StatusInternalServerError, plain.HTTPStatus)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(ErrNotFound("session", "x")))
	assert.True(t, IsNotFound(fmt.Errorf("wrap: %w", ErrNotFound("session", "x"))))
	assert.False(t, IsNotFound(ErrInternal("boom")))
	assert.False(t, IsNotFound(nil))
}

// Package errors defines structured error types for the NAPS service.
// Errors carry a stable code and an HTTP status so interface layers can
// translate them without switching on message text.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ================================================================================
// Error Codes
// ================================================================================

// ErrorCode is a stable, machine-readable error identifier.
type ErrorCode string

const (
	ErrCodeInternal       ErrorCode = "internal_error"
	ErrCodeInvalidRequest ErrorCode = "invalid_request"
	ErrCodeInvalidConfig  ErrorCode = "invalid_configuration"
	ErrCodeNotFound       ErrorCode = "not_found"
	ErrCodeUnavailable    ErrorCode = "service_unavailable"
	ErrCodeConflict       ErrorCode = "conflict"
)

// ================================================================================
// AppError
// ================================================================================

// AppError is the structured application error used across all layers.
type AppError struct {
	Code       ErrorCode
	HTTPStatus int
	Message    string
	cause      error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain support.
func (e *AppError) Unwrap() error {
	return e.cause
}

// WithCause attaches an underlying error and returns a copy.
func (e *AppError) WithCause(cause error) *AppError {
	return &AppError{
		Code:       e.Code,
		HTTPStatus: e.HTTPStatus,
		Message:    e.Message,
		cause:      cause,
	}
}

// WithMessagef returns a copy with a formatted message, keeping code and status.
func (e *AppError) WithMessagef(format string, args ...interface{}) *AppError {
	return &AppError{
		Code:       e.Code,
		HTTPStatus: e.HTTPStatus,
		Message:    fmt.Sprintf(format, args...),
		cause:      e.cause,
	}
}

// New creates an AppError with the given code, HTTP status and message.
func New(code ErrorCode, httpStatus int, message string) *AppError {
	return &AppError{Code: code, HTTPStatus: httpStatus, Message: message}
}

// ================================================================================
// Predefined Constructors
// ================================================================================

// ErrInternal creates a generic internal error.
func ErrInternal(message string) *AppError {
	return New(ErrCodeInternal, http.StatusInternalServerError, message)
}

// ErrInvalidRequest creates a malformed-request error.
func ErrInvalidRequest(message string) *AppError {
	return New(ErrCodeInvalidRequest, http.StatusBadRequest, message)
}

// ErrInvalidConfig creates a configuration validation error. Raised
// synchronously at configuration-apply time; the simulator does not start
// with invalid configuration.
func ErrInvalidConfig(message string) *AppError {
	return New(ErrCodeInvalidConfig, http.StatusBadRequest, message)
}

// ErrNotFound creates an explicit absence signal for a missing entity.
func ErrNotFound(entity, id string) *AppError {
	return New(ErrCodeNotFound, http.StatusNotFound, fmt.Sprintf("%s not found: %s", entity, id))
}

// ErrUnavailable creates an error for an unreachable external dependency.
func ErrUnavailable(message string) *AppError {
	return New(ErrCodeUnavailable, http.StatusServiceUnavailable, message)
}

// ================================================================================
// Inspection Helpers
// ================================================================================

// AsAppError extracts an *AppError from an error chain, wrapping unknown
// errors as internal.
func AsAppError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternal("unexpected error").WithCause(err)
}

// IsNotFound reports whether err is an explicit absence signal.
func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeNotFound
}

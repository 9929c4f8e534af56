// Package dto defines the request and response shapes of the HTTP API.
package dto

import (
	"time"

	"github.com/turtacn/naps/pkg/errors"
)

// APIResponse is the envelope every endpoint responds with.
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *ErrorDTO   `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// ErrorDTO carries a machine-readable error to API clients.
type ErrorDTO struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SuccessResponse wraps data in a success envelope.
func SuccessResponse(data interface{}, requestID string) *APIResponse {
	return &APIResponse{
		Success:   true,
		Data:      data,
		RequestID: requestID,
		Timestamp: time.Now().Unix(),
	}
}

// ErrorResponse wraps an error in the envelope. Unknown errors are reported
// as internal without leaking their message.
func ErrorResponse(err error, requestID string) *APIResponse {
	appErr := errors.AsAppError(err)
	return &APIResponse{
		Success: false,
		Error: &ErrorDTO{
			Code:    string(appErr.Code),
			Message: appErr.Message,
		},
		RequestID: requestID,
		Timestamp: time.Now().Unix(),
	}
}

package apierr

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/onnwee/forcemap/internal/logger"
)

// ErrorCode represents a structured error code
type ErrorCode string

// Error code constants organized by category
const (
	// SIM_ - Simulation state errors
	ErrSimEmpty    ErrorCode = "SIM_EMPTY"
	ErrSimDisabled ErrorCode = "SIM_DISABLED"

	// VALIDATION_ - Request validation errors
	ErrValidationInvalidJSON  ErrorCode = "VALIDATION_INVALID_JSON"
	ErrValidationMissingField ErrorCode = "VALIDATION_MISSING_FIELD"
	ErrValidationInvalidValue ErrorCode = "VALIDATION_INVALID_VALUE"

	// RESOURCE_ - Resource errors
	ErrResourceNotFound ErrorCode = "RESOURCE_NOT_FOUND"

	// RATE_LIMIT_ - Rate limiting errors
	ErrRateLimitGlobal ErrorCode = "RATE_LIMIT_GLOBAL"
	ErrRateLimitIP     ErrorCode = "RATE_LIMIT_IP"

	// SYSTEM_ - System and server errors
	ErrSystemInternal ErrorCode = "SYSTEM_INTERNAL"
)

// Error represents a structured API error
type Error struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	status    int
}

// ErrorResponse is the top-level error response wrapper
type ErrorResponse struct {
	Error *Error `json:"error"`
}

// New creates an Error with the given code, message, and HTTP status.
func New(code ErrorCode, message string, status int) *Error {
	return &Error{Code: code, Message: message, status: status}
}

// WithDetails attaches structured details to the error.
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	e.Details = details
	return e
}

// Write renders the error as JSON, attaching the request ID from ctx
// when present.
func (e *Error) Write(ctx context.Context, w http.ResponseWriter) {
	if reqID, ok := ctx.Value(logger.RequestIDKey).(string); ok {
		e.RequestID = reqID
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: e}); err != nil {
		logger.FromContext(ctx).Error("Failed to encode error response", "error", err)
	}
}

// Convenience constructors for the common cases.

func BadRequest(code ErrorCode, message string) *Error {
	return New(code, message, http.StatusBadRequest)
}

func NotFound(message string) *Error {
	return New(ErrResourceNotFound, message, http.StatusNotFound)
}

func TooManyRequests(code ErrorCode, message string) *Error {
	return New(code, message, http.StatusTooManyRequests)
}

func Internal(message string) *Error {
	return New(ErrSystemInternal, message, http.StatusInternalServerError)
}

// Package errors provides unified error handling for the report pipeline.
// It implements structured error types with error codes, HTTP status mapping,
// and retryable detection.
package errors

import (
	"fmt"
	"net/http"
)

// rawPreviewLimit caps how much raw model output is attached to a
// MALFORMED_RESPONSE error for diagnostics.
const rawPreviewLimit = 512

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Common Error Constructors ---

// GenerationFailed creates a new AppError for a failed text-generation call.
func GenerationFailed(cause error) *AppError {
	return &AppError{
		Code: ErrCodeGenerationFailed, Message: "The report generation service encountered an error.",
		HTTPStatus: http.StatusBadGateway, Retryable: true, Cause: cause,
	}
}

// TranscriptionFailed creates a new AppError for a transcription job that
// ended in a terminal FAILED state.
func TranscriptionFailed(reason string) *AppError {
	e := &AppError{
		Code: ErrCodeTranscriptionFailed, Message: "Transcription failed.",
		HTTPStatus: http.StatusBadGateway, Retryable: false,
	}
	if reason != "" {
		e.Details = map[string]any{"reason": reason}
	}
	return e
}

// MalformedResponse creates a new AppError for model output that contained no
// parseable JSON record. A truncated copy of the raw text is attached for
// diagnostics.
func MalformedResponse(raw string, cause error) *AppError {
	if len(raw) > rawPreviewLimit {
		raw = raw[:rawPreviewLimit]
	}
	return &AppError{
		Code: ErrCodeMalformedResponse, Message: "Model response did not contain a valid JSON report.",
		HTTPStatus: http.StatusBadGateway, Retryable: false,
		Details: map[string]any{"raw": raw}, Cause: cause,
	}
}

// StorageError creates a new AppError for a failed storage operation.
func StorageError(operation string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeStorageError, Message: "A storage error occurred. Please try again.",
		HTTPStatus: http.StatusInternalServerError, Retryable: true,
		Details: map[string]any{"operation": operation}, Cause: cause,
	}
}

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Retryable: false, Details: details,
	}
}

// MissingField creates a new AppError for a missing required field.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("Missing required field: %s", field),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"field": field},
	}
}

// NotFound creates a new AppError for a resource that was not found.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("The requested %s was not found.", resource),
		HTTPStatus: http.StatusNotFound, Retryable: false, Details: details,
	}
}

// Timeout creates a new AppError for an operation that exceeded its allotted time.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: "The operation took too long. Please try again.",
		HTTPStatus: http.StatusGatewayTimeout, Retryable: true,
		Details: map[string]any{"operation": operation},
	}
}

// Internal creates a new AppError for an internal server error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred. Please try again or contact support.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}

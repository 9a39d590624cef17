package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Pipeline errors
const (
	// ErrCodeGenerationFailed indicates the text-generation service rejected or
	// failed a report generation call.
	ErrCodeGenerationFailed ErrorCode = "GENERATION_FAILED"
	// ErrCodeTranscriptionFailed indicates a transcription job ended in a
	// terminal FAILED state.
	ErrCodeTranscriptionFailed ErrorCode = "TRANSCRIPTION_FAILED"
	// ErrCodeMalformedResponse indicates model output contained no parseable
	// JSON record.
	ErrCodeMalformedResponse ErrorCode = "MALFORMED_RESPONSE"
	// ErrCodeStorageError indicates an object storage operation failed.
	ErrCodeStorageError ErrorCode = "STORAGE_ERROR"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Resource and internal errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeTimeout indicates an operation exceeded its allotted time.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeGenerationFailed: true,
	ErrCodeStorageError:     true,
	ErrCodeTimeout:          true,
}

// IsRetryableCode returns true if the error code indicates an error the caller
// may retry. Nothing inside the pipeline retries automatically; the flag is
// advice for clients.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}

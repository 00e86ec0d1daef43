package errors

import (
	"errors"
	"fmt"
)

// CustomError represents an application error with metadata
type CustomError struct {
	Code       string // Machine-readable error code
	Message    string // Human-readable message
	StatusCode int    // HTTP status code
	Cause      error  // Underlying error
}

// Error implements the error interface
func (e *CustomError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface for wrapping errors
func (e *CustomError) Unwrap() error {
	return e.Cause
}

// Is checks if an error is of a specific type
func (e *CustomError) Is(target error) bool {
	t, ok := target.(*CustomError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewCustomError creates a new custom error
func NewCustomError(code string, message string, statusCode int) *CustomError {
	return &CustomError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// WithCause returns a copy carrying the underlying error
func (e *CustomError) WithCause(err error) *CustomError {
	c := *e
	c.Cause = err
	return &c
}

// WithMessage returns a copy with a different user-facing message
func (e *CustomError) WithMessage(message string) *CustomError {
	c := *e
	c.Message = message
	return &c
}

// Pre-defined errors
var (
	// Validation errors (400)
	ErrURLRequired = NewCustomError(
		"URL_REQUIRED",
		"URL is required",
		400,
	)

	ErrInvalidProxyURL = NewCustomError(
		"INVALID_PROXY_URL",
		"Missing or invalid 'url' parameter",
		400,
	)

	// Forbidden (403)
	ErrProxyHostDenied = NewCustomError(
		"PROXY_HOST_DENIED",
		"Host is not allowed by this proxy",
		403,
	)

	// Server errors (500)
	ErrExtractionFailed = NewCustomError(
		"EXTRACTION_ERROR",
		"Media extraction failed",
		500,
	)

	ErrProcessingFailed = NewCustomError(
		"PROCESSING_ERROR",
		"Failed to process video",
		500,
	)

	// Upstream errors (502)
	ErrUpstreamFailed = NewCustomError(
		"UPSTREAM_ERROR",
		"Failed to fetch upstream media",
		502,
	)
)

// IsCustomError checks if an error is a CustomError
func IsCustomError(err error) bool {
	var customErr *CustomError
	return errors.As(err, &customErr)
}

// GetStatusCode extracts HTTP status code from an error
func GetStatusCode(err error) int {
	var customErr *CustomError
	if errors.As(err, &customErr) {
		return customErr.StatusCode
	}
	return 500 // Default to internal server error
}

// GetErrorCode extracts error code from an error
func GetErrorCode(err error) string {
	var customErr *CustomError
	if errors.As(err, &customErr) {
		return customErr.Code
	}
	return "UNKNOWN_ERROR"
}

// GetErrorMessage extracts the user-facing message from an error.
// Errors outside the taxonomy surface their own text.
func GetErrorMessage(err error) string {
	var customErr *CustomError
	if errors.As(err, &customErr) {
		return customErr.Message
	}
	if err == nil {
		return "An unknown error occurred"
	}
	return err.Error()
}

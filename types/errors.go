package types

import (
	"errors"
	"fmt"
)

// DiffErrorCode represents categorized error codes for comparison runs
type DiffErrorCode string

const (
	// Fatal before any page work
	ErrCodeOpen         DiffErrorCode = "OPEN_ERROR"
	ErrCodeInvalidInput DiffErrorCode = "INVALID_INPUT"

	// Contained: downgraded to a page diagnostic
	ErrCodePageProcessing DiffErrorCode = "PAGE_PROCESSING_ERROR"

	// Fatal after comparison: nothing is written
	ErrCodeRender DiffErrorCode = "RENDER_ERROR"
	ErrCodeIO     DiffErrorCode = "IO_ERROR"

	ErrCodeCancelled DiffErrorCode = "CANCELLED"
)

// DiffError is a structured error type for comparison runs
type DiffError struct {
	Code    DiffErrorCode          // Error category code
	Message string                 // Human-readable message
	Cause   error                  // Underlying error (if any)
	Context map[string]interface{} // Additional context (path, page, artifact)
}

// Error implements the error interface
func (e *DiffError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DiffError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches a target DiffError by code
func (e *DiffError) Is(target error) bool {
	if t, ok := target.(*DiffError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithContext adds context to the error and returns the same error for chaining
func (e *DiffError) WithContext(key string, value interface{}) *DiffError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewDiffError creates a new DiffError with the given code and message
func NewDiffError(code DiffErrorCode, message string) *DiffError {
	return &DiffError{
		Code:    code,
		Message: message,
	}
}

// NewDiffErrorf creates a new DiffError with a formatted message
func NewDiffErrorf(code DiffErrorCode, format string, args ...interface{}) *DiffError {
	return &DiffError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapError wraps an existing error with a DiffError
func WrapError(code DiffErrorCode, message string, cause error) *DiffError {
	return &DiffError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapErrorf wraps an existing error with a DiffError and formatted message
func WrapErrorf(code DiffErrorCode, cause error, format string, args ...interface{}) *DiffError {
	return &DiffError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Sentinel errors for use with errors.Is()
var (
	ErrOpen           = &DiffError{Code: ErrCodeOpen}
	ErrInvalidInput   = &DiffError{Code: ErrCodeInvalidInput}
	ErrPageProcessing = &DiffError{Code: ErrCodePageProcessing}
	ErrRender         = &DiffError{Code: ErrCodeRender}
	ErrIO             = &DiffError{Code: ErrCodeIO}
	ErrCancelled      = &DiffError{Code: ErrCodeCancelled}
)

// AsDiffError finds the first DiffError in err's chain
func AsDiffError(err error) (*DiffError, bool) {
	var diffErr *DiffError
	if errors.As(err, &diffErr) {
		return diffErr, true
	}
	return nil, false
}

// GetErrorCode extracts the error code from an error if it carries one
func GetErrorCode(err error) (DiffErrorCode, bool) {
	if diffErr, ok := AsDiffError(err); ok {
		return diffErr.Code, true
	}
	return "", false
}

// IsFatal reports whether err aborts a run. Page processing errors are the
// only contained category; anything else, including foreign errors, is fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	code, ok := GetErrorCode(err)
	return !ok || code != ErrCodePageProcessing
}

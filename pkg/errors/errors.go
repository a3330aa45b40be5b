// Package errors provides structured errors with stable codes for topd.
// Codes let callers (and tests) branch on the kind of failure without
// string-matching messages.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// Pattern errors
	ErrPatternCompile ErrorCode = "PATTERN_COMPILE"

	// Path resolution errors
	ErrAmbiguousPath ErrorCode = "AMBIGUOUS_PATH"
	ErrRender        ErrorCode = "RENDER"

	// Top file errors
	ErrMalformedTop      ErrorCode = "MALFORMED_TOP"
	ErrMissingDefaultTop ErrorCode = "MISSING_DEFAULT_TOP"
	ErrIncludeCycle      ErrorCode = "INCLUDE_CYCLE"

	// Filesystem errors
	ErrFileAccess    ErrorCode = "FILE_ACCESS"
	ErrDirCreate     ErrorCode = "DIR_CREATE"
	ErrSymlinkCreate ErrorCode = "SYMLINK_CREATE"
	ErrSymlinkRemove ErrorCode = "SYMLINK_REMOVE"
)

// TopdError represents a structured error with code and details
type TopdError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *TopdError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *TopdError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *TopdError) Is(target error) bool {
	var targetErr *TopdError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new TopdError with the given code and message
func New(code ErrorCode, message string) *TopdError {
	return &TopdError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new TopdError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *TopdError {
	return &TopdError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a TopdError
func Wrap(err error, code ErrorCode, message string) *TopdError {
	if err == nil {
		return nil
	}
	return &TopdError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *TopdError {
	if err == nil {
		return nil
	}
	return &TopdError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *TopdError) WithDetail(key string, value interface{}) *TopdError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var topdErr *TopdError
	if errors.As(err, &topdErr) {
		return topdErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a TopdError
func GetErrorCode(err error) ErrorCode {
	var topdErr *TopdError
	if errors.As(err, &topdErr) {
		return topdErr.Code
	}
	return ErrUnknown
}

// Package errors defines common error types for the application.
package errors

import (
	"errors"
	"fmt"
)

// Error codes for the application.
const (
	CodeUnknown            = "UNKNOWN_ERROR"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeWidthRange         = "WIDTH_RANGE"
	CodeAddressRange       = "ADDRESS_RANGE"
	CodeMalformedBounds    = "MALFORMED_BOUNDS"
	CodeInvariantViolation = "INVARIANT_VIOLATION"
	CodeSealedCube         = "SEALED_CUBE"
	CodeParseError         = "PARSE_ERROR"
	CodeConfigError        = "CONFIG_ERROR"
	CodeStorageError       = "STORAGE_ERROR"
	CodeDatabaseError      = "DATABASE_ERROR"
	CodeSerializeError     = "SERIALIZE_ERROR"
	CodeNotFound           = "NOT_FOUND"
)

// AppError represents an application error with a code and message.
type AppError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError.
func New(code string, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new AppError with a formatted message.
func Newf(code string, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with an AppError.
func Wrap(code string, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error instances.
var (
	ErrInvalidInput       = New(CodeInvalidInput, "invalid input")
	ErrWidthRange         = New(CodeWidthRange, "dimension width out of range")
	ErrAddressRange       = New(CodeAddressRange, "address out of range")
	ErrMalformedBounds    = New(CodeMalformedBounds, "malformed query bounds")
	ErrInvariantViolation = New(CodeInvariantViolation, "cube invariant violated")
	ErrSealedCube         = New(CodeSealedCube, "cube is sealed against inserts")
	ErrParseError         = New(CodeParseError, "parse error")
	ErrConfigError        = New(CodeConfigError, "configuration error")
	ErrStorageError       = New(CodeStorageError, "storage error")
	ErrDatabaseError      = New(CodeDatabaseError, "database error")
	ErrSerializeError     = New(CodeSerializeError, "serialization error")
	ErrNotFound           = New(CodeNotFound, "resource not found")
)

// IsInvariantViolation checks if the error is an invariant violation.
func IsInvariantViolation(err error) bool {
	return errors.Is(err, ErrInvariantViolation)
}

// IsAddressRange checks if the error is an out-of-range address error.
func IsAddressRange(err error) bool {
	return errors.Is(err, ErrAddressRange)
}

// IsMalformedBounds checks if the error is a malformed bounds error.
func IsMalformedBounds(err error) bool {
	return errors.Is(err, ErrMalformedBounds)
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetErrorMessage extracts the error message from an error.
func GetErrorMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

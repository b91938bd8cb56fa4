// Package errors carries coded errors across the app and CLI layers. Domain
// failures stay core sentinels; this layer says which subsystem failed.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Error codes
const (
	CodeConfigInvalid   = "CONFIG_INVALID"
	CodeDatabaseError   = "DATABASE_ERROR"
	CodeValidationError = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeInternalError   = "INTERNAL_ERROR"
	CodeIOError         = "IO_ERROR"
	CodeInvalidInput    = "INVALID_INPUT"
)

// AppError is an error with a code, a message and an optional cause
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates an AppError without a cause
func New(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap adds context, keeping the innermost code; foreign errors become
// INTERNAL_ERROR
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &AppError{Code: codeOf(err, CodeInternalError), Message: message, Cause: err}
}

// WithCode recodes err, keeping its message
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{Code: code, Message: appErr.Message, Cause: appErr.Cause}
	}
	return &AppError{Code: code, Message: err.Error(), Cause: err}
}

// GetCode returns the outermost code in err's chain, or "UNKNOWN"
func GetCode(err error) string {
	return codeOf(err, "UNKNOWN")
}

// HasCode reports whether err carries code
func HasCode(err error, code string) bool {
	return GetCode(err) == code
}

func codeOf(err error, fallback string) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return fallback
}

func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

// Database wraps a failed statement; op names what was attempted
func Database(op string, cause error) *AppError {
	return &AppError{Code: CodeDatabaseError, Message: op, Cause: cause}
}

// Validation wraps a rejected parameter set, e.g. core.ErrInvalidOptions
func Validation(cause error) *AppError {
	return &AppError{Code: CodeValidationError, Message: "invalid parameters", Cause: cause}
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

// IOError wraps a failed read or write of path
func IOError(path string, cause error) *AppError {
	return &AppError{Code: CodeIOError, Message: fmt.Sprintf("i/o failure on %s", path), Cause: cause}
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

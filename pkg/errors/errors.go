// Package errors provides structured error types for chartdir.
//
// Every failure that reaches a caller (a script, an HTTP client or the CLI)
// carries a machine-readable [Code] and a human-readable message. Command
// errors keep the wording scripts have always matched on, for example
// "Invalid or expired chart object" or "wrong layer #".
//
// # Error Codes
//
// Codes follow a hierarchical naming convention:
//   - INVALID_*: malformed arguments or values
//   - *_NOT_FOUND: missing resources (charts, files)
//   - RENDER, STORE, INTERNAL: failures below the command layer
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidColor, "expected integer but got %q", s)
//	if errors.Is(err, errors.ErrCodeInvalidColor) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeStore, origErr, "load chart %d", id)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeUsage         Code = "USAGE"
	ErrCodeUnknown       Code = "UNKNOWN_COMMAND"
	ErrCodeInvalidColor  Code = "INVALID_COLOR"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeWrongType     Code = "WRONG_CHART_TYPE"
	ErrCodeInvalidLayer  Code = "INVALID_LAYER"
	ErrCodeNoLayerSlots  Code = "NO_LAYER_SLOTS"

	// Resource not found errors
	ErrCodeNotFound      Code = "NOT_FOUND"
	ErrCodeChartNotFound Code = "CHART_NOT_FOUND"
	ErrCodeFileNotFound  Code = "FILE_NOT_FOUND"

	// Host errors
	ErrCodeNoConnection Code = "NO_CONNECTION"

	// Internal errors
	ErrCodeRender      Code = "RENDER"
	ErrCodeStore       Code = "STORE"
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Usage builds the wrong-number-of-arguments error for a command.
// The usage string lists the expected arguments, e.g. "create type width height".
func Usage(usage string) *Error {
	return &Error{
		Code:    ErrCodeUsage,
		Message: fmt.Sprintf("wrong # args: should be %q", "chartdir "+usage),
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil && e.Code != ErrCodeUsage {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}

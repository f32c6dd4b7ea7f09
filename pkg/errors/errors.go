// Package errors provides structured error types for tex2svg.
//
// Every failure the program can report maps to one [Code]. The code decides
// the failure category printed on stderr, while the message carries the
// detail from the underlying cause (for example the renderer's own error
// text).
//
// # Error Codes
//
//   - EMPTY_INPUT: standard input was empty or whitespace only
//   - INPUT_READ: standard input could not be read
//   - INIT_FAILED: the renderer could not be configured or started
//   - RENDER_FAILED: the renderer rejected the expression
//   - OUTPUT_FAILED: the SVG could not be written
//   - INVALID_OPTION: a command-line option is out of range
//   - INTERNAL_ERROR: anything else
//
// # Usage
//
//	err := errors.New(errors.ErrCodeEmptyInput, "no LaTeX input provided on stdin")
//	if errors.Is(err, errors.ErrCodeEmptyInput) {
//	    // Handle empty input
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeRender, origErr, "render %q", tex)
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the failure categories of a conversion.
const (
	// Input errors
	ErrCodeEmptyInput Code = "EMPTY_INPUT"
	ErrCodeInputRead  Code = "INPUT_READ"

	// Renderer errors
	ErrCodeInit   Code = "INIT_FAILED"
	ErrCodeRender Code = "RENDER_FAILED"

	// Output errors
	ErrCodeOutput Code = "OUTPUT_FAILED"

	// Usage errors
	ErrCodeInvalidOption Code = "INVALID_OPTION"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// categories maps codes to the human label shown in diagnostics.
var categories = map[Code]string{
	ErrCodeEmptyInput:    "no input",
	ErrCodeInputRead:     "input error",
	ErrCodeInit:          "initialization failed",
	ErrCodeRender:        "render failed",
	ErrCodeOutput:        "output error",
	ErrCodeInvalidOption: "invalid option",
	ErrCodeInternal:      "internal error",
}

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
// For *Error types, returns the message followed by the cause, without any
// code prefixes. For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %s", e.Message, UserMessage(e.Cause))
		}
		return e.Message
	}
	return err.Error()
}

// Category returns the human label for code, falling back to the internal
// error label for unknown codes.
func Category(code Code) string {
	if c, ok := categories[code]; ok {
		return c
	}
	return categories[ErrCodeInternal]
}

// Diagnostic formats err as the single line printed on stderr.
// Line breaks in the underlying message are folded into spaces.
func Diagnostic(err error) string {
	msg := strings.Join(strings.Fields(UserMessage(err)), " ")
	return fmt.Sprintf("Error: %s: %s", Category(GetCode(err)), msg)
}

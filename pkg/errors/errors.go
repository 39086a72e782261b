// Package errors provides structured error types for nprs.
//
// Every failure raised while compiling, verifying or rendering a render
// graph carries a machine-readable [Code]. Codes are grouped by the layer
// that produces them:
//
//   - Syntax: INVALID_SYNTAX, INVALID_ARGUMENT
//   - Interpreter: UNDEFINED_VARIABLE, INVALID_PASS_ASSIGNMENT, ...
//   - Binding: WRONG_TYPE, DUPLICATE_FIELD, UNKNOWN_FIELD, ...
//   - Registry: UNKNOWN_PASS
//   - Graph build: DUPLICATE_NAME, UNDEFINED_PASS, MISSING_DISPLAY
//   - Verification: CYCLIC_GRAPH, MULTIPLE_ROOTS, ISOLATED_NODE, ...
//
// # Usage
//
//	err := errors.New(errors.ErrCodeUndefinedVariable, "undefined variable '%s'", name)
//	if errors.Is(err, errors.ErrCodeUndefinedVariable) {
//	    // Handle the failure
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidInput, origErr, "read %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidSyntax   Code = "INVALID_SYNTAX"
	ErrCodeInvalidArgument Code = "INVALID_ARGUMENT"
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"

	// Interpreter errors
	ErrCodeUndefinedVariable     Code = "UNDEFINED_VARIABLE"
	ErrCodeInvalidPassAssignment Code = "INVALID_PASS_ASSIGNMENT"
	ErrCodeMultipleDisplays      Code = "MULTIPLE_DISPLAYS"
	ErrCodeMissingArgument       Code = "MISSING_ARGUMENT"
	ErrCodeInvalidType           Code = "INVALID_TYPE"

	// Binding errors
	ErrCodeWrongType      Code = "WRONG_TYPE"
	ErrCodeDuplicateField Code = "DUPLICATE_FIELD"
	ErrCodeUnknownField   Code = "UNKNOWN_FIELD"
	ErrCodeMissingField   Code = "MISSING_FIELD"
	ErrCodeUnknownVariant Code = "UNKNOWN_VARIANT"

	// Registry errors
	ErrCodeUnknownPass Code = "UNKNOWN_PASS"

	// Graph build errors
	ErrCodeDuplicateName  Code = "DUPLICATE_NAME"
	ErrCodeUndefinedPass  Code = "UNDEFINED_PASS"
	ErrCodeMissingDisplay Code = "MISSING_DISPLAY"

	// Verification errors
	ErrCodeCyclicGraph          Code = "CYCLIC_GRAPH"
	ErrCodeMultipleRoots        Code = "MULTIPLE_ROOTS"
	ErrCodeIsolatedNode         Code = "ISOLATED_NODE"
	ErrCodeBadDependencyCount   Code = "BAD_DEPENDENCY_COUNT"
	ErrCodeMissingDependency    Code = "MISSING_DEPENDENCY"
	ErrCodeMismatchedDependency Code = "MISMATCHED_DEPENDENCY"
	ErrCodeNotVerified          Code = "NOT_VERIFIED"

	// Internal errors
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
		if e.Cause != nil {
			return fmt.Sprintf("%s: %s", e.Message, UserMessage(e.Cause))
		}
		return e.Message
	}
	return err.Error()
}

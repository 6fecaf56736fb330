// Package domainerrors (imported as dErrors) provides coded errors that
// services raise and the transport layer translates into HTTP responses.
// Codes classify the failure; messages are safe to surface to callers.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error for transport mapping and branching.
type Code string

const (
	// CodeValidation marks malformed or missing input fields (HTTP 422).
	CodeValidation Code = "validation_error"
	// CodeInvalidInput marks a value rejected at a trust boundary, such as a
	// malformed UUID in a path segment (HTTP 422).
	CodeInvalidInput Code = "invalid_input"
	// CodeBadRequest marks a structurally valid request that violates a
	// business rule (HTTP 400).
	CodeBadRequest Code = "bad_request"
	// CodeUnauthorized marks a request with no valid subject (HTTP 401).
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden marks a policy denial for an authenticated subject (HTTP 403).
	CodeForbidden Code = "forbidden"
	// CodeNotFound marks a missing entity referenced by external UUID (HTTP 404).
	CodeNotFound Code = "not_found"
	// CodeInvariantViolation marks a broken model invariant; services convert
	// it to CodeValidation before it reaches a caller.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeInternal marks an unexpected infrastructure failure (HTTP 500).
	CodeInternal Code = "internal_error"
)

// Error is the concrete coded error. Fields carries optional per-field
// validation detail for 422 responses.
type Error struct {
	Code    Code
	Message string
	Fields  map[string]string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error with a caller-safe message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted caller-safe message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and caller-safe message to an underlying error. The
// cause is preserved for logs but never serialized to callers.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// WithFields creates a validation error carrying per-field detail.
func WithFields(message string, fields map[string]string) error {
	return &Error{Code: CodeValidation, Message: message, Fields: fields}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.cause
		de = nil
	}
	return false
}

// Is is a readability alias for HasCode used at call sites that branch on a
// single code.
func Is(err error, code Code) bool { return HasCode(err, code) }

// CodeOf returns the outermost code carried by err, or CodeInternal when err
// is not a domain error.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf returns the outermost caller-safe message, or a generic one when
// err is not a domain error.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal error"
}

// FieldsOf returns per-field validation detail if err carries any.
func FieldsOf(err error) map[string]string {
	var de *Error
	if errors.As(err, &de) {
		return de.Fields
	}
	return nil
}

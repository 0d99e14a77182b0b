// Package domainerrors provides code-classified errors for domain and
// service logic. Stores return sentinel errors (pkg/platform/sentinel);
// services translate those into coded errors so transports can map them
// to stable, machine-readable responses.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error. Codes are part of the API contract:
// clients branch on them, so treat renames as breaking changes.
type Code string

const (
	// CodeValidation marks malformed or missing fields on a write.
	// Nothing happened; the caller should fix the request.
	CodeValidation Code = "validation"

	// CodeInvalidInput marks a value that failed parsing at a trust boundary.
	CodeInvalidInput Code = "invalid_input"

	// CodeBadRequest marks a structurally broken request (bad JSON, etc).
	CodeBadRequest Code = "bad_request"

	// CodeUnauthorized marks missing or invalid authentication.
	CodeUnauthorized Code = "unauthorized"

	// CodeForbidden marks a scope denial. Deliberately distinct from
	// CodeNotFound so authorization failures stay observable.
	CodeForbidden Code = "forbidden"

	// CodeNotFound marks a resource that does not exist in any scope.
	CodeNotFound Code = "not_found"

	// CodeConflict marks a uniqueness or state conflict.
	CodeConflict Code = "conflict"

	// CodeInvariantViolation marks a domain invariant breach.
	CodeInvariantViolation Code = "invariant_violation"

	// CodeInternal marks an unexpected failure. Details are logged, never
	// returned to callers.
	CodeInternal Code = "internal_error"
)

// Error is a coded domain error. It wraps an optional cause so errors.Is
// and errors.As keep working through the translation layers.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error without a cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying cause.
// A nil cause returns nil so call sites can wrap unconditionally.
func Wrap(cause error, code Code, message string) error {
	if cause == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: cause}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.cause
		if err == nil {
			return false
		}
	}
	return false
}

// CodeOf returns the outermost code carried by err, or CodeInternal when
// err carries no code at all.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// Is re-exports errors.Is so call sites importing this package under a
// short alias do not also need the stdlib errors import.
func Is(err, target error) bool { return errors.Is(err, target) }

// Package domainerrors provides coded errors for the domain layer. Codes let
// callers branch on error class without string matching, and keep the
// presentation layer's messaging concerns out of the core.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error.
type Code string

const (
	// CodeInvalidInput marks validation failures: malformed or missing
	// required fields, an action outside the audit vocabulary, or a
	// pseudonym collision after the retry budget is exhausted.
	CodeInvalidInput Code = "invalid_input"

	// CodeNotFound marks lookups that require a match and found none.
	CodeNotFound Code = "not_found"

	// CodeStorage wraps store-level I/O failures with their underlying cause.
	CodeStorage Code = "storage"

	// CodeInvariantViolation marks states the schema should have prevented,
	// e.g. a duplicate pseudonym written by a gateway bypass.
	CodeInvariantViolation Code = "invariant_violation"
)

// Error is a coded domain error. It may wrap an underlying cause.
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

// Is makes errors.Is match on code equality so callers can compare against
// New(code, "") style targets.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New constructs a coded error without a cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf constructs a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error. A nil cause
// returns nil so call sites can wrap unconditionally.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// CodeOf extracts the code from err, or empty when err is not a domain error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// Package derrors provides coded domain errors. Codes classify failures for
// transport layers without leaking implementation details across boundaries.
package derrors

import (
	"errors"
	"fmt"
)

// Code identifies the class of a domain error.
type Code string

const (
	// CodeInvalidInput marks malformed or missing request data.
	CodeInvalidInput Code = "invalid_input"

	// CodeInvalidTransition marks an action that is illegal for the case's
	// current stage. Client error; never retried.
	CodeInvalidTransition Code = "invalid_transition"

	// CodeNotFound marks a missing case or record.
	CodeNotFound Code = "not_found"

	// CodeConflict marks write races and ambiguous idempotency replays.
	// Callers should re-read and retry.
	CodeConflict Code = "conflict"

	// CodeUnauthorized marks unknown, expired or mis-signed approval tokens.
	CodeUnauthorized Code = "unauthorized"

	// CodeUnavailable marks a transient external failure that exhausted its
	// retry budget. Safe to retry later.
	CodeUnavailable Code = "unavailable"

	// CodeInternal marks unexpected failures.
	CodeInternal Code = "internal"
)

// Error is a domain error with a classification code.
type Error struct {
	code    Code
	message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Code returns the error's classification code.
func (e *Error) Code() Code {
	return e.code
}

// New creates a domain error with the given code and message.
func New(code Code, message string) error {
	return &Error{code: code, message: message}
}

// Newf creates a domain error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{code: code, message: fmt.Sprintf(format, args...)}
}

// Wrap annotates an existing error with a code and message. The cause is
// preserved for errors.Is/As chains.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{code: code, message: message, cause: err}
}

// CodeOf extracts the code from an error chain, or CodeInternal if the chain
// contains no domain error.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.code
	}
	return CodeInternal
}

// HasCode reports whether the error chain carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.code == code
	}
	return false
}

// Package domainerrors provides coded domain errors. Services wrap
// infrastructure failures and validation rejections into these so transport
// layers can map them to user-facing responses without inspecting error
// strings. Conventionally imported as dErrors.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error for transport mapping and caller retry
// decisions.
type Code string

const (
	// Ledger rejection codes. Each corresponds to exactly one user-correctable
	// (or retryable) failure mode of a ledger operation.
	CodeInvalidAmount       Code = "invalid_amount"
	CodeAccountNotFound     Code = "account_not_found"
	CodeAccountExists       Code = "account_exists"
	CodeInsufficientFunds   Code = "insufficient_funds"
	CodeUnauthorized        Code = "unauthorized"
	CodeConcurrencyConflict Code = "concurrency_conflict"

	// Ambient codes shared across the codebase.
	CodeBadRequest         Code = "bad_request"
	CodeInvariantViolation Code = "invariant_violation"
	CodeUnavailable        Code = "unavailable"
	CodeInternal           Code = "internal_error"
)

// Error carries a code, a human-readable message and an optional cause.
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

// New constructs a domain error with no underlying cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error. The cause stays
// reachable through errors.Is/errors.As.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) is a domain error with
// the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf returns the code of err, or CodeInternal when err carries none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// Retryable reports whether the caller may usefully retry the same request.
// Everything else needs a corrected request.
func Retryable(err error) bool {
	switch CodeOf(err) {
	case CodeConcurrencyConflict, CodeUnavailable:
		return true
	}
	return false
}

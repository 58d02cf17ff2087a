// Package domainerrors defines the gateway's failure taxonomy.
//
// Services return *Error values tagged with a Code. Transport code maps the
// code to an HTTP status and a stable machine-readable error_code via
// pkg/platform/httputil. Anything that is not an *Error is treated as an
// unexpected internal failure.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies the kind of a domain failure.
type Code string

const (
	// CodeValidation is a local precondition failure (e.g. password mismatch).
	CodeValidation Code = "validation_failed"
	// CodeRegistrationFailed means a downstream create was rejected.
	CodeRegistrationFailed Code = "registration_failed"
	// CodeLoginFailed means the credential exchange was rejected.
	CodeLoginFailed Code = "login_failed"
	// CodeUserNotFound covers lookup misses and missing or invalid identity claims.
	CodeUserNotFound Code = "user_not_found"
	// CodeInvalidRequest is a malformed inbound payload.
	CodeInvalidRequest Code = "invalid_request"
	// CodeInternal is an unexpected failure.
	CodeInternal Code = "internal_error"
)

// Error is a domain failure carrying a Code and a user-facing message.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a domain error without an underlying cause.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Wrap tags err with a domain code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// As extracts the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HasCode reports whether err carries the given domain code.
func HasCode(err error, code Code) bool {
	de, ok := As(err)
	return ok && de.Code == code
}

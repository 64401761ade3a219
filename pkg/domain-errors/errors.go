// Package domainerrors defines the coded error type shared by services and
// the HTTP layer. Services classify every expected failure into one of these
// codes; the transport layer maps codes to status lines without inspecting
// error strings.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a class of failure. The string form is what clients see in
// the response envelope, so codes are stable API.
type Code string

const (
	// CodeValidation is a field-scoped, client-correctable input failure.
	CodeValidation Code = "validation_error"
	// CodePrecondition means wizard steps were called out of order.
	CodePrecondition Code = "precondition_failed"
	// CodeSessionExpired means the registration window lapsed; the session is
	// destroyed as a side effect of reporting this.
	CodeSessionExpired Code = "session_expired"
	// CodeNotFound means the resource key is unknown.
	CodeNotFound Code = "not_found"
	// CodeConflict means a uniqueness constraint was violated.
	CodeConflict Code = "conflict"
	// CodeDecode means stored attachment text could not be decoded.
	CodeDecode Code = "decode_error"
	// CodeCommitFailed means the final transaction rolled back; the session is
	// preserved so the caller may retry.
	CodeCommitFailed Code = "commit_failed"

	CodeUnauthorized Code = "unauthorized"
	CodeBadRequest   Code = "bad_request"
	CodeInternal     Code = "internal_error"
	CodeTimeout      Code = "timeout"
)

// Error carries a code, a human-readable message and, for validation
// failures, a field-keyed map of what was wrong with each input.
type Error struct {
	Code    Code
	Message string
	Fields  map[string]string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is lets errors.Is match two coded errors by code (and message, when the
// target specifies one).
func (e *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Code != te.Code {
		return false
	}
	return te.Message == "" || te.Message == e.Message
}

// New builds a coded error with no underlying cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf builds a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error so callers can both
// classify it and still unwrap the cause.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// WithFields builds a validation-class error carrying a field-keyed map of
// messages. The map surfaces to the client as the envelope data.
func WithFields(code Code, message string, fields map[string]string) *Error {
	return &Error{Code: code, Message: message, Fields: fields}
}

// Is reports whether err (or anything it wraps) carries the given code.
func Is(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for
// unclassified errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code onto the status line the envelope ships with.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeValidation, CodePrecondition, CodeSessionExpired, CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeDecode, CodeCommitFailed, CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

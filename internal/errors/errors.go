// Package errors provides standardized domain errors with codes for the
// Shoebox client.
//
// Usage:
//
//	// In services - return typed errors
//	if !loggedIn {
//	    return errors.NotLoggedIn("no valid session")
//	}
//
//	// In callers - check with errors.Is
//	if errors.Is(err, errors.ErrNotLoggedIn) {
//	    // prompt for sign-in
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	// CodeTransport covers network and HTTP failures. Retryable by
	// re-invoking the operation later; never retried internally.
	CodeTransport Code = "TRANSPORT"
	// CodeNotLoggedIn means no valid session exists. The UI decides
	// whether to prompt again.
	CodeNotLoggedIn Code = "NOT_LOGGED_IN"
	// CodeServerRejected carries GraphQL field errors returned instead
	// of data.
	CodeServerRejected Code = "SERVER_REJECTED"
	// CodeLocalStorage covers store transactions and (de)serialization,
	// kept distinct so the UI can tell "your device" from "the network".
	CodeLocalStorage Code = "LOCAL_STORAGE"
	CodeNotFound     Code = "NOT_FOUND"
	CodeValidation   Code = "VALIDATION"
	CodeInternal     Code = "INTERNAL"
)

// Title returns the human-readable category for an error code. Raw detail
// text is carried by the error cause and shown as supplementary content.
func (c Code) Title() string {
	switch c {
	case CodeTransport:
		return "Server unreachable"
	case CodeNotLoggedIn:
		return "Not signed in"
	case CodeServerRejected:
		return "Request rejected by server"
	case CodeLocalStorage:
		return "Local storage error"
	case CodeNotFound:
		return "Not found"
	case CodeValidation:
		return "Invalid request"
	default:
		return "Unexpected error"
	}
}

// HTTPStatus returns the status the local API uses for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeNotLoggedIn:
		return http.StatusUnauthorized
	case CodeValidation:
		return http.StatusBadRequest
	case CodeTransport, CodeServerRejected:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error  // unexported, for wrapping
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a new error with additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		cause:   e.cause,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrTransport      = &Error{Code: CodeTransport, Message: "transport failure"}
	ErrNotLoggedIn    = &Error{Code: CodeNotLoggedIn, Message: "not logged in"}
	ErrServerRejected = &Error{Code: CodeServerRejected, Message: "server rejected request"}
	ErrLocalStorage   = &Error{Code: CodeLocalStorage, Message: "local storage failure"}
	ErrNotFound       = &Error{Code: CodeNotFound, Message: "not found"}
	ErrValidation     = &Error{Code: CodeValidation, Message: "validation error"}
	ErrInternal       = &Error{Code: CodeInternal, Message: "internal error"}
)

// Constructor functions for creating errors with custom messages.

// Transport creates a transport error.
func Transport(msg string) *Error {
	return &Error{Code: CodeTransport, Message: msg}
}

// Transportf creates a transport error with formatted message.
func Transportf(format string, args ...any) *Error {
	return &Error{Code: CodeTransport, Message: fmt.Sprintf(format, args...)}
}

// NotLoggedIn creates a not-logged-in error.
func NotLoggedIn(msg string) *Error {
	return &Error{Code: CodeNotLoggedIn, Message: msg}
}

// ServerRejected creates a server rejection error.
func ServerRejected(msg string) *Error {
	return &Error{Code: CodeServerRejected, Message: msg}
}

// ServerRejectedf creates a server rejection error with formatted message.
func ServerRejectedf(format string, args ...any) *Error {
	return &Error{Code: CodeServerRejected, Message: fmt.Sprintf(format, args...)}
}

// LocalStorage creates a local storage error.
func LocalStorage(msg string) *Error {
	return &Error{Code: CodeLocalStorage, Message: msg}
}

// LocalStoragef creates a local storage error with formatted message.
func LocalStoragef(format string, args ...any) *Error {
	return &Error{Code: CodeLocalStorage, Message: fmt.Sprintf(format, args...)}
}

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}

// CodeOf extracts the code from any error, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

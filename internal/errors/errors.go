// Package errors provides standardized domain errors with codes for the Cardboard API.
//
// Usage:
//
//	// In services - return typed errors
//	if graph.WouldCycle(feeder, meta) {
//	    return errors.Cyclef("%s is already an ancestor of %s", meta, feeder)
//	}
//
//	// In handlers - check with errors.Is
//	if errors.Is(err, errors.ErrCycle) {
//	    // render a 409 to the caller
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
	CodeNotFound             Code = "NOT_FOUND"
	CodeDuplicateIdentity    Code = "DUPLICATE_IDENTITY"
	CodeDuplicateAnswer      Code = "DUPLICATE_ANSWER"
	CodeCycle                Code = "CYCLE"
	CodeInvalidMetaOperation Code = "INVALID_META_OPERATION"
	CodeValidation           Code = "VALIDATION"
	CodeForbidden            Code = "FORBIDDEN"
	CodeUnauthorized         Code = "UNAUTHORIZED"
	CodeConflict             Code = "CONFLICT"
	CodeRateLimited          Code = "RATE_LIMITED"
	CodeInternal             Code = "INTERNAL"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeDuplicateIdentity, CodeDuplicateAnswer, CodeCycle, CodeConflict:
		return http.StatusConflict
	case CodeInvalidMetaOperation, CodeValidation:
		return http.StatusBadRequest
	case CodeForbidden:
		return http.StatusForbidden
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeRateLimited:
		return http.StatusTooManyRequests
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
	ErrNotFound             = &Error{Code: CodeNotFound, Message: "not found"}
	ErrDuplicateIdentity    = &Error{Code: CodeDuplicateIdentity, Message: "name or URL already in use"}
	ErrDuplicateAnswer      = &Error{Code: CodeDuplicateAnswer, Message: "answer already submitted"}
	ErrCycle                = &Error{Code: CodeCycle, Message: "meta assignment would create a cycle"}
	ErrInvalidMetaOperation = &Error{Code: CodeInvalidMetaOperation, Message: "invalid meta operation"}
	ErrValidation           = &Error{Code: CodeValidation, Message: "validation error"}
	ErrForbidden            = &Error{Code: CodeForbidden, Message: "forbidden"}
	ErrUnauthorized         = &Error{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrConflict             = &Error{Code: CodeConflict, Message: "conflict"}
	ErrRateLimited          = &Error{Code: CodeRateLimited, Message: "rate limited"}
	ErrInternal             = &Error{Code: CodeInternal, Message: "internal error"}
)

// Constructor functions for creating errors with custom messages.

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// DuplicateIdentity creates a duplicate identity error.
func DuplicateIdentity(msg string) *Error {
	return &Error{Code: CodeDuplicateIdentity, Message: msg}
}

// DuplicateIdentityf creates a duplicate identity error with formatted message.
func DuplicateIdentityf(format string, args ...any) *Error {
	return &Error{Code: CodeDuplicateIdentity, Message: fmt.Sprintf(format, args...)}
}

// DuplicateAnswer creates a duplicate answer error.
func DuplicateAnswer(msg string) *Error {
	return &Error{Code: CodeDuplicateAnswer, Message: msg}
}

// Cycle creates a cycle error.
func Cycle(msg string) *Error {
	return &Error{Code: CodeCycle, Message: msg}
}

// Cyclef creates a cycle error with formatted message.
func Cyclef(format string, args ...any) *Error {
	return &Error{Code: CodeCycle, Message: fmt.Sprintf(format, args...)}
}

// InvalidMetaOperation creates an invalid meta operation error.
func InvalidMetaOperation(msg string) *Error {
	return &Error{Code: CodeInvalidMetaOperation, Message: msg}
}

// InvalidMetaOperationf creates an invalid meta operation error with formatted message.
func InvalidMetaOperationf(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidMetaOperation, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Forbidden creates a forbidden error.
func Forbidden(msg string) *Error {
	return &Error{Code: CodeForbidden, Message: msg}
}

// Unauthorized creates an unauthorized error.
func Unauthorized(msg string) *Error {
	return &Error{Code: CodeUnauthorized, Message: msg}
}

// Conflict creates a conflict error.
func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

// RateLimited creates a rate limited error.
func RateLimited(msg string) *Error {
	return &Error{Code: CodeRateLimited, Message: msg}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Internalf creates an internal error with formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}

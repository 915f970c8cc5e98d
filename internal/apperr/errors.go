// Package apperr defines the error taxonomy shared by every service. Each
// error carries a Kind that the HTTP layer maps to a status code.
package apperr

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindValidation      Kind = "validation"
	KindUnauthenticated Kind = "unauthenticated"
	KindForbidden       Kind = "forbidden"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindInternal        Kind = "internal"
)

type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind and message, so sentinel values
// declared with New work with errors.Is even after being wrapped.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// Status returns the HTTP status code for the error kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// Internal wraps an unexpected failure. The cause is kept for logging only.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

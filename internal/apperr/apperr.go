// Package apperr defines the error taxonomy shared by every service:
// validation, state, resource, authorization, not-found and internal.
// Handlers map kinds to HTTP status codes instead of string-matching
// error messages.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error so callers can branch without inspecting messages.
type Kind string

const (
	// KindValidation: bad or missing input, rejected before any mutation.
	KindValidation Kind = "validation"
	// KindState: illegal lifecycle transition or double-processing.
	KindState Kind = "state"
	// KindResource: a quantified shortage such as stock or balance.
	KindResource Kind = "resource"
	// KindAuthorization: actor is not allowed to perform the action.
	KindAuthorization Kind = "authorization"
	// KindNotFound: the referenced entity does not exist.
	KindNotFound Kind = "not_found"
	// KindInternal: everything else.
	KindInternal Kind = "internal"
)

// Error is a classified application error. It supports errors.Is/As and
// wrapping via %w.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches two application errors by kind, so sentinel-style checks like
// errors.Is(err, &Error{Kind: KindState}) work across wrapped chains.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Msg == "" || t.Msg == e.Msg)
}

func newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Validationf creates a validation error.
func Validationf(format string, args ...interface{}) *Error {
	return newf(KindValidation, format, args...)
}

// Statef creates a state error naming the offending transition.
func Statef(format string, args ...interface{}) *Error {
	return newf(KindState, format, args...)
}

// Resourcef creates a resource error; the message should quantify the
// deficit (needed vs available) so the caller can react.
func Resourcef(format string, args ...interface{}) *Error {
	return newf(KindResource, format, args...)
}

// Authorizationf creates an authorization error. Messages must not reveal
// whether the underlying resource exists.
func Authorizationf(format string, args ...interface{}) *Error {
	return newf(KindAuthorization, format, args...)
}

// NotFoundf creates a not-found error.
func NotFoundf(format string, args ...interface{}) *Error {
	return newf(KindNotFound, format, args...)
}

// Internalf wraps an unexpected failure.
func Internalf(err error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindInternal, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the kind from anywhere in the wrap chain. Unclassified
// errors are internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps an error to the response code handlers should emit.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case "":
		return http.StatusOK
	case KindValidation:
		return http.StatusBadRequest
	case KindState:
		return http.StatusConflict
	case KindResource:
		return http.StatusUnprocessableEntity
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

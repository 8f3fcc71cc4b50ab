// Package apperr centralizes the error taxonomy of §7: a small set of kinds,
// not exception names, each with a fixed HTTP status mapping. It replaces
// the ad hoc gin.H{"error": ...} literals scattered across handler files.
package apperr

import (
	"errors"
	"net/http"
)

// Kind is one of the taxonomy entries in §7.
type Kind int

const (
	KindValidation Kind = iota
	KindNotFound
	KindConflict
	KindPrecondition
	KindDependency
	KindInternal
)

// Error wraps a Kind with a message and optional extra fields for the
// client response (e.g. Conflict's existingSessionId).
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]interface{}
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func newErr(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Validation(msg string) *Error    { return newErr(KindValidation, msg) }
func NotFound(msg string) *Error      { return newErr(KindNotFound, msg) }
func Precondition(msg string) *Error  { return newErr(KindPrecondition, msg) }
func Internal(msg string, cause error) *Error {
	e := newErr(KindInternal, msg)
	e.cause = cause
	return e
}
func Dependency(msg string, cause error) *Error {
	e := newErr(KindDependency, msg)
	e.cause = cause
	return e
}

// Conflict builds a Conflict error carrying the existing session id, as
// required by POST /session's 409 response shape.
func Conflict(existingSessionID string) *Error {
	return &Error{
		Kind:    KindConflict,
		Message: "session already exists",
		Fields:  map[string]interface{}{"existingSessionId": existingSessionID},
	}
}

// WithField attaches one extra response field.
func (e *Error) WithField(key string, value interface{}) *Error {
	if e.Fields == nil {
		e.Fields = map[string]interface{}{}
	}
	e.Fields[key] = value
	return e
}

// HTTPStatus maps a Kind to the status code §7 specifies for HTTP callers.
func HTTPStatus(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		switch appErr.Kind {
		case KindValidation:
			return http.StatusBadRequest
		case KindNotFound:
			return http.StatusNotFound
		case KindConflict:
			return http.StatusConflict
		case KindPrecondition:
			return http.StatusBadRequest
		case KindDependency:
			return http.StatusOK // degraded, never surfaced as a client failure
		case KindInternal:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}

// As extracts the *Error from err, if any.
func As(err error) (*Error, bool) {
	var appErr *Error
	ok := errors.As(err, &appErr)
	return appErr, ok
}

// IsPrecondition reports whether err is a Precondition error — callers on
// the socket path silently ignore these rather than surfacing a status code.
func IsPrecondition(err error) bool {
	e, ok := As(err)
	return ok && e.Kind == KindPrecondition
}

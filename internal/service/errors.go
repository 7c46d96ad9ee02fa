package service

import "net/http"

// Kind is the stable, caller-actionable classification of a service failure.
type Kind string

const (
	KindInvalidInput    Kind = "invalid_input"
	KindConflict        Kind = "conflict"
	KindUnauthenticated Kind = "unauthenticated"
	KindUnauthorized    Kind = "unauthorized"
	KindForbidden       Kind = "forbidden"
	KindNotFound        Kind = "not_found"
	KindInternal        Kind = "internal"
)

// Error is the structured failure every service operation returns. Raw
// storage or signing errors never cross this boundary; they are logged and
// collapsed into KindInternal.
type Error struct {
	Kind    Kind
	Message string
	Status  int
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Message
}

func newError(kind Kind, message string, status int) *Error {
	return &Error{Kind: kind, Message: message, Status: status}
}

func errInvalidInput(message string) *Error {
	return newError(KindInvalidInput, message, http.StatusBadRequest)
}

func errConflict(message string) *Error {
	return newError(KindConflict, message, http.StatusConflict)
}

func errUnauthenticated(message string) *Error {
	return newError(KindUnauthenticated, message, http.StatusUnauthorized)
}

func errUnauthorized(message string) *Error {
	return newError(KindUnauthorized, message, http.StatusUnauthorized)
}

// ErrForbidden is exported for the admin gate middleware.
func ErrForbidden(message string) *Error {
	return newError(KindForbidden, message, http.StatusForbidden)
}

func errNotFound(message string) *Error {
	return newError(KindNotFound, message, http.StatusNotFound)
}

func errInternal(message string) *Error {
	return newError(KindInternal, message, http.StatusInternalServerError)
}

// Package apperr defines the error kinds shared by the services and the
// HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	Internal Kind = iota
	Validation
	Authentication
	NotFound
	Conflict
	Collaborator
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Authentication:
		return "authentication"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case Collaborator:
		return "collaborator"
	default:
		return "internal"
	}
}

// Error is an error with a kind and a message safe to show to clients.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...any) error     { return newf(Validation, format, args...) }
func Authenticationf(format string, args ...any) error { return newf(Authentication, format, args...) }
func NotFoundf(format string, args ...any) error       { return newf(NotFound, format, args...) }
func Conflictf(format string, args ...any) error       { return newf(Conflict, format, args...) }

// Wrap attaches a kind to err. A nil err stays nil.
func Wrap(kind Kind, msg string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the client facing message. Internal errors are not leaked.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != Internal {
		return e.Msg
	}
	return "internal server error"
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case Validation:
		return http.StatusBadRequest
	case Authentication:
		return http.StatusUnauthorized
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case Collaborator:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

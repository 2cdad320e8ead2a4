// Package apperr is the error taxonomy shared by the services and the HTTP
// layer. Messages are safe to show to callers; the underlying cause is kept
// for logging and errors.Is but never rendered.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindInvalid     Kind = "invalid"
	KindNotFound    Kind = "not_found"
	KindForbidden   Kind = "forbidden"
	KindConflict    Kind = "conflict"
	KindTransient   Kind = "transient"
	KindRateLimited Kind = "rate_limited"
	KindInternal    Kind = "internal"
)

type Error struct {
	Kind    Kind
	Message string
	err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.err
}

// Retryable reports whether repeating the same call may succeed. Only
// transient store failures qualify; the store guarantees nothing was
// committed for them.
func (e *Error) Retryable() bool {
	return e.Kind == KindTransient || e.Kind == KindRateLimited
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, err: cause}
}

func Invalid(format string, args ...any) *Error {
	return New(KindInvalid, fmt.Sprintf(format, args...))
}

func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, fmt.Sprintf(format, args...))
}

func Forbidden(format string, args ...any) *Error {
	return New(KindForbidden, fmt.Sprintf(format, args...))
}

func Conflict(format string, args ...any) *Error {
	return New(KindConflict, fmt.Sprintf(format, args...))
}

func Transient(message string, cause error) *Error {
	return Wrap(KindTransient, message, cause)
}

// KindOf classifies err. Anything that is not an *Error is internal.
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

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

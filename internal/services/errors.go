package services

import (
	"errors"

	"ideaboard/internal/logger"

	"go.uber.org/zap"
)

type Kind int

const (
	KindInternal Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindValidation
	KindConflict
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindUpstream:
		return "upstream"
	default:
		return "internal"
	}
}

// Error is the only error type services return. Message is safe to show to
// the caller; Err keeps the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func ErrUnauthorized() *Error {
	return &Error{Kind: KindUnauthorized, Message: "Unauthorized"}
}

func ErrForbidden() *Error {
	return &Error{Kind: KindForbidden, Message: "Forbidden"}
}

func ErrNotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func ErrValidation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func ErrConflict(msg string, err error) *Error {
	return &Error{Kind: KindConflict, Message: msg, Err: err}
}

// ErrUpstream and ErrInternal log the cause before wrapping it.
func ErrUpstream(msg string, err error) *Error {
	logger.L.Error(msg, zap.Error(err))
	return &Error{Kind: KindUpstream, Message: msg, Err: err}
}

func ErrInternal(msg string, err error) *Error {
	logger.L.Error(msg, zap.Error(err))
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf reports the kind of err; errors not produced by this package are
// internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

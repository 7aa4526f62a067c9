// Package apperr defines the error kinds shared by every component. Packages
// wrap these sentinels with their own context so the HTTP boundary can map
// them to status codes with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrGone         = errors.New("gone")
	ErrInternal     = errors.New("internal error")
)

// Validation returns an ErrValidation carrying a caller-facing message.
func Validation(msg string) error {
	return &kindError{kind: ErrValidation, msg: msg}
}

// NotFound returns an ErrNotFound carrying a caller-facing message.
func NotFound(msg string) error {
	return &kindError{kind: ErrNotFound, msg: msg}
}

// Conflict returns an ErrConflict carrying a caller-facing message.
func Conflict(msg string) error {
	return &kindError{kind: ErrConflict, msg: msg}
}

// Forbidden returns an ErrForbidden carrying a caller-facing message.
func Forbidden(msg string) error {
	return &kindError{kind: ErrForbidden, msg: msg}
}

// Unauthorized returns an ErrUnauthorized carrying a caller-facing message.
func Unauthorized(msg string) error {
	return &kindError{kind: ErrUnauthorized, msg: msg}
}

// Gone returns an ErrGone carrying a caller-facing message.
func Gone(msg string) error {
	return &kindError{kind: ErrGone, msg: msg}
}

// Internal wraps cause as ErrInternal. The message is logged, never returned
// to clients.
func Internal(msg string, cause error) error {
	if cause == nil {
		return &kindError{kind: ErrInternal, msg: msg}
	}
	return &kindError{kind: ErrInternal, msg: fmt.Sprintf("%s: %v", msg, cause), cause: cause}
}

type kindError struct {
	kind  error
	msg   string
	cause error
}

func (e *kindError) Error() string {
	if e.msg == "" {
		return e.kind.Error()
	}
	return e.msg
}

func (e *kindError) Is(target error) bool {
	return target == e.kind
}

func (e *kindError) Unwrap() error {
	return e.cause
}

// Message returns the caller-facing message for err. Errors that are not
// tagged with a kind yield fallback.
func Message(err error, fallback string) string {
	var ke *kindError
	if errors.As(err, &ke) && ke.kind != ErrInternal && ke.msg != "" {
		return ke.msg
	}
	return fallback
}

// Kind reports which sentinel err belongs to, defaulting to ErrInternal.
func Kind(err error) error {
	for _, k := range []error{ErrValidation, ErrUnauthorized, ErrForbidden, ErrNotFound, ErrConflict, ErrGone} {
		if errors.Is(err, k) {
			return k
		}
	}
	return ErrInternal
}

// Package apperr defines the failure taxonomy returned by workflow operations.
//
// Every failure carries one of the sentinel kinds below so callers can branch
// with errors.Is without inspecting messages.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrForbidden means the actor lacks the role or ownership an operation requires.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidState means the operation is not legal from the entity's current status.
	ErrInvalidState = errors.New("invalid state")
	// ErrInvalidInput means a payload field is missing or malformed.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict means the entity changed since the caller read it.
	ErrConflict = errors.New("conflict")
	// ErrNotFound means the entity or sub-record id is unknown.
	ErrNotFound = errors.New("not found")
	// ErrStorageUnavailable means persistence failed and nothing was applied.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Error is a classified failure.
type Error struct {
	Kind error
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Msg != "" {
		msg = msg + ": " + e.Msg
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, op string, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func Forbidden(op, format string, args ...any) error {
	return newError(ErrForbidden, op, format, args...)
}

func InvalidState(op, format string, args ...any) error {
	return newError(ErrInvalidState, op, format, args...)
}

func InvalidInput(op, format string, args ...any) error {
	return newError(ErrInvalidInput, op, format, args...)
}

func Conflict(op, format string, args ...any) error {
	return newError(ErrConflict, op, format, args...)
}

func NotFound(op, format string, args ...any) error {
	return newError(ErrNotFound, op, format, args...)
}

// StorageUnavailable wraps a persistence failure.
func StorageUnavailable(op string, err error) error {
	return &Error{Kind: ErrStorageUnavailable, Op: op, Err: err}
}

// KindOf returns the sentinel kind of err, or nil when err is unclassified.
func KindOf(err error) error {
	for _, kind := range []error{
		ErrForbidden,
		ErrInvalidState,
		ErrInvalidInput,
		ErrConflict,
		ErrNotFound,
		ErrStorageUnavailable,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// IsClassified reports whether err already carries a taxonomy kind.
func IsClassified(err error) bool {
	return KindOf(err) != nil
}

// Code returns a stable snake_case label for err, "ok" for nil and "internal" when unclassified.
func Code(err error) string {
	if err == nil {
		return "ok"
	}
	switch KindOf(err) {
	case ErrForbidden:
		return "forbidden"
	case ErrInvalidState:
		return "invalid_state"
	case ErrInvalidInput:
		return "invalid_input"
	case ErrConflict:
		return "conflict"
	case ErrNotFound:
		return "not_found"
	case ErrStorageUnavailable:
		return "storage_unavailable"
	default:
		return "internal"
	}
}

package errs

import (
	"errors"
	"fmt"
)

// Kinds. Match with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrForbidden    = errors.New("forbidden")
	ErrValidation   = errors.New("validation failed")

	// ErrVersionConflict is returned by repositories when an optimistic write lost a race.
	// Services retry on it; it never reaches a caller.
	ErrVersionConflict = errors.New("version conflict")
)

// Error carries a user-facing message and the kind it belongs to.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return newError(ErrNotFound, format, args...)
}

func Conflict(format string, args ...any) error {
	return newError(ErrConflict, format, args...)
}

func InvalidState(format string, args ...any) error {
	return newError(ErrInvalidState, format, args...)
}

func Forbidden(format string, args ...any) error {
	return newError(ErrForbidden, format, args...)
}

func Validation(format string, args ...any) error {
	return newError(ErrValidation, format, args...)
}

// Is reports whether err belongs to kind.
func Is(err, kind error) bool {
	return errors.Is(err, kind)
}

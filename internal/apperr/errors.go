// Package apperr defines the error taxonomy shared by the store, the
// repository facade and the authentication workflow. Callers classify with
// errors.Is against the sentinels; messages are carried by wrapping.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed input, caught before any write.
	ErrValidation = errors.New("validation error")

	// ErrConflict marks a uniqueness violation.
	ErrConflict = errors.New("already exists")

	// ErrAuth marks a credential lookup or verification failure.
	ErrAuth = errors.New("authentication failed")

	// ErrNotFound marks a referenced id that is absent.
	ErrNotFound = errors.New("not found")
)

func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func Conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

func Auth(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrAuth, fmt.Sprintf(format, args...))
}

func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

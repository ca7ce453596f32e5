package world

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalid marks a rejected action: bad input or an invalid target state.
	ErrInvalid = errors.New("invalid action")
	// ErrForbidden marks an action on a settlement the caller does not own.
	ErrForbidden = errors.New("not owner of settlement")
	// ErrNotFound marks a referenced entity that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks contention that persisted through every retry.
	ErrConflict = errors.New("concurrent modification")
	// ErrInvariant marks a mutation that would break a world invariant.
	ErrInvariant = errors.New("invariant violation")
)

// ValidationError is a rejected action with a human readable reason.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}

// Invalidf returns a ValidationError with a formatted reason.
func Invalidf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// NotFoundf returns an error wrapping ErrNotFound.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

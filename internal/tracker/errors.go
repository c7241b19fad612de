package tracker

import (
	"errors"
	"fmt"

	"github.com/brk3/habitkeeper/internal/storage"
)

var (
	// ErrValidation is the parent of every input error.
	ErrValidation    = errors.New("invalid request")
	ErrInvalidRange  = fmt.Errorf("%w: end date must not be before start date", ErrValidation)
	ErrEmptySchedule = fmt.Errorf("%w: at least one day must be selected", ErrValidation)
	ErrFutureDate    = fmt.Errorf("%w: future dates cannot be completed", ErrValidation)
	ErrNotApplicable = fmt.Errorf("%w: habit is not scheduled on that date", ErrValidation)

	// ErrConflict is returned when a client-chosen habit id is taken.
	ErrConflict = errors.New("habit already exists")

	// ErrPersistence wraps failures of the underlying store. The caller's
	// input is left untouched, so the operation can be retried as is.
	ErrPersistence = errors.New("persistence failure")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func storeErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrValidation), errors.Is(err, storage.ErrNotFound):
		return err
	case errors.Is(err, storage.ErrExists):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	default:
		return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
	}
}

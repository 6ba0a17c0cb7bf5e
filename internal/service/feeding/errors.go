package feeding

import (
	"errors"
	"fmt"

	"github.com/mamadbah2/herdbook/internal/repository"
)

var (
	// ErrValidation matches every ValidationError through errors.Is.
	ErrValidation = errors.New("invalid feeding input")
	// ErrPersistence wraps store failures. A schedule returned alongside it
	// must not be presented as saved.
	ErrPersistence = errors.New("persistence failure")
	// ErrNotFound is returned when the schedule does not exist for the user.
	ErrNotFound = repository.ErrNotFound
)

// ValidationError reports a missing or invalid non-recurrence field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func persistenceErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}

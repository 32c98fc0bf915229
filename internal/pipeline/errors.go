package pipeline

import (
	"errors"
	"fmt"
)

// ErrTransient marks failures worth retrying: infrastructure faults
// that a later attempt may not hit. Everything else is permanent for
// the current attempt.
var ErrTransient = errors.New("transient failure")

// Transient wraps err so IsTransient reports true for it.
func Transient(err error) error {
	return fmt.Errorf("%w: %w", ErrTransient, err)
}

// IsTransient reports whether err is retryable.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

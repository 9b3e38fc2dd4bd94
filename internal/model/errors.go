package model

import (
	"errors"
	"fmt"
)

// ErrNotFound signals that a referenced id does not exist, or that the
// referenced task is already completed when a completion was requested.
var ErrNotFound = errors.New("event not found")

// ValidationError indicates malformed input. The operation that produced it
// made no state change.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

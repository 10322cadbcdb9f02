package model

import (
	"errors"
	"fmt"
)

// ErrMalformedInstance is returned when instance data is missing or
// inconsistent.
var ErrMalformedInstance = errors.New("malformed instance")

// ErrInvalidSchedule is wrapped by every schedule validation failure.
var ErrInvalidSchedule = errors.New("invalid schedule")

// ValidationError reports an observation rejected by a Solution.
type ValidationError struct {
	Night  int
	Target int
	Start  Time
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid schedule: night %d target %d start %d: %s", e.Night, e.Target, e.Start, e.Reason)
}

// Unwrap allows errors.Is(err, ErrInvalidSchedule).
func (e *ValidationError) Unwrap() error { return ErrInvalidSchedule }

package model

import (
	"fmt"
	"math"
)

// Time is expressed in the integral time unit of an instance (seconds in the
// catusse2016 benchmark files).
type Time int64

// MinTime is used as the end time of the empty schedule.
const MinTime Time = math.MinInt64

// Profit is the value collected by observing a target. It is fractional
// because pricing subtracts dual prices from it.
type Profit float64

// Mode is one admissible (duration, profit) choice for an observation.
type Mode struct {
	Duration Time   `json:"duration"`
	Profit   Profit `json:"profit"`
}

// Window describes when a target can be observed on one night. Any chosen
// observation interval must lie in [Release, Deadline] and contain Meridian.
type Window struct {
	Release  Time `json:"release"`
	Meridian Time `json:"meridian"`
	Deadline Time `json:"deadline"`
}

// Validate checks the window ordering r <= m <= d.
func (w Window) Validate() error {
	if w.Release > w.Meridian {
		return fmt.Errorf("%w: release %d after meridian %d", ErrMalformedInstance, w.Release, w.Meridian)
	}
	if w.Meridian > w.Deadline {
		return fmt.Errorf("%w: meridian %d after deadline %d", ErrMalformedInstance, w.Meridian, w.Deadline)
	}
	return nil
}

// LongJob reports whether duration satisfies 2*duration >= d - r.
func (w Window) LongJob(duration Time) bool {
	return 2*duration >= w.Deadline-w.Release
}

// ValidateDuration checks that an observation of the given duration can be
// placed inside the window in isolation and has the long-job property.
func (w Window) ValidateDuration(duration Time) error {
	if duration <= 0 {
		return fmt.Errorf("%w: non-positive duration %d", ErrMalformedInstance, duration)
	}
	if w.Release+duration > w.Deadline {
		return fmt.Errorf("%w: duration %d does not fit in [%d, %d]", ErrMalformedInstance, duration, w.Release, w.Deadline)
	}
	if !w.LongJob(duration) {
		return fmt.Errorf("%w: duration %d breaks the long-job property on [%d, %d]", ErrMalformedInstance, duration, w.Release, w.Deadline)
	}
	return nil
}

// EarliestStart returns the earliest start of an observation of the given
// duration once the telescope is free at cursor: max(cursor, r, m - duration).
func (w Window) EarliestStart(cursor, duration Time) Time {
	s := w.Release
	if cursor > s {
		s = cursor
	}
	if m := w.Meridian - duration; m > s {
		s = m
	}
	return s
}

// Fits reports whether [start, start+duration] respects the window and
// contains the meridian.
func (w Window) Fits(start, duration Time) bool {
	end := start + duration
	return start >= w.Release && end <= w.Deadline && start <= w.Meridian && end >= w.Meridian
}

// Check explains why [start, start+duration] does not fit the window. It
// returns an empty string when it fits.
func (w Window) Check(start, duration Time) string {
	end := start + duration
	switch {
	case start < w.Release:
		return fmt.Sprintf("start %d before release %d", start, w.Release)
	case end > w.Deadline:
		return fmt.Sprintf("end %d after deadline %d", end, w.Deadline)
	case start > w.Meridian:
		return fmt.Sprintf("start %d after meridian %d", start, w.Meridian)
	case end < w.Meridian:
		return fmt.Sprintf("end %d before meridian %d", end, w.Meridian)
	}
	return ""
}

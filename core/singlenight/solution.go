package singlenight

import (
	"fmt"

	"github.com/kilianp07/starobs/core/model"
)

// Observation is a scheduled target.
type Observation struct {
	Target int        `json:"target"`
	Start  model.Time `json:"start"`
}

// Solution is an append-only schedule for one instance.
type Solution struct {
	inst         *Instance
	observations []Observation
	used         []bool
	current      model.Time
	profit       model.Profit
}

// NewSolution returns an empty schedule.
func NewSolution(inst *Instance) *Solution {
	return &Solution{
		inst:    inst,
		used:    make([]bool, inst.NumberOfTargets()),
		current: model.MinTime,
	}
}

// AppendObservation schedules target at start after the last observation.
// It returns a *model.ValidationError if the observation leaves its window,
// misses its meridian, overlaps the previous one or repeats a target.
func (s *Solution) AppendObservation(target int, start model.Time) error {
	fail := func(reason string) error {
		return &model.ValidationError{Target: target, Start: start, Reason: reason}
	}
	if target < 0 || target >= len(s.used) {
		return fail("unknown target")
	}
	if s.used[target] {
		return fail("target already observed")
	}
	if start < s.current {
		return fail(fmt.Sprintf("start before current time %d", s.current))
	}
	t := s.inst.targets[target]
	if reason := t.Window.Check(start, t.Duration); reason != "" {
		return fail(reason)
	}
	s.observations = append(s.observations, Observation{Target: target, Start: start})
	s.used[target] = true
	s.current = start + t.Duration
	s.profit += t.Profit
	return nil
}

// Instance returns the scheduled instance.
func (s *Solution) Instance() *Instance { return s.inst }

// Observations returns a copy of the schedule in processing order.
func (s *Solution) Observations() []Observation {
	return append([]Observation(nil), s.observations...)
}

// NumberOfObservations returns the number of scheduled targets.
func (s *Solution) NumberOfObservations() int { return len(s.observations) }

// Contains reports whether target is scheduled.
func (s *Solution) Contains(target int) bool { return s.used[target] }

// CurrentTime returns the end of the last observation.
func (s *Solution) CurrentTime() model.Time { return s.current }

// Profit returns the total profit of the schedule.
func (s *Solution) Profit() model.Profit { return s.profit }

package flexible

import (
	"fmt"

	"github.com/kilianp07/starobs/core/model"
)

// Observation is a scheduled target in one of its modes.
type Observation struct {
	Target int        `json:"target"`
	Mode   int        `json:"mode"`
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

// AppendObservation schedules a mode of target at start after the last
// observation. Failures are reported as *model.ValidationError.
func (s *Solution) AppendObservation(target, mode int, start model.Time) error {
	fail := func(reason string) error {
		return &model.ValidationError{Target: target, Start: start, Reason: reason}
	}
	if target < 0 || target >= len(s.used) {
		return fail("unknown target")
	}
	t := s.inst.targets[target]
	if mode < 0 || mode >= len(t.Modes) {
		return fail(fmt.Sprintf("unknown mode %d", mode))
	}
	if s.used[target] {
		return fail("target already observed")
	}
	if start < s.current {
		return fail(fmt.Sprintf("start before current time %d", s.current))
	}
	md := t.Modes[mode]
	if reason := t.Window.Check(start, md.Duration); reason != "" {
		return fail(reason)
	}
	s.observations = append(s.observations, Observation{Target: target, Mode: mode, Start: start})
	s.used[target] = true
	s.current = start + md.Duration
	s.profit += md.Profit
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

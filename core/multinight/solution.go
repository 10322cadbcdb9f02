package multinight

import (
	"fmt"
	"strings"

	"github.com/kilianp07/starobs/core/model"
)

// Observation is a scheduled observable in one of its modes.
type Observation struct {
	Observable int        `json:"observable"`
	Mode       int        `json:"mode"`
	Start      model.Time `json:"start"`
}

type nightSchedule struct {
	observations []Observation
	current      model.Time
}

// Solution is an append-only schedule over every night of an instance.
type Solution struct {
	inst   *Instance
	nights []nightSchedule
	used   []bool
	count  int
	profit model.Profit
}

// NewSolution returns an empty schedule.
func NewSolution(inst *Instance) *Solution {
	s := &Solution{
		inst:   inst,
		nights: make([]nightSchedule, inst.NumberOfNights()),
		used:   make([]bool, inst.NumberOfTargets()),
	}
	for i := range s.nights {
		s.nights[i].current = model.MinTime
	}
	return s
}

// AppendObservation schedules a mode of an observable of night at start,
// after the last observation of that night. Failures are reported as
// *model.ValidationError.
func (s *Solution) AppendObservation(night, observable, mode int, start model.Time) error {
	fail := func(target int, reason string) error {
		return &model.ValidationError{Night: night, Target: target, Start: start, Reason: reason}
	}
	if night < 0 || night >= len(s.nights) {
		return fail(-1, "unknown night")
	}
	obs := s.inst.nights[night].Observables
	if observable < 0 || observable >= len(obs) {
		return fail(-1, fmt.Sprintf("unknown observable %d", observable))
	}
	o := obs[observable]
	if mode < 0 || mode >= len(o.Modes) {
		return fail(o.Target, fmt.Sprintf("unknown mode %d", mode))
	}
	if s.used[o.Target] {
		return fail(o.Target, "target already observed")
	}
	ns := &s.nights[night]
	if start < ns.current {
		return fail(o.Target, fmt.Sprintf("start before current time %d", ns.current))
	}
	md := o.Modes[mode]
	if reason := o.Window.Check(start, md.Duration); reason != "" {
		return fail(o.Target, reason)
	}
	ns.observations = append(ns.observations, Observation{Observable: observable, Mode: mode, Start: start})
	ns.current = start + md.Duration
	s.used[o.Target] = true
	s.count++
	s.profit += md.Profit
	return nil
}

// Instance returns the scheduled instance.
func (s *Solution) Instance() *Instance { return s.inst }

// Observations returns a copy of the schedule of a night.
func (s *Solution) Observations(night int) []Observation {
	return append([]Observation(nil), s.nights[night].observations...)
}

// NumberOfObservations returns the number of scheduled targets.
func (s *Solution) NumberOfObservations() int { return s.count }

// Contains reports whether target is scheduled on some night.
func (s *Solution) Contains(target int) bool { return s.used[target] }

// CurrentTime returns the end of the last observation of a night.
func (s *Solution) CurrentTime(night int) model.Time { return s.nights[night].current }

// Profit returns the total profit of the schedule.
func (s *Solution) Profit() model.Profit { return s.profit }

// Summary returns a one-line description.
func (s *Solution) Summary() string {
	return fmt.Sprintf("observations=%d/%d profit=%g/%g",
		s.count, s.inst.NumberOfTargets(), float64(s.profit), float64(s.inst.TotalProfit()))
}

// Table renders the schedule one observation per line.
func (s *Solution) Table() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%8s %8s %8s %6s %10s %10s\n", "night", "target", "obs", "mode", "start", "end")
	for n, ns := range s.nights {
		for _, o := range ns.observations {
			ob := s.inst.nights[n].Observables[o.Observable]
			fmt.Fprintf(&sb, "%8d %8d %8d %6d %10d %10d\n",
				n, ob.Target, o.Observable, o.Mode, o.Start, o.Start+ob.Modes[o.Mode].Duration)
		}
	}
	return sb.String()
}

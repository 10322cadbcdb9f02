// Package singlenight solves the single-night star observation scheduling
// problem where every target has one observation duration.
//
// Targets have a time window [r, d], a meridian m and a duration p with the
// long-job property 2p >= d - r. An observation must start at s >= r, end at
// s + p <= d and contain the meridian. Observations may not overlap and the
// goal is to maximise the total profit of the observed targets.
package singlenight

import (
	"fmt"
	"sort"

	"github.com/kilianp07/starobs/core/model"
)

// Target is one candidate observation.
type Target struct {
	Window   model.Window `json:"window"`
	Duration model.Time   `json:"duration"`
	Profit   model.Profit `json:"profit"`
}

// Instance is an immutable set of targets. Build it with a Builder.
type Instance struct {
	targets     []Target
	order       []int
	totalProfit model.Profit
}

// NumberOfTargets returns the number of targets.
func (i *Instance) NumberOfTargets() int { return len(i.targets) }

// Target returns a target by id.
func (i *Instance) Target(id int) Target { return i.targets[id] }

// TotalProfit returns the sum of the target profits.
func (i *Instance) TotalProfit() model.Profit { return i.totalProfit }

// MeridianOrder returns target ids by non-decreasing meridian, ties by id.
// The slice is shared and must not be modified.
func (i *Instance) MeridianOrder() []int { return i.order }

// Summary returns a one-line description.
func (i *Instance) Summary() string {
	return fmt.Sprintf("targets=%d total_profit=%g", len(i.targets), float64(i.totalProfit))
}

// Builder accumulates targets. The first invalid target is remembered and
// reported by Build.
type Builder struct {
	targets []Target
	err     error
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder { return &Builder{} }

// AddTarget appends a target and returns its id.
func (b *Builder) AddTarget(release, meridian, deadline, duration model.Time, profit model.Profit) int {
	t := Target{
		Window:   model.Window{Release: release, Meridian: meridian, Deadline: deadline},
		Duration: duration,
		Profit:   profit,
	}
	id := len(b.targets)
	if b.err == nil {
		if err := t.Window.Validate(); err != nil {
			b.err = fmt.Errorf("target %d: %w", id, err)
		} else if err := t.Window.ValidateDuration(duration); err != nil {
			b.err = fmt.Errorf("target %d: %w", id, err)
		}
	}
	b.targets = append(b.targets, t)
	return id
}

// Build returns the instance. Targets added in meridian order are not
// sorted again.
func (b *Builder) Build() (*Instance, error) {
	if b.err != nil {
		return nil, b.err
	}
	inst := &Instance{
		targets: append([]Target(nil), b.targets...),
		order:   make([]int, len(b.targets)),
	}
	for id, t := range inst.targets {
		inst.order[id] = id
		inst.totalProfit += t.Profit
	}
	less := func(a, c int) bool {
		return inst.targets[inst.order[a]].Window.Meridian < inst.targets[inst.order[c]].Window.Meridian
	}
	if !sort.SliceIsSorted(inst.order, less) {
		sort.SliceStable(inst.order, less)
	}
	return inst, nil
}

// Package flexible solves the single-night star observation scheduling
// problem where every target offers several (duration, profit) modes and at
// most one of them may be observed.
package flexible

import (
	"fmt"
	"sort"

	"github.com/kilianp07/starobs/core/model"
)

// Target is one candidate observation with its admissible modes.
type Target struct {
	Window model.Window `json:"window"`
	Modes  []model.Mode `json:"modes"`
}

// MaxProfit returns the profit of the most valuable mode, zero without modes.
func (t Target) MaxProfit() model.Profit {
	var best model.Profit
	for k, m := range t.Modes {
		if k == 0 || m.Profit > best {
			best = m.Profit
		}
	}
	return best
}

// Instance is an immutable set of multi-mode targets. Build it with a
// Builder. Target values share their Modes slice with the instance and must
// not be modified.
type Instance struct {
	targets     []Target
	order       []int
	totalProfit model.Profit
	modes       int
}

// NumberOfTargets returns the number of targets.
func (i *Instance) NumberOfTargets() int { return len(i.targets) }

// NumberOfModes returns the number of modes over all targets.
func (i *Instance) NumberOfModes() int { return i.modes }

// Target returns a target by id.
func (i *Instance) Target(id int) Target { return i.targets[id] }

// TotalProfit returns the sum over targets of their most valuable mode.
func (i *Instance) TotalProfit() model.Profit { return i.totalProfit }

// MeridianOrder returns target ids by non-decreasing meridian, ties by id.
// The slice is shared and must not be modified.
func (i *Instance) MeridianOrder() []int { return i.order }

// Summary returns a one-line description.
func (i *Instance) Summary() string {
	return fmt.Sprintf("targets=%d modes=%d total_profit=%g", len(i.targets), i.modes, float64(i.totalProfit))
}

// Builder accumulates targets and their modes. The first invalid record is
// remembered and reported by Build.
type Builder struct {
	targets []Target
	err     error
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder { return &Builder{} }

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// AddTarget appends a target without modes and returns its id.
func (b *Builder) AddTarget(release, meridian, deadline model.Time) int {
	w := model.Window{Release: release, Meridian: meridian, Deadline: deadline}
	id := len(b.targets)
	if err := w.Validate(); err != nil {
		b.fail(fmt.Errorf("target %d: %w", id, err))
	}
	b.targets = append(b.targets, Target{Window: w})
	return id
}

// AddMode appends a mode to a target and returns the mode index.
func (b *Builder) AddMode(target int, duration model.Time, profit model.Profit) int {
	if target < 0 || target >= len(b.targets) {
		b.fail(fmt.Errorf("%w: mode for unknown target %d", model.ErrMalformedInstance, target))
		return -1
	}
	t := &b.targets[target]
	if err := t.Window.ValidateDuration(duration); err != nil {
		b.fail(fmt.Errorf("target %d mode %d: %w", target, len(t.Modes), err))
	}
	t.Modes = append(t.Modes, model.Mode{Duration: duration, Profit: profit})
	return len(t.Modes) - 1
}

// Build returns the instance.
func (b *Builder) Build() (*Instance, error) {
	if b.err != nil {
		return nil, b.err
	}
	inst := &Instance{
		targets: make([]Target, len(b.targets)),
		order:   make([]int, len(b.targets)),
	}
	for id, t := range b.targets {
		t.Modes = append([]model.Mode(nil), t.Modes...)
		inst.targets[id] = t
		inst.order[id] = id
		inst.totalProfit += t.MaxProfit()
		inst.modes += len(t.Modes)
	}
	less := func(a, c int) bool {
		return inst.targets[inst.order[a]].Window.Meridian < inst.targets[inst.order[c]].Window.Meridian
	}
	if !sort.SliceIsSorted(inst.order, less) {
		sort.SliceStable(inst.order, less)
	}
	return inst, nil
}

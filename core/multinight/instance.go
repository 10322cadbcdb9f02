// Package multinight models the multi-night star observation scheduling
// problem: targets that can be observed at most once over several nights,
// each night offering its own observables (windows) for a subset of the
// targets. Observables carry one mode in the fixed duration variant and
// several in the flexible one.
package multinight

import (
	"fmt"
	"sort"

	"github.com/kilianp07/starobs/core/model"
)

// Ref locates an observable.
type Ref struct {
	Night      int `json:"night"`
	Observable int `json:"observable"`
}

// Target is something to observe once over the whole horizon.
type Target struct {
	// Profit is the best profit the target can bring.
	Profit      model.Profit `json:"profit"`
	Observables []Ref        `json:"observables"`
}

// Observable is the opportunity to observe a target during one night.
type Observable struct {
	Target int          `json:"target"`
	Window model.Window `json:"window"`
	Modes  []model.Mode `json:"modes"`
}

// Night groups the observables sharing a time axis.
type Night struct {
	Observables []Observable `json:"observables"`
	// Start and End span the windows of the night.
	Start model.Time `json:"start"`
	End   model.Time `json:"end"`
	order []int
}

// MeridianOrder returns observable ids by non-decreasing meridian, ties by
// id. The slice is shared and must not be modified.
func (n *Night) MeridianOrder() []int { return n.order }

// Instance is an immutable multi-night instance. Build it with a Builder.
type Instance struct {
	nights      []Night
	targets     []Target
	observables int
	totalProfit model.Profit
	fixed       bool
}

// NumberOfNights returns the number of nights.
func (i *Instance) NumberOfNights() int { return len(i.nights) }

// NumberOfTargets returns the number of targets.
func (i *Instance) NumberOfTargets() int { return len(i.targets) }

// NumberOfObservables returns the number of observables over all nights.
func (i *Instance) NumberOfObservables() int { return i.observables }

// Night returns a night. It shares memory with the instance.
func (i *Instance) Night(id int) *Night { return &i.nights[id] }

// Observable returns an observable of a night.
func (i *Instance) Observable(night, id int) Observable { return i.nights[night].Observables[id] }

// Target returns a target.
func (i *Instance) Target(id int) Target { return i.targets[id] }

// TotalProfit returns the sum of the target profits.
func (i *Instance) TotalProfit() model.Profit { return i.totalProfit }

// Fixed reports whether every observable has exactly one mode.
func (i *Instance) Fixed() bool { return i.fixed }

// Summary returns a one-line description.
func (i *Instance) Summary() string {
	variant := "flexible"
	if i.fixed {
		variant = "fixed"
	}
	return fmt.Sprintf("variant=%s nights=%d targets=%d observables=%d total_profit=%g",
		variant, len(i.nights), len(i.targets), i.observables, float64(i.totalProfit))
}

type pendingObservable struct {
	Observable
	// inherit marks a fixed observable whose single mode takes the target
	// profit at build time.
	inherit bool
}

// Builder accumulates nights, targets and observables. The first invalid
// record is remembered and reported by Build.
type Builder struct {
	nights    [][]pendingObservable
	profits   []model.Profit
	profitSet []bool
	err       error
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder { return &Builder{} }

func (b *Builder) fail(format string, args ...any) {
	if b.err == nil {
		b.err = fmt.Errorf(format, args...)
	}
}

// SetNumberOfNights resizes the night list, keeping existing nights.
func (b *Builder) SetNumberOfNights(n int) {
	if n < 0 {
		b.fail("%w: negative number of nights %d", model.ErrMalformedInstance, n)
		return
	}
	for len(b.nights) < n {
		b.nights = append(b.nights, nil)
	}
	b.nights = b.nights[:n]
}

// SetNumberOfTargets resizes the target list, keeping existing profits.
func (b *Builder) SetNumberOfTargets(n int) {
	if n < 0 {
		b.fail("%w: negative number of targets %d", model.ErrMalformedInstance, n)
		return
	}
	for len(b.profits) < n {
		b.profits = append(b.profits, 0)
		b.profitSet = append(b.profitSet, false)
	}
	b.profits = b.profits[:n]
	b.profitSet = b.profitSet[:n]
}

// SetProfit sets the profit of a target. Targets without an explicit profit
// get the best profit of their modes.
func (b *Builder) SetProfit(target int, profit model.Profit) {
	if target < 0 || target >= len(b.profits) {
		b.fail("%w: profit for unknown target %d", model.ErrMalformedInstance, target)
		return
	}
	b.profits[target] = profit
	b.profitSet[target] = true
}

// AddObservable adds an observable without modes to a night and returns its
// id within the night.
func (b *Builder) AddObservable(night, target int, release, meridian, deadline model.Time) int {
	return b.add(night, target, model.Window{Release: release, Meridian: meridian, Deadline: deadline}, nil, false)
}

// AddFixedObservable adds an observable with a single mode of the given
// duration whose profit is the profit of its target.
func (b *Builder) AddFixedObservable(night, target int, release, meridian, deadline, duration model.Time) int {
	w := model.Window{Release: release, Meridian: meridian, Deadline: deadline}
	return b.add(night, target, w, []model.Mode{{Duration: duration}}, true)
}

func (b *Builder) add(night, target int, w model.Window, modes []model.Mode, inherit bool) int {
	if night < 0 || night >= len(b.nights) {
		b.fail("%w: observable for unknown night %d", model.ErrMalformedInstance, night)
		return -1
	}
	if target < 0 || target >= len(b.profits) {
		b.fail("%w: observable for unknown target %d", model.ErrMalformedInstance, target)
		return -1
	}
	b.nights[night] = append(b.nights[night], pendingObservable{
		Observable: Observable{Target: target, Window: w, Modes: modes},
		inherit:    inherit,
	})
	return len(b.nights[night]) - 1
}

// AddMode appends a mode to an observable and returns the mode index.
func (b *Builder) AddMode(night, observable int, duration model.Time, profit model.Profit) int {
	if night < 0 || night >= len(b.nights) || observable < 0 || observable >= len(b.nights[night]) {
		b.fail("%w: mode for unknown observable %d of night %d", model.ErrMalformedInstance, observable, night)
		return -1
	}
	o := &b.nights[night][observable]
	if o.inherit {
		b.fail("%w: night %d observable %d is fixed", model.ErrMalformedInstance, night, observable)
		return -1
	}
	o.Modes = append(o.Modes, model.Mode{Duration: duration, Profit: profit})
	return len(o.Modes) - 1
}

// Build validates the records and returns the instance.
func (b *Builder) Build() (*Instance, error) {
	if b.err != nil {
		return nil, b.err
	}
	inst := &Instance{
		nights:  make([]Night, len(b.nights)),
		targets: make([]Target, len(b.profits)),
		fixed:   true,
	}
	best := make([]model.Profit, len(b.profits))
	seen := make([]bool, len(b.profits))
	// lastNight[t] is the last night with an observable of t, plus one
	lastNight := make([]int, len(b.profits))
	for n, pending := range b.nights {
		night := &inst.nights[n]
		night.Observables = make([]Observable, len(pending))
		for id, p := range pending {
			o := p.Observable
			if lastNight[o.Target] == n+1 {
				return nil, fmt.Errorf("%w: night %d observable %d: target %d already has an observable that night",
					model.ErrMalformedInstance, n, id, o.Target)
			}
			lastNight[o.Target] = n + 1
			o.Modes = append([]model.Mode(nil), o.Modes...)
			if p.inherit {
				o.Modes[0].Profit = b.profits[o.Target]
			}
			if err := o.Window.Validate(); err != nil {
				return nil, fmt.Errorf("night %d observable %d: %w", n, id, err)
			}
			for k, md := range o.Modes {
				if err := o.Window.ValidateDuration(md.Duration); err != nil {
					return nil, fmt.Errorf("night %d observable %d mode %d: %w", n, id, k, err)
				}
				if !seen[o.Target] || md.Profit > best[o.Target] {
					best[o.Target], seen[o.Target] = md.Profit, true
				}
			}
			if len(o.Modes) != 1 {
				inst.fixed = false
			}
			if id == 0 || o.Window.Release < night.Start {
				night.Start = o.Window.Release
			}
			if id == 0 || o.Window.Deadline > night.End {
				night.End = o.Window.Deadline
			}
			night.Observables[id] = o
			inst.targets[o.Target].Observables = append(inst.targets[o.Target].Observables, Ref{Night: n, Observable: id})
			inst.observables++
		}
		night.order = make([]int, len(night.Observables))
		for id := range night.order {
			night.order[id] = id
		}
		less := func(a, c int) bool {
			return night.Observables[night.order[a]].Window.Meridian < night.Observables[night.order[c]].Window.Meridian
		}
		if !sort.SliceIsSorted(night.order, less) {
			sort.SliceStable(night.order, less)
		}
	}
	for id := range inst.targets {
		t := &inst.targets[id]
		if b.profitSet[id] {
			t.Profit = b.profits[id]
		} else {
			t.Profit = best[id]
		}
		inst.totalProfit += t.Profit
	}
	return inst, nil
}

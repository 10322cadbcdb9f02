// Package frontier holds the dynamic programming machinery shared by the
// single-night schedulers: an arena of states linked by integer parent
// handles and the Pareto frontier merge of "skip" and "take" transitions.
//
// A frontier is a slice of handles whose states have strictly increasing end
// times and strictly increasing profits. Handles are only meaningful for the
// Arena that produced them; the arena is discarded with the run.
package frontier

import "github.com/kilianp07/starobs/core/model"

// NoParent marks the root state.
const NoParent = -1

// State is one reachable (end, profit) pair together with the observation
// that produced it.
type State struct {
	End    model.Time
	Profit model.Profit
	Target int
	Mode   int
	Parent int
}

// Transition describes observing one mode of a target.
type Transition struct {
	Target   int
	Mode     int
	Window   model.Window
	Duration model.Time
	Profit   model.Profit
}

// Stats summarises the work done by a run.
type Stats struct {
	States      int
	MaxFrontier int
}

// Arena stores every state created during one run.
type Arena struct {
	states      []State
	maxFrontier int
}

// NewArena returns an arena holding only the root state (empty schedule).
func NewArena(capacity int) *Arena {
	if capacity < 1 {
		capacity = 1
	}
	a := &Arena{states: make([]State, 0, capacity)}
	a.states = append(a.states, State{End: model.MinTime, Target: -1, Mode: -1, Parent: NoParent})
	a.maxFrontier = 1
	return a
}

// Root returns the initial frontier.
func (a *Arena) Root() []int { return []int{0} }

// State returns the state behind a handle.
func (a *Arena) State(h int) State { return a.states[h] }

// Stats returns the number of states created and the largest frontier seen.
func (a *Arena) Stats() Stats {
	return Stats{States: len(a.states), MaxFrontier: a.maxFrontier}
}

// Merge builds the frontier obtained by either keeping a state of carry
// unchanged or applying tr to a state of from. Both inputs must be frontiers.
// On equal end times the carried state is considered first, so a take only
// replaces it when strictly more profitable. The result is appended to
// out[:0].
func (a *Arena) Merge(carry, from []int, tr Transition, out []int) []int {
	out = out[:0]
	w := tr.Window
	i, j := 0, 0
	for {
		takeOK := false
		var takeEnd model.Time
		for j < len(from) {
			start := w.EarliestStart(a.states[from[j]].End, tr.Duration)
			if start <= w.Meridian && start+tr.Duration <= w.Deadline {
				takeEnd = start + tr.Duration
				takeOK = true
				break
			}
			// start is non-decreasing along from, nothing later fits either
			j = len(from)
		}
		if !takeOK && i == len(carry) {
			break
		}
		if takeOK && (i == len(carry) || a.states[carry[i]].End > takeEnd) {
			parent := a.states[from[j]]
			out = a.pushNew(out, State{
				End:    takeEnd,
				Profit: parent.Profit + tr.Profit,
				Target: tr.Target,
				Mode:   tr.Mode,
				Parent: from[j],
			})
			j++
			continue
		}
		out = a.push(out, carry[i])
		i++
	}
	if len(out) > a.maxFrontier {
		a.maxFrontier = len(out)
	}
	return out
}

// accept applies the dominance rule against the last state of out.
func (a *Arena) accept(out []int, end model.Time, profit model.Profit) (ok, replace bool) {
	n := len(out)
	if n == 0 {
		return true, false
	}
	back := a.states[out[n-1]]
	if profit <= back.Profit {
		return false, false
	}
	return true, end == back.End
}

func (a *Arena) push(out []int, h int) []int {
	s := a.states[h]
	ok, replace := a.accept(out, s.End, s.Profit)
	switch {
	case !ok:
		return out
	case replace:
		out[len(out)-1] = h
		return out
	}
	return append(out, h)
}

func (a *Arena) pushNew(out []int, s State) []int {
	ok, replace := a.accept(out, s.End, s.Profit)
	if !ok {
		return out
	}
	a.states = append(a.states, s)
	h := len(a.states) - 1
	if replace {
		out[len(out)-1] = h
		return out
	}
	return append(out, h)
}

// Best returns the most profitable state of a frontier. Profits increase
// along a frontier, so it is the last one.
func (a *Arena) Best(frontier []int) int {
	if len(frontier) == 0 {
		return 0
	}
	return frontier[len(frontier)-1]
}

// Path returns the states leading to h, root excluded, in processing order.
func (a *Arena) Path(h int) []State {
	var path []State
	for h != NoParent && a.states[h].Parent != NoParent {
		path = append(path, a.states[h])
		h = a.states[h].Parent
	}
	for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
		path[l], path[r] = path[r], path[l]
	}
	return path
}

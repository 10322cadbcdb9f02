package flexible

import (
	"fmt"
	"time"

	"github.com/kilianp07/starobs/core/algorithm"
	"github.com/kilianp07/starobs/core/frontier"
)

// Name identifies the algorithm in logs and progress events.
const Name = "flexible-dynamic-programming"

// Output is the result of DynamicProgramming.
type Output struct {
	Solution *Solution
	Bound    float64
	Elapsed  time.Duration
	Stats    frontier.Stats
}

// DynamicProgramming returns an optimal schedule.
//
// Targets are swept by meridian as in the fixed duration case. For each
// target the modes are folded one at a time: every mode extends the frontier
// as it was before the target, and the result is merged into a carry-over
// frontier that starts as that same frontier. Two modes of one target can
// therefore never follow each other in a schedule.
func DynamicProgramming(inst *Instance, params algorithm.Parameters) (Output, error) {
	f := algorithm.Start(Name, params)

	arena := frontier.NewArena(4*inst.NumberOfModes() + 1)
	cur := arena.Root()
	// scratch frontiers, never aliasing cur
	var bufs [2][]int
	for _, id := range inst.MeridianOrder() {
		t := inst.targets[id]
		if len(t.Modes) == 0 {
			continue
		}
		in, carry, side := cur, cur, 0
		for k, mode := range t.Modes {
			bufs[side] = arena.Merge(carry, in, frontier.Transition{
				Target:   id,
				Mode:     k,
				Window:   t.Window,
				Duration: mode.Duration,
				Profit:   mode.Profit,
			}, bufs[side])
			carry = bufs[side]
			side ^= 1
		}
		last := side ^ 1
		cur, bufs[last] = bufs[last], in
	}

	sol := NewSolution(inst)
	for _, st := range arena.Path(arena.Best(cur)) {
		start := st.End - inst.targets[st.Target].Modes[st.Mode].Duration
		if err := sol.AppendObservation(st.Target, st.Mode, start); err != nil {
			return Output{}, fmt.Errorf("%s: rebuild schedule: %w", Name, err)
		}
	}

	profit := float64(sol.Profit())
	f.UpdateSolution(profit, sol.NumberOfObservations(), "")
	f.UpdateBound(profit, "")
	summary := f.End()
	return Output{
		Solution: sol,
		Bound:    profit,
		Elapsed:  summary.Elapsed,
		Stats:    arena.Stats(),
	}, nil
}

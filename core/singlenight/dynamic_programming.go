package singlenight

import (
	"fmt"
	"time"

	"github.com/kilianp07/starobs/core/algorithm"
	"github.com/kilianp07/starobs/core/frontier"
)

// Name identifies the algorithm in logs and progress events.
const Name = "dynamic-programming"

// Output is the result of DynamicProgramming.
type Output struct {
	Solution *Solution
	// Bound equals the profit of Solution since the algorithm is exact.
	Bound   float64
	Elapsed time.Duration
	Stats   frontier.Stats
}

// DynamicProgramming returns an optimal schedule.
//
// Thanks to the long-job property, some optimal schedule observes its
// targets by non-decreasing meridian, so a single sweep over the targets in
// that order is enough. After k targets the sweep keeps the Pareto frontier
// of (end time, profit) pairs reachable with the first k of them.
//
// The only error is a schedule rebuilt from the frontier failing validation.
func DynamicProgramming(inst *Instance, params algorithm.Parameters) (Output, error) {
	f := algorithm.Start(Name, params)

	arena := frontier.NewArena(4*inst.NumberOfTargets() + 1)
	cur := arena.Root()
	var next []int
	for _, id := range inst.MeridianOrder() {
		t := inst.targets[id]
		next = arena.Merge(cur, cur, frontier.Transition{
			Target:   id,
			Window:   t.Window,
			Duration: t.Duration,
			Profit:   t.Profit,
		}, next)
		cur, next = next, cur
	}

	sol := NewSolution(inst)
	for _, st := range arena.Path(arena.Best(cur)) {
		start := st.End - inst.targets[st.Target].Duration
		if err := sol.AppendObservation(st.Target, start); err != nil {
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

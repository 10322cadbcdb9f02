package pricing

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/kilianp07/starobs/core/algorithm"
	"github.com/kilianp07/starobs/core/colgen"
	"github.com/kilianp07/starobs/core/multinight"
)

// Name identifies the algorithm in logs and progress events.
const Name = "column-generation-greedy"

// Parameters are the settings of ColumnGenerationGreedy.
type Parameters struct {
	algorithm.Parameters
	Parallelism   int
	Tolerance     float64
	MaxIterations int
	// OnIteration is called after every pricing round.
	OnIteration func(colgen.Iteration)
	// OnSubproblem is called once per solved night, possibly concurrently.
	OnSubproblem func(Subproblem)
}

// Output is the result of ColumnGenerationGreedy.
type Output struct {
	Solution *multinight.Solution
	// Bound is an upper bound on the optimal profit, +Inf when none was
	// proved before ctx ended the run.
	Bound       float64
	Elapsed     time.Duration
	Dives       int
	Iterations  int
	Columns     int
	Interrupted bool
}

// ColumnGenerationGreedy solves the master LP of inst by column generation
// and rounds it with greedy diving. Each dive produces a feasible schedule;
// the bound comes from the first dive.
func ColumnGenerationGreedy(ctx context.Context, inst *multinight.Instance, params Parameters) (Output, error) {
	f := algorithm.Start(Name, params.Parameters)
	m := NewModel(inst, Options{
		Parallelism:  params.Parallelism,
		Logger:       params.Logger,
		OnSubproblem: params.OnSubproblem,
	})

	best := multinight.NewSolution(inst)
	f.UpdateSolution(0, 0, "empty schedule")
	var replayErr error
	gp := colgen.GreedyParameters[Schedule]{
		Logger:        params.Logger,
		Tolerance:     params.Tolerance,
		MaxIterations: params.MaxIterations,
		OnIteration:   params.OnIteration,
		OnSolution: func(s colgen.Solution[Schedule]) {
			if replayErr != nil {
				return
			}
			sol, err := ColumnsToSolution(inst, s.Columns)
			if err != nil {
				replayErr = err
				return
			}
			if sol.Profit() > best.Profit() {
				best = sol
				f.UpdateSolution(float64(sol.Profit()), sol.NumberOfObservations(), fmt.Sprintf("dive %d", len(s.Columns)))
			}
		},
		OnBound: func(b float64) {
			f.UpdateBound(math.Ceil(b-boundTolerance), "column generation")
		},
	}
	out, err := colgen.Greedy(ctx, m, gp)
	if err == nil {
		err = replayErr
	}
	if err != nil {
		f.End()
		return Output{}, fmt.Errorf("%s: %w", Name, err)
	}
	summary := f.End()
	bound := math.Inf(1)
	if !math.IsInf(out.Bound, 1) {
		bound = math.Max(math.Ceil(out.Bound-boundTolerance), float64(best.Profit()))
	}
	return Output{
		Solution:    best,
		Bound:       bound,
		Elapsed:     summary.Elapsed,
		Dives:       out.Dives,
		Iterations:  out.Iterations,
		Columns:     out.Columns,
		Interrupted: out.Interrupted,
	}, nil
}

const boundTolerance = 1e-6

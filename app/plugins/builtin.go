package plugins

import (
	"context"
	"errors"
	"fmt"

	"github.com/kilianp07/starobs/core/algorithm"
	"github.com/kilianp07/starobs/core/colgen"
	"github.com/kilianp07/starobs/core/events"
	"github.com/kilianp07/starobs/core/factory"
	"github.com/kilianp07/starobs/core/flexible"
	"github.com/kilianp07/starobs/core/multinight"
	"github.com/kilianp07/starobs/core/pricing"
	"github.com/kilianp07/starobs/core/singlenight"
)

// ErrUnsupported is returned when an algorithm cannot handle an instance.
var ErrUnsupported = errors.New("instance not supported by algorithm")

// PricingConfig is the configuration of the column generation solver.
type PricingConfig struct {
	Parallelism   int     `json:"parallelism"`
	Tolerance     float64 `json:"tolerance"`
	MaxIterations int     `json:"max_iterations"`
}

func init() {
	_ = RegisterSolver(singlenight.Name, func(map[string]any) (Solver, error) {
		return SolverFunc(solveSingleNight), nil
	})
	_ = RegisterSolver(flexible.Name, func(map[string]any) (Solver, error) {
		return SolverFunc(solveFlexible), nil
	})
	_ = RegisterSolver(pricing.Name, func(conf map[string]any) (Solver, error) {
		var pc PricingConfig
		if err := factory.Decode(conf, &pc); err != nil {
			return nil, err
		}
		return SolverFunc(func(ctx context.Context, inst *multinight.Instance, req Request) (Result, error) {
			return solveColumnGeneration(ctx, inst, req, pc)
		}), nil
	})
}

// Auto picks the algorithm for inst: a dynamic program when it fits a single
// night, column generation otherwise.
func Auto(inst *multinight.Instance) string {
	switch {
	case singleNight("", inst) != nil:
		return pricing.Name
	case inst.Fixed():
		return singlenight.Name
	}
	return flexible.Name
}

func (r Request) parameters() algorithm.Parameters {
	return algorithm.Parameters{
		Logger:     r.Logger,
		RunID:      r.RunID,
		OnSolution: func(ev events.SolutionEvent) { r.publish(events.Progress{Solution: &ev}) },
		OnBound:    func(ev events.BoundEvent) { r.publish(events.Progress{Bound: &ev}) },
	}
}

// singleNight checks that inst has one night. Instances never hold two
// observables of a target on the same night, so each observable becomes one
// single-night target.
func singleNight(name string, inst *multinight.Instance) error {
	if n := inst.NumberOfNights(); n != 1 {
		return fmt.Errorf("%w: %s needs one night, got %d", ErrUnsupported, name, n)
	}
	return nil
}

// interrupted is the result of a dynamic program canceled before it
// started: the programs themselves run to completion.
func interrupted(inst *multinight.Instance) Result {
	return Result{
		Solution:    multinight.NewSolution(inst),
		Bound:       float64(inst.TotalProfit()),
		Interrupted: true,
	}
}

func solveSingleNight(ctx context.Context, inst *multinight.Instance, req Request) (Result, error) {
	if err := singleNight(singlenight.Name, inst); err != nil {
		return Result{}, err
	}
	if !inst.Fixed() {
		return Result{}, fmt.Errorf("%w: %s needs a fixed duration instance", ErrUnsupported, singlenight.Name)
	}
	if ctx.Err() != nil {
		return interrupted(inst), nil
	}
	night := inst.Night(0)
	ids := night.MeridianOrder()
	b := singlenight.NewBuilder()
	for _, id := range ids {
		o := night.Observables[id]
		b.AddTarget(o.Window.Release, o.Window.Meridian, o.Window.Deadline, o.Modes[0].Duration, o.Modes[0].Profit)
	}
	sub, err := b.Build()
	if err != nil {
		return Result{}, err
	}
	out, err := singlenight.DynamicProgramming(sub, req.parameters())
	if err != nil {
		return Result{}, err
	}
	sol := multinight.NewSolution(inst)
	for _, o := range out.Solution.Observations() {
		if err := sol.AppendObservation(0, ids[o.Target], 0, o.Start); err != nil {
			return Result{}, fmt.Errorf("%s: %w", singlenight.Name, err)
		}
	}
	return Result{Solution: sol, Bound: out.Bound, Elapsed: out.Elapsed}, nil
}

func solveFlexible(ctx context.Context, inst *multinight.Instance, req Request) (Result, error) {
	if err := singleNight(flexible.Name, inst); err != nil {
		return Result{}, err
	}
	if ctx.Err() != nil {
		return interrupted(inst), nil
	}
	night := inst.Night(0)
	ids := night.MeridianOrder()
	b := flexible.NewBuilder()
	for _, id := range ids {
		o := night.Observables[id]
		local := b.AddTarget(o.Window.Release, o.Window.Meridian, o.Window.Deadline)
		for _, md := range o.Modes {
			b.AddMode(local, md.Duration, md.Profit)
		}
	}
	sub, err := b.Build()
	if err != nil {
		return Result{}, err
	}
	out, err := flexible.DynamicProgramming(sub, req.parameters())
	if err != nil {
		return Result{}, err
	}
	sol := multinight.NewSolution(inst)
	for _, o := range out.Solution.Observations() {
		if err := sol.AppendObservation(0, ids[o.Target], o.Mode, o.Start); err != nil {
			return Result{}, fmt.Errorf("%s: %w", flexible.Name, err)
		}
	}
	return Result{Solution: sol, Bound: out.Bound, Elapsed: out.Elapsed}, nil
}

func solveColumnGeneration(ctx context.Context, inst *multinight.Instance, req Request, pc PricingConfig) (Result, error) {
	out, err := pricing.ColumnGenerationGreedy(ctx, inst, pricing.Parameters{
		Parameters:    req.parameters(),
		Parallelism:   pc.Parallelism,
		Tolerance:     pc.Tolerance,
		MaxIterations: pc.MaxIterations,
		OnIteration: func(it colgen.Iteration) {
			req.publish(events.Progress{Round: &events.RoundEvent{
				RunID:       req.RunID,
				Dive:        it.Dive,
				Iteration:   it.Iteration,
				Columns:     it.Columns,
				NewColumns:  it.NewColumns,
				LPObjective: it.LPObjective,
				Overcost:    it.Overcost,
				Elapsed:     it.Elapsed,
			}})
		},
		OnSubproblem: func(sp pricing.Subproblem) {
			req.publish(events.Progress{Subproblem: &events.SubproblemEvent{
				RunID:       req.RunID,
				Night:       sp.Night,
				Targets:     sp.Targets,
				States:      sp.Stats.States,
				MaxFrontier: sp.Stats.MaxFrontier,
				Profit:      sp.Profit,
				ReducedCost: sp.ReducedCost,
				Elapsed:     sp.Elapsed,
			}})
		},
	})
	if err != nil {
		return Result{}, err
	}
	return Result{
		Solution:    out.Solution,
		Bound:       out.Bound,
		Elapsed:     out.Elapsed,
		Dives:       out.Dives,
		Iterations:  out.Iterations,
		Columns:     out.Columns,
		Interrupted: out.Interrupted,
	}, nil
}

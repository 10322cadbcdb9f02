package pricing

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/starobs/core/algorithm"
	"github.com/kilianp07/starobs/core/colgen"
	"github.com/kilianp07/starobs/core/flexible"
	"github.com/kilianp07/starobs/core/frontier"
	"github.com/kilianp07/starobs/core/logger"
	"github.com/kilianp07/starobs/core/model"
	"github.com/kilianp07/starobs/core/multinight"
	"github.com/kilianp07/starobs/core/singlenight"
)

// Subproblem describes the single-night problem solved for one night.
type Subproblem struct {
	Night       int
	Targets     int
	Profit      float64
	ReducedCost float64
	Stats       frontier.Stats
	Elapsed     time.Duration
}

// Options configure an Adapter.
type Options struct {
	// Parallelism bounds the nights solved concurrently. Zero means
	// GOMAXPROCS.
	Parallelism int
	Logger      logger.Logger
	// OnSubproblem is called once per solved night. Calls may be concurrent.
	OnSubproblem func(Subproblem)
}

// Adapter is the pricing solver of the multi-night master problem. It is
// not safe for concurrent use; SolvePricing itself fans out over nights.
type Adapter struct {
	inst         *multinight.Instance
	opts         Options
	log          logger.Logger
	fixedNights  []bool
	fixedTargets []bool
}

var _ colgen.PricingSolver[Schedule] = (*Adapter)(nil)

// NewAdapter returns an adapter with nothing fixed.
func NewAdapter(inst *multinight.Instance, opts Options) *Adapter {
	if opts.Parallelism <= 0 {
		opts.Parallelism = runtime.GOMAXPROCS(0)
	}
	return &Adapter{
		inst:         inst,
		opts:         opts,
		log:          logger.OrNop(opts.Logger),
		fixedNights:  make([]bool, inst.NumberOfNights()),
		fixedTargets: make([]bool, inst.NumberOfTargets()),
	}
}

// InitializePricing rebuilds the fixed nights and targets from the columns
// the driver fixed. It returns no column.
func (a *Adapter) InitializePricing(fixed []colgen.FixedColumn[Schedule]) []*colgen.Column[Schedule] {
	clear(a.fixedNights)
	clear(a.fixedTargets)
	nights := a.inst.NumberOfNights()
	for _, fc := range fixed {
		if fc.Value < 0.5 || fc.Column == nil {
			continue
		}
		for _, t := range fc.Column.Elements {
			if t.Coefficient < 0.5 {
				continue
			}
			if t.Row < nights {
				a.fixedNights[t.Row] = true
			} else {
				a.fixedTargets[t.Row-nights] = true
			}
		}
	}
	return nil
}

// SolvePricing solves one restricted single-night problem per free night
// with target profits w - v and returns the best schedule of each, in night
// order.
func (a *Adapter) SolvePricing(ctx context.Context, duals []float64) (colgen.PricingOutput[Schedule], error) {
	nights := a.inst.NumberOfNights()
	if len(duals) != nights+a.inst.NumberOfTargets() {
		return colgen.PricingOutput[Schedule]{}, fmt.Errorf("pricing: got %d duals for %d rows", len(duals), nights+a.inst.NumberOfTargets())
	}
	cols := make([]*colgen.Column[Schedule], nights)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Parallelism)
	for n := 0; n < nights; n++ {
		if a.fixedNights[n] {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			col, err := a.solveNight(n, duals)
			if err != nil {
				return fmt.Errorf("pricing: night %d: %w", n, err)
			}
			cols[n] = col
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return colgen.PricingOutput[Schedule]{}, err
	}

	var out colgen.PricingOutput[Schedule]
	best := 0.0
	for _, c := range cols {
		if c == nil {
			continue
		}
		out.Columns = append(out.Columns, c)
		if rc := colgen.ReducedCost(c, duals); rc > best {
			best = rc
		}
	}
	out.Overcost = float64(nights) * best
	return out, nil
}

func (a *Adapter) solveNight(n int, duals []float64) (*colgen.Column[Schedule], error) {
	if a.inst.Fixed() {
		return a.solveFixed(n, duals)
	}
	return a.solveFlexible(n, duals)
}

func (a *Adapter) targetRow(target int) int { return a.inst.NumberOfNights() + target }

func (a *Adapter) solveFixed(n int, duals []float64) (*colgen.Column[Schedule], error) {
	night := a.inst.Night(n)
	b := singlenight.NewBuilder()
	var ids []int
	// meridian order keeps the restricted instance sorted
	for _, id := range night.MeridianOrder() {
		o := night.Observables[id]
		if a.fixedTargets[o.Target] {
			continue
		}
		profit := o.Modes[0].Profit - model.Profit(duals[a.targetRow(o.Target)])
		if profit <= 0 {
			continue
		}
		w := o.Window
		b.AddTarget(w.Release, w.Meridian, w.Deadline, o.Modes[0].Duration, profit)
		ids = append(ids, id)
	}
	sub, err := b.Build()
	if err != nil {
		return nil, err
	}
	res, err := singlenight.DynamicProgramming(sub, algorithm.Parameters{})
	if err != nil {
		return nil, err
	}
	s := Schedule{Night: n, Observables: ids}
	col := a.newColumn(n)
	for _, o := range res.Solution.Observations() {
		s.Observations = append(s.Observations, LocalObservation{Target: o.Target, Start: o.Start})
		ob := night.Observables[ids[o.Target]]
		col.Elements = append(col.Elements, colgen.LinearTerm{Row: a.targetRow(ob.Target), Coefficient: 1})
		col.Objective += float64(ob.Modes[0].Profit)
	}
	col.Payload = s
	a.report(n, sub.NumberOfTargets(), float64(res.Solution.Profit()), col, duals, res.Stats, res.Elapsed)
	return col, nil
}

func (a *Adapter) solveFlexible(n int, duals []float64) (*colgen.Column[Schedule], error) {
	night := a.inst.Night(n)
	b := flexible.NewBuilder()
	var ids []int
	var modes [][]int
	for _, id := range night.MeridianOrder() {
		o := night.Observables[id]
		if a.fixedTargets[o.Target] {
			continue
		}
		v := model.Profit(duals[a.targetRow(o.Target)])
		var kept []int
		for k, md := range o.Modes {
			if md.Profit-v > 0 {
				kept = append(kept, k)
			}
		}
		if len(kept) == 0 {
			continue
		}
		w := o.Window
		local := b.AddTarget(w.Release, w.Meridian, w.Deadline)
		for _, k := range kept {
			b.AddMode(local, o.Modes[k].Duration, o.Modes[k].Profit-v)
		}
		ids = append(ids, id)
		modes = append(modes, kept)
	}
	sub, err := b.Build()
	if err != nil {
		return nil, err
	}
	res, err := flexible.DynamicProgramming(sub, algorithm.Parameters{})
	if err != nil {
		return nil, err
	}
	s := Schedule{Night: n, Observables: ids, Modes: modes}
	col := a.newColumn(n)
	for _, o := range res.Solution.Observations() {
		s.Observations = append(s.Observations, LocalObservation{Target: o.Target, Mode: o.Mode, Start: o.Start})
		ob := night.Observables[ids[o.Target]]
		col.Elements = append(col.Elements, colgen.LinearTerm{Row: a.targetRow(ob.Target), Coefficient: 1})
		col.Objective += float64(ob.Modes[modes[o.Target][o.Mode]].Profit)
	}
	col.Payload = s
	a.report(n, sub.NumberOfTargets(), float64(res.Solution.Profit()), col, duals, res.Stats, res.Elapsed)
	return col, nil
}

func (a *Adapter) newColumn(n int) *colgen.Column[Schedule] {
	return &colgen.Column[Schedule]{Elements: []colgen.LinearTerm{{Row: n, Coefficient: 1}}}
}

func (a *Adapter) report(n, targets int, profit float64, col *colgen.Column[Schedule], duals []float64, stats frontier.Stats, elapsed time.Duration) {
	sp := Subproblem{
		Night:       n,
		Targets:     targets,
		Profit:      profit,
		ReducedCost: colgen.ReducedCost(col, duals),
		Stats:       stats,
		Elapsed:     elapsed,
	}
	a.log.Debugw("pricing subproblem", map[string]any{
		"night": n, "targets": targets, "reduced_cost": sp.ReducedCost, "states": stats.States,
	})
	if a.opts.OnSubproblem != nil {
		a.opts.OnSubproblem(sp)
	}
}

// NewModel describes the master problem of inst for a column generation
// driver.
func NewModel(inst *multinight.Instance, opts Options) colgen.Model[Schedule] {
	rows := make([]colgen.Row, inst.NumberOfNights()+inst.NumberOfTargets())
	for i := range rows {
		rows[i] = colgen.Row{LowerBound: 0, UpperBound: 1, CoefficientLowerBound: 0, CoefficientUpperBound: 1}
	}
	return colgen.Model[Schedule]{
		Rows:    rows,
		Sense:   colgen.Maximize,
		Pricing: NewAdapter(inst, opts),
	}
}

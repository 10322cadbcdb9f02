package colgen

import (
	"context"
	"math"
	"time"

	"github.com/kilianp07/starobs/core/logger"
)

// Iteration describes one pricing round of the greedy driver.
type Iteration struct {
	Dive        int
	Iteration   int
	Columns     int
	NewColumns  int
	LPObjective float64
	Overcost    float64
	Elapsed     time.Duration
}

// Solution is a set of columns fixed to 1.
type Solution[P any] struct {
	Columns   []FixedColumn[P]
	Objective float64
}

// GreedyParameters tune the greedy driver. Zero values select defaults.
type GreedyParameters[P any] struct {
	Logger logger.Logger
	// Tolerance is used by the simplex and for reduced cost and value tests.
	Tolerance float64
	// MaxIterations caps the pricing rounds of one dive.
	MaxIterations int
	// OnSolution is called with the columns fixed after each dive.
	OnSolution func(Solution[P])
	// OnBound is called with an upper bound on the master LP after every
	// pricing round of the first dive.
	OnBound func(float64)
	// OnIteration is called after every pricing round.
	OnIteration func(Iteration)
}

func (p *GreedyParameters[P]) setDefaults() {
	if p.Tolerance <= 0 {
		p.Tolerance = 1e-7
	}
	if p.MaxIterations <= 0 {
		p.MaxIterations = 1000
	}
	p.Logger = logger.OrNop(p.Logger)
}

// GreedyOutput is the result of Greedy.
type GreedyOutput[P any] struct {
	Solution Solution[P]
	// Bound is the best master LP bound, +Inf when none was proved.
	Bound      float64
	Dives      int
	Iterations int
	Columns    int
	// Interrupted reports that ctx ended the run early.
	Interrupted bool
}

type greedy[P any] struct {
	model    Model[P]
	params   GreedyParameters[P]
	start    time.Time
	pool     []*Column[P]
	keys     map[string]bool
	fixed    []FixedColumn[P]
	fixedSet map[*Column[P]]bool
	residual []float64
	out      GreedyOutput[P]
}

// Greedy runs column generation followed by greedy diving: at each dive the
// master LP is solved by column generation, then the column with the largest
// value is fixed to 1 and the rows it uses are consumed. Dives stop when the
// LP has no positive column left.
//
// A cancelled ctx stops the run at the next pricing round and returns the
// columns fixed so far.
func Greedy[P any](ctx context.Context, model Model[P], params GreedyParameters[P]) (GreedyOutput[P], error) {
	if err := model.Validate(); err != nil {
		return GreedyOutput[P]{}, err
	}
	params.setDefaults()
	g := &greedy[P]{
		model:    model,
		params:   params,
		start:    time.Now(),
		keys:     make(map[string]bool),
		fixedSet: make(map[*Column[P]]bool),
		residual: make([]float64, len(model.Rows)),
		out:      GreedyOutput[P]{Bound: math.Inf(1)},
	}
	for i, r := range model.Rows {
		g.residual[i] = r.UpperBound
	}
	err := g.run(ctx)
	g.out.Solution.Columns = g.fixed
	g.out.Columns = len(g.pool)
	return g.out, err
}

func (g *greedy[P]) run(ctx context.Context) error {
	log := g.params.Logger
	for dive := 0; ; dive++ {
		g.out.Dives = dive + 1
		g.add(g.model.Pricing.InitializePricing(g.fixed))
		active, sol, err := g.columnGeneration(ctx, dive)
		if err != nil {
			return err
		}
		if g.out.Interrupted {
			return nil
		}
		best := -1
		for k, v := range sol.Values {
			if active[k].Objective <= g.params.Tolerance {
				continue
			}
			if v > g.params.Tolerance && (best < 0 || v > sol.Values[best]) {
				best = k
			}
		}
		if best < 0 {
			log.Debugf("greedy: dive %d: no positive column, stop", dive)
			return nil
		}
		col := active[best]
		g.fix(col)
		log.Debugf("greedy: dive %d: fix column value=%.4f objective=%g", dive, sol.Values[best], col.Objective)
		if g.params.OnSolution != nil {
			g.params.OnSolution(Solution[P]{
				Columns:   append([]FixedColumn[P](nil), g.fixed...),
				Objective: g.out.Solution.Objective,
			})
		}
	}
}

// columnGeneration solves the master LP of the current dive.
func (g *greedy[P]) columnGeneration(ctx context.Context, dive int) ([]*Column[P], masterSolution, error) {
	tol := g.params.Tolerance
	for it := 0; ; it++ {
		active := g.active()
		sol, err := solveMaster(active, g.residual, tol)
		if err != nil {
			return nil, sol, err
		}
		if it >= g.params.MaxIterations {
			g.params.Logger.Warnf("greedy: dive %d: iteration limit %d reached", dive, g.params.MaxIterations)
			return active, sol, nil
		}
		if ctx.Err() != nil {
			g.out.Interrupted = true
			return active, sol, nil
		}
		g.out.Iterations++
		priced, err := g.model.Pricing.SolvePricing(ctx, sol.Duals)
		if err != nil {
			if ctx.Err() != nil {
				g.out.Interrupted = true
				return active, sol, nil
			}
			return nil, sol, err
		}
		added := 0
		for _, c := range priced.Columns {
			if ReducedCost(c, sol.Duals) <= tol || !g.fits(c) {
				continue
			}
			if g.add([]*Column[P]{c}) > 0 {
				added++
			}
		}
		if dive == 0 {
			bound := g.out.Solution.Objective + sol.Objective + priced.Overcost
			if bound < g.out.Bound {
				g.out.Bound = bound
				if g.params.OnBound != nil {
					g.params.OnBound(bound)
				}
			}
		}
		if g.params.OnIteration != nil {
			g.params.OnIteration(Iteration{
				Dive:        dive,
				Iteration:   it,
				Columns:     len(g.pool),
				NewColumns:  added,
				LPObjective: sol.Objective,
				Overcost:    priced.Overcost,
				Elapsed:     time.Since(g.start),
			})
		}
		if added == 0 {
			return active, sol, nil
		}
	}
}

// add puts new columns in the pool and returns how many were not known.
func (g *greedy[P]) add(cols []*Column[P]) int {
	n := 0
	for _, c := range cols {
		if c == nil {
			continue
		}
		k := c.key()
		if g.keys[k] {
			continue
		}
		g.keys[k] = true
		g.pool = append(g.pool, c)
		n++
	}
	return n
}

// fits reports whether a column can still be selected on top of the fixed
// ones.
func (g *greedy[P]) fits(c *Column[P]) bool {
	nonzero := false
	for _, t := range c.Elements {
		if t.Coefficient == 0 {
			continue
		}
		nonzero = true
		if t.Row < 0 || t.Row >= len(g.residual) || g.residual[t.Row] < t.Coefficient-g.params.Tolerance {
			return false
		}
	}
	return nonzero
}

func (g *greedy[P]) active() []*Column[P] {
	var out []*Column[P]
	for _, c := range g.pool {
		if !g.fixedSet[c] && g.fits(c) {
			out = append(out, c)
		}
	}
	return out
}

func (g *greedy[P]) fix(c *Column[P]) {
	g.fixed = append(g.fixed, FixedColumn[P]{Column: c, Value: 1})
	g.fixedSet[c] = true
	for _, t := range c.Elements {
		g.residual[t.Row] = math.Max(0, g.residual[t.Row]-t.Coefficient)
	}
	g.out.Solution.Objective += c.Objective
}

package pricing

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/starobs/core/colgen"
	"github.com/kilianp07/starobs/core/model"
	"github.com/kilianp07/starobs/core/multinight"
)

// fourTargets has two nights and four targets:
//
//	night 0: t0 (w=10), t1 (w=4), t2 (w=7)
//	night 1: t2, t3 (w=5), t0
func fourTargets(t *testing.T) *multinight.Instance {
	t.Helper()
	b := multinight.NewBuilder()
	b.SetNumberOfNights(2)
	b.SetNumberOfTargets(4)
	for id, w := range []model.Profit{10, 4, 7, 5} {
		b.SetProfit(id, w)
	}
	b.AddFixedObservable(0, 0, 0, 5, 10, 5)
	b.AddFixedObservable(0, 1, 3, 6, 9, 3)
	b.AddFixedObservable(0, 2, 0, 5, 10, 10)
	b.AddFixedObservable(1, 2, 100, 105, 110, 5)
	b.AddFixedObservable(1, 3, 103, 106, 109, 3)
	b.AddFixedObservable(1, 0, 100, 105, 110, 10)
	inst, err := b.Build()
	require.NoError(t, err)
	return inst
}

// duals: u = (2, 1), v = (3, 1, 8, 0)
var fourTargetDuals = []float64{2, 1, 3, 1, 8, 0}

func TestSolvePricingMatchesClosedForm(t *testing.T) {
	inst := fourTargets(t)
	a := NewAdapter(inst, Options{})
	out, err := a.SolvePricing(context.Background(), fourTargetDuals)
	require.NoError(t, err)
	require.Len(t, out.Columns, 2)

	// night 0: t0 and t1 with adjusted profits 7 and 3, t2 is dropped
	c0 := out.Columns[0]
	assert.Equal(t, []colgen.LinearTerm{{Row: 0, Coefficient: 1}, {Row: 2, Coefficient: 1}, {Row: 3, Coefficient: 1}}, c0.Elements)
	assert.Equal(t, 14.0, c0.Objective)
	assert.InDelta(t, (10-3)+(4-1)-2.0, colgen.ReducedCost(c0, fourTargetDuals), 1e-12)
	assert.Equal(t, []multinight.Observation{{Observable: 0, Start: 0}, {Observable: 1, Start: 5}}, c0.Payload.Global())

	// night 1: t0 alone (7) beats t3 alone (5)
	c1 := out.Columns[1]
	assert.Equal(t, []colgen.LinearTerm{{Row: 1, Coefficient: 1}, {Row: 2, Coefficient: 1}}, c1.Elements)
	assert.Equal(t, 10.0, c1.Objective)
	assert.InDelta(t, (10-3)-1.0, colgen.ReducedCost(c1, fourTargetDuals), 1e-12)
	assert.Equal(t, []multinight.Observation{{Observable: 2, Start: 100}}, c1.Payload.Global())

	assert.InDelta(t, 2*8.0, out.Overcost, 1e-12)
}

func TestInitializePricingRebuildsFixedFlags(t *testing.T) {
	inst := fourTargets(t)
	a := NewAdapter(inst, Options{Parallelism: 1})
	first, err := a.SolvePricing(context.Background(), fourTargetDuals)
	require.NoError(t, err)

	cols := a.InitializePricing([]colgen.FixedColumn[Schedule]{
		{Column: first.Columns[0], Value: 1},
		{Column: first.Columns[1], Value: 0.2},
	})
	assert.Empty(t, cols)

	out, err := a.SolvePricing(context.Background(), fourTargetDuals)
	require.NoError(t, err)
	require.Len(t, out.Columns, 1)
	// t0 and t1 are taken, t2 is still unprofitable
	c := out.Columns[0]
	assert.Equal(t, 1, c.Payload.Night)
	assert.Equal(t, []multinight.Observation{{Observable: 1, Start: 103}}, c.Payload.Global())
	assert.InDelta(t, 5-1.0, colgen.ReducedCost(c, fourTargetDuals), 1e-12)
	assert.InDelta(t, 2*4.0, out.Overcost, 1e-12)

	a.InitializePricing(nil)
	out, err = a.SolvePricing(context.Background(), fourTargetDuals)
	require.NoError(t, err)
	assert.Len(t, out.Columns, 2)
}

func TestSolvePricingWithoutProfitableTargets(t *testing.T) {
	inst := fourTargets(t)
	a := NewAdapter(inst, Options{})
	duals := []float64{1, 1, 20, 20, 20, 20}
	out, err := a.SolvePricing(context.Background(), duals)
	require.NoError(t, err)
	require.Len(t, out.Columns, 2)
	for _, c := range out.Columns {
		assert.Len(t, c.Elements, 1)
		assert.Zero(t, c.Objective)
		assert.Empty(t, c.Payload.Observations)
	}
	assert.Zero(t, out.Overcost)
}

func TestSolvePricingRejectsWrongDuals(t *testing.T) {
	a := NewAdapter(fourTargets(t), Options{})
	_, err := a.SolvePricing(context.Background(), []float64{1, 2})
	assert.Error(t, err)
}

func TestSolvePricingIsDeterministic(t *testing.T) {
	inst := fourTargets(t)
	serial, err := NewAdapter(inst, Options{Parallelism: 1}).SolvePricing(context.Background(), fourTargetDuals)
	require.NoError(t, err)
	parallel, err := NewAdapter(inst, Options{Parallelism: 8}).SolvePricing(context.Background(), fourTargetDuals)
	require.NoError(t, err)
	require.Equal(t, len(serial.Columns), len(parallel.Columns))
	for k := range serial.Columns {
		assert.Equal(t, *serial.Columns[k], *parallel.Columns[k])
	}
	assert.Equal(t, serial.Overcost, parallel.Overcost)
}

func TestSolvePricingReportsSubproblems(t *testing.T) {
	var mu sync.Mutex
	seen := map[int]Subproblem{}
	a := NewAdapter(fourTargets(t), Options{OnSubproblem: func(sp Subproblem) {
		mu.Lock()
		defer mu.Unlock()
		seen[sp.Night] = sp
	}})
	_, err := a.SolvePricing(context.Background(), fourTargetDuals)
	require.NoError(t, err)
	require.Len(t, seen, 2)
	assert.Equal(t, 2, seen[0].Targets)
	assert.InDelta(t, 8, seen[0].ReducedCost, 1e-12)
	assert.Positive(t, seen[1].Stats.States)
}

func TestSolvePricingFlexible(t *testing.T) {
	inst, err := multinight.ExpandModes(fourTargets(t), []float64{0.8})
	require.NoError(t, err)
	require.False(t, inst.Fixed())

	a := NewAdapter(inst, Options{})
	duals := make([]float64, 6)
	out, err := a.SolvePricing(context.Background(), duals)
	require.NoError(t, err)
	require.Len(t, out.Columns, 2)
	for _, c := range out.Columns {
		var profit model.Profit
		for _, o := range c.Payload.Global() {
			ob := inst.Observable(c.Payload.Night, o.Observable)
			profit += ob.Modes[o.Mode].Profit
		}
		assert.InDelta(t, float64(profit), c.Objective, 1e-9)
	}
}

func TestColumnsToSolution(t *testing.T) {
	inst := fourTargets(t)
	a := NewAdapter(inst, Options{})
	out, err := a.SolvePricing(context.Background(), fourTargetDuals)
	require.NoError(t, err)

	sol, err := ColumnsToSolution(inst, []colgen.FixedColumn[Schedule]{{Column: out.Columns[0], Value: 1}})
	require.NoError(t, err)
	assert.Equal(t, model.Profit(14), sol.Profit())
	assert.Equal(t, 2, sol.NumberOfObservations())

	// both columns observe t0
	_, err = ColumnsToSolution(inst, []colgen.FixedColumn[Schedule]{
		{Column: out.Columns[0], Value: 1},
		{Column: out.Columns[1], Value: 1},
	})
	assert.ErrorIs(t, err, model.ErrInvalidSchedule)

	// fractional columns are ignored
	sol, err = ColumnsToSolution(inst, []colgen.FixedColumn[Schedule]{{Column: out.Columns[1], Value: 0.3}})
	require.NoError(t, err)
	assert.Zero(t, sol.NumberOfObservations())
}

func TestColumnsToSolutionSortsByStart(t *testing.T) {
	inst := fourTargets(t)
	col := &colgen.Column[Schedule]{Payload: Schedule{
		Night:        0,
		Observables:  []int{1, 0},
		Observations: []LocalObservation{{Target: 0, Start: 5}, {Target: 1, Start: 0}},
	}}
	sol, err := ColumnsToSolution(inst, []colgen.FixedColumn[Schedule]{{Column: col, Value: 1}})
	require.NoError(t, err)
	assert.Equal(t, []multinight.Observation{{Observable: 0, Start: 0}, {Observable: 1, Start: 5}}, sol.Observations(0))
}

func TestNewModel(t *testing.T) {
	m := NewModel(fourTargets(t), Options{})
	require.Len(t, m.Rows, 6)
	assert.Equal(t, colgen.Maximize, m.Sense)
	for _, r := range m.Rows {
		assert.Equal(t, colgen.Row{UpperBound: 1, CoefficientUpperBound: 1}, r)
	}
	assert.NoError(t, m.Validate())
}

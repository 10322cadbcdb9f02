package plugins

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/starobs/core/events"
	"github.com/kilianp07/starobs/core/flexible"
	"github.com/kilianp07/starobs/core/model"
	"github.com/kilianp07/starobs/core/multinight"
	"github.com/kilianp07/starobs/core/pricing"
	"github.com/kilianp07/starobs/core/singlenight"
)

type collector struct {
	mu     sync.Mutex
	events []events.Progress
}

func (c *collector) publish(ev events.Progress) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *collector) kinds() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := map[string]int{}
	for _, ev := range c.events {
		out[ev.Kind()]++
	}
	return out
}

// oneNight is the worked example: observing A on [0, 5] then B on [5, 8]
// collects 14.
func oneNight(t *testing.T) *multinight.Instance {
	t.Helper()
	b := multinight.NewBuilder()
	b.SetNumberOfNights(1)
	b.SetNumberOfTargets(2)
	b.SetProfit(0, 10)
	b.SetProfit(1, 4)
	b.AddFixedObservable(0, 1, 3, 6, 9, 3)
	b.AddFixedObservable(0, 0, 0, 5, 10, 5)
	inst, err := b.Build()
	require.NoError(t, err)
	return inst
}

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

func TestNames(t *testing.T) {
	assert.Subset(t, Names(), []string{singlenight.Name, flexible.Name, pricing.Name})
}

func TestSingleNightSolver(t *testing.T) {
	s, err := NewSolver(singlenight.Name, nil)
	require.NoError(t, err)
	c := &collector{}
	res, err := s.Solve(context.Background(), oneNight(t), Request{RunID: "r1", Publish: c.publish})
	require.NoError(t, err)
	assert.Equal(t, model.Profit(14), res.Solution.Profit())
	assert.Equal(t, 14.0, res.Bound)
	// observable ids of the night, not meridian ranks
	assert.Equal(t, []multinight.Observation{{Observable: 1, Start: 0}, {Observable: 0, Start: 5}}, res.Solution.Observations(0))
	assert.Equal(t, map[string]int{"solution": 1, "bound": 1}, c.kinds())
	assert.Equal(t, "r1", c.events[0].Solution.RunID)
}

func TestFlexibleSolver(t *testing.T) {
	b := multinight.NewBuilder()
	b.SetNumberOfNights(1)
	b.SetNumberOfTargets(2)
	id := b.AddObservable(0, 0, 0, 5, 10)
	b.AddMode(0, id, 5, 10)
	b.AddMode(0, id, 10, 12)
	id = b.AddObservable(0, 1, 3, 6, 9)
	b.AddMode(0, id, 3, 4)
	inst, err := b.Build()
	require.NoError(t, err)

	s, err := NewSolver(flexible.Name, nil)
	require.NoError(t, err)
	res, err := s.Solve(context.Background(), inst, Request{})
	require.NoError(t, err)
	// the short mode of target 0 makes room for target 1
	assert.Equal(t, model.Profit(14), res.Solution.Profit())
	assert.Equal(t, 2, res.Solution.NumberOfObservations())
}

func TestSingleNightSolversRejectUnsupportedInstances(t *testing.T) {
	flex := multinight.NewBuilder()
	flex.SetNumberOfNights(1)
	flex.SetNumberOfTargets(1)
	id := flex.AddObservable(0, 0, 0, 5, 10)
	flex.AddMode(0, id, 5, 1)
	flex.AddMode(0, id, 6, 2)
	flexInst, err := flex.Build()
	require.NoError(t, err)

	tests := []struct {
		name string
		algo string
		inst *multinight.Instance
	}{
		{"two nights", singlenight.Name, fourTargets(t)},
		{"two nights flexible", flexible.Name, fourTargets(t)},
		{"several modes", singlenight.Name, flexInst},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSolver(tt.algo, nil)
			require.NoError(t, err)
			_, err = s.Solve(context.Background(), tt.inst, Request{})
			assert.ErrorIs(t, err, ErrUnsupported)
		})
	}
}

func TestColumnGenerationSolver(t *testing.T) {
	s, err := NewSolver(pricing.Name, map[string]any{"parallelism": "2", "max_iterations": 50})
	require.NoError(t, err)
	c := &collector{}
	res, err := s.Solve(context.Background(), fourTargets(t), Request{RunID: "r2", Publish: c.publish})
	require.NoError(t, err)
	assert.Equal(t, model.Profit(26), res.Solution.Profit())
	assert.Equal(t, 26.0, res.Bound)
	assert.Positive(t, res.Iterations)

	kinds := c.kinds()
	assert.Equal(t, res.Iterations, kinds["round"])
	assert.Positive(t, kinds["subproblem"])
	assert.Positive(t, kinds["solution"])
}

func TestNewSolverUnknown(t *testing.T) {
	_, err := NewSolver("simulated-annealing", nil)
	assert.ErrorContains(t, err, "unknown module type")
}

func TestAuto(t *testing.T) {
	assert.Equal(t, singlenight.Name, Auto(oneNight(t)))
	assert.Equal(t, pricing.Name, Auto(fourTargets(t)))

	expanded, err := multinight.ExpandModes(oneNight(t), []float64{0.9})
	require.NoError(t, err)
	assert.Equal(t, flexible.Name, Auto(expanded))
}

func TestDynamicProgramsSkipCanceledRuns(t *testing.T) {
	inst := oneNight(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, name := range []string{singlenight.Name, flexible.Name} {
		s, err := NewSolver(name, nil)
		require.NoError(t, err)
		res, err := s.Solve(ctx, inst, Request{})
		require.NoError(t, err, name)
		assert.True(t, res.Interrupted, name)
		assert.Zero(t, res.Solution.NumberOfObservations(), name)
		assert.Equal(t, float64(inst.TotalProfit()), res.Bound, name)
	}
}

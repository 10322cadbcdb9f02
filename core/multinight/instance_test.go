package multinight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/starobs/core/model"
)

// twoNights has target 0 observable on both nights, target 1 on night 0 and
// target 2 on night 1.
func twoNights(t *testing.T) *Instance {
	t.Helper()
	b := NewBuilder()
	b.SetNumberOfNights(2)
	b.SetNumberOfTargets(3)
	b.SetProfit(0, 10)
	b.SetProfit(1, 4)
	b.SetProfit(2, 6)
	b.AddFixedObservable(0, 0, 0, 5, 10, 5)
	b.AddFixedObservable(0, 1, 3, 6, 9, 3)
	b.AddFixedObservable(1, 2, 100, 104, 108, 4)
	b.AddFixedObservable(1, 0, 98, 101, 105, 4)
	inst, err := b.Build()
	require.NoError(t, err)
	return inst
}

func TestBuilderFixedInstance(t *testing.T) {
	inst := twoNights(t)
	assert.True(t, inst.Fixed())
	assert.Equal(t, 2, inst.NumberOfNights())
	assert.Equal(t, 3, inst.NumberOfTargets())
	assert.Equal(t, 4, inst.NumberOfObservables())
	assert.Equal(t, model.Profit(20), inst.TotalProfit())
	assert.Equal(t, []Ref{{Night: 0, Observable: 0}, {Night: 1, Observable: 1}}, inst.Target(0).Observables)
	assert.Equal(t, model.Profit(10), inst.Observable(1, 1).Modes[0].Profit)

	n := inst.Night(1)
	assert.Equal(t, model.Time(98), n.Start)
	assert.Equal(t, model.Time(108), n.End)
	assert.Equal(t, []int{1, 0}, n.MeridianOrder())
	assert.Contains(t, inst.Summary(), "variant=fixed")
}

func TestBuilderDerivesFlexibleProfits(t *testing.T) {
	b := NewBuilder()
	b.SetNumberOfNights(2)
	b.SetNumberOfTargets(1)
	o := b.AddObservable(0, 0, 0, 5, 10)
	b.AddMode(0, o, 5, 3)
	b.AddMode(0, o, 10, 7)
	o = b.AddObservable(1, 0, 0, 5, 10)
	b.AddMode(1, o, 6, 9)
	inst, err := b.Build()
	require.NoError(t, err)
	assert.False(t, inst.Fixed())
	assert.Equal(t, model.Profit(9), inst.Target(0).Profit)
	assert.Equal(t, model.Profit(9), inst.TotalProfit())
}

func TestBuilderRejectsMalformedRecords(t *testing.T) {
	tests := []struct {
		name  string
		setup func(b *Builder)
	}{
		{"unknown night", func(b *Builder) { b.AddFixedObservable(3, 0, 0, 5, 10, 5) }},
		{"unknown target", func(b *Builder) { b.AddFixedObservable(0, 9, 0, 5, 10, 5) }},
		{"unknown profit target", func(b *Builder) { b.SetProfit(4, 1) }},
		{"meridian outside window", func(b *Builder) { b.AddFixedObservable(0, 0, 0, 12, 10, 5) }},
		{"short job", func(b *Builder) { b.AddFixedObservable(0, 0, 0, 5, 10, 2) }},
		{"mode on fixed observable", func(b *Builder) {
			o := b.AddFixedObservable(0, 0, 0, 5, 10, 5)
			b.AddMode(0, o, 6, 1)
		}},
		{"mode on unknown observable", func(b *Builder) { b.AddMode(0, 3, 6, 1) }},
		{"target twice on a night", func(b *Builder) {
			b.AddFixedObservable(0, 0, 0, 5, 10, 5)
			b.AddFixedObservable(0, 0, 10, 15, 20, 5)
		}},
		{"negative number of nights", func(b *Builder) { b.SetNumberOfNights(-1) }},
		{"negative number of targets", func(b *Builder) { b.SetNumberOfTargets(-2) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder()
			b.SetNumberOfNights(1)
			b.SetNumberOfTargets(1)
			tt.setup(b)
			_, err := b.Build()
			assert.ErrorIs(t, err, model.ErrMalformedInstance)
		})
	}
}

func TestSolutionAppendObservation(t *testing.T) {
	inst := twoNights(t)
	sol := NewSolution(inst)
	require.NoError(t, sol.AppendObservation(0, 0, 0, 0))
	require.NoError(t, sol.AppendObservation(0, 1, 0, 5))
	require.NoError(t, sol.AppendObservation(1, 0, 0, 100))

	assert.Equal(t, 3, sol.NumberOfObservations())
	assert.Equal(t, model.Profit(20), sol.Profit())
	assert.Equal(t, model.Time(8), sol.CurrentTime(0))
	assert.Equal(t, []Observation{{Observable: 0, Start: 100}}, sol.Observations(1))
	assert.Contains(t, sol.Table(), "104")
	assert.Contains(t, sol.Summary(), "observations=3/3")

	// target 0 is already observed on night 0
	err := sol.AppendObservation(1, 1, 0, 104)
	require.ErrorIs(t, err, model.ErrInvalidSchedule)
	var ve *model.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, 1, ve.Night)
	assert.Equal(t, 0, ve.Target)
}

func TestSolutionRejects(t *testing.T) {
	inst := twoNights(t)
	tests := []struct {
		name                    string
		night, observable, mode int
		start                   model.Time
		reason                  string
	}{
		{"unknown night", 2, 0, 0, 0, "unknown night"},
		{"unknown observable", 0, 5, 0, 0, "unknown observable"},
		{"unknown mode", 0, 0, 1, 0, "unknown mode"},
		{"before release", 0, 1, 0, 2, "before release"},
		{"after deadline", 1, 0, 0, 105, "after deadline"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewSolution(inst).AppendObservation(tt.night, tt.observable, tt.mode, tt.start)
			require.ErrorIs(t, err, model.ErrInvalidSchedule)
			assert.Contains(t, err.Error(), tt.reason)
		})
	}
}

func TestSolutionRejectsOverlap(t *testing.T) {
	inst := twoNights(t)
	sol := NewSolution(inst)
	require.NoError(t, sol.AppendObservation(0, 0, 0, 0))
	err := sol.AppendObservation(0, 1, 0, 4)
	require.ErrorIs(t, err, model.ErrInvalidSchedule)
	assert.Contains(t, err.Error(), "before current time 5")
	assert.Equal(t, 1, sol.NumberOfObservations())
}

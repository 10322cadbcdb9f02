package metrics

import (
	"time"

	"github.com/kilianp07/starobs/core/events"
)

// RunEvent summarises one algorithm run.
type RunEvent struct {
	RunID        string
	Algorithm    string
	Instance     string
	Profit       float64
	Bound        float64
	Observations int
	Elapsed      time.Duration
	Interrupted  bool
	Time         time.Time
}

// MetricsSink records solver runs for observability purposes.
type MetricsSink interface {
	RecordRun(ev RunEvent) error
}

// ProgressRecorder records intermediate solutions and bounds.
type ProgressRecorder interface {
	RecordSolution(ev events.SolutionEvent) error
	RecordBound(ev events.BoundEvent) error
}

// PricingRecorder records column generation rounds.
type PricingRecorder interface {
	RecordPricingRound(ev events.RoundEvent) error
}

// SubproblemRecorder records single-night pricing problems.
type SubproblemRecorder interface {
	RecordSubproblem(ev events.SubproblemEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordRun(RunEvent) error                      { return nil }
func (NopSink) RecordSolution(events.SolutionEvent) error     { return nil }
func (NopSink) RecordBound(events.BoundEvent) error           { return nil }
func (NopSink) RecordPricingRound(events.RoundEvent) error    { return nil }
func (NopSink) RecordSubproblem(events.SubproblemEvent) error { return nil }

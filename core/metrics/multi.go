package metrics

import "github.com/kilianp07/starobs/core/events"

// MultiSink fans events out to several sinks. Optional recorders are only
// called on the sinks implementing them.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRun forwards the run to all sinks, returning the first error.
func (m *MultiSink) RecordRun(ev RunEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordRun(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordSolution forwards solution events.
func (m *MultiSink) RecordSolution(ev events.SolutionEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(ProgressRecorder); ok {
			if err := rec.RecordSolution(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordBound forwards bound events.
func (m *MultiSink) RecordBound(ev events.BoundEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(ProgressRecorder); ok {
			if err := rec.RecordBound(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordPricingRound forwards pricing rounds.
func (m *MultiSink) RecordPricingRound(ev events.RoundEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(PricingRecorder); ok {
			if err := rec.RecordPricingRound(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordSubproblem forwards subproblem statistics.
func (m *MultiSink) RecordSubproblem(ev events.SubproblemEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(SubproblemRecorder); ok {
			if err := rec.RecordSubproblem(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

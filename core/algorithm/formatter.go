// Package algorithm holds what every solver shares: optional parameters and
// the formatter that tracks the best profit and bound of a run and notifies
// progress callbacks.
package algorithm

import (
	"time"

	"github.com/kilianp07/starobs/core/events"
	"github.com/kilianp07/starobs/core/logger"
)

// Parameters are the optional settings accepted by every algorithm.
type Parameters struct {
	Logger logger.Logger
	// RunID is copied into every progress event.
	RunID string
	// OnSolution is called each time the best schedule improves.
	OnSolution func(events.SolutionEvent)
	// OnBound is called each time the upper bound improves.
	OnBound func(events.BoundEvent)
}

// Summary is the final state of a run.
type Summary struct {
	Algorithm string        `json:"algorithm"`
	Profit    float64       `json:"profit"`
	Bound     float64       `json:"bound"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Formatter follows one algorithm run. It is not safe for concurrent use.
type Formatter struct {
	name     string
	params   Parameters
	log      logger.Logger
	start    time.Time
	profit   float64
	hasBest  bool
	bound    float64
	hasBound bool
}

// Start begins timing a run of the named algorithm.
func Start(name string, params Parameters) *Formatter {
	f := &Formatter{
		name:   name,
		params: params,
		log:    logger.OrNop(params.Logger),
		start:  time.Now(),
	}
	f.log.Infof("%s: start", name)
	return f
}

// Elapsed returns the time since Start.
func (f *Formatter) Elapsed() time.Duration { return time.Since(f.start) }

// UpdateSolution records a schedule of the given profit. It returns true and
// notifies OnSolution when it improves on the best one seen so far.
func (f *Formatter) UpdateSolution(profit float64, observations int, reason string) bool {
	if f.hasBest && profit <= f.profit {
		return false
	}
	f.profit, f.hasBest = profit, true
	ev := events.SolutionEvent{
		RunID:        f.params.RunID,
		Algorithm:    f.name,
		Profit:       profit,
		Observations: observations,
		Reason:       reason,
		Elapsed:      f.Elapsed(),
	}
	f.log.Debugw("new solution", map[string]any{
		"algorithm": f.name, "profit": profit, "observations": observations, "reason": reason,
	})
	if f.params.OnSolution != nil {
		f.params.OnSolution(ev)
	}
	return true
}

// UpdateBound records an upper bound. It returns true and notifies OnBound
// when the bound is tighter than the previous one.
func (f *Formatter) UpdateBound(bound float64, reason string) bool {
	if f.hasBound && bound >= f.bound {
		return false
	}
	f.bound, f.hasBound = bound, true
	ev := events.BoundEvent{
		RunID:     f.params.RunID,
		Algorithm: f.name,
		Bound:     bound,
		Reason:    reason,
		Elapsed:   f.Elapsed(),
	}
	f.log.Debugw("new bound", map[string]any{"algorithm": f.name, "bound": bound, "reason": reason})
	if f.params.OnBound != nil {
		f.params.OnBound(ev)
	}
	return true
}

// End stops the run and returns its summary.
func (f *Formatter) End() Summary {
	s := Summary{Algorithm: f.name, Profit: f.profit, Bound: f.bound, Elapsed: f.Elapsed()}
	f.log.Infof("%s: end profit=%.4f bound=%.4f elapsed=%s", f.name, s.Profit, s.Bound, s.Elapsed)
	return s
}

package metrics

import (
	"context"

	"github.com/kilianp07/starobs/core/events"
	coremetrics "github.com/kilianp07/starobs/core/metrics"
	"github.com/kilianp07/starobs/core/logger"
	"github.com/kilianp07/starobs/internal/eventbus"
)

// StartEventCollector subscribes to the progress bus and forwards every event
// to the recorders sink implements. It returns a channel closed once the
// collector has stopped, which happens when ctx is canceled or the bus is
// closed.
func StartEventCollector(ctx context.Context, bus *eventbus.TypedBus[events.Progress], sink coremetrics.MetricsSink, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	log = logger.OrNop(log)
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := record(sink, ev); err != nil {
					log.Warnf("metrics: record %s event: %v", ev.Kind(), err)
				}
			}
		}
	}()
	return done
}

func record(sink coremetrics.MetricsSink, ev events.Progress) error {
	switch {
	case ev.Solution != nil:
		if r, ok := sink.(coremetrics.ProgressRecorder); ok {
			return r.RecordSolution(*ev.Solution)
		}
	case ev.Bound != nil:
		if r, ok := sink.(coremetrics.ProgressRecorder); ok {
			return r.RecordBound(*ev.Bound)
		}
	case ev.Round != nil:
		if r, ok := sink.(coremetrics.PricingRecorder); ok {
			return r.RecordPricingRound(*ev.Round)
		}
	case ev.Subproblem != nil:
		if r, ok := sink.(coremetrics.SubproblemRecorder); ok {
			return r.RecordSubproblem(*ev.Subproblem)
		}
	}
	return nil
}

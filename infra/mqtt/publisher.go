package mqtt

import (
	"context"

	"github.com/kilianp07/starobs/core/events"
	"github.com/kilianp07/starobs/core/logger"
	"github.com/kilianp07/starobs/internal/eventbus"
)

// Publisher is the part of PahoClient used by the progress forwarder.
type Publisher interface {
	Topic(parts ...string) string
	PublishJSON(topic string, v any) error
}

// ProgressTopic returns the topic of a progress event.
func ProgressTopic(p Publisher, ev events.Progress) string {
	return p.Topic("runs", runID(ev), ev.Kind())
}

func runID(ev events.Progress) string {
	id := ""
	switch {
	case ev.Solution != nil:
		id = ev.Solution.RunID
	case ev.Bound != nil:
		id = ev.Bound.RunID
	case ev.Round != nil:
		id = ev.Round.RunID
	case ev.Subproblem != nil:
		id = ev.Subproblem.RunID
	}
	if id == "" {
		return "anonymous"
	}
	return id
}

// StartProgressPublisher forwards the events of bus to pub until ctx is
// canceled or the bus is closed. Subproblem events are skipped unless
// withSubproblems is set since a large instance produces one per night and
// pricing round. The returned channel is closed when forwarding stops.
func StartProgressPublisher(ctx context.Context, bus *eventbus.TypedBus[events.Progress], pub Publisher, withSubproblems bool, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || pub == nil {
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
				if ev.Kind() == "" || (ev.Subproblem != nil && !withSubproblems) {
					continue
				}
				if err := pub.PublishJSON(ProgressTopic(pub, ev), ev); err != nil {
					log.Warnf("mqtt: publish %s: %v", ev.Kind(), err)
				}
			}
		}
	}()
	return done
}

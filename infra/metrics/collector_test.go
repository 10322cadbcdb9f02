package metrics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kilianp07/starobs/core/events"
	coremetrics "github.com/kilianp07/starobs/core/metrics"
	"github.com/kilianp07/starobs/internal/eventbus"
)

type captureSink struct {
	coremetrics.NopSink
	mu    sync.Mutex
	kinds []string
}

func (c *captureSink) add(kind string) error {
	c.mu.Lock()
	c.kinds = append(c.kinds, kind)
	c.mu.Unlock()
	return nil
}

func (c *captureSink) RecordSolution(events.SolutionEvent) error     { return c.add("solution") }
func (c *captureSink) RecordBound(events.BoundEvent) error           { return c.add("bound") }
func (c *captureSink) RecordPricingRound(events.RoundEvent) error    { return c.add("round") }
func (c *captureSink) RecordSubproblem(events.SubproblemEvent) error { return c.add("subproblem") }

func TestEventCollectorForwardsProgress(t *testing.T) {
	bus := eventbus.NewTyped[events.Progress]()
	sink := &captureSink{}
	done := StartEventCollector(context.Background(), bus, sink, nil)

	bus.Publish(events.Progress{Solution: &events.SolutionEvent{Profit: 1}})
	bus.Publish(events.Progress{Bound: &events.BoundEvent{Bound: 2}})
	bus.Publish(events.Progress{Round: &events.RoundEvent{Iteration: 1}})
	bus.Publish(events.Progress{Subproblem: &events.SubproblemEvent{Night: 1}})
	bus.Close()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("collector did not stop")
	}
	assert.Equal(t, []string{"solution", "bound", "round", "subproblem"}, sink.kinds)
}

func TestEventCollectorStopsOnCancel(t *testing.T) {
	bus := eventbus.NewTyped[events.Progress]()
	ctx, cancel := context.WithCancel(context.Background())
	done := StartEventCollector(ctx, bus, coremetrics.NopSink{}, nil)
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("collector did not stop")
	}
}

func TestEventCollectorNilBus(t *testing.T) {
	_, open := <-StartEventCollector(context.Background(), nil, coremetrics.NopSink{}, nil)
	assert.False(t, open)
}

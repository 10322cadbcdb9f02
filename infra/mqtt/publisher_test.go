package mqtt

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/starobs/core/events"
	"github.com/kilianp07/starobs/internal/eventbus"
)

func TestProgressPublisher(t *testing.T) {
	mc := &mockClient{}
	useMock(t, mc)
	cli, err := NewPahoClient(Config{Broker: "tcp://localhost:1883", TopicPrefix: "obs"})
	require.NoError(t, err)
	mc.published, mc.payloads = nil, nil

	bus := eventbus.NewTyped[events.Progress]()
	done := StartProgressPublisher(context.Background(), bus, cli, false, nil)
	bus.Publish(events.Progress{Solution: &events.SolutionEvent{RunID: "r1", Profit: 14}})
	bus.Publish(events.Progress{Subproblem: &events.SubproblemEvent{RunID: "r1"}})
	bus.Publish(events.Progress{Bound: &events.BoundEvent{Bound: 14}})
	bus.Publish(events.Progress{})
	bus.Close()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("publisher did not stop")
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()
	require.Len(t, mc.published, 2)
	assert.Equal(t, "obs/runs/r1/solution", mc.published[0].topic)
	assert.Equal(t, "obs/runs/anonymous/bound", mc.published[1].topic)

	var got events.Progress
	require.NoError(t, json.Unmarshal(mc.payloads[0], &got))
	require.NotNil(t, got.Solution)
	assert.Equal(t, 14.0, got.Solution.Profit)
}

func TestProgressPublisherWithSubproblems(t *testing.T) {
	mc := &mockClient{}
	useMock(t, mc)
	cli, err := NewPahoClient(Config{Broker: "tcp://localhost:1883"})
	require.NoError(t, err)
	mc.published = nil

	bus := eventbus.NewTyped[events.Progress]()
	done := StartProgressPublisher(context.Background(), bus, cli, true, nil)
	bus.Publish(events.Progress{Subproblem: &events.SubproblemEvent{RunID: "r2", Night: 1}})
	bus.Close()
	<-done

	mc.mu.Lock()
	defer mc.mu.Unlock()
	require.Len(t, mc.published, 1)
	assert.Equal(t, "starobs/runs/r2/subproblem", mc.published[0].topic)
}

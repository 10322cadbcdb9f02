package metrics

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/starobs/core/events"
	coremetrics "github.com/kilianp07/starobs/core/metrics"
)

func TestPromSinkRecordRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordRun(coremetrics.RunEvent{
		Algorithm: "column-generation-greedy", Profit: 26, Bound: 27, Elapsed: 20 * time.Millisecond,
	}))
	require.NoError(t, sink.RecordRun(coremetrics.RunEvent{
		Algorithm: "column-generation-greedy", Profit: 25, Bound: 27, Interrupted: true,
	}))

	expected := `
# HELP starobs_runs_total Number of finished solver runs
# TYPE starobs_runs_total counter
starobs_runs_total{algorithm="column-generation-greedy",interrupted="false"} 1
starobs_runs_total{algorithm="column-generation-greedy",interrupted="true"} 1
`
	assert.NoError(t, testutil.CollectAndCompare(sink.runs, strings.NewReader(expected)))
	assert.Equal(t, 25.0, testutil.ToFloat64(sink.profit.WithLabelValues("column-generation-greedy")))
	assert.Equal(t, 27.0, testutil.ToFloat64(sink.bound.WithLabelValues("column-generation-greedy")))
	assert.Equal(t, 1, testutil.CollectAndCount(sink.duration))
}

func TestPromSinkRecordPricing(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordSolution(events.SolutionEvent{Algorithm: "a"}))
	require.NoError(t, sink.RecordBound(events.BoundEvent{Algorithm: "a"}))
	require.NoError(t, sink.RecordPricingRound(events.RoundEvent{Columns: 7, LPObjective: 26.5}))
	require.NoError(t, sink.RecordPricingRound(events.RoundEvent{Columns: 9, LPObjective: 26}))
	require.NoError(t, sink.RecordSubproblem(events.SubproblemEvent{States: 12, ReducedCost: 3}))

	assert.Equal(t, 1.0, testutil.ToFloat64(sink.solutions.WithLabelValues("a")))
	assert.Equal(t, 2.0, testutil.ToFloat64(sink.rounds))
	assert.Equal(t, 26.0, testutil.ToFloat64(sink.lpObj))
	assert.Equal(t, 9.0, testutil.ToFloat64(sink.columns))
	assert.Equal(t, 3.0, testutil.ToFloat64(sink.subReduced))
	assert.Equal(t, 1, testutil.CollectAndCount(sink.subStates))
}

func TestPromSinkReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	second, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, second.RecordPricingRound(events.RoundEvent{}))
	assert.Equal(t, 1.0, testutil.ToFloat64(first.rounds))
}

func TestServePrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	require.NoError(t, sink.RecordPricingRound(events.RoundEvent{}))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	hello := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, "hello") })
	go func() { errc <- ServePrometheus(ctx, ln, reg, Route{Pattern: "/hello", Handler: hello}) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Contains(t, string(body), "starobs_pricing_rounds_total 1")

	resp, err = http.Get("http://" + ln.Addr().String() + "/hello")
	require.NoError(t, err)
	body, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, "hello", string(body))

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

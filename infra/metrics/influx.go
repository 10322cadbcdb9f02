package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/kilianp07/starobs/core/events"
	coremetrics "github.com/kilianp07/starobs/core/metrics"
	"github.com/kilianp07/starobs/infra/logger"
)

// InfluxSink writes solver activity to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
	now      func() time.Time
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
		now:      time.Now,
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the client resources.
func (s *InfluxSink) Close() { s.client.Close() }

func (s *InfluxSink) write(p *write.Point) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordRun writes the summary of a finished run.
func (s *InfluxSink) RecordRun(ev coremetrics.RunEvent) error {
	p := write.NewPointWithMeasurement("solver_run").
		AddTag("algorithm", ev.Algorithm).
		AddTag("run_id", ev.RunID).
		AddTag("interrupted", strconv.FormatBool(ev.Interrupted)).
		AddField("profit", round3(ev.Profit)).
		AddField("bound", round3(ev.Bound)).
		AddField("observations", ev.Observations).
		AddField("elapsed_ms", round3(ev.Elapsed.Seconds()*1000)).
		SetTime(ev.Time)
	return s.write(p)
}

// RecordSolution writes an improving schedule.
func (s *InfluxSink) RecordSolution(ev events.SolutionEvent) error {
	p := write.NewPointWithMeasurement("solution").
		AddTag("algorithm", ev.Algorithm).
		AddTag("run_id", ev.RunID).
		AddField("profit", round3(ev.Profit)).
		AddField("observations", ev.Observations).
		AddField("reason", ev.Reason).
		SetTime(s.now())
	return s.write(p)
}

// RecordBound writes an improved upper bound.
func (s *InfluxSink) RecordBound(ev events.BoundEvent) error {
	p := write.NewPointWithMeasurement("bound").
		AddTag("algorithm", ev.Algorithm).
		AddTag("run_id", ev.RunID).
		AddField("bound", round3(ev.Bound)).
		AddField("reason", ev.Reason).
		SetTime(s.now())
	return s.write(p)
}

// RecordPricingRound writes one column generation round.
func (s *InfluxSink) RecordPricingRound(ev events.RoundEvent) error {
	p := write.NewPointWithMeasurement("pricing_round").
		AddTag("run_id", ev.RunID).
		AddTag("dive", strconv.Itoa(ev.Dive)).
		AddField("iteration", ev.Iteration).
		AddField("columns", ev.Columns).
		AddField("new_columns", ev.NewColumns).
		AddField("lp_objective", round3(ev.LPObjective)).
		AddField("overcost", round3(ev.Overcost)).
		SetTime(s.now())
	return s.write(p)
}

// RecordSubproblem writes the statistics of one single-night pricing problem.
func (s *InfluxSink) RecordSubproblem(ev events.SubproblemEvent) error {
	p := write.NewPointWithMeasurement("subproblem").
		AddTag("run_id", ev.RunID).
		AddTag("night", strconv.Itoa(ev.Night)).
		AddField("targets", ev.Targets).
		AddField("states", ev.States).
		AddField("max_frontier", ev.MaxFrontier).
		AddField("reduced_cost", round3(ev.ReducedCost)).
		AddField("elapsed_ms", round3(ev.Elapsed.Seconds()*1000)).
		SetTime(s.now())
	return s.write(p)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}

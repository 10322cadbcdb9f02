// Package app wires the configuration to the solvers and to the progress
// consumers: metrics sinks, the MQTT publisher, the run log and the error
// monitor.
package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/starobs/api/runs"
	"github.com/kilianp07/starobs/app/plugins"
	"github.com/kilianp07/starobs/config"
	"github.com/kilianp07/starobs/core/events"
	coremetrics "github.com/kilianp07/starobs/core/metrics"
	coremon "github.com/kilianp07/starobs/core/monitoring"
	"github.com/kilianp07/starobs/core/multinight"
	"github.com/kilianp07/starobs/core/runlog"
	"github.com/kilianp07/starobs/infra/logger"
	"github.com/kilianp07/starobs/infra/metrics"
	"github.com/kilianp07/starobs/infra/monitoring"
	"github.com/kilianp07/starobs/infra/mqtt"
	"github.com/kilianp07/starobs/internal/eventbus"
)

// ErrRunLogDisabled is returned by Runs when no run store is configured.
var ErrRunLogDisabled = errors.New("run log disabled")

// Outcome is the result of one Solve call.
type Outcome struct {
	plugins.Result
	RunID     string
	Algorithm string
	Instance  *multinight.Instance
}

// Service runs solvers and fans their progress out to the configured
// consumers.
type Service struct {
	cfg   *config.Config
	log   logger.Logger
	bus   *eventbus.TypedBus[events.Progress]
	sink  coremetrics.MetricsSink
	store runlog.Store
	mqtt  *mqtt.PahoClient

	stop context.CancelFunc
	done []<-chan struct{}

	mu      sync.Mutex
	running map[string]context.CancelFunc
}

// Option customises a Service.
type Option func(*Service)

// WithMetricsSink replaces the sinks built from the configuration.
func WithMetricsSink(sink coremetrics.MetricsSink) Option {
	return func(s *Service) { s.sink = sink }
}

// New creates a Service from the configuration. Missing optional backends
// are reported and replaced by no-op implementations; a configured run store
// that cannot be opened is an error.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	s := &Service{
		cfg:     cfg,
		log:     logger.New("service"),
		bus:     eventbus.NewTyped[events.Progress](),
		running: make(map[string]context.CancelFunc),
	}
	for _, o := range opts {
		o(s)
	}

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		s.log.Warnf("sentry disabled: %v", err)
	} else {
		coremon.Init(mon)
	}

	if s.sink == nil {
		sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
		if err != nil {
			return nil, fmt.Errorf("metrics sink: %w", err)
		}
		s.sink = sink
	}

	store, err := runlog.Open(runlog.Options{
		Backend:    cfg.RunLog.Backend,
		Path:       cfg.RunLog.Path,
		MaxSizeMB:  cfg.RunLog.MaxSizeMB,
		MaxBackups: cfg.RunLog.MaxBackups,
		MaxAgeDays: cfg.RunLog.MaxAgeDays,
	})
	if err != nil {
		return nil, err
	}
	s.store = store

	if cfg.MQTT.Enabled {
		client, err := mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			s.log.Warnf("mqtt disabled: %v", err)
		} else {
			s.mqtt = client
		}
	}

	ctx, stop := context.WithCancel(context.Background())
	s.stop = stop
	s.done = append(s.done, metrics.StartEventCollector(ctx, s.bus, s.sink, logger.New("metrics")))
	if s.mqtt != nil {
		s.mqtt.OnCancel(func(runID string) {
			if s.Cancel(runID) {
				s.log.Infof("run %s canceled over mqtt", runID)
			}
		})
		s.done = append(s.done, mqtt.StartProgressPublisher(ctx, s.bus, s.mqtt, cfg.Solver.PublishSubproblems, logger.New("mqtt")))
	}
	if addr := cfg.Metrics.PrometheusAddr; addr != "" {
		go func() {
			api := metrics.Route{Pattern: runs.Path, Handler: runs.NewHandler(s, cfg.Metrics.APIToken)}
			if err := metrics.StartPromServer(ctx, addr, nil, api); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	return s, nil
}

// Algorithm resolves the configured algorithm for inst: "auto" runs the
// fixed or flexible dynamic program on single-night instances and column
// generation otherwise.
func (s *Service) Algorithm(inst *multinight.Instance) string {
	if name := s.cfg.Solver.Algorithm; name != "" && name != config.Auto {
		return name
	}
	return plugins.Auto(inst)
}

// Solve runs the configured algorithm on inst. name labels the instance in
// the run log and metrics. The run stops early when ctx is canceled, when
// the configured time limit expires or when Cancel is called with its id.
func (s *Service) Solve(ctx context.Context, inst *multinight.Instance, name string) (Outcome, error) {
	defer func() { coremon.Repanic(recover()) }()

	sc := s.cfg.Solver
	if len(sc.ExpandCoefficients) > 0 && inst.Fixed() {
		expanded, err := multinight.ExpandModes(inst, sc.ExpandCoefficients)
		if err != nil {
			return Outcome{}, fmt.Errorf("expand modes: %w", err)
		}
		inst = expanded
	}

	out := Outcome{RunID: uuid.NewString(), Algorithm: s.Algorithm(inst), Instance: inst}
	solver, err := plugins.NewSolver(out.Algorithm, map[string]any{
		"parallelism":    sc.Parallelism,
		"tolerance":      sc.Tolerance,
		"max_iterations": sc.MaxIterations,
	})
	if err != nil {
		return Outcome{}, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if limit := sc.TimeLimit(); limit > 0 {
		var stopTimer context.CancelFunc
		runCtx, stopTimer = context.WithTimeout(runCtx, limit)
		defer stopTimer()
	}
	s.track(out.RunID, cancel)
	defer s.untrack(out.RunID)

	s.log.Infof("run %s: %s on %s (%s)", out.RunID, out.Algorithm, name, inst.Summary())
	started := time.Now()
	out.Result, err = solver.Solve(runCtx, inst, plugins.Request{
		RunID:   out.RunID,
		Logger:  logger.New(out.Algorithm),
		Publish: s.bus.Publish,
	})
	rec := runlog.Record{
		RunID:     out.RunID,
		Timestamp: started,
		Algorithm: out.Algorithm,
		Instance:  name,
	}
	if err != nil {
		coremon.CaptureRun(err, out.RunID, out.Algorithm)
		rec.Error = err.Error()
		rec.ElapsedMS = float64(time.Since(started).Microseconds()) / 1000
		s.record(context.WithoutCancel(ctx), rec)
		return out, fmt.Errorf("run %s: %w", out.RunID, err)
	}

	res := out.Result
	rec.Summary = res.Solution.Summary()
	rec.Profit = float64(res.Solution.Profit())
	// the total profit bounds every schedule, including interrupted runs
	rec.Bound = math.Min(res.Bound, float64(inst.TotalProfit()))
	rec.Observations = res.Solution.NumberOfObservations()
	rec.ElapsedMS = float64(res.Elapsed.Microseconds()) / 1000
	rec.Interrupted = res.Interrupted
	rec.Dives = res.Dives
	rec.Iterations = res.Iterations
	rec.Columns = res.Columns
	s.record(context.WithoutCancel(ctx), rec)

	if err := s.sink.RecordRun(coremetrics.RunEvent{
		RunID:        out.RunID,
		Algorithm:    out.Algorithm,
		Instance:     name,
		Profit:       rec.Profit,
		Bound:        rec.Bound,
		Observations: rec.Observations,
		Elapsed:      res.Elapsed,
		Interrupted:  res.Interrupted,
		Time:         started,
	}); err != nil {
		s.log.Warnf("record run %s: %v", out.RunID, err)
	}
	s.log.Infof("run %s: %s", out.RunID, rec.Summary)
	return out, nil
}

// record stores rec and publishes it as the run summary.
func (s *Service) record(ctx context.Context, rec runlog.Record) {
	if s.mqtt != nil {
		if err := s.mqtt.PublishJSON(s.mqtt.Topic("runs", rec.RunID, "summary"), rec); err != nil {
			s.log.Warnf("mqtt: publish summary: %v", err)
		}
	}
	if s.store == nil {
		return
	}
	if err := s.store.Append(ctx, rec); err != nil {
		s.log.Errorf("run log: %v", err)
	}
}

func (s *Service) track(runID string, cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running[runID] = cancel
}

func (s *Service) untrack(runID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.running, runID)
}

// Cancel stops a running Solve. It reports whether the run was found.
func (s *Service) Cancel(runID string) bool {
	s.mu.Lock()
	cancel, ok := s.running[runID]
	s.mu.Unlock()
	if ok {
		cancel()
	}
	return ok
}

// Runs queries the run log.
func (s *Service) Runs(ctx context.Context, q runlog.Query) ([]runlog.Record, error) {
	if s.store == nil {
		return nil, ErrRunLogDisabled
	}
	return s.store.Query(ctx, q)
}

// Events subscribes to the progress events of every run.
func (s *Service) Events() <-chan events.Progress { return s.bus.Subscribe() }

// Close stops the consumers and releases the backends.
func (s *Service) Close() error {
	s.stop()
	s.bus.Close()
	for _, d := range s.done {
		<-d
	}
	if n := s.bus.Dropped(); n > 0 {
		s.log.Warnf("%d progress events dropped", n)
	}
	if s.mqtt != nil {
		s.mqtt.Disconnect()
	}
	coremon.Flush(2 * time.Second)
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/starobs/core/events"
	coremetrics "github.com/kilianp07/starobs/core/metrics"
)

// PromSink records solver activity in Prometheus metrics.
type PromSink struct {
	runs       *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	profit     *prometheus.GaugeVec
	bound      *prometheus.GaugeVec
	solutions  *prometheus.CounterVec
	rounds     prometheus.Counter
	lpObj      prometheus.Gauge
	columns    prometheus.Gauge
	subprobs   prometheus.Histogram
	subStates  prometheus.Histogram
	subReduced prometheus.Gauge
}

// NewPromSink registers solver metrics on the default Prometheus registerer.
// The /metrics endpoint is served separately by StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer,
// reusing collectors already registered by a previous sink. A nil registerer
// defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "starobs_runs_total",
			Help: "Number of finished solver runs",
		}, []string{"algorithm", "interrupted"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "starobs_run_duration_seconds",
			Help:    "Wall clock time of solver runs",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"algorithm"}),
		profit: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "starobs_run_profit",
			Help: "Profit of the best schedule of the last run",
		}, []string{"algorithm"}),
		bound: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "starobs_run_bound",
			Help: "Upper bound proved by the last run",
		}, []string{"algorithm"}),
		solutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "starobs_solutions_total",
			Help: "Number of improving schedules found",
		}, []string{"algorithm"}),
		rounds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "starobs_pricing_rounds_total",
			Help: "Number of column generation pricing rounds",
		}),
		lpObj: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "starobs_pricing_lp_objective",
			Help: "Master LP objective after the last pricing round",
		}),
		columns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "starobs_pricing_columns",
			Help: "Number of columns in the master LP",
		}),
		subprobs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "starobs_subproblem_duration_seconds",
			Help:    "Time spent in single-night pricing problems",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		subStates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "starobs_subproblem_states",
			Help:    "Number of dynamic programming states per subproblem",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}),
		subReduced: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "starobs_subproblem_reduced_cost",
			Help: "Reduced cost of the last priced column",
		}),
	}
	var err error
	if s.runs, err = register(reg, s.runs); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, s.duration); err != nil {
		return nil, err
	}
	if s.profit, err = register(reg, s.profit); err != nil {
		return nil, err
	}
	if s.bound, err = register(reg, s.bound); err != nil {
		return nil, err
	}
	if s.solutions, err = register(reg, s.solutions); err != nil {
		return nil, err
	}
	if s.rounds, err = register(reg, s.rounds); err != nil {
		return nil, err
	}
	if s.lpObj, err = register(reg, s.lpObj); err != nil {
		return nil, err
	}
	if s.columns, err = register(reg, s.columns); err != nil {
		return nil, err
	}
	if s.subprobs, err = register(reg, s.subprobs); err != nil {
		return nil, err
	}
	if s.subStates, err = register(reg, s.subStates); err != nil {
		return nil, err
	}
	if s.subReduced, err = register(reg, s.subReduced); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordRun updates the run counters and the last profit and bound.
func (s *PromSink) RecordRun(ev coremetrics.RunEvent) error {
	s.runs.WithLabelValues(ev.Algorithm, strconv.FormatBool(ev.Interrupted)).Inc()
	s.duration.WithLabelValues(ev.Algorithm).Observe(ev.Elapsed.Seconds())
	s.profit.WithLabelValues(ev.Algorithm).Set(ev.Profit)
	s.bound.WithLabelValues(ev.Algorithm).Set(ev.Bound)
	return nil
}

// RecordSolution counts improving schedules.
func (s *PromSink) RecordSolution(ev events.SolutionEvent) error {
	s.solutions.WithLabelValues(ev.Algorithm).Inc()
	return nil
}

// RecordBound is a no-op; bounds are exported per run.
func (s *PromSink) RecordBound(events.BoundEvent) error { return nil }

// RecordPricingRound counts rounds and tracks the master LP.
func (s *PromSink) RecordPricingRound(ev events.RoundEvent) error {
	s.rounds.Inc()
	s.lpObj.Set(ev.LPObjective)
	s.columns.Set(float64(ev.Columns))
	return nil
}

// RecordSubproblem observes subproblem duration and frontier size.
func (s *PromSink) RecordSubproblem(ev events.SubproblemEvent) error {
	s.subprobs.Observe(ev.Elapsed.Seconds())
	s.subStates.Observe(float64(ev.States))
	s.subReduced.Set(ev.ReducedCost)
	return nil
}

package metrics

import (
	"fmt"

	"github.com/kilianp07/starobs/core/factory"
)

// sinks maps a metrics.sinks[].type value ("nop", "prometheus", "influx")
// to its constructor. infra/metrics fills it at init time.
var sinks = factory.NewRegistry[MetricsSink]()

// RegisterMetricsSink makes a sink type selectable from the metrics.sinks
// section of the solver configuration. Registering a type twice fails.
func RegisterMetricsSink(name string, f factory.Factory[MetricsSink]) error {
	return sinks.Register(name, f)
}

// NewMetricsSink builds the sink that receives solve and pricing events.
// An empty list records nothing, one entry is returned as built and several
// are fanned out through a MultiSink in configuration order.
func NewMetricsSink(cfgs []factory.ModuleConfig) (MetricsSink, error) {
	if len(cfgs) == 0 {
		return NopSink{}, nil
	}
	built := make([]MetricsSink, 0, len(cfgs))
	for i, c := range cfgs {
		s, err := sinks.Create(c)
		if err != nil {
			return nil, fmt.Errorf("metrics sink %d (%s): %w", i, c.Type, err)
		}
		built = append(built, s)
	}
	if len(built) == 1 {
		return built[0], nil
	}
	return NewMultiSink(built...), nil
}

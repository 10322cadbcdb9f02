// Package metrics defines the sinks recording solver runs. A MetricsSink
// records run summaries; optional recorder interfaces cover progress events,
// pricing rounds and dynamic programming subproblems. Sinks are built from
// configuration through a registry and combined with NewMultiSink when
// several are configured.
package metrics

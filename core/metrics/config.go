package metrics

import "github.com/kilianp07/starobs/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusAddr is the listen address of the /metrics endpoint. Empty
	// disables the endpoint.
	PrometheusAddr string `json:"prometheus_addr"`
	// APIToken is the bearer token required by /api/runs, served next to
	// /metrics. Empty serves the run log without authentication.
	APIToken string `json:"api_token"`
}

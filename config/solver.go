package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/starobs/core/flexible"
	"github.com/kilianp07/starobs/core/pricing"
	"github.com/kilianp07/starobs/core/singlenight"
)

// SolverConfig selects and tunes the algorithm.
type SolverConfig struct {
	// Algorithm is one of the algorithm names, "auto" picks the dynamic
	// program for single-night instances and column generation otherwise.
	Algorithm        string  `json:"algorithm"`
	TimeLimitSeconds float64 `json:"time_limit_seconds"`
	Parallelism      int     `json:"parallelism"`
	Tolerance        float64 `json:"tolerance"`
	MaxIterations    int     `json:"max_iterations"`
	// ExpandCoefficients turns fixed multi-night instances into flexible ones
	// with one reduced mode per coefficient before solving.
	ExpandCoefficients []float64 `json:"expand_coefficients"`
	// PublishSubproblems forwards per-night pricing statistics to MQTT.
	PublishSubproblems bool `json:"publish_subproblems"`
}

// Auto selects the algorithm from the instance.
const Auto = "auto"

// Algorithms lists the accepted algorithm names.
var Algorithms = []string{Auto, singlenight.Name, flexible.Name, pricing.Name}

// SetDefaults applies sane defaults.
func (c *SolverConfig) SetDefaults() {
	if c.Algorithm == "" {
		c.Algorithm = Auto
	}
}

// Validate checks the values.
func (c SolverConfig) Validate() error {
	known := false
	for _, a := range Algorithms {
		known = known || a == c.Algorithm
	}
	if !known {
		return fmt.Errorf("unknown algorithm %q", c.Algorithm)
	}
	if c.TimeLimitSeconds < 0 {
		return fmt.Errorf("negative time limit %g", c.TimeLimitSeconds)
	}
	if c.Parallelism < 0 {
		return fmt.Errorf("negative parallelism %d", c.Parallelism)
	}
	if c.Tolerance < 0 {
		return fmt.Errorf("negative tolerance %g", c.Tolerance)
	}
	for _, coef := range c.ExpandCoefficients {
		if coef <= 0 || coef >= 1 {
			return fmt.Errorf("expand coefficient %g outside (0, 1)", coef)
		}
	}
	return nil
}

// TimeLimit returns the time limit, zero meaning none.
func (c SolverConfig) TimeLimit() time.Duration {
	return time.Duration(c.TimeLimitSeconds * float64(time.Second))
}

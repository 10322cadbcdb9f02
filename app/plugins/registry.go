// Package plugins registers the solvers the service can run on a
// multi-night instance.
package plugins

import (
	"context"
	"time"

	"github.com/kilianp07/starobs/core/events"
	"github.com/kilianp07/starobs/core/factory"
	"github.com/kilianp07/starobs/core/logger"
	"github.com/kilianp07/starobs/core/multinight"
)

// Request carries what a solver needs besides the instance.
type Request struct {
	RunID  string
	Logger logger.Logger
	// Publish receives every progress event of the run. It may be nil.
	Publish func(events.Progress)
}

func (r Request) publish(ev events.Progress) {
	if r.Publish != nil {
		r.Publish(ev)
	}
}

// Result is the outcome of a solver run.
type Result struct {
	Solution    *multinight.Solution
	Bound       float64
	Elapsed     time.Duration
	Dives       int
	Iterations  int
	Columns     int
	Interrupted bool
}

// Solver runs one algorithm.
type Solver interface {
	Solve(ctx context.Context, inst *multinight.Instance, req Request) (Result, error)
}

// SolverFunc adapts a function to Solver.
type SolverFunc func(ctx context.Context, inst *multinight.Instance, req Request) (Result, error)

// Solve calls f.
func (f SolverFunc) Solve(ctx context.Context, inst *multinight.Instance, req Request) (Result, error) {
	return f(ctx, inst, req)
}

var solvers = factory.NewRegistry[Solver]()

// RegisterSolver adds a solver factory under the algorithm name.
func RegisterSolver(name string, f factory.Factory[Solver]) error {
	return solvers.Register(name, f)
}

// NewSolver builds the named solver from its raw configuration.
func NewSolver(name string, conf map[string]any) (Solver, error) {
	return solvers.Create(factory.ModuleConfig{Type: name, Conf: conf})
}

// Names returns the registered algorithm names.
func Names() []string { return solvers.Names() }

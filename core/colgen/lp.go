package colgen

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

var (
	// ErrMasterLP wraps failures of the master linear program.
	ErrMasterLP = errors.New("master lp")
	// ErrUnsupportedModel is returned for models the driver cannot solve.
	ErrUnsupportedModel = errors.New("unsupported model")
)

// simplex points to the LP solver. It can be overridden in tests to simulate
// solver failures.
var simplex = lp.Simplex

// masterSolution is the optimum of a restricted master problem.
type masterSolution struct {
	Objective float64
	Values    []float64
	// Duals has one entry per model row. Rows no column touches get 0.
	Duals []float64
}

// solveMaster solves max c·y s.t. A y <= ub, y >= 0 over the given columns
// and its dual min ub·π s.t. Aᵀπ >= c, π >= 0. gonum does not expose the
// duals of a simplex run, so both problems are solved.
func solveMaster[P any](cols []*Column[P], ub []float64, tol float64) (masterSolution, error) {
	out := masterSolution{Values: make([]float64, len(cols)), Duals: make([]float64, len(ub))}
	// compact row numbering over the touched rows
	index := make(map[int]int)
	var rows []int
	for _, c := range cols {
		for _, t := range c.Elements {
			if t.Coefficient == 0 {
				continue
			}
			if _, ok := index[t.Row]; !ok {
				index[t.Row] = len(rows)
				rows = append(rows, t.Row)
			}
		}
	}
	m, n := len(rows), len(cols)
	if m == 0 || n == 0 {
		return out, nil
	}

	// primal in standard form: [A | I][y; s] = ub
	a := mat.NewDense(m, n+m, nil)
	c := make([]float64, n+m)
	b := make([]float64, m)
	for k, col := range cols {
		c[k] = -col.Objective
		for _, t := range col.Elements {
			if t.Coefficient != 0 {
				a.Set(index[t.Row], k, t.Coefficient)
			}
		}
	}
	for r, row := range rows {
		a.Set(r, n+r, 1)
		b[r] = ub[row]
	}
	opt, x, err := simplex(c, a, b, tol, nil)
	if err != nil {
		return out, fmt.Errorf("%w: primal: %w", ErrMasterLP, err)
	}
	out.Objective = -opt
	copy(out.Values, x[:n])

	// dual in standard form: [Aᵀ | -I][π; s] = c, rows with c_k < 0 negated
	at := mat.NewDense(n, m+n, nil)
	cd := make([]float64, m+n)
	bd := make([]float64, n)
	for r, row := range rows {
		cd[r] = ub[row]
	}
	for k, col := range cols {
		sign := 1.0
		if col.Objective < 0 {
			sign = -1
		}
		for _, t := range col.Elements {
			if t.Coefficient != 0 {
				at.Set(k, index[t.Row], sign*t.Coefficient)
			}
		}
		at.Set(k, m+k, -sign)
		bd[k] = sign * col.Objective
	}
	_, pi, err := simplex(cd, at, bd, tol, nil)
	if err != nil {
		return out, fmt.Errorf("%w: dual: %w", ErrMasterLP, err)
	}
	for r, row := range rows {
		out.Duals[row] = pi[r]
	}
	return out, nil
}

// Package colgen holds the contracts between a column generation driver and
// the problem specific pricing solvers, together with a greedy diving driver.
//
// A model has packing rows 0 <= a·y <= u. Columns are sparse vectors over
// these rows with an objective coefficient and a typed payload that lets the
// problem translate selected columns back into its own solution type.
package colgen

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Sense is the objective direction of a model.
type Sense int

const (
	Maximize Sense = iota
	Minimize
)

func (s Sense) String() string {
	if s == Minimize {
		return "minimize"
	}
	return "maximize"
}

// Row bounds a master constraint and the coefficients columns may carry on
// it.
type Row struct {
	LowerBound            float64 `json:"lower_bound"`
	UpperBound            float64 `json:"upper_bound"`
	CoefficientLowerBound float64 `json:"coefficient_lower_bound"`
	CoefficientUpperBound float64 `json:"coefficient_upper_bound"`
}

// LinearTerm is one non-zero of a column.
type LinearTerm struct {
	Row         int     `json:"row"`
	Coefficient float64 `json:"coefficient"`
}

// Column is a master variable. P is the payload type of the problem.
type Column[P any] struct {
	Elements  []LinearTerm `json:"elements"`
	Objective float64      `json:"objective"`
	Payload   P            `json:"payload"`
}

// key identifies a column by its elements.
func (c *Column[P]) key() string {
	terms := append([]LinearTerm(nil), c.Elements...)
	sort.Slice(terms, func(i, j int) bool { return terms[i].Row < terms[j].Row })
	var sb strings.Builder
	for _, t := range terms {
		fmt.Fprintf(&sb, "%d:%g;", t.Row, t.Coefficient)
	}
	return sb.String()
}

// ReducedCost returns the objective of a column minus its dual cost.
func ReducedCost[P any](c *Column[P], duals []float64) float64 {
	rc := c.Objective
	for _, t := range c.Elements {
		rc -= t.Coefficient * duals[t.Row]
	}
	return rc
}

// FixedColumn is a column pinned by the driver together with its value.
type FixedColumn[P any] struct {
	Column *Column[P]
	Value  float64
}

// PricingOutput is the answer of a pricing round.
type PricingOutput[P any] struct {
	Columns []*Column[P]
	// Overcost bounds how much the master objective can still improve with
	// columns not generated yet.
	Overcost float64
}

// PricingSolver generates columns of positive reduced cost.
type PricingSolver[P any] interface {
	// InitializePricing is called at the start of every dive with the columns
	// fixed so far. It may return initial columns.
	InitializePricing(fixed []FixedColumn[P]) []*Column[P]
	// SolvePricing returns candidate columns for the given row duals.
	SolvePricing(ctx context.Context, duals []float64) (PricingOutput[P], error)
}

// Model is what a driver needs to know about a problem.
type Model[P any] struct {
	Rows    []Row
	Sense   Sense
	Pricing PricingSolver[P]
}

// Validate reports models the greedy driver cannot handle.
func (m Model[P]) Validate() error {
	if m.Sense != Maximize {
		return fmt.Errorf("%w: sense %s", ErrUnsupportedModel, m.Sense)
	}
	if m.Pricing == nil {
		return fmt.Errorf("%w: no pricing solver", ErrUnsupportedModel)
	}
	for i, r := range m.Rows {
		if r.LowerBound > 0 || r.UpperBound < 0 || r.CoefficientLowerBound < 0 {
			return fmt.Errorf("%w: row %d is not a packing row", ErrUnsupportedModel, i)
		}
	}
	return nil
}

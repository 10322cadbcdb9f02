package events

import "time"

// RoundEvent describes one column generation pricing round.
type RoundEvent struct {
	RunID       string        `json:"run_id,omitempty"`
	Dive        int           `json:"dive"`
	Iteration   int           `json:"iteration"`
	Columns     int           `json:"columns"`
	NewColumns  int           `json:"new_columns"`
	LPObjective float64       `json:"lp_objective"`
	Overcost    float64       `json:"overcost"`
	Elapsed     time.Duration `json:"elapsed"`
}

// SubproblemEvent describes one single-night pricing problem.
type SubproblemEvent struct {
	RunID       string        `json:"run_id,omitempty"`
	Night       int           `json:"night"`
	Targets     int           `json:"targets"`
	States      int           `json:"states"`
	MaxFrontier int           `json:"max_frontier"`
	Profit      float64       `json:"profit"`
	ReducedCost float64       `json:"reduced_cost"`
	Elapsed     time.Duration `json:"elapsed"`
}

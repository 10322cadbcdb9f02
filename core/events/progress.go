package events

import "time"

// SolutionEvent is published when an algorithm improves its best schedule.
type SolutionEvent struct {
	RunID        string        `json:"run_id,omitempty"`
	Algorithm    string        `json:"algorithm"`
	Profit       float64       `json:"profit"`
	Observations int           `json:"observations"`
	Reason       string        `json:"reason"`
	Elapsed      time.Duration `json:"elapsed"`
}

// BoundEvent is published when an algorithm proves a better upper bound.
type BoundEvent struct {
	RunID     string        `json:"run_id,omitempty"`
	Algorithm string        `json:"algorithm"`
	Bound     float64       `json:"bound"`
	Reason    string        `json:"reason"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Progress is the union carried on the progress bus. Exactly one field is set.
type Progress struct {
	Solution   *SolutionEvent   `json:"solution,omitempty"`
	Bound      *BoundEvent      `json:"bound,omitempty"`
	Round      *RoundEvent      `json:"round,omitempty"`
	Subproblem *SubproblemEvent `json:"subproblem,omitempty"`
}

// Kind returns the name of the set field, or "" for an empty value.
func (p Progress) Kind() string {
	switch {
	case p.Solution != nil:
		return "solution"
	case p.Bound != nil:
		return "bound"
	case p.Round != nil:
		return "round"
	case p.Subproblem != nil:
		return "subproblem"
	}
	return ""
}

// Package pricing turns the single-night dynamic programs into the pricing
// solver of a column generation over nights, and runs the greedy diving
// heuristic on the resulting model.
//
// Rows 0..m-1 are the nights (at most one schedule per night) and rows
// m..m+n-1 the targets (each observed at most once).
package pricing

import (
	"fmt"
	"sort"

	"github.com/kilianp07/starobs/core/colgen"
	"github.com/kilianp07/starobs/core/model"
	"github.com/kilianp07/starobs/core/multinight"
)

// LocalObservation is an observation of the restricted instance solved for
// one night.
type LocalObservation struct {
	Target int        `json:"target"`
	Mode   int        `json:"mode"`
	Start  model.Time `json:"start"`
}

// Schedule is the payload of a column: the schedule of one night expressed
// in the ids of the restricted instance, and the mapping back to the night.
type Schedule struct {
	Night        int                `json:"night"`
	Observations []LocalObservation `json:"observations"`
	// Observables maps restricted target ids to observable ids.
	Observables []int `json:"observables"`
	// Modes maps restricted mode indices to observable mode indices, per
	// restricted target. It is nil for fixed instances.
	Modes [][]int `json:"modes,omitempty"`
}

// Global returns the observations in the ids of the night.
func (s Schedule) Global() []multinight.Observation {
	out := make([]multinight.Observation, len(s.Observations))
	for k, o := range s.Observations {
		mode := o.Mode
		if s.Modes != nil {
			mode = s.Modes[o.Target][o.Mode]
		}
		out[k] = multinight.Observation{Observable: s.Observables[o.Target], Mode: mode, Start: o.Start}
	}
	return out
}

// ColumnsToSolution replays the schedules of the columns fixed to 1 into a
// solution of inst. Observations of a night are appended by start time.
func ColumnsToSolution(inst *multinight.Instance, columns []colgen.FixedColumn[Schedule]) (*multinight.Solution, error) {
	perNight := make([][]multinight.Observation, inst.NumberOfNights())
	for _, fc := range columns {
		if fc.Value < 0.5 || fc.Column == nil {
			continue
		}
		s := fc.Column.Payload
		if s.Night < 0 || s.Night >= len(perNight) {
			return nil, fmt.Errorf("%w: column for unknown night %d", model.ErrInvalidSchedule, s.Night)
		}
		perNight[s.Night] = append(perNight[s.Night], s.Global()...)
	}
	sol := multinight.NewSolution(inst)
	for n, obs := range perNight {
		sort.SliceStable(obs, func(i, j int) bool { return obs[i].Start < obs[j].Start })
		for _, o := range obs {
			if err := sol.AppendObservation(n, o.Observable, o.Mode, o.Start); err != nil {
				return nil, err
			}
		}
	}
	return sol, nil
}

package instanceio

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/kilianp07/starobs/core/model"
	"github.com/kilianp07/starobs/core/multinight"
)

type jsonInstance struct {
	Nights      int              `json:"nights"`
	Targets     []jsonTarget     `json:"targets"`
	Observables []jsonObservable `json:"observables"`
}

type jsonTarget struct {
	Profit *model.Profit `json:"profit,omitempty"`
}

// jsonObservable holds either Duration (fixed, profit of the target) or
// Modes (flexible). An observable with neither has no mode.
type jsonObservable struct {
	Night    int          `json:"night"`
	Target   int          `json:"target"`
	Window   model.Window `json:"window"`
	Duration model.Time   `json:"duration,omitempty"`
	Modes    []model.Mode `json:"modes,omitempty"`
}

// ReadJSON decodes a multi-night instance.
func ReadJSON(r io.Reader) (*multinight.Instance, error) {
	var in jsonInstance
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMalformedInstance, err)
	}
	if in.Nights < 0 || in.Nights > MaxCount {
		return nil, fmt.Errorf("%w: number of nights %d outside [0, %d]", model.ErrMalformedInstance, in.Nights, MaxCount)
	}
	if len(in.Targets) > MaxCount {
		return nil, fmt.Errorf("%w: %d targets exceed %d", model.ErrMalformedInstance, len(in.Targets), MaxCount)
	}
	b := multinight.NewBuilder()
	b.SetNumberOfNights(in.Nights)
	b.SetNumberOfTargets(len(in.Targets))
	for id, t := range in.Targets {
		if t.Profit != nil {
			b.SetProfit(id, *t.Profit)
		}
	}
	for k, o := range in.Observables {
		w := o.Window
		switch {
		case len(o.Modes) > 0 && o.Duration != 0:
			return nil, fmt.Errorf("%w: observable %d has both a duration and modes", model.ErrMalformedInstance, k)
		case o.Duration != 0:
			b.AddFixedObservable(o.Night, o.Target, w.Release, w.Meridian, w.Deadline, o.Duration)
		default:
			id := b.AddObservable(o.Night, o.Target, w.Release, w.Meridian, w.Deadline)
			for _, md := range o.Modes {
				b.AddMode(o.Night, id, md.Duration, md.Profit)
			}
		}
	}
	return b.Build()
}

// WriteJSON encodes inst so that ReadJSON rebuilds an identical instance.
// An observable whose single mode is worth its target's profit is written
// with a duration, any other with its modes.
func WriteJSON(w io.Writer, inst *multinight.Instance) error {
	out := jsonInstance{
		Nights:      inst.NumberOfNights(),
		Targets:     make([]jsonTarget, inst.NumberOfTargets()),
		Observables: make([]jsonObservable, 0, inst.NumberOfObservables()),
	}
	for id := range out.Targets {
		p := inst.Target(id).Profit
		out.Targets[id].Profit = &p
	}
	for n := 0; n < inst.NumberOfNights(); n++ {
		for _, o := range inst.Night(n).Observables {
			jo := jsonObservable{Night: n, Target: o.Target, Window: o.Window}
			if len(o.Modes) == 1 && o.Modes[0].Profit == inst.Target(o.Target).Profit {
				jo.Duration = o.Modes[0].Duration
			} else {
				jo.Modes = o.Modes
			}
			out.Observables = append(out.Observables, jo)
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

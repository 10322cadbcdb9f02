package multinight

import (
	"math"

	"github.com/kilianp07/starobs/core/model"
)

// ExpandModes turns every observable into a flexible one. For each
// coefficient c a reduced mode of duration round(c*p) and profit w*p'/p is
// added, followed by the full mode (p, w), where (p, w) is the longest mode
// of the observable. Reduced modes that would not be valid for the window
// are left out.
func ExpandModes(inst *Instance, coefs []float64) (*Instance, error) {
	return expand(inst, func(full model.Mode) []model.Mode {
		modes := make([]model.Mode, 0, len(coefs)+1)
		for _, c := range coefs {
			d := model.Time(math.Round(c * float64(full.Duration)))
			modes = append(modes, scaled(full, d))
		}
		return append(modes, full)
	})
}

// ExpandRange adds every duration between round(coef*p) and p, with a profit
// proportional to the duration.
func ExpandRange(inst *Instance, coef float64) (*Instance, error) {
	return expand(inst, func(full model.Mode) []model.Mode {
		lo := model.Time(math.Round(coef * float64(full.Duration)))
		var modes []model.Mode
		for d := lo; d <= full.Duration; d++ {
			modes = append(modes, scaled(full, d))
		}
		return modes
	})
}

func scaled(full model.Mode, d model.Time) model.Mode {
	if d == full.Duration {
		return full
	}
	return model.Mode{Duration: d, Profit: full.Profit * model.Profit(d) / model.Profit(full.Duration)}
}

func expand(inst *Instance, modes func(full model.Mode) []model.Mode) (*Instance, error) {
	b := NewBuilder()
	b.SetNumberOfNights(inst.NumberOfNights())
	b.SetNumberOfTargets(inst.NumberOfTargets())
	for id, t := range inst.targets {
		b.SetProfit(id, t.Profit)
	}
	for n := range inst.nights {
		for _, o := range inst.nights[n].Observables {
			w := o.Window
			id := b.AddObservable(n, o.Target, w.Release, w.Meridian, w.Deadline)
			if len(o.Modes) == 0 {
				continue
			}
			full := o.Modes[0]
			for _, md := range o.Modes[1:] {
				if md.Duration > full.Duration {
					full = md
				}
			}
			for _, md := range modes(full) {
				if md != full && w.ValidateDuration(md.Duration) != nil {
					continue
				}
				b.AddMode(n, id, md.Duration, md.Profit)
			}
		}
	}
	return b.Build()
}

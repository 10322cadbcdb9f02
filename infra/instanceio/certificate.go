package instanceio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/kilianp07/starobs/core/model"
	"github.com/kilianp07/starobs/core/multinight"
)

// WriteCertificate writes a multi-night schedule:
//
//	<nights>
//	then per night:
//	<number of observations>
//	<observable> <target> <start> <end>
//
// Observations of flexible instances carry a fifth column, the profit of the
// chosen mode over the best profit of the observable.
func WriteCertificate(w io.Writer, sol *multinight.Solution) error {
	inst := sol.Instance()
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, inst.NumberOfNights())
	for n := 0; n < inst.NumberOfNights(); n++ {
		obs := sol.Observations(n)
		fmt.Fprintln(bw, len(obs))
		for _, o := range obs {
			ob := inst.Observable(n, o.Observable)
			md := ob.Modes[o.Mode]
			fmt.Fprintf(bw, "%d %d %d %d", o.Observable, ob.Target, o.Start, o.Start+md.Duration)
			if !inst.Fixed() {
				ratio := 1.0
				if best := maxProfit(ob); best != 0 {
					ratio = float64(md.Profit / best)
				}
				fmt.Fprintf(bw, " %s", strconv.FormatFloat(ratio, 'g', -1, 64))
			}
			fmt.Fprintln(bw)
		}
	}
	return bw.Flush()
}

func maxProfit(o multinight.Observable) model.Profit {
	var best model.Profit
	for k, md := range o.Modes {
		if k == 0 || md.Profit > best {
			best = md.Profit
		}
	}
	return best
}

// CheckResult summarises the verification of a certificate.
type CheckResult struct {
	Feasible     bool         `json:"feasible"`
	Observations int          `json:"observations"`
	Profit       model.Profit `json:"profit"`
	Duplicates   int          `json:"duplicates"`
	// Violations counts observations rejected for any other reason: window,
	// meridian, overlap or no mode of the observed duration.
	Violations int      `json:"violations"`
	Issues     []string `json:"issues,omitempty"`
}

// CheckCertificate replays a certificate written by WriteCertificate on
// inst. Rejected observations are counted and described in Issues; the
// returned error is only set when the certificate cannot be parsed.
func CheckCertificate(r io.Reader, inst *multinight.Instance) (CheckResult, error) {
	l := newLines(r)
	fields, err := l.next()
	if err != nil {
		return CheckResult{}, err
	}
	nights, err := l.intField(fields, 0, "number of nights")
	if err != nil {
		return CheckResult{}, err
	}
	if nights != inst.NumberOfNights() {
		return CheckResult{}, fmt.Errorf("%w: certificate has %d nights, instance %d", model.ErrMalformedInstance, nights, inst.NumberOfNights())
	}

	var res CheckResult
	sol := multinight.NewSolution(inst)
	reject := func(n, line int, dup bool, reason string) {
		if dup {
			res.Duplicates++
		} else {
			res.Violations++
		}
		res.Issues = append(res.Issues, fmt.Sprintf("night %d line %d: %s", n, line, reason))
	}
	for n := 0; n < nights; n++ {
		fields, err := l.next()
		if err != nil {
			return CheckResult{}, err
		}
		count, err := l.intField(fields, 0, "number of observations")
		if err != nil {
			return CheckResult{}, err
		}
		for k := 0; k < count; k++ {
			fields, err := l.next()
			if err != nil {
				return CheckResult{}, err
			}
			id, err := l.intField(fields, 0, "observable")
			if err != nil {
				return CheckResult{}, err
			}
			target, err := l.intField(fields, 1, "target")
			if err != nil {
				return CheckResult{}, err
			}
			start, err := l.timeField(fields, 2, "start")
			if err != nil {
				return CheckResult{}, err
			}
			end, err := l.timeField(fields, 3, "end")
			if err != nil {
				return CheckResult{}, err
			}
			res.Observations++
			if id >= len(inst.Night(n).Observables) {
				reject(n, l.line, false, fmt.Sprintf("unknown observable %d", id))
				continue
			}
			ob := inst.Observable(n, id)
			if ob.Target != target {
				reject(n, l.line, false, fmt.Sprintf("observable %d observes target %d, not %d", id, ob.Target, target))
				continue
			}
			if sol.Contains(target) {
				reject(n, l.line, true, fmt.Sprintf("target %d already observed", target))
				continue
			}
			mode := modeOf(ob, end-start)
			if mode < 0 {
				reject(n, l.line, false, fmt.Sprintf("no mode of duration %d", end-start))
				continue
			}
			if err := sol.AppendObservation(n, id, mode, start); err != nil {
				reject(n, l.line, false, err.Error())
			}
		}
	}
	res.Profit = sol.Profit()
	res.Feasible = res.Duplicates == 0 && res.Violations == 0
	return res, nil
}

// modeOf returns the most valuable mode of the given duration, -1 if none.
func modeOf(o multinight.Observable, duration model.Time) int {
	best := -1
	for k, md := range o.Modes {
		if md.Duration == duration && (best < 0 || md.Profit > o.Modes[best].Profit) {
			best = k
		}
	}
	return best
}

package instanceio

import (
	"bufio"
	"fmt"
	"io"

	"github.com/kilianp07/starobs/core/multinight"
	"github.com/kilianp07/starobs/core/singlenight"
)

// ReadSingleNight reads a single-night instance. The first line is ignored,
// the second holds the number of targets in its third field and each target
// line reads
//
//	<label> <label> <label> <label> <profit> <label> <duration> <label> <release> <label> <meridian> <label> <deadline>
func ReadSingleNight(r io.Reader) (*singlenight.Instance, error) {
	l := newLines(r)
	if _, err := l.next(); err != nil {
		return nil, err
	}
	fields, err := l.next()
	if err != nil {
		return nil, err
	}
	n, err := l.countField(fields, 2, "number of targets")
	if err != nil {
		return nil, err
	}
	b := singlenight.NewBuilder()
	for t := 0; t < n; t++ {
		fields, err := l.next()
		if err != nil {
			return nil, err
		}
		profit, err := l.profitField(fields, 4, "profit")
		if err != nil {
			return nil, err
		}
		duration, err := l.timeField(fields, 6, "observation time")
		if err != nil {
			return nil, err
		}
		w, err := l.window(fields, 8)
		if err != nil {
			return nil, err
		}
		b.AddTarget(w.Release, w.Meridian, w.Deadline, duration, profit)
	}
	inst, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("after line %d: %w", l.line, err)
	}
	return inst, nil
}

// SingleNightToMultiNight wraps a single-night instance into a one night
// instance with one target per single-night target.
func SingleNightToMultiNight(inst *singlenight.Instance) (*multinight.Instance, error) {
	b := multinight.NewBuilder()
	b.SetNumberOfNights(1)
	b.SetNumberOfTargets(inst.NumberOfTargets())
	for id := 0; id < inst.NumberOfTargets(); id++ {
		t := inst.Target(id)
		b.SetProfit(id, t.Profit)
		b.AddFixedObservable(0, id, t.Window.Release, t.Window.Meridian, t.Window.Deadline, t.Duration)
	}
	return b.Build()
}

// WriteSingleNightCertificate writes the number of observations followed by
// the observed target ids in processing order.
func WriteSingleNightCertificate(w io.Writer, sol *singlenight.Solution) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, sol.NumberOfObservations())
	for _, o := range sol.Observations() {
		fmt.Fprintf(bw, " %d", o.Target)
	}
	fmt.Fprintln(bw)
	return bw.Flush()
}

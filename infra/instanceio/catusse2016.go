package instanceio

import (
	"fmt"
	"io"

	"github.com/kilianp07/starobs/core/model"
	"github.com/kilianp07/starobs/core/multinight"
)

// ReadCatusse2016 reads a fixed duration multi-night instance of the
// catusse2016 benchmark.
//
//	<label> <label> <nights>
//	<label> <label> <targets>
//	then per target:
//	<label> <label> <label> <label> <profit>
//	and one line per night, either three labels when the target cannot be
//	observed that night, or
//	<label> <label> <label> <duration> <label> <release> <label> <meridian> <label> <deadline>
func ReadCatusse2016(r io.Reader) (*multinight.Instance, error) {
	l := newLines(r)
	b, nights, targets, err := readHeader(l)
	if err != nil {
		return nil, err
	}
	for t := 0; t < targets; t++ {
		fields, err := l.next()
		if err != nil {
			return nil, err
		}
		profit, err := l.profitField(fields, 4, "profit")
		if err != nil {
			return nil, err
		}
		b.SetProfit(t, profit)
		for n := 0; n < nights; n++ {
			fields, err := l.next()
			if err != nil {
				return nil, err
			}
			if len(fields) <= 3 {
				continue
			}
			duration, err := l.timeField(fields, 3, "observation time")
			if err != nil {
				return nil, err
			}
			w, err := l.window(fields, 5)
			if err != nil {
				return nil, err
			}
			b.AddFixedObservable(n, t, w.Release, w.Meridian, w.Deadline, duration)
		}
	}
	return build(b, l)
}

// ReadCatusse2016Flexible reads the flexible variant of the catusse2016
// format. Target lines carry no profit and observable lines list their modes:
//
//	<label> <label> <label> <k> <duration> <profit> ... <label> <release> <label> <meridian> <label> <deadline>
func ReadCatusse2016Flexible(r io.Reader) (*multinight.Instance, error) {
	l := newLines(r)
	b, nights, targets, err := readHeader(l)
	if err != nil {
		return nil, err
	}
	for t := 0; t < targets; t++ {
		if _, err := l.next(); err != nil {
			return nil, err
		}
		for n := 0; n < nights; n++ {
			fields, err := l.next()
			if err != nil {
				return nil, err
			}
			if len(fields) <= 3 {
				continue
			}
			k, err := l.intField(fields, 3, "number of observation times")
			if err != nil {
				return nil, err
			}
			if k > len(fields)/2 {
				return nil, fmt.Errorf("%w: line %d: %d observation times announced, %d fields", model.ErrMalformedInstance, l.line, k, len(fields))
			}
			modes := make([]model.Mode, k)
			for i := range modes {
				if modes[i].Duration, err = l.timeField(fields, 4+2*i, "observation time"); err != nil {
					return nil, err
				}
				if modes[i].Profit, err = l.profitField(fields, 5+2*i, "profit"); err != nil {
					return nil, err
				}
			}
			w, err := l.window(fields, 5+2*k)
			if err != nil {
				return nil, err
			}
			id := b.AddObservable(n, t, w.Release, w.Meridian, w.Deadline)
			for _, md := range modes {
				b.AddMode(n, id, md.Duration, md.Profit)
			}
		}
	}
	return build(b, l)
}

func readHeader(l *lines) (*multinight.Builder, int, int, error) {
	fields, err := l.next()
	if err != nil {
		return nil, 0, 0, err
	}
	nights, err := l.countField(fields, 2, "number of nights")
	if err != nil {
		return nil, 0, 0, err
	}
	if fields, err = l.next(); err != nil {
		return nil, 0, 0, err
	}
	targets, err := l.countField(fields, 2, "number of targets")
	if err != nil {
		return nil, 0, 0, err
	}
	b := multinight.NewBuilder()
	b.SetNumberOfNights(nights)
	b.SetNumberOfTargets(targets)
	return b, nights, targets, nil
}

func build(b *multinight.Builder, l *lines) (*multinight.Instance, error) {
	inst, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("after line %d: %w", l.line, err)
	}
	return inst, nil
}

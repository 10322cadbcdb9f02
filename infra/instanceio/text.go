package instanceio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kilianp07/starobs/core/model"
)

// maxLine bounds the length of one line of a text instance.
const maxLine = 1 << 20

// MaxCount bounds the number of nights and of targets of an instance, so a
// corrupted header fails instead of exhausting memory.
const MaxCount = 1 << 20

// lines splits a text instance into whitespace separated fields, one line at
// a time, and keeps track of the line number for error messages.
type lines struct {
	sc   *bufio.Scanner
	line int
}

func newLines(r io.Reader) *lines {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLine)
	return &lines{sc: sc}
}

// next returns the fields of the next line.
func (l *lines) next() ([]string, error) {
	if !l.sc.Scan() {
		if err := l.sc.Err(); err != nil {
			return nil, fmt.Errorf("line %d: %w", l.line+1, err)
		}
		return nil, fmt.Errorf("%w: line %d: unexpected end of file", model.ErrMalformedInstance, l.line+1)
	}
	l.line++
	return strings.Fields(l.sc.Text()), nil
}

// field returns fields[i] or an error naming what was expected.
func (l *lines) field(fields []string, i int, what string) (string, error) {
	if i >= len(fields) {
		return "", fmt.Errorf("%w: line %d: missing %s", model.ErrMalformedInstance, l.line, what)
	}
	return fields[i], nil
}

func (l *lines) intField(fields []string, i int, what string) (int, error) {
	s, err := l.field(fields, i, what)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: line %d: invalid %s %q", model.ErrMalformedInstance, l.line, what, s)
	}
	return v, nil
}

// countField is intField bounded by MaxCount.
func (l *lines) countField(fields []string, i int, what string) (int, error) {
	v, err := l.intField(fields, i, what)
	if err != nil {
		return 0, err
	}
	if v > MaxCount {
		return 0, fmt.Errorf("%w: line %d: %s %d exceeds %d", model.ErrMalformedInstance, l.line, what, v, MaxCount)
	}
	return v, nil
}

func (l *lines) timeField(fields []string, i int, what string) (model.Time, error) {
	s, err := l.field(fields, i, what)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: line %d: invalid %s %q", model.ErrMalformedInstance, l.line, what, s)
	}
	return model.Time(v), nil
}

func (l *lines) profitField(fields []string, i int, what string) (model.Profit, error) {
	s, err := l.field(fields, i, what)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: line %d: invalid %s %q", model.ErrMalformedInstance, l.line, what, s)
	}
	return model.Profit(v), nil
}

// window reads release, meridian and deadline from fields[i], fields[i+2]
// and fields[i+4]; the fields in between are labels.
func (l *lines) window(fields []string, i int) (model.Window, error) {
	var w model.Window
	var err error
	if w.Release, err = l.timeField(fields, i, "release date"); err != nil {
		return w, err
	}
	if w.Meridian, err = l.timeField(fields, i+2, "meridian"); err != nil {
		return w, err
	}
	if w.Deadline, err = l.timeField(fields, i+4, "deadline"); err != nil {
		return w, err
	}
	return w, nil
}

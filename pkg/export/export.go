// Package export renders solved schedules for consumption outside the
// solver.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/starobs/core/model"
	"github.com/kilianp07/starobs/core/multinight"
)

// Entry is one scheduled observation.
type Entry struct {
	Night      int          `json:"night" yaml:"night"`
	Target     int          `json:"target" yaml:"target"`
	Observable int          `json:"observable" yaml:"observable"`
	Mode       int          `json:"mode" yaml:"mode"`
	Start      model.Time   `json:"start" yaml:"start"`
	End        model.Time   `json:"end" yaml:"end"`
	Profit     model.Profit `json:"profit" yaml:"profit"`
}

// Report is a solved schedule with the run that produced it.
type Report struct {
	RunID        string  `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Algorithm    string  `json:"algorithm,omitempty" yaml:"algorithm,omitempty"`
	Instance     string  `json:"instance,omitempty" yaml:"instance,omitempty"`
	Profit       float64 `json:"profit" yaml:"profit"`
	Bound        float64 `json:"bound" yaml:"bound"`
	Observations int     `json:"observations" yaml:"observations"`
	Entries      []Entry `json:"entries" yaml:"entries"`
}

// NewReport lists the observations of sol night by night.
func NewReport(sol *multinight.Solution) Report {
	inst := sol.Instance()
	r := Report{
		Profit:       float64(sol.Profit()),
		Observations: sol.NumberOfObservations(),
		Entries:      make([]Entry, 0, sol.NumberOfObservations()),
	}
	for n := 0; n < inst.NumberOfNights(); n++ {
		for _, o := range sol.Observations(n) {
			ob := inst.Observable(n, o.Observable)
			md := ob.Modes[o.Mode]
			r.Entries = append(r.Entries, Entry{
				Night:      n,
				Target:     ob.Target,
				Observable: o.Observable,
				Mode:       o.Mode,
				Start:      o.Start,
				End:        o.Start + md.Duration,
				Profit:     md.Profit,
			})
		}
	}
	return r
}

// Formats lists the formats accepted by Write.
var Formats = []string{"json", "yaml", "csv"}

// Write renders r in the given format.
func Write(w io.Writer, format string, r Report) error {
	switch format {
	case "json":
		return WriteJSON(w, r)
	case "yaml", "yml":
		return WriteYAML(w, r)
	case "csv":
		return WriteCSV(w, r.Entries)
	}
	return fmt.Errorf("unknown export format %q (known: %v)", format, Formats)
}

// WriteJSON writes the report to w in JSON format.
func WriteJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteYAML writes the report to w in YAML format.
func WriteYAML(w io.Writer, r Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}

// WriteCSV writes the observations to w in CSV format, one per row.
func WriteCSV(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"night", "target", "observable", "mode", "start", "end", "profit"}); err != nil {
		return err
	}
	for _, e := range entries {
		rec := []string{
			strconv.Itoa(e.Night),
			strconv.Itoa(e.Target),
			strconv.Itoa(e.Observable),
			strconv.Itoa(e.Mode),
			strconv.FormatInt(int64(e.Start), 10),
			strconv.FormatInt(int64(e.End), 10),
			strconv.FormatFloat(float64(e.Profit), 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

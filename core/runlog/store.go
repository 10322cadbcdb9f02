// Package runlog persists one record per solver run and queries them back.
// Records are stored either as JSON lines, optionally rotated, or in SQLite.
package runlog

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// Record captures one solver run.
type Record struct {
	RunID        string    `json:"run_id"`
	Timestamp    time.Time `json:"timestamp"`
	Algorithm    string    `json:"algorithm"`
	Instance     string    `json:"instance"`
	Summary      string    `json:"summary,omitempty"`
	Profit       float64   `json:"profit"`
	Bound        float64   `json:"bound"`
	Observations int       `json:"observations"`
	ElapsedMS    float64   `json:"elapsed_ms"`
	Interrupted  bool      `json:"interrupted,omitempty"`
	Dives        int       `json:"dives,omitempty"`
	Iterations   int       `json:"iterations,omitempty"`
	Columns      int       `json:"columns,omitempty"`
	Error        string    `json:"error,omitempty"`
}

// Gap returns the relative optimality gap, 0 when the bound is reached.
func (r Record) Gap() float64 {
	if r.Bound <= 0 || r.Bound <= r.Profit {
		return 0
	}
	return (r.Bound - r.Profit) / r.Bound
}

// Query defines filters for retrieving records. Zero values match anything.
type Query struct {
	Start     time.Time
	End       time.Time
	Algorithm string
	Instance  string
	// Limit keeps only the most recent matches.
	Limit int
}

func (q Query) matches(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Algorithm != "" && r.Algorithm != q.Algorithm {
		return false
	}
	if q.Instance != "" && r.Instance != q.Instance {
		return false
	}
	return true
}

// finish orders records by time and applies the limit.
func (q Query) finish(res []Record) []Record {
	sort.SliceStable(res, func(i, j int) bool { return res[i].Timestamp.Before(res[j].Timestamp) })
	if q.Limit > 0 && len(res) > q.Limit {
		res = res[len(res)-q.Limit:]
	}
	return res
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// Options selects and configures a Store.
type Options struct {
	// Backend is "jsonl", "sqlite" or "none".
	Backend    string
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Open creates the store described by opts. Backend "none" returns a nil
// store and no error.
func Open(opts Options) (Store, error) {
	var (
		s   Store
		err error
	)
	switch opts.Backend {
	case "none":
		return nil, nil
	case "jsonl", "":
		if opts.MaxSizeMB > 0 {
			s, err = NewRotatingJSONLStore(opts.Path, opts.MaxSizeMB, opts.MaxBackups, opts.MaxAgeDays)
		} else {
			s, err = NewJSONLStore(opts.Path)
		}
	case "sqlite":
		s, err = NewSQLiteStore(opts.Path)
	default:
		return nil, fmt.Errorf("runlog: unknown backend %q", opts.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("runlog: open %s store: %w", opts.Backend, err)
	}
	return s, nil
}

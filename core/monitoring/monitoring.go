// Package monitoring reports solver failures to an error tracker. The global
// monitor defaults to a no-op and is replaced at startup by Init.
package monitoring

import (
	"sync"
	"time"
)

// Monitor defines methods used for error reporting.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	CapturePanic(v any)
	Flush(timeout time.Duration)
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) CapturePanic(any)                          {}
func (NopMonitor) Flush(time.Duration)                       {}

var (
	mu      sync.RWMutex
	current Monitor = NopMonitor{}
)

// Init sets the global monitor implementation. A nil monitor restores the
// no-op one.
func Init(m Monitor) {
	mu.Lock()
	defer mu.Unlock()
	if m == nil {
		m = NopMonitor{}
	}
	current = m
}

func get() Monitor {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// CaptureException records the error with optional tags.
func CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	get().CaptureException(err, tags)
}

// CaptureRun records a failed solver run tagged with its id and algorithm.
func CaptureRun(err error, runID, algorithm string) {
	CaptureException(err, map[string]string{"run_id": runID, "algorithm": algorithm})
}

// Repanic reports a recovered panic value, flushes the monitor and panics
// again with v. A nil v is ignored. Typical use:
//
//	defer func() { monitoring.Repanic(recover()) }()
func Repanic(v any) {
	if v == nil {
		return
	}
	m := get()
	m.CapturePanic(v)
	m.Flush(2 * time.Second)
	panic(v)
}

// Flush flushes buffered events.
func Flush(d time.Duration) {
	get().Flush(d)
}

package monitoring

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/starobs/config"
	coremon "github.com/kilianp07/starobs/core/monitoring"
)

func capturing(t *testing.T) (*sentryMonitor, func() []*sentry.Event) {
	t.Helper()
	var mu sync.Mutex
	var sent []*sentry.Event
	m, err := newSentryMonitor(sentry.ClientOptions{
		Dsn: "https://public@example.com/1",
		BeforeSend: func(ev *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			mu.Lock()
			sent = append(sent, ev)
			mu.Unlock()
			return nil
		},
	})
	require.NoError(t, err)
	return m, func() []*sentry.Event {
		mu.Lock()
		defer mu.Unlock()
		return append([]*sentry.Event(nil), sent...)
	}
}

func TestNewSentryMonitorWithoutDSN(t *testing.T) {
	m, err := NewSentryMonitor(config.SentryConfig{})
	require.NoError(t, err)
	assert.IsType(t, coremon.NopMonitor{}, m)
}

func TestNewSentryMonitorRejectsBadDSN(t *testing.T) {
	_, err := NewSentryMonitor(config.SentryConfig{DSN: "::not a dsn"})
	assert.Error(t, err)
}

func TestSentryMonitorCapturesTags(t *testing.T) {
	m, sent := capturing(t)
	m.CaptureException(nil, nil)
	m.CaptureException(errors.New("invalid schedule"), map[string]string{"run_id": "r1"})
	m.Flush(time.Second)

	events := sent()
	require.Len(t, events, 1)
	assert.Equal(t, "r1", events[0].Tags["run_id"])
	require.NotEmpty(t, events[0].Exception)
	assert.Equal(t, "invalid schedule", events[0].Exception[0].Value)
}

func TestSentryMonitorCapturesPanics(t *testing.T) {
	m, sent := capturing(t)
	coremon.Init(m)
	t.Cleanup(func() { coremon.Init(nil) })

	assert.Panics(t, func() {
		defer func() { coremon.Repanic(recover()) }()
		panic("frontier corrupted")
	})
	events := sent()
	require.Len(t, events, 1)
	assert.Equal(t, "frontier corrupted", events[0].Message)
}

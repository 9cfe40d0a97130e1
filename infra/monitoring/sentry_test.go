package monitoring

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremon "github.com/kilianp07/trikesim/core/monitoring"
)

type captureTransport struct {
	mu     sync.Mutex
	events []*sentry.Event
}

func (c *captureTransport) Configure(sentry.ClientOptions) {}
func (c *captureTransport) Flush(time.Duration) bool      { return true }
func (c *captureTransport) SendEvent(e *sentry.Event) {
	c.mu.Lock()
	c.events = append(c.events, e)
	c.mu.Unlock()
}

func TestNewSentryMonitorWithoutDSN(t *testing.T) {
	m, err := NewSentryMonitor(SentryConfig{})
	require.NoError(t, err)
	assert.IsType(t, coremon.NopMonitor{}, m)
}

func TestSentryConfig(t *testing.T) {
	var c SentryConfig
	c.SetDefaults()
	assert.Equal(t, "development", c.Environment)
	assert.Equal(t, 2*time.Second, c.FlushTimeout())
	c.TracesSampleRate = 2
	assert.Error(t, c.Validate())
}

func TestSentryMonitorTagsVehicleFaults(t *testing.T) {
	tr := &captureTransport{}
	m, err := NewSentryMonitor(SentryConfig{DSN: "https://public@example.com/1", transport: tr})
	require.NoError(t, err)

	coremon.CaptureVehicleFault(m, coremon.VehicleFault{RunID: "r1", VehicleID: "trike_3", Phase: "move", Time: 12, Cause: "boom"})
	m.CaptureException(errors.New("plain"), nil)
	m.CaptureException(nil, nil)
	m.Flush(time.Second)

	tr.mu.Lock()
	defer tr.mu.Unlock()
	require.Len(t, tr.events, 2)
	ev := tr.events[0]
	assert.Equal(t, "trike_3", ev.Tags["vehicle_id"])
	assert.Equal(t, "move", ev.Tags["phase"])
	assert.Equal(t, "r1", ev.Tags["run_id"])
	assert.Contains(t, ev.Contexts, "vehicle")
}

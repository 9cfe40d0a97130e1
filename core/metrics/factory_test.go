package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/trikesim/core/factory"
)

func TestNewMetricsSink(t *testing.T) {
	counting := func(map[string]any, Env) (MetricsSink, error) { return &tickOnly{}, nil }
	require.NoError(t, RegisterMetricsSink("test_counting", counting))
	assert.Error(t, RegisterMetricsSink("test_counting", counting), "duplicate registration")
	assert.True(t, Known("nop"))
	assert.False(t, Known("graphite"))

	s, err := NewMetricsSink(nil, Env{})
	require.NoError(t, err)
	assert.IsType(t, NopSink{}, s)

	s, err = NewMetricsSink([]factory.ModuleConfig{{Type: "test_counting"}}, Env{})
	require.NoError(t, err)
	assert.IsType(t, &tickOnly{}, s)

	s, err = NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}, {Type: "test_counting"}}, Env{})
	require.NoError(t, err)
	multi, ok := s.(*MultiSink)
	require.True(t, ok)
	assert.Len(t, multi.Sinks, 2)

	_, err = NewMetricsSink([]factory.ModuleConfig{{Type: "graphite"}}, Env{})
	assert.Error(t, err)
}

func TestConfigDefaults(t *testing.T) {
	var c Config
	c.SetDefaults()
	assert.Equal(t, 256, c.BusBuffer)
}

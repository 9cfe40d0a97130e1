package mqtt

import (
	"github.com/kilianp07/trikesim/core/factory"
	coremetrics "github.com/kilianp07/trikesim/core/metrics"
)

func init() {
	_ = coremetrics.RegisterMetricsSink("mqtt", func(conf map[string]any, _ coremetrics.Env) (coremetrics.MetricsSink, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		c.Enabled = true
		// Closing the metrics sink disconnects the client.
		sink, _, err := NewTelemetrySink(c)
		if err != nil {
			return nil, err
		}
		return sink, nil
	})
}

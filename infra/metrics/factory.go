package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/trikesim/core/factory"
	coremetrics "github.com/kilianp07/trikesim/core/metrics"
)

// init registers built-in metrics sinks.
func init() {
	_ = coremetrics.RegisterMetricsSink("prometheus", func(map[string]any, coremetrics.Env) (coremetrics.MetricsSink, error) {
		// The /metrics listener is started by the caller from metrics.prometheus_port.
		return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
	})

	_ = coremetrics.RegisterMetricsSink("influx", func(conf map[string]any, env coremetrics.Env) (coremetrics.MetricsSink, error) {
		var c InfluxConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(c, env.Logger), nil
	})
}

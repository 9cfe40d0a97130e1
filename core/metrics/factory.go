package metrics

import (
	"github.com/kilianp07/trikesim/core/factory"
	"github.com/kilianp07/trikesim/core/logger"
)

// Env is handed to every sink factory.
type Env struct {
	Logger logger.Logger
}

var sinkRegistry = factory.NewRegistry[MetricsSink, Env]()

func init() {
	_ = RegisterMetricsSink("nop", func(map[string]any, Env) (MetricsSink, error) {
		return NopSink{}, nil
	})
}

// RegisterMetricsSink adds a metrics sink factory identified by name.
func RegisterMetricsSink(name string, f factory.Factory[MetricsSink, Env]) error {
	return sinkRegistry.Register(name, f)
}

// NewMetricsSink creates a MetricsSink from the provided configuration.
func NewMetricsSink(cfgs []factory.ModuleConfig, env Env) (MetricsSink, error) {
	if len(cfgs) == 0 {
		return NopSink{}, nil
	}
	if len(cfgs) == 1 {
		return sinkRegistry.Create(cfgs[0], env)
	}
	sinks := make([]MetricsSink, len(cfgs))
	for i, c := range cfgs {
		s, err := sinkRegistry.Create(c, env)
		if err != nil {
			return nil, err
		}
		sinks[i] = s
	}
	return NewMultiSink(sinks...), nil
}

// Known reports whether a sink type is registered.
func Known(name string) bool { return sinkRegistry.Has(name) }

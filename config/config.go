package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/trikesim/core/metrics"
	"github.com/kilianp07/trikesim/core/sim"
	_ "github.com/kilianp07/trikesim/infra/metrics" // prometheus and influx sinks
	"github.com/kilianp07/trikesim/infra/monitoring"
	"github.com/kilianp07/trikesim/infra/mqtt"
	"github.com/kilianp07/trikesim/infra/routing"
)

// ErrConfig wraps every validation failure returned by Load.
var ErrConfig = errors.New("config: invalid")

type Config struct {
	Simulation sim.Config              `json:"simulation"`
	Tricycle   TricycleConfig          `json:"tricycle"`
	Routing    routing.Config          `json:"routing"`
	Metrics    metrics.Config          `json:"metrics"`
	EventLog   EventLogConfig          `json:"event_log"`
	Output     OutputConfig            `json:"output"`
	MQTT       mqtt.Config             `json:"mqtt"`
	Sentry     monitoring.SentryConfig `json:"sentry"`
	API        APIConfig               `json:"api"`
	Runs       RunsConfig              `json:"runs"`
	KPI        KPIConfig               `json:"kpi"`
}

// Load reads a yaml or json file, applies K_ prefixed environment
// overrides (K_SIMULATION__SEED=7 sets simulation.seed), then defaults and
// validates every section.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	cfg.SetDefaults()
	return &cfg
}

// SetDefaults fills every section.
func (c *Config) SetDefaults() {
	c.Tricycle.SetDefaults()
	c.Simulation.Tricycle = c.Tricycle.Fleet(c.Simulation.TickSeconds)
	c.Simulation.SetDefaults()
	c.Routing.SetDefaults()
	c.Metrics.SetDefaults()
	c.EventLog.SetDefaults()
	c.Output.SetDefaults()
	c.MQTT.SetDefaults()
	c.Sentry.SetDefaults()
	c.API.SetDefaults()
	c.Runs.SetDefaults()
}

// Validate checks every section; the failures are joined and wrapped with
// ErrConfig.
func (c Config) Validate() error {
	var errs []error
	check := func(section string, err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", section, err))
		}
	}
	check("simulation", c.Simulation.Validate())
	check("tricycle", c.Tricycle.Validate())
	check("routing", c.Routing.Validate())
	check("event_log", c.EventLog.Validate())
	check("mqtt", c.MQTT.Validate())
	check("sentry", c.Sentry.Validate())
	check("runs", c.Runs.Validate())
	check("metrics", c.Metrics.Validate())
	check("output", c.Output.Validate())
	check("api", c.API.Validate())
	check("kpi", c.KPI.Validate())
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrConfig, errors.Join(errs...))
	}
	return nil
}

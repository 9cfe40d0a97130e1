package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/trikesim/core/dispatch"
	"github.com/kilianp07/trikesim/core/fleet"
	"github.com/kilianp07/trikesim/core/geo"
	"github.com/kilianp07/trikesim/core/routing"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

//nolint:gocyclo
func TestLoad(t *testing.T) {
	path := writeConfig(t, "config.yaml", `simulation:
  seed: 42
  tricycles: 10
  terminals: 2
  passengers: 30
  hotspots: 3
  roaming_trike_chance: 0.5
  road_passenger_chance: 0.4
  terminal_passenger_weights: [3, 1]
  use_fixed_hotspots: true
  fixed_hotspots:
    - [121.04, 14.60]
    - [121.05, 14.61]
tricycle:
  capacity: 4
  claim_policy:
    type: route_aware
    conf:
      tolerance_deg: 0.0002
routing:
  provider: osrm
  osrm:
    url: "http://localhost:5001"
metrics:
  sinks:
    - type: "nop"
event_log:
  backend: sqlite
mqtt:
  broker: "tcp://localhost:1883"
  client_id: "cli"
runs:
  count: 3
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"seed", cfg.Simulation.Seed, int64(42)},
		{"tricycles", cfg.Simulation.Tricycles, 10},
		{"weights", len(cfg.Simulation.TerminalPassengerWeights), 2},
		{"fixed hotspot", cfg.Simulation.FixedHotspots[1], geo.NewPoint(121.05, 14.61)},
		{"horizon default", cfg.Simulation.Horizon, int64(50000)},
		{"capacity", cfg.Tricycle.Capacity, 4},
		{"template capacity", cfg.Simulation.Tricycle.Capacity, 4},
		{"speed default", cfg.Tricycle.Speed, fleet.DefaultSpeed},
		{"claim policy", cfg.Tricycle.ClaimPolicy.Type, "route_aware"},
		{"scheduler default", cfg.Tricycle.Scheduler.Type, "first_come"},
		{"routing provider", cfg.Routing.Provider, "osrm"},
		{"route cache", cfg.Routing.Cache, "memory"},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"event log path", cfg.EventLog.Path, "output/events.db"},
		{"broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"client_id", cfg.MQTT.ClientID, "cli"},
		{"runs", cfg.Runs.Count, 3},
		{"output dir", cfg.Output.Dir, "output"},
		{"api addr", cfg.API.Addr, ":8080"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "config.json", `{"simulation": {"tricycles": 1, "hotspots": 1, "roaming_trike_chance": 1}}`)
	t.Setenv("K_SIMULATION__SEED", "99")
	t.Setenv("K_RUNS__COUNT", "2")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(99), cfg.Simulation.Seed)
	assert.Equal(t, 2, cfg.Runs.Count)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"scenario":  "simulation:\n  tricycles: -1\n",
		"scheduler": "tricycle:\n  capacity: 9\n  scheduler:\n    type: optimal\n",
		"claims":    "tricycle:\n  claim_policy:\n    type: telepathic\n",
		"routing":   "routing:\n  provider: google\n",
		"sink":      "metrics:\n  sinks:\n    - type: graphite\n",
		"event log": "event_log:\n  backend: postgres\n",
		"mqtt":      "mqtt:\n  enabled: true\n",
		"runs":      "runs:\n  count: -2\n",
		"prom port": "metrics:\n  prometheus_port: \"90x1\"\n",
		"bus":       "metrics:\n  bus_buffer: -1\n",
		"api addr":  "api:\n  addr: \"localhost\"\n",
		"api port":  "api:\n  addr: \":70000\"\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, "config.yml", data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfig), "got %v", err)
		})
	}
}

func TestValidatePaths(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "taken")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	cfg := Default()
	cfg.Output.Dir = file
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)
	assert.Contains(t, err.Error(), "not a directory")

	cfg.Output.Disabled = true
	require.NoError(t, cfg.Validate())

	cfg.KPI.Path = dir
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kpi.path")

	cfg.KPI.Path = filepath.Join(dir, "kpi.db")
	cfg.Metrics.PrometheusPort = "127.0.0.1:9091"
	cfg.API.Addr = "0.0.0.0:8081"
	assert.NoError(t, cfg.Validate())
}

func TestClaimPolicyCorridorTolerance(t *testing.T) {
	path := writeConfig(t, "config.yaml", `tricycle:
  claim_policy:
    type: route_aware
routing:
  corridor_tolerance: 0.0003
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	pol, err := cfg.NewClaimPolicy(routing.StraightLine{}, nil, nil)
	require.NoError(t, err)
	ra, ok := pol.(*dispatch.RouteAware)
	require.True(t, ok, "got %T", pol)
	assert.InDelta(t, 0.0003, ra.Tolerance(), 1e-12)

	cfg.Tricycle.ClaimPolicy.Conf = map[string]any{"tolerance_deg": 0.0007}
	pol, err = cfg.NewClaimPolicy(routing.StraightLine{}, nil, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.0007, pol.(*dispatch.RouteAware).Tolerance(), 1e-12, "conf wins over the routing default")
}

func TestLoadKeepsZeroRadii(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.yaml", `tricycle:
  dropoff_radius: 0
  location_tolerance: 0
`))
	require.NoError(t, err)
	require.NotNil(t, cfg.Tricycle.DropoffRadius)
	assert.Zero(t, *cfg.Tricycle.DropoffRadius)
	assert.Zero(t, *cfg.Simulation.Tricycle.DropoffRadius)
	assert.Zero(t, *cfg.Simulation.Tricycle.LocationTolerance)

	cfg, err = Load(writeConfig(t, "config.yaml", "tricycle:\n  capacity: 2\n"))
	require.NoError(t, err)
	assert.Equal(t, fleet.DefaultDropoffRadius, *cfg.Simulation.Tricycle.DropoffRadius)
	assert.Equal(t, fleet.DefaultLocationTolerance, *cfg.Simulation.Tricycle.LocationTolerance)
}

func TestLoadUnsupportedFormat(t *testing.T) {
	_, err := Load(writeConfig(t, "config.toml", "x = 1"))
	assert.Error(t, err)
}

func TestEventLogModule(t *testing.T) {
	c := EventLogConfig{Backend: "rotating_jsonl"}
	c.SetDefaults()
	m := c.Module()
	assert.Equal(t, "rotating_jsonl", m.Type)
	assert.Equal(t, "output/events.jsonl", m.Conf["path"])
	assert.Equal(t, 5, m.Conf["max_backups"])

	pg := EventLogConfig{Backend: "postgres", DSN: "postgres://x"}
	assert.Equal(t, map[string]any{"dsn": "postgres://x"}, pg.Module().Conf)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1, cfg.Runs.Count)
	assert.Equal(t, fleet.DefaultCapacity, cfg.Simulation.Tricycle.Capacity)
}

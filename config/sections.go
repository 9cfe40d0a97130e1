package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/kilianp07/trikesim/core/metrics"
)

// OutputConfig controls the files written per run under Dir/<run id>.
type OutputConfig struct {
	Dir string `json:"dir"`
	// SkipEntities omits tricycles/<id>.json and passengers/<id>.json.
	SkipEntities bool `json:"skip_entities"`
	SkipCSV      bool `json:"skip_csv"`
	SkipReport   bool `json:"skip_report"`
	// Disabled skips every file.
	Disabled bool `json:"disabled"`
}

// SetDefaults fills zero fields.
func (c *OutputConfig) SetDefaults() {
	if c.Dir == "" {
		c.Dir = "output"
	}
}

// Validate checks that the output directory is usable.
func (c OutputConfig) Validate() error {
	if c.Disabled {
		return nil
	}
	if c.Dir == "" {
		return errors.New("output.dir is required")
	}
	if fi, err := os.Stat(c.Dir); err == nil && !fi.IsDir() {
		return fmt.Errorf("output.dir %s is not a directory", c.Dir)
	}
	return nil
}

// APIConfig configures the read-only results API.
type APIConfig struct {
	Addr string `json:"addr"`
}

// SetDefaults fills zero fields.
func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}

// Validate checks the listen address.
func (c APIConfig) Validate() error {
	if err := metrics.ValidateListenAddr(c.Addr); err != nil {
		return fmt.Errorf("api.addr: %w", err)
	}
	return nil
}

// RunsConfig repeats the scenario. Run i uses seed simulation.seed + i.
type RunsConfig struct {
	Count int `json:"count"`
}

// SetDefaults fills zero fields.
func (c *RunsConfig) SetDefaults() {
	if c.Count == 0 {
		c.Count = 1
	}
}

// Validate checks the run count.
func (c RunsConfig) Validate() error {
	if c.Count < 1 {
		return errors.New("runs.count must be at least 1")
	}
	return nil
}

// KPIConfig selects where per-vehicle KPIs are kept. An empty Path keeps
// them in memory for the lifetime of the process.
type KPIConfig struct {
	Path string `json:"path"`
}

// Validate rejects a KPI path naming a directory.
func (c KPIConfig) Validate() error {
	if c.Path == "" {
		return nil
	}
	if fi, err := os.Stat(c.Path); err == nil && fi.IsDir() {
		return fmt.Errorf("kpi.path %s is a directory", c.Path)
	}
	return nil
}

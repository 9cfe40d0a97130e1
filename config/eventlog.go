package config

import (
	"fmt"

	"github.com/kilianp07/trikesim/core/eventlog"
	"github.com/kilianp07/trikesim/core/factory"
)

// EventLogConfig defines where per-entity event logs are stored.
type EventLogConfig struct {
	// Backend selects the store: nop, memory, jsonl, rotating_jsonl, sqlite or postgres.
	Backend string `json:"backend"`
	// Path is the file location of file backed stores.
	Path string `json:"path"`
	// DSN is the postgres connection string.
	DSN string `json:"dsn"`
	// MaxSizeMB triggers rotation when the file exceeds this size in megabytes.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated files to keep.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated files older than this number of days.
	MaxAgeDays int `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *EventLogConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "jsonl"
	}
	if c.Path == "" {
		switch c.Backend {
		case "sqlite":
			c.Path = "output/events.db"
		default:
			c.Path = "output/events.jsonl"
		}
	}
	if c.MaxSizeMB == 0 {
		c.MaxSizeMB = 100
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = 5
	}
	if c.MaxAgeDays == 0 {
		c.MaxAgeDays = 30
	}
}

// Validate checks mandatory fields.
func (c EventLogConfig) Validate() error {
	if !eventlog.Known(c.Backend) {
		return fmt.Errorf("unknown event log backend %s", c.Backend)
	}
	if c.Backend == "postgres" && c.DSN == "" {
		return fmt.Errorf("event_log.dsn is required for postgres")
	}
	return nil
}

// Module returns the store definition understood by eventlog.New.
func (c EventLogConfig) Module() factory.ModuleConfig {
	conf := map[string]any{"path": c.Path}
	switch c.Backend {
	case "postgres":
		conf = map[string]any{"dsn": c.DSN}
	case "rotating_jsonl":
		conf["max_size_mb"] = c.MaxSizeMB
		conf["max_backups"] = c.MaxBackups
		conf["max_age_days"] = c.MaxAgeDays
	}
	return factory.ModuleConfig{Type: c.Backend, Conf: conf}
}

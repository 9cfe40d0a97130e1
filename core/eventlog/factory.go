package eventlog

import (
	"context"
	"errors"

	"github.com/kilianp07/trikesim/core/factory"
)

var registry = factory.NewRegistry[Store, context.Context]()

func init() {
	_ = Register("nop", func(map[string]any, context.Context) (Store, error) {
		return NopStore{}, nil
	})
	_ = Register("memory", func(map[string]any, context.Context) (Store, error) {
		return NewMemoryStore(), nil
	})
	_ = Register("jsonl", func(conf map[string]any, _ context.Context) (Store, error) {
		var c struct {
			Path string `json:"path"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			return nil, errors.New("jsonl event log: path required")
		}
		return NewJSONLStore(c.Path)
	})
	_ = Register("rotating_jsonl", func(conf map[string]any, _ context.Context) (Store, error) {
		c := struct {
			Path       string `json:"path"`
			MaxSizeMB  int    `json:"max_size_mb"`
			MaxBackups int    `json:"max_backups"`
			MaxAgeDays int    `json:"max_age_days"`
		}{MaxSizeMB: 100, MaxBackups: 5, MaxAgeDays: 30}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			return nil, errors.New("rotating_jsonl event log: path required")
		}
		return NewRotatingJSONLStore(c.Path, c.MaxSizeMB, c.MaxBackups, c.MaxAgeDays)
	})
	_ = Register("sqlite", func(conf map[string]any, _ context.Context) (Store, error) {
		var c struct {
			Path string `json:"path"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			return nil, errors.New("sqlite event log: path required")
		}
		return NewSQLiteStore(c.Path)
	})
	_ = Register("postgres", func(conf map[string]any, ctx context.Context) (Store, error) {
		var c struct {
			DSN string `json:"dsn"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.DSN == "" {
			return nil, errors.New("postgres event log: dsn required")
		}
		return NewPostgresStore(ctx, c.DSN)
	})
}

// Register adds a store factory identified by name.
func Register(name string, f factory.Factory[Store, context.Context]) error {
	return registry.Register(name, f)
}

// New opens the configured store. An empty type yields a NopStore.
func New(ctx context.Context, cfg factory.ModuleConfig) (Store, error) {
	if cfg.Type == "" {
		return NopStore{}, nil
	}
	return registry.Create(cfg, ctx)
}

// Known reports whether name is a registered store type.
func Known(name string) bool { return name == "" || registry.Has(name) }

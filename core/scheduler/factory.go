package scheduler

import (
	"github.com/kilianp07/trikesim/core/factory"
)

var registry = factory.NewRegistry[DropoffScheduler, struct{}]()

func init() {
	_ = Register("first_come", func(map[string]any, struct{}) (DropoffScheduler, error) {
		return FirstCome{}, nil
	})
	_ = Register("optimal", func(map[string]any, struct{}) (DropoffScheduler, error) {
		return Optimal{}, nil
	})
}

// Register adds a scheduler factory identified by name.
func Register(name string, f factory.Factory[DropoffScheduler, struct{}]) error {
	return registry.Register(name, f)
}

// New creates a scheduler from configuration. An empty type selects
// first_come.
func New(cfg factory.ModuleConfig) (DropoffScheduler, error) {
	if cfg.Type == "" {
		cfg.Type = "first_come"
	}
	return registry.Create(cfg, struct{}{})
}

// Known reports whether name is a registered scheduler type.
func Known(name string) bool { return name == "" || registry.Has(name) }

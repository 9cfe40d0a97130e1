package dispatch

import (
	"github.com/kilianp07/trikesim/core/factory"
	"github.com/kilianp07/trikesim/core/logger"
	"github.com/kilianp07/trikesim/core/routing"
)

// Env carries the collaborators claim policies may need.
type Env struct {
	Planner  routing.Planner
	Logger   logger.Logger
	Recorder RejectionRecorder
	// CorridorTolerance is used by route_aware when its conf leaves
	// tolerance_deg unset.
	CorridorTolerance float64
}

var registry = factory.NewRegistry[ClaimPolicy, Env]()

func init() {
	_ = Register("nearest", func(map[string]any, Env) (ClaimPolicy, error) {
		return Nearest{}, nil
	})
	_ = Register("route_aware", func(conf map[string]any, env Env) (ClaimPolicy, error) {
		var c struct {
			Tolerance float64 `json:"tolerance_deg"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Tolerance <= 0 {
			c.Tolerance = env.CorridorTolerance
		}
		return NewRouteAware(routing.NewCorridor(env.Planner, c.Tolerance), env.Logger, env.Recorder), nil
	})
}

// Register adds a claim policy factory identified by name.
func Register(name string, f factory.Factory[ClaimPolicy, Env]) error {
	return registry.Register(name, f)
}

// New creates a claim policy from configuration. An empty type selects
// nearest.
func New(cfg factory.ModuleConfig, env Env) (ClaimPolicy, error) {
	if cfg.Type == "" {
		cfg.Type = "nearest"
	}
	return registry.Create(cfg, env)
}

// Known reports whether name is a registered policy type.
func Known(name string) bool { return name == "" || registry.Has(name) }

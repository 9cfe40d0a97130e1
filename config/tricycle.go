package config

import (
	"errors"
	"fmt"

	"github.com/kilianp07/trikesim/core/dispatch"
	"github.com/kilianp07/trikesim/core/factory"
	"github.com/kilianp07/trikesim/core/fleet"
	"github.com/kilianp07/trikesim/core/logger"
	corerouting "github.com/kilianp07/trikesim/core/routing"
	"github.com/kilianp07/trikesim/core/scheduler"
)

// TricycleConfig is the template every generated vehicle is built from.
// Distances are metres, speed metres per second.
type TricycleConfig struct {
	Capacity      int     `json:"capacity"`
	Speed         float64 `json:"speed"`
	MaxCycles     int     `json:"max_cycles"`
	ServingRadius float64 `json:"serving_radius"`
	IdleRadius    float64 `json:"idle_radius"`
	// Unset radii take the fleet defaults; an explicit 0 is kept.
	DropoffRadius     *float64 `json:"dropoff_radius"`
	LocationTolerance *float64 `json:"location_tolerance"`

	// Scheduler picks the drop-off order: first_come or optimal.
	Scheduler factory.ModuleConfig `json:"scheduler"`
	// ClaimPolicy decides claims: nearest or route_aware.
	ClaimPolicy factory.ModuleConfig `json:"claim_policy"`
}

// SetDefaults fills zero fields.
func (c *TricycleConfig) SetDefaults() {
	f := c.Fleet(0)
	f.SetDefaults()
	c.Capacity = f.Capacity
	c.Speed = f.Speed
	c.MaxCycles = f.MaxCycles
	c.ServingRadius = f.ServingRadius
	c.IdleRadius = f.IdleRadius
	c.DropoffRadius = f.DropoffRadius
	c.LocationTolerance = f.LocationTolerance
	if c.Scheduler.Type == "" {
		c.Scheduler.Type = "first_come"
	}
	if c.ClaimPolicy.Type == "" {
		c.ClaimPolicy.Type = "nearest"
	}
}

// Validate checks values and module names.
func (c TricycleConfig) Validate() error {
	var errs []error
	f := c.Fleet(fleet.DefaultTickSeconds)
	f.ID = "template"
	if err := f.Validate(); err != nil {
		errs = append(errs, err)
	}
	if !scheduler.Known(c.Scheduler.Type) {
		errs = append(errs, fmt.Errorf("unknown scheduler %q", c.Scheduler.Type))
	}
	if c.Scheduler.Type == "optimal" && c.Capacity > scheduler.MaxOptimalPassengers {
		errs = append(errs, fmt.Errorf("optimal scheduler supports at most %d passengers, capacity is %d",
			scheduler.MaxOptimalPassengers, c.Capacity))
	}
	if !dispatch.Known(c.ClaimPolicy.Type) {
		errs = append(errs, fmt.Errorf("unknown claim policy %q", c.ClaimPolicy.Type))
	}
	return errors.Join(errs...)
}

// NewClaimPolicy builds the configured claim policy. routing.corridor_tolerance
// is the route_aware default when claim_policy.conf leaves tolerance_deg unset.
func (c Config) NewClaimPolicy(planner corerouting.Planner, log logger.Logger, rec dispatch.RejectionRecorder) (dispatch.ClaimPolicy, error) {
	return dispatch.New(c.Tricycle.ClaimPolicy, dispatch.Env{
		Planner:           planner,
		Logger:            log,
		Recorder:          rec,
		CorridorTolerance: c.Routing.CorridorTolerance,
	})
}

// Fleet converts the template to a fleet.Config for the given tick length.
func (c TricycleConfig) Fleet(tickSeconds float64) fleet.Config {
	return fleet.Config{
		Capacity:          c.Capacity,
		Speed:             c.Speed,
		TickSeconds:       tickSeconds,
		MaxCycles:         c.MaxCycles,
		ServingRadius:     c.ServingRadius,
		IdleRadius:        c.IdleRadius,
		DropoffRadius:     c.DropoffRadius,
		LocationTolerance: c.LocationTolerance,
	}
}

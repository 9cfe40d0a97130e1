package fleet

import (
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/kilianp07/trikesim/core/geo"
)

// Defaults used when a Config field is left at zero.
const (
	DefaultCapacity          = 3
	DefaultSpeed             = 5.556 // m/s, 20 km/h
	DefaultTickSeconds       = 1.0
	DefaultMaxCycles         = 3
	DefaultServingRadius     = 50.0
	DefaultIdleRadius        = 200.0
	DefaultDropoffRadius     = 20.0
	DefaultLocationTolerance = 2.0
)

// Config describes one vehicle.
type Config struct {
	ID          string
	Capacity    int
	Speed       float64 // metres per second
	TickSeconds float64
	Roaming     bool
	MaxCycles   int
	// ServingRadius is the enqueue radius while carrying passengers,
	// IdleRadius the one while empty. Both in metres.
	ServingRadius float64
	IdleRadius    float64
	// DropoffRadius and LocationTolerance select their default when nil.
	// Zero is a valid setting and requires an exact position match.
	DropoffRadius     *float64
	LocationTolerance *float64
	Start             geo.Point
	CreateTime        int64
}

// SetDefaults fills zero fields and nil radii.
func (c *Config) SetDefaults() {
	if c.Capacity == 0 {
		c.Capacity = DefaultCapacity
	}
	if c.Speed == 0 {
		c.Speed = DefaultSpeed
	}
	if c.TickSeconds == 0 {
		c.TickSeconds = DefaultTickSeconds
	}
	if c.MaxCycles == 0 {
		c.MaxCycles = DefaultMaxCycles
	}
	if c.ServingRadius == 0 {
		c.ServingRadius = DefaultServingRadius
	}
	if c.IdleRadius == 0 {
		c.IdleRadius = DefaultIdleRadius
	}
	if c.DropoffRadius == nil {
		c.DropoffRadius = lo.ToPtr(DefaultDropoffRadius)
	}
	if c.LocationTolerance == nil {
		c.LocationTolerance = lo.ToPtr(DefaultLocationTolerance)
	}
}

// Validate checks the configuration after defaults are applied.
func (c Config) Validate() error {
	var errs []error
	if c.ID == "" {
		errs = append(errs, errors.New("id required"))
	}
	if c.Capacity < 1 {
		errs = append(errs, fmt.Errorf("capacity must be positive, got %d", c.Capacity))
	}
	if c.Speed <= 0 || c.TickSeconds <= 0 {
		errs = append(errs, errors.New("speed and tick must be positive"))
	}
	if c.MaxCycles < 1 {
		errs = append(errs, errors.New("max cycles must be at least 1"))
	}
	if c.ServingRadius < 0 || c.IdleRadius < 0 || lo.FromPtr(c.DropoffRadius) < 0 || lo.FromPtr(c.LocationTolerance) < 0 {
		errs = append(errs, errors.New("radii must not be negative"))
	}
	return errors.Join(errs...)
}

func (c Config) dropoffRadius() float64 { return lo.FromPtrOr(c.DropoffRadius, DefaultDropoffRadius) }

func (c Config) locationTolerance() float64 {
	return lo.FromPtrOr(c.LocationTolerance, DefaultLocationTolerance)
}

package sim

import (
	"errors"
	"fmt"

	"github.com/kilianp07/trikesim/core/fleet"
	"github.com/kilianp07/trikesim/core/geo"
)

// ErrConfig marks a scenario that cannot be simulated. It is returned
// before the first tick.
var ErrConfig = errors.New("sim: invalid configuration")

// Defaults applied by SetDefaults.
const (
	DefaultHorizon           = 50000
	DefaultRoamAttempts      = 50
	DefaultPassengerAttempts = 50
)

// Default map bounds, a small district of Metro Manila.
var (
	DefaultBoundsMin = geo.NewPoint(121.0300, 14.5900)
	DefaultBoundsMax = geo.NewPoint(121.0650, 14.6250)
)

// Config describes one generated scenario. Points are [lon, lat].
type Config struct {
	Horizon     int64   `json:"horizon"`
	TickSeconds float64 `json:"tick_seconds"`
	Seed        int64   `json:"seed"`

	Tricycles  int `json:"tricycles"`
	Terminals  int `json:"terminals"`
	Passengers int `json:"passengers"`
	Hotspots   int `json:"hotspots"`

	RoamingTrikeChance  float64 `json:"roaming_trike_chance"`
	RoadPassengerChance float64 `json:"road_passenger_chance"`
	// Relative weights per terminal; empty means uniform.
	TerminalPassengerWeights []float64 `json:"terminal_passenger_weights"`
	TerminalTrikeWeights     []float64 `json:"terminal_trike_weights"`

	UseFixedHotspots  bool        `json:"use_fixed_hotspots"`
	UseFixedTerminals bool        `json:"use_fixed_terminals"`
	FixedHotspots     []geo.Point `json:"fixed_hotspots"`
	FixedTerminals    []geo.Point `json:"fixed_terminals"`

	BoundsMin geo.Point `json:"bounds_min"`
	BoundsMax geo.Point `json:"bounds_max"`
	// TerminalCapacity applies to generated terminals; zero means unlimited.
	TerminalCapacity  int `json:"terminal_capacity"`
	RoamAttempts      int `json:"roam_attempts"`
	PassengerAttempts int `json:"passenger_attempts"`

	// Tricycle is the template every vehicle is built from. ID, Start,
	// Roaming and CreateTime are set per vehicle.
	Tricycle fleet.Config `json:"-"`
}

// SetDefaults fills zero fields.
func (c *Config) SetDefaults() {
	if c.Horizon == 0 {
		c.Horizon = DefaultHorizon
	}
	if c.TickSeconds == 0 {
		c.TickSeconds = fleet.DefaultTickSeconds
	}
	if c.BoundsMin == (geo.Point{}) && c.BoundsMax == (geo.Point{}) {
		c.BoundsMin, c.BoundsMax = DefaultBoundsMin, DefaultBoundsMax
	}
	if c.TerminalCapacity == 0 && !c.UseFixedTerminals {
		c.TerminalCapacity = fleet.RandomTerminalCapacity
	}
	if c.RoamAttempts == 0 {
		c.RoamAttempts = DefaultRoamAttempts
	}
	if c.PassengerAttempts == 0 {
		c.PassengerAttempts = DefaultPassengerAttempts
	}
	c.Tricycle.TickSeconds = c.TickSeconds
	c.Tricycle.SetDefaults()
}

// Validate reports every problem found, wrapped in ErrConfig.
func (c Config) Validate() error {
	var errs []error
	if c.Horizon <= 0 || c.TickSeconds <= 0 {
		errs = append(errs, errors.New("horizon and tick_seconds must be positive"))
	}
	if c.Tricycles < 0 || c.Terminals < 0 || c.Passengers < 0 || c.Hotspots < 0 {
		errs = append(errs, errors.New("counts must not be negative"))
	}
	for name, v := range map[string]float64{
		"roaming_trike_chance":  c.RoamingTrikeChance,
		"road_passenger_chance": c.RoadPassengerChance,
	} {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s must be within [0,1], got %g", name, v))
		}
	}
	terminals := c.TerminalCount()
	if terminals == 0 {
		if c.Tricycles > 0 && c.RoamingTrikeChance < 1 {
			errs = append(errs, errors.New("non-roaming tricycles need at least one terminal"))
		}
		if c.Passengers > 0 && c.RoadPassengerChance < 1 {
			errs = append(errs, errors.New("terminal passengers need at least one terminal"))
		}
	}
	if err := checkWeights("terminal_passenger_weights", c.TerminalPassengerWeights, terminals); err != nil {
		errs = append(errs, err)
	}
	if err := checkWeights("terminal_trike_weights", c.TerminalTrikeWeights, terminals); err != nil {
		errs = append(errs, err)
	}
	if c.UseFixedHotspots && len(c.FixedHotspots) == 0 {
		errs = append(errs, errors.New("use_fixed_hotspots set without fixed_hotspots"))
	}
	if !c.UseFixedHotspots && c.Hotspots == 0 && c.Tricycles > 0 && c.RoamingTrikeChance > 0 {
		errs = append(errs, errors.New("roaming tricycles need at least one hotspot"))
	}
	if c.BoundsMin.X() >= c.BoundsMax.X() || c.BoundsMin.Y() >= c.BoundsMax.Y() {
		errs = append(errs, errors.New("bounds_min must be below bounds_max"))
	}
	if c.TerminalCapacity < 0 || c.RoamAttempts < 1 || c.PassengerAttempts < 1 {
		errs = append(errs, errors.New("terminal_capacity and attempt limits must be positive"))
	}
	tpl := c.Tricycle
	tpl.ID = "template"
	if err := tpl.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tricycle: %w", err))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrConfig, errors.Join(errs...))
}

// TerminalCount is the number of terminals the scenario will hold.
func (c Config) TerminalCount() int {
	if c.UseFixedTerminals {
		return len(c.FixedTerminals)
	}
	return c.Terminals
}

func checkWeights(name string, w []float64, terminals int) error {
	if len(w) == 0 {
		return nil
	}
	if len(w) != terminals {
		return fmt.Errorf("%s has %d entries for %d terminals", name, len(w), terminals)
	}
	sum := 0.0
	for _, v := range w {
		if v < 0 {
			return fmt.Errorf("%s must not contain negative weights", name)
		}
		sum += v
	}
	if sum <= 0 {
		return fmt.Errorf("%s must not sum to zero", name)
	}
	return nil
}

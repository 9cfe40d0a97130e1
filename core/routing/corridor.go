package routing

import (
	"context"
	"fmt"

	"github.com/kilianp07/trikesim/core/geo"
)

// DefaultCorridorTolerance is the corridor width in degrees.
const DefaultCorridorTolerance = 0.0001

// Corridor tests whether a point lies along the route between two others.
type Corridor struct {
	Planner   Planner
	Tolerance float64
}

// NewCorridor returns a corridor test using p. A non-positive tolerance
// selects DefaultCorridorTolerance.
func NewCorridor(p Planner, tolerance float64) *Corridor {
	if tolerance <= 0 {
		tolerance = DefaultCorridorTolerance
	}
	return &Corridor{Planner: p, Tolerance: tolerance}
}

// IsOnRoute reports whether candidate is within the tolerance of the route
// from a to b. All three points are snapped before the lookup. A failed
// route lookup is returned as an error; callers decide how to treat it.
func (c *Corridor) IsOnRoute(ctx context.Context, a, b, candidate geo.Point) (bool, error) {
	a, err := c.Planner.Snap(ctx, a)
	if err != nil {
		return false, fmt.Errorf("snap origin: %w", err)
	}
	b, err = c.Planner.Snap(ctx, b)
	if err != nil {
		return false, fmt.Errorf("snap target: %w", err)
	}
	candidate, err = c.Planner.Snap(ctx, candidate)
	if err != nil {
		return false, fmt.Errorf("snap candidate: %w", err)
	}
	route, err := c.Planner.FindRoute(ctx, a, b)
	if err != nil {
		return false, err
	}
	return route.DistanceFrom(candidate) < c.Tolerance, nil
}

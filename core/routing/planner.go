package routing

import (
	"context"
	"errors"
	"math"

	"github.com/kilianp07/trikesim/core/geo"
)

// ErrNoRoute signals that no path connects the requested points.
var ErrNoRoute = errors.New("routing: no route")

// Planner computes road routes between points.
type Planner interface {
	// FindRoute returns the ordered waypoints from a to b.
	FindRoute(ctx context.Context, a, b geo.Point) (geo.Path, error)
	// Snap moves p onto the routable network.
	Snap(ctx context.Context, p geo.Point) (geo.Point, error)
}

// StraightLine is an offline planner that routes along the straight segment
// between two points, adding intermediate waypoints every Step metres.
type StraightLine struct {
	Step float64
}

// FindRoute implements Planner.
func (s StraightLine) FindRoute(_ context.Context, a, b geo.Point) (geo.Path, error) {
	d := geo.Distance(a, b)
	n := 1
	if s.Step > 0 && d > s.Step {
		n = int(math.Ceil(d / s.Step))
	}
	path := make(geo.Path, 0, n+1)
	for i := 0; i <= n; i++ {
		path = append(path, geo.Interpolate(a, b, float64(i)/float64(n)))
	}
	path[n] = b
	return path, nil
}

// Snap implements Planner.
func (StraightLine) Snap(_ context.Context, p geo.Point) (geo.Point, error) { return p, nil }

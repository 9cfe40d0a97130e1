package sim

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/kilianp07/trikesim/core/geo"
	"github.com/kilianp07/trikesim/core/routing"
)

var errNoRoamPath = errors.New("sim: no routable roam path")

// sampler draws uniform points inside the map bounds and snaps them onto
// the road network.
type sampler struct {
	planner  routing.Planner
	rng      *rand.Rand
	min, max geo.Point
}

func (s *sampler) raw() geo.Point {
	x := s.min.X() + s.rng.Float64()*(s.max.X()-s.min.X())
	y := s.min.Y() + s.rng.Float64()*(s.max.Y()-s.min.Y())
	return geo.NewPoint(x, y)
}

// point returns one snapped random point.
func (s *sampler) point(ctx context.Context) (geo.Point, error) {
	return s.planner.Snap(ctx, s.raw())
}

// routable reports whether a route exists from a to b. Transport errors
// other than a missing route are returned.
func routable(ctx context.Context, p routing.Planner, a, b geo.Point) (bool, error) {
	path, err := p.FindRoute(ctx, a, b)
	switch {
	case errors.Is(err, routing.ErrNoRoute):
		return false, nil
	case err != nil:
		return false, err
	}
	return len(path) >= 2, nil
}

// BackAndForth generates two-point roam cycles whose endpoints are
// routable in both directions.
type BackAndForth struct {
	s        *sampler
	attempts int
}

// NewBackAndForth returns a generator drawing from the given bounds.
func NewBackAndForth(planner routing.Planner, rng *rand.Rand, min, max geo.Point, attempts int) *BackAndForth {
	if attempts < 1 {
		attempts = DefaultRoamAttempts
	}
	return &BackAndForth{s: &sampler{planner: planner, rng: rng, min: min, max: max}, attempts: attempts}
}

// NewRoamPath implements fleet.RoamPathGenerator.
func (b *BackAndForth) NewRoamPath(ctx context.Context) (*geo.Cycle, error) {
	var lastErr error
	for i := 0; i < b.attempts; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		from, err := b.s.point(ctx)
		if err != nil {
			lastErr = err
			continue
		}
		to, err := b.s.point(ctx)
		if err != nil {
			lastErr = err
			continue
		}
		if geo.Distance(from, to) == 0 {
			continue
		}
		ok, err := routable(ctx, b.s.planner, from, to)
		if err == nil && ok {
			ok, err = routable(ctx, b.s.planner, to, from)
		}
		if err != nil {
			lastErr = err
		}
		if ok && err == nil {
			return geo.NewCycle(from, to)
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("%w after %d attempts: %w", errNoRoamPath, b.attempts, lastErr)
	}
	return nil, fmt.Errorf("%w after %d attempts", errNoRoamPath, b.attempts)
}

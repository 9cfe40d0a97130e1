package sim

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/kilianp07/trikesim/core/dispatch"
	"github.com/kilianp07/trikesim/core/fleet"
	"github.com/kilianp07/trikesim/core/geo"
	"github.com/kilianp07/trikesim/core/logger"
	"github.com/kilianp07/trikesim/core/model"
	"github.com/kilianp07/trikesim/core/routing"
	"github.com/kilianp07/trikesim/core/scheduler"
	"github.com/kilianp07/trikesim/core/spatial"
)

// WorldDeps are the collaborators a world is built with.
type WorldDeps struct {
	Planner   routing.Planner
	Scheduler scheduler.DropoffScheduler
	Claims    dispatch.ClaimPolicy
	// Hotspots caches fixed hotspots across runs; nil builds a private one.
	Hotspots *HotspotCache
	// Roam overrides the random back-and-forth generator.
	Roam   fleet.RoamPathGenerator
	Logger logger.Logger
}

// World is the generated population of one run.
type World struct {
	Map        *spatial.Map
	Hotspots   []geo.Point
	Terminals  []*fleet.Terminal
	Tricycles  []*fleet.Tricycle
	Passengers []*model.Passenger
	Claims     dispatch.ClaimPolicy
}

// Builder generates worlds from a scenario configuration.
type Builder struct {
	cfg  Config
	deps WorldDeps
	log  logger.Logger
}

// NewBuilder validates cfg and returns a builder. Every configuration
// problem is reported as ErrConfig.
func NewBuilder(cfg Config, deps WorldDeps) (*Builder, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Planner == nil {
		return nil, fmt.Errorf("%w: planner required", ErrConfig)
	}
	if deps.Scheduler == nil {
		deps.Scheduler = scheduler.FirstCome{}
	}
	if deps.Claims == nil {
		deps.Claims = dispatch.Nearest{}
	}
	if _, ok := deps.Scheduler.(scheduler.Optimal); ok && cfg.Tricycle.Capacity > scheduler.MaxOptimalPassengers {
		return nil, fmt.Errorf("%w: optimal scheduler supports at most %d seats, got %d",
			ErrConfig, scheduler.MaxOptimalPassengers, cfg.Tricycle.Capacity)
	}
	log := logger.OrNop(deps.Logger)
	if deps.Hotspots == nil {
		deps.Hotspots = NewHotspotCache(deps.Planner, log)
	}
	return &Builder{cfg: cfg, deps: deps, log: log}, nil
}

// Config returns the configuration after defaults.
func (b *Builder) Config() Config { return b.cfg }

// Build generates hotspots, terminals, tricycles and passengers using rng.
func (b *Builder) Build(ctx context.Context, rng *rand.Rand) (*World, error) {
	cfg := b.cfg
	w := &World{Map: spatial.NewMap(cfg.BoundsMin, cfg.BoundsMax), Claims: b.deps.Claims}
	s := &sampler{planner: b.deps.Planner, rng: rng, min: cfg.BoundsMin, max: cfg.BoundsMax}

	var fixedHotspots []geo.Point
	if cfg.UseFixedHotspots {
		pts, err := b.deps.Hotspots.Resolve(ctx, cfg.FixedHotspots)
		if err != nil {
			return nil, err
		}
		fixedHotspots = pts
		w.Hotspots = pts
	} else {
		for i := 0; i < cfg.Hotspots; i++ {
			p, err := b.randomPoint(ctx, s)
			if err != nil {
				return nil, fmt.Errorf("hotspot %d: %w", i, err)
			}
			w.Hotspots = append(w.Hotspots, p)
		}
	}

	if err := b.buildTerminals(ctx, w, s); err != nil {
		return nil, err
	}

	roam := b.deps.Roam
	if roam == nil {
		roam = NewBackAndForth(b.deps.Planner, rng, cfg.BoundsMin, cfg.BoundsMax, cfg.RoamAttempts)
	}
	fdeps := fleet.Deps{
		Planner:   b.deps.Planner,
		Scheduler: b.deps.Scheduler,
		Claims:    b.deps.Claims,
		Map:       w.Map,
		Roam:      roam,
		Logger:    b.log,
	}
	for i := 0; i < cfg.Tricycles; i++ {
		if err := b.addTricycle(ctx, w, rng, fdeps, i); err != nil {
			return nil, err
		}
	}
	for i := 0; i < cfg.Passengers; i++ {
		if err := b.addPassenger(ctx, w, s, rng, fixedHotspots, i); err != nil {
			return nil, err
		}
	}
	b.log.Infof("world built: %d hotspots, %d terminals, %d tricycles, %d passengers",
		len(w.Hotspots), len(w.Terminals), len(w.Tricycles), len(w.Passengers))
	return w, nil
}

func (b *Builder) buildTerminals(ctx context.Context, w *World, s *sampler) error {
	if b.cfg.UseFixedTerminals {
		for i, loc := range b.cfg.FixedTerminals {
			w.Terminals = append(w.Terminals, fleet.NewTerminal(terminalID(i), loc, fleet.FixedTerminalCapacity))
		}
		return nil
	}
	for i := 0; i < b.cfg.Terminals; i++ {
		loc, err := b.randomPoint(ctx, s)
		if err != nil {
			return fmt.Errorf("terminal %d: %w", i, err)
		}
		w.Terminals = append(w.Terminals, fleet.NewTerminal(terminalID(i), loc, b.cfg.TerminalCapacity))
	}
	return nil
}

func (b *Builder) addTricycle(ctx context.Context, w *World, rng *rand.Rand, deps fleet.Deps, idx int) error {
	tc := b.cfg.Tricycle
	tc.ID = fmt.Sprintf("trike_%d", idx)
	tc.CreateTime = 0

	var home *fleet.Terminal
	if rng.Float64() < b.cfg.RoamingTrikeChance {
		tc.Roaming = true
		tc.Start = w.Hotspots[rng.Intn(len(w.Hotspots))]
	} else {
		home = w.Terminals[pickWeighted(rng, b.cfg.TerminalTrikeWeights, len(w.Terminals))]
		tc.Start = home.Location
	}
	v, err := fleet.New(tc, deps)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if tc.Roaming {
		if !v.NewRoamPath(ctx, 0) {
			b.log.Warnf("%s: no initial roam path", tc.ID)
		}
	} else if !home.AddTricycle(v) {
		b.log.Debugf("%s: terminal %s is full, starting idle", tc.ID, home.ID)
	}
	w.Tricycles = append(w.Tricycles, v)
	return nil
}

func (b *Builder) addPassenger(ctx context.Context, w *World, s *sampler, rng *rand.Rand, hotspots []geo.Point, idx int) error {
	id := fmt.Sprintf("passenger_%d", idx)
	dest := func() (geo.Point, error) {
		if len(hotspots) > 0 {
			return hotspots[rng.Intn(len(hotspots))], nil
		}
		return s.point(ctx)
	}

	if rng.Float64() < b.cfg.RoadPassengerChance {
		for attempt := 0; attempt < b.cfg.PassengerAttempts; attempt++ {
			src, err := s.point(ctx)
			if err != nil {
				continue
			}
			dst, err := dest()
			if err != nil {
				continue
			}
			ok, err := routable(ctx, b.deps.Planner, src, dst)
			if err != nil && ctx.Err() != nil {
				return ctx.Err()
			}
			if !ok || err != nil {
				continue
			}
			p := model.NewPassenger(id, src, dst, 0)
			w.Map.AddPassenger(p)
			w.Passengers = append(w.Passengers, p)
			return nil
		}
		return fmt.Errorf("%s: no routable trip after %d attempts", id, b.cfg.PassengerAttempts)
	}

	t := w.Terminals[pickWeighted(rng, b.cfg.TerminalPassengerWeights, len(w.Terminals))]
	dst, err := dest()
	if err != nil {
		return fmt.Errorf("%s: %w", id, err)
	}
	p := model.NewPassenger(id, t.Location, dst, 0)
	t.AddPassenger(p)
	w.Map.AddPassenger(p)
	w.Passengers = append(w.Passengers, p)
	return nil
}

// randomPoint retries snapping until the attempt budget is spent.
func (b *Builder) randomPoint(ctx context.Context, s *sampler) (geo.Point, error) {
	var lastErr error = errors.New("no attempts")
	for i := 0; i < b.cfg.PassengerAttempts; i++ {
		p, err := s.point(ctx)
		if err == nil {
			return p, nil
		}
		if ctx.Err() != nil {
			return geo.Point{}, ctx.Err()
		}
		lastErr = err
	}
	return geo.Point{}, fmt.Errorf("no snappable point: %w", lastErr)
}

// pickWeighted draws an index from relative weights, uniformly when
// weights is empty.
func pickWeighted(rng *rand.Rand, weights []float64, n int) int {
	if len(weights) == 0 {
		return rng.Intn(n)
	}
	total := 0.0
	for _, w := range weights {
		total += w
	}
	x := rng.Float64() * total
	for i, w := range weights {
		if x < w {
			return i
		}
		x -= w
	}
	return len(weights) - 1
}

func terminalID(i int) string { return fmt.Sprintf("terminal_%d", i) }

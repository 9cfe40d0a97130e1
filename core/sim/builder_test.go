package sim

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/trikesim/core/fleet"
	"github.com/kilianp07/trikesim/core/geo"
	"github.com/kilianp07/trikesim/core/model"
	"github.com/kilianp07/trikesim/core/routing"
	"github.com/kilianp07/trikesim/core/scheduler"
)

// countingPlanner counts snaps and can refuse listed points or every route.
type countingPlanner struct {
	routing.StraightLine
	snaps    int
	noSnap   map[geo.Point]bool
	noRoutes bool
}

func (c *countingPlanner) Snap(_ context.Context, p geo.Point) (geo.Point, error) {
	c.snaps++
	if c.noSnap[p] {
		return geo.Point{}, routing.ErrNoRoute
	}
	return p, nil
}

func (c *countingPlanner) FindRoute(ctx context.Context, a, b geo.Point) (geo.Path, error) {
	if c.noRoutes {
		return nil, routing.ErrNoRoute
	}
	return c.StraightLine.FindRoute(ctx, a, b)
}

func TestConfigValidate(t *testing.T) {
	base := func() Config {
		c := Config{Tricycles: 2, Terminals: 1, Passengers: 3, Hotspots: 1, RoamingTrikeChance: 0.5, RoadPassengerChance: 0.5}
		c.SetDefaults()
		return c
	}
	require.NoError(t, base().Validate())

	cases := map[string]func(*Config){
		"negative count":      func(c *Config) { c.Passengers = -1 },
		"chance out of range": func(c *Config) { c.RoadPassengerChance = 1.5 },
		"no terminal for idle trikes": func(c *Config) {
			c.Terminals = 0
			c.RoadPassengerChance = 1
		},
		"no terminal for terminal passengers": func(c *Config) {
			c.Terminals = 0
			c.RoamingTrikeChance = 1
		},
		"weights mismatch":    func(c *Config) { c.TerminalPassengerWeights = []float64{0.5, 0.5} },
		"zero weights":        func(c *Config) { c.TerminalTrikeWeights = []float64{0} },
		"fixed without list":  func(c *Config) { c.UseFixedHotspots = true },
		"inverted bounds":     func(c *Config) { c.BoundsMin, c.BoundsMax = c.BoundsMax, c.BoundsMin },
		"bad tricycle":        func(c *Config) { c.Tricycle.Capacity = -2 },
		"roamers without hub": func(c *Config) { c.Hotspots = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base()
			mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfig)
		})
	}
}

func TestNewBuilderRejectsOversizedOptimal(t *testing.T) {
	cfg := Config{Tricycles: 1, Hotspots: 1, RoamingTrikeChance: 1, Tricycle: fleet.Config{Capacity: scheduler.MaxOptimalPassengers + 1}}
	_, err := NewBuilder(cfg, WorldDeps{Planner: routing.StraightLine{}, Scheduler: scheduler.Optimal{}})
	assert.ErrorIs(t, err, ErrConfig)

	cfg.Tricycle.Capacity = scheduler.MaxOptimalPassengers
	_, err = NewBuilder(cfg, WorldDeps{Planner: routing.StraightLine{}, Scheduler: scheduler.Optimal{}})
	assert.NoError(t, err)
}

func TestHotspotCacheResolvesOnce(t *testing.T) {
	bad := geo.NewPoint(121.05, 14.61)
	p := &countingPlanner{noSnap: map[geo.Point]bool{bad: true}}
	cache := NewHotspotCache(p, nil)
	raw := []geo.Point{ptA, bad, ptC}

	got, err := cache.Resolve(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, []geo.Point{ptA, ptC}, got)
	assert.Equal(t, 3, p.snaps)

	again, err := cache.Resolve(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, got, again)
	assert.Equal(t, 3, p.snaps, "second resolve must not snap again")
	assert.Equal(t, 2, cache.Len())

	_, err = NewHotspotCache(p, nil).Resolve(context.Background(), []geo.Point{bad})
	assert.ErrorIs(t, err, ErrConfig)
}

func TestBackAndForth(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	gen := NewBackAndForth(routing.StraightLine{}, rng, DefaultBoundsMin, DefaultBoundsMax, 5)
	c, err := gen.NewRoamPath(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())
	assert.NotEqual(t, c.Start(), c.End())

	blocked := NewBackAndForth(&countingPlanner{noRoutes: true}, rng, DefaultBoundsMin, DefaultBoundsMax, 4)
	_, err = blocked.NewRoamPath(context.Background())
	assert.True(t, errors.Is(err, errNoRoamPath))
}

func TestPickWeighted(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		assert.Equal(t, 1, pickWeighted(rng, []float64{0, 2, 0}, 3))
	}
	counts := make([]int, 2)
	for i := 0; i < 2000; i++ {
		counts[pickWeighted(rng, []float64{3, 1}, 2)]++
	}
	assert.Greater(t, counts[0], counts[1]*2)
}

func TestBuildUsesFixedHotspotsAndTerminals(t *testing.T) {
	cfg := Config{
		Tricycles:           4,
		Passengers:          10,
		RoamingTrikeChance:  0.5,
		RoadPassengerChance: 0.5,
		UseFixedHotspots:    true,
		FixedHotspots:       []geo.Point{ptB, ptD},
		UseFixedTerminals:   true,
		FixedTerminals:      []geo.Point{ptA},
	}
	cache := NewHotspotCache(routing.StraightLine{}, nil)
	b, err := NewBuilder(cfg, WorldDeps{Planner: routing.StraightLine{}, Hotspots: cache})
	require.NoError(t, err)
	w, err := b.Build(context.Background(), rand.New(rand.NewSource(11)))
	require.NoError(t, err)

	require.Len(t, w.Terminals, 1)
	assert.Equal(t, fleet.FixedTerminalCapacity, w.Terminals[0].Capacity)
	assert.Equal(t, []geo.Point{ptB, ptD}, w.Hotspots)
	for _, p := range w.Passengers {
		assert.Contains(t, w.Hotspots, p.Dest, p.ID)
		if p.Terminal != "" {
			assert.Equal(t, ptA, p.Src)
		}
	}
	for _, v := range w.Tricycles {
		if v.Roaming() {
			assert.Contains(t, w.Hotspots, v.Path()[0])
			assert.NotNil(t, v.RoamPath())
			continue
		}
		assert.Equal(t, model.TricycleTerminal, v.Status())
	}
	assert.Equal(t, 2, cache.Len())
}

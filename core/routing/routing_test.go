package routing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/trikesim/core/geo"
)

type countingPlanner struct {
	calls int
	route geo.Path
	err   error
}

func (c *countingPlanner) FindRoute(context.Context, geo.Point, geo.Point) (geo.Path, error) {
	c.calls++
	return c.route, c.err
}

func (c *countingPlanner) Snap(_ context.Context, p geo.Point) (geo.Point, error) { return p, nil }

func TestStraightLineSplitsSegments(t *testing.T) {
	a, b := geo.NewPoint(121, 14.6), geo.NewPoint(121, 14.601)
	path, err := StraightLine{Step: 30}.FindRoute(context.Background(), a, b)
	require.NoError(t, err)
	// ~111 m split every 30 m.
	assert.Len(t, path, 5)
	assert.Equal(t, a, path[0])
	assert.Equal(t, b, path[len(path)-1])
	assert.InDelta(t, geo.Distance(a, b), path.Length(), 1e-6)

	path, err = StraightLine{}.FindRoute(context.Background(), a, b)
	require.NoError(t, err)
	assert.Equal(t, geo.Path{a, b}, path)
}

func TestCorridorIsOnRoute(t *testing.T) {
	c := NewCorridor(StraightLine{}, 0)
	ctx := context.Background()
	a, b := geo.NewPoint(121, 14.6), geo.NewPoint(121.01, 14.6)

	on, err := c.IsOnRoute(ctx, a, b, geo.NewPoint(121.005, 14.60005))
	require.NoError(t, err)
	assert.True(t, on)

	on, err = c.IsOnRoute(ctx, a, b, geo.NewPoint(121.005, 14.601))
	require.NoError(t, err)
	assert.False(t, on)
}

func TestCorridorLookupFailure(t *testing.T) {
	c := NewCorridor(&countingPlanner{err: ErrNoRoute}, 0)
	on, err := c.IsOnRoute(context.Background(), geo.NewPoint(0, 0), geo.NewPoint(1, 0), geo.NewPoint(0.5, 0))
	assert.False(t, on)
	assert.ErrorIs(t, err, ErrNoRoute)
}

func TestCachedPlannerMemoisesRoutesAndMisses(t *testing.T) {
	ctx := context.Background()
	inner := &countingPlanner{route: geo.Path{geo.NewPoint(0, 0), geo.NewPoint(1, 0)}}
	cache := NewMemoryCache()
	p := NewCachedPlanner(inner, cache, nil)

	for i := 0; i < 3; i++ {
		r, err := p.FindRoute(ctx, geo.NewPoint(0, 0), geo.NewPoint(1, 0))
		require.NoError(t, err)
		assert.Len(t, r, 2)
	}
	assert.Equal(t, 1, inner.calls)

	inner.err = ErrNoRoute
	for i := 0; i < 2; i++ {
		_, err := p.FindRoute(ctx, geo.NewPoint(5, 5), geo.NewPoint(6, 6))
		assert.True(t, errors.Is(err, ErrNoRoute))
	}
	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 2, cache.Len())
}

func TestCachedPlannerDoesNotCacheTransportErrors(t *testing.T) {
	inner := &countingPlanner{err: errors.New("boom")}
	p := NewCachedPlanner(inner, NewMemoryCache(), nil)
	for i := 0; i < 2; i++ {
		if _, err := p.FindRoute(context.Background(), geo.NewPoint(0, 0), geo.NewPoint(1, 0)); err == nil {
			t.Fatal("expected error")
		}
	}
	if inner.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", inner.calls)
	}
}

package dispatch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/trikesim/core/factory"
	"github.com/kilianp07/trikesim/core/geo"
	"github.com/kilianp07/trikesim/core/model"
	"github.com/kilianp07/trikesim/core/routing"
)

type noRoutePlanner struct{ routing.StraightLine }

func (noRoutePlanner) FindRoute(context.Context, geo.Point, geo.Point) (geo.Path, error) {
	return nil, routing.ErrNoRoute
}

type recorder struct{ reasons []string }

func (r *recorder) RecordClaimRejection(_ string, reason string) { r.reasons = append(r.reasons, reason) }

func candidate(onboard int, next *geo.Point, dest geo.Point) Candidate {
	return Candidate{
		VehicleID: "trike_0",
		Position:  geo.NewPoint(121, 14.6),
		Next:      next,
		Onboard:   onboard,
		Passenger: model.NewPassenger("p", geo.NewPoint(121.0001, 14.6), dest, 0),
	}
}

func TestNearestAlwaysClaims(t *testing.T) {
	assert.True(t, Nearest{}.ShouldClaim(context.Background(), candidate(2, nil, geo.NewPoint(0, 0))))
}

func TestRouteAware(t *testing.T) {
	next := geo.NewPoint(121.01, 14.6)
	onWay := geo.NewPoint(121.005, 14.6)
	offWay := geo.NewPoint(121.005, 14.61)
	rec := &recorder{}
	p := NewRouteAware(routing.NewCorridor(routing.StraightLine{}, 0), nil, rec)
	ctx := context.Background()

	tests := []struct {
		name string
		c    Candidate
		want bool
	}{
		{"empty vehicle claims anything", candidate(0, nil, offWay), true},
		{"on the way", candidate(1, &next, onWay), true},
		{"off the way", candidate(1, &next, offWay), false},
		{"no next waypoint", candidate(1, nil, onWay), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.ShouldClaim(ctx, tt.c))
		})
	}
	assert.Equal(t, []string{ReasonNotOnWay, ReasonNoNext}, rec.reasons)
}

func TestRouteAwareFailsClosedOnLookupError(t *testing.T) {
	next := geo.NewPoint(121.01, 14.6)
	p := NewRouteAware(routing.NewCorridor(noRoutePlanner{}, 0), nil, nil)
	if p.ShouldClaim(context.Background(), candidate(1, &next, geo.NewPoint(121.005, 14.6))) {
		t.Fatal("expected rejection when the corridor lookup fails")
	}
	stats := p.Rejections()
	if stats[ReasonLookupFailed] != 1 || stats[ReasonNotOnWay] != 0 {
		t.Fatalf("unexpected stats %v", stats)
	}
}

func TestNewFromConfig(t *testing.T) {
	pol, err := New(factory.ModuleConfig{}, Env{})
	require.NoError(t, err)
	assert.IsType(t, Nearest{}, pol)

	pol, err = New(factory.ModuleConfig{Type: "route_aware", Conf: map[string]any{"tolerance_deg": 0.0002}}, Env{Planner: routing.StraightLine{}})
	require.NoError(t, err)
	ra, ok := pol.(*RouteAware)
	require.True(t, ok)
	assert.InDelta(t, 0.0002, ra.corridor.Tolerance, 1e-12)

	pol, err = New(factory.ModuleConfig{Type: "route_aware"}, Env{Planner: routing.StraightLine{}, CorridorTolerance: 0.0005})
	require.NoError(t, err)
	assert.InDelta(t, 0.0005, pol.(*RouteAware).Tolerance(), 1e-12)

	pol, err = New(factory.ModuleConfig{Type: "route_aware"}, Env{Planner: routing.StraightLine{}})
	require.NoError(t, err)
	assert.InDelta(t, routing.DefaultCorridorTolerance, pol.(*RouteAware).Tolerance(), 1e-12)
}

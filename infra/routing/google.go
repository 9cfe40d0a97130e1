package routing

import (
	"context"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"

	"github.com/kilianp07/trikesim/core/geo"
	"github.com/kilianp07/trikesim/core/logger"
	"github.com/kilianp07/trikesim/core/routing"
)

// GoogleConfig configures the Google Maps planner.
type GoogleConfig struct {
	APIKey string `json:"api_key"`
	// BaseURL overrides the API host, mainly for tests.
	BaseURL string `json:"base_url"`
	Mode    string `json:"mode"`
}

// GooglePlanner routes with the Directions API and snaps with the Roads API.
type GooglePlanner struct {
	client *maps.Client
	mode   maps.Mode
	log    logger.Logger
}

// NewGooglePlanner creates a planner with the given API key.
func NewGooglePlanner(cfg GoogleConfig, log logger.Logger) (*GooglePlanner, error) {
	opts := []maps.ClientOption{maps.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, maps.WithBaseURL(cfg.BaseURL))
	}
	client, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	mode := maps.TravelModeDriving
	if cfg.Mode != "" {
		mode = maps.Mode(cfg.Mode)
	}
	return &GooglePlanner{client: client, mode: mode, log: logger.OrNop(log)}, nil
}

func latLng(p geo.Point) string {
	return fmt.Sprintf("%.7f,%.7f", p[1], p[0])
}

// noResult reports the Directions statuses meaning the trip is impossible.
func noResult(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "ZERO_RESULTS") || strings.Contains(msg, "NOT_FOUND")
}

// FindRoute implements routing.Planner. The overview polyline is decoded
// into the path.
func (g *GooglePlanner) FindRoute(ctx context.Context, a, b geo.Point) (geo.Path, error) {
	r := &maps.DirectionsRequest{
		Origin:      latLng(a),
		Destination: latLng(b),
		Mode:        g.mode,
	}
	routes, _, err := g.client.Directions(ctx, r)
	if err != nil {
		if noResult(err) {
			return nil, routing.ErrNoRoute
		}
		return nil, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 {
		return nil, routing.ErrNoRoute
	}
	pts, err := routes[0].OverviewPolyline.Decode()
	if err != nil {
		return nil, fmt.Errorf("decode polyline: %w", err)
	}
	if len(pts) == 0 {
		return nil, routing.ErrNoRoute
	}
	path := make(geo.Path, len(pts))
	for i, ll := range pts {
		path[i] = geo.NewPoint(ll.Lng, ll.Lat)
	}
	return path, nil
}

// Snap implements routing.Planner with SnapToRoad.
func (g *GooglePlanner) Snap(ctx context.Context, p geo.Point) (geo.Point, error) {
	resp, err := g.client.SnapToRoad(ctx, &maps.SnapToRoadRequest{
		Path: []maps.LatLng{{Lat: p[1], Lng: p[0]}},
	})
	if err != nil {
		return geo.Point{}, fmt.Errorf("snap to road: %w", err)
	}
	if len(resp.SnappedPoints) == 0 {
		g.log.Debugf("no road near %s", latLng(p))
		return geo.Point{}, routing.ErrNoRoute
	}
	loc := resp.SnappedPoints[0].Location
	return geo.NewPoint(loc.Lng, loc.Lat), nil
}

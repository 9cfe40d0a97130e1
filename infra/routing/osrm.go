package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/kilianp07/trikesim/auth"
	"github.com/kilianp07/trikesim/core/geo"
	"github.com/kilianp07/trikesim/core/logger"
	"github.com/kilianp07/trikesim/core/routing"
)

// OSRMPlanner queries an OSRM HTTP server. FindRoute snaps both ends to the
// road network before asking for the driving route.
type OSRMPlanner struct {
	base    string
	profile string
	client  *http.Client
	log     logger.Logger
}

// OSRMConfig configures the OSRM planner.
type OSRMConfig struct {
	URL            string `json:"url"`
	Profile        string `json:"profile"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	// Auth fetches bearer tokens for servers behind an OAuth2 gateway.
	Auth auth.Conf `json:"auth"`
}

// NewOSRMPlanner returns a planner for the server at cfg.URL.
func NewOSRMPlanner(cfg OSRMConfig, log logger.Logger) (*OSRMPlanner, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("osrm: url is required")
	}
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, fmt.Errorf("osrm: %w", err)
	}
	if cfg.Profile == "" {
		cfg.Profile = "driving"
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 10
	}
	client := &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}
	if cfg.Auth.Enabled() {
		client = cfg.Auth.HTTPClient(context.Background(), client)
	}
	return &OSRMPlanner{
		base:    strings.TrimSuffix(cfg.URL, "/"),
		profile: cfg.Profile,
		client:  client,
		log:     logger.OrNop(log),
	}, nil
}

type osrmNearest struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Waypoints []struct {
		Location [2]float64 `json:"location"`
	} `json:"waypoints"`
}

type osrmRoute struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Distance float64           `json:"distance"`
		Geometry *geojson.Geometry `json:"geometry"`
	} `json:"routes"`
}

func (o *OSRMPlanner) get(ctx context.Context, service, coords string, query url.Values, out any) error {
	u := fmt.Sprintf("%s/%s/v1/%s/%s", o.base, service, o.profile, coords)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("osrm %s: %w", service, err)
	}
	defer resp.Body.Close()
	// OSRM reports NoRoute and NoSegment with a 400 and a JSON body.
	if resp.StatusCode >= 500 {
		return fmt.Errorf("osrm %s: status %d", service, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("osrm %s: decode: %w", service, err)
	}
	return nil
}

func coord(p geo.Point) string {
	return fmt.Sprintf("%.6f,%.6f", p[0], p[1])
}

// Snap implements routing.Planner with the nearest service.
func (o *OSRMPlanner) Snap(ctx context.Context, p geo.Point) (geo.Point, error) {
	var res osrmNearest
	if err := o.get(ctx, "nearest", coord(p), nil, &res); err != nil {
		return geo.Point{}, err
	}
	switch res.Code {
	case "Ok":
	case "NoSegment":
		return geo.Point{}, routing.ErrNoRoute
	default:
		return geo.Point{}, fmt.Errorf("osrm nearest: %s %s", res.Code, res.Message)
	}
	if len(res.Waypoints) == 0 {
		return geo.Point{}, routing.ErrNoRoute
	}
	loc := res.Waypoints[0].Location
	return geo.NewPoint(loc[0], loc[1]), nil
}

// FindRoute implements routing.Planner with the route service.
func (o *OSRMPlanner) FindRoute(ctx context.Context, a, b geo.Point) (geo.Path, error) {
	sa, err := o.Snap(ctx, a)
	if err != nil {
		return nil, err
	}
	sb, err := o.Snap(ctx, b)
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("overview", "full")
	q.Set("geometries", "geojson")
	var res osrmRoute
	if err := o.get(ctx, "route", coord(sa)+";"+coord(sb), q, &res); err != nil {
		return nil, err
	}
	switch res.Code {
	case "Ok":
	case "NoRoute", "NoSegment":
		return nil, routing.ErrNoRoute
	default:
		return nil, fmt.Errorf("osrm route: %s %s", res.Code, res.Message)
	}
	if len(res.Routes) == 0 || res.Routes[0].Geometry == nil {
		return nil, routing.ErrNoRoute
	}
	ls, ok := res.Routes[0].Geometry.Geometry().(orb.LineString)
	if !ok || len(ls) == 0 {
		return nil, fmt.Errorf("osrm route: unexpected geometry %s", res.Routes[0].Geometry.Type)
	}
	path := make(geo.Path, len(ls))
	copy(path, ls)
	o.log.Debugf("osrm route %s -> %s: %d points, %.0fm", coord(sa), coord(sb), len(path), res.Routes[0].Distance)
	return path, nil
}

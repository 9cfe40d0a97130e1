package routing

import (
	"context"
	"errors"
	"fmt"

	"github.com/kilianp07/trikesim/core/logger"
	"github.com/kilianp07/trikesim/core/routing"
)

// Planner providers.
const (
	ProviderStraight = "straight"
	ProviderOSRM     = "osrm"
	ProviderGoogle   = "google"
)

// Route cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config selects the route planner and its cache.
type Config struct {
	Provider string `json:"provider"`
	// StraightStep is the waypoint spacing in metres of the offline planner.
	StraightStep float64      `json:"straight_step"`
	OSRM         OSRMConfig   `json:"osrm"`
	Google       GoogleConfig `json:"google"`
	Cache        string       `json:"cache"`
	Redis        RedisConfig  `json:"redis"`
	// CorridorTolerance is the route-aware claim width in degrees.
	CorridorTolerance float64 `json:"corridor_tolerance"`
}

// SetDefaults fills zero fields.
func (c *Config) SetDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderStraight
	}
	if c.StraightStep == 0 {
		c.StraightStep = 25
	}
	if c.Cache == "" {
		c.Cache = CacheMemory
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.CorridorTolerance == 0 {
		c.CorridorTolerance = routing.DefaultCorridorTolerance
	}
}

// Validate checks provider specific fields.
func (c Config) Validate() error {
	var errs []error
	switch c.Provider {
	case ProviderStraight:
		if c.StraightStep < 0 {
			errs = append(errs, errors.New("routing.straight_step must not be negative"))
		}
	case ProviderOSRM:
		if c.OSRM.URL == "" {
			errs = append(errs, errors.New("routing.osrm.url is required"))
		}
	case ProviderGoogle:
		if c.Google.APIKey == "" {
			errs = append(errs, errors.New("routing.google.api_key is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("routing.provider %q is unknown", c.Provider))
	}
	switch c.Cache {
	case CacheNone, CacheMemory, CacheRedis:
	default:
		errs = append(errs, fmt.Errorf("routing.cache %q is unknown", c.Cache))
	}
	if c.CorridorTolerance < 0 {
		errs = append(errs, errors.New("routing.corridor_tolerance must not be negative"))
	}
	return errors.Join(errs...)
}

// NewPlanner builds the configured planner wrapped by its cache. The
// returned close function releases the cache connection.
func NewPlanner(ctx context.Context, cfg Config, log logger.Logger) (routing.Planner, func() error, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	log = logger.OrNop(log)
	noop := func() error { return nil }

	var base routing.Planner
	switch cfg.Provider {
	case ProviderOSRM:
		p, err := NewOSRMPlanner(cfg.OSRM, log)
		if err != nil {
			return nil, nil, err
		}
		base = p
	case ProviderGoogle:
		p, err := NewGooglePlanner(cfg.Google, log)
		if err != nil {
			return nil, nil, err
		}
		base = p
	default:
		base = routing.StraightLine{Step: cfg.StraightStep}
	}

	switch cfg.Cache {
	case CacheMemory:
		return routing.NewCachedPlanner(base, routing.NewMemoryCache(), log), noop, nil
	case CacheRedis:
		rc, err := NewRedisCache(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("route cache: %w", err)
		}
		log.Infof("route cache on redis %s", cfg.Redis.Addr)
		return routing.NewCachedPlanner(base, rc, log), rc.Close, nil
	default:
		return base, noop, nil
	}
}

package routing

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kilianp07/trikesim/core/geo"
	"github.com/kilianp07/trikesim/core/logger"
)

// RouteCache stores planner answers. A cached nil path means no route.
type RouteCache interface {
	Get(ctx context.Context, key string) (path geo.Path, found bool, err error)
	Set(ctx context.Context, key string, path geo.Path) error
}

// RouteKey builds the cache key for a route query.
func RouteKey(a, b geo.Point) string {
	return fmt.Sprintf("route:%.7f,%.7f:%.7f,%.7f", a[0], a[1], b[0], b[1])
}

// CachedPlanner memoises FindRoute results, including ErrNoRoute answers.
// Cache failures are logged and fall through to the wrapped planner.
type CachedPlanner struct {
	next  Planner
	cache RouteCache
	log   logger.Logger
}

// NewCachedPlanner wraps next with cache.
func NewCachedPlanner(next Planner, cache RouteCache, log logger.Logger) *CachedPlanner {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &CachedPlanner{next: next, cache: cache, log: log}
}

// FindRoute implements Planner.
func (c *CachedPlanner) FindRoute(ctx context.Context, a, b geo.Point) (geo.Path, error) {
	key := RouteKey(a, b)
	path, found, err := c.cache.Get(ctx, key)
	if err != nil {
		c.log.Warnf("route cache get %s: %v", key, err)
	} else if found {
		if path == nil {
			return nil, ErrNoRoute
		}
		return path, nil
	}
	path, err = c.next.FindRoute(ctx, a, b)
	switch {
	case err == nil:
	case errors.Is(err, ErrNoRoute):
		path = nil
	default:
		return nil, err
	}
	if serr := c.cache.Set(ctx, key, path); serr != nil {
		c.log.Warnf("route cache set %s: %v", key, serr)
	}
	if path == nil {
		return nil, ErrNoRoute
	}
	return path, nil
}

// Snap implements Planner.
func (c *CachedPlanner) Snap(ctx context.Context, p geo.Point) (geo.Point, error) {
	return c.next.Snap(ctx, p)
}

// MemoryCache is an unbounded in-process RouteCache.
type MemoryCache struct {
	mu     sync.RWMutex
	routes map[string]geo.Path
}

// NewMemoryCache returns an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{routes: make(map[string]geo.Path)}
}

// Get implements RouteCache.
func (m *MemoryCache) Get(_ context.Context, key string) (geo.Path, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.routes[key]
	return p, ok, nil
}

// Set implements RouteCache.
func (m *MemoryCache) Set(_ context.Context, key string, path geo.Path) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes[key] = path
	return nil
}

// Len returns the number of cached entries.
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.routes)
}

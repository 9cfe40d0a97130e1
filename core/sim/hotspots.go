package sim

import (
	"context"
	"fmt"
	"sync"

	"github.com/kilianp07/trikesim/core/geo"
	"github.com/kilianp07/trikesim/core/logger"
	"github.com/kilianp07/trikesim/core/routing"
)

// HotspotCache snaps a fixed hotspot list onto the road network once and
// hands the result to every later run.
type HotspotCache struct {
	planner routing.Planner
	log     logger.Logger

	mu       sync.Mutex
	resolved []geo.Point
	done     bool
}

// NewHotspotCache creates an empty cache backed by planner.
func NewHotspotCache(planner routing.Planner, log logger.Logger) *HotspotCache {
	return &HotspotCache{planner: planner, log: logger.OrNop(log)}
}

// Resolve returns the snapped hotspots, computing them from raw on the
// first call only. Points that cannot be snapped are dropped; an empty
// result is an error.
func (h *HotspotCache) Resolve(ctx context.Context, raw []geo.Point) ([]geo.Point, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.done {
		return append([]geo.Point(nil), h.resolved...), nil
	}
	out := make([]geo.Point, 0, len(raw))
	for _, p := range raw {
		s, err := h.planner.Snap(ctx, p)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			h.log.Warnf("dropping hotspot %v: %v", p, err)
			continue
		}
		out = append(out, s)
	}
	if len(out) == 0 && len(raw) > 0 {
		return nil, fmt.Errorf("%w: none of %d hotspots could be snapped", ErrConfig, len(raw))
	}
	h.resolved = out
	h.done = true
	h.log.Infof("resolved %d/%d fixed hotspots", len(out), len(raw))
	return append([]geo.Point(nil), out...), nil
}

// Len returns the number of cached hotspots, zero before the first Resolve.
func (h *HotspotCache) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.resolved)
}

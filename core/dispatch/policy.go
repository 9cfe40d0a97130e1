package dispatch

import (
	"context"
	"errors"

	"github.com/kilianp07/trikesim/core/geo"
	"github.com/kilianp07/trikesim/core/logger"
	"github.com/kilianp07/trikesim/core/model"
	"github.com/kilianp07/trikesim/core/routing"
)

// Candidate describes a possible claim from the vehicle's point of view.
type Candidate struct {
	VehicleID string
	Position  geo.Point
	// Next is the head of the vehicle's to-go queue, nil when the queue is empty.
	Next      *geo.Point
	Onboard   int
	Passenger *model.Passenger
}

// ClaimPolicy decides whether to claim a candidate passenger.
type ClaimPolicy interface {
	ShouldClaim(ctx context.Context, c Candidate) bool
}

// Nearest always claims the nearest waiting passenger.
type Nearest struct{}

// ShouldClaim implements ClaimPolicy.
func (Nearest) ShouldClaim(context.Context, Candidate) bool { return true }

// Rejection reasons reported by RouteAware.
const (
	ReasonNotOnWay     = "not_on_way"
	ReasonNoNext       = "no_next_waypoint"
	ReasonLookupFailed = "lookup_failed"
)

// RejectionRecorder receives the reason for every refused claim.
type RejectionRecorder interface {
	RecordClaimRejection(vehicleID, reason string)
}

// RouteAware claims for empty vehicles unconditionally. A vehicle that is
// already carrying passengers only claims when the candidate's destination
// lies on the route to its next waypoint. A failed corridor lookup refuses
// the claim.
type RouteAware struct {
	corridor *routing.Corridor
	log      logger.Logger
	rec      RejectionRecorder
	stats    map[string]int
}

// NewRouteAware builds the policy around a corridor test. rec may be nil.
func NewRouteAware(corridor *routing.Corridor, log logger.Logger, rec RejectionRecorder) *RouteAware {
	return &RouteAware{corridor: corridor, log: logger.OrNop(log), rec: rec, stats: make(map[string]int)}
}

// ShouldClaim implements ClaimPolicy.
func (r *RouteAware) ShouldClaim(ctx context.Context, c Candidate) bool {
	if c.Onboard == 0 {
		return true
	}
	if c.Next == nil {
		r.reject(c, ReasonNoNext, nil)
		return false
	}
	on, err := r.corridor.IsOnRoute(ctx, c.Position, *c.Next, c.Passenger.Dest)
	if err != nil {
		r.reject(c, ReasonLookupFailed, err)
		return false
	}
	if !on {
		r.reject(c, ReasonNotOnWay, nil)
		return false
	}
	return true
}

// Tolerance returns the corridor width in degrees.
func (r *RouteAware) Tolerance() float64 { return r.corridor.Tolerance }

// Rejections returns the number of refused claims per reason.
func (r *RouteAware) Rejections() map[string]int {
	out := make(map[string]int, len(r.stats))
	for k, v := range r.stats {
		out[k] = v
	}
	return out
}

func (r *RouteAware) reject(c Candidate, reason string, err error) {
	r.stats[reason]++
	if r.rec != nil {
		r.rec.RecordClaimRejection(c.VehicleID, reason)
	}
	fields := map[string]any{"vehicle_id": c.VehicleID, "passenger_id": c.Passenger.ID, "reason": reason}
	if err != nil {
		fields["error"] = err.Error()
		if !errors.Is(err, routing.ErrNoRoute) {
			r.log.Warnf("corridor lookup for %s failed: %v", c.VehicleID, err)
		}
	}
	r.log.Debugw("claim rejected", fields)
}

package fleet

import (
	"context"
	"errors"

	"github.com/kilianp07/trikesim/core/geo"
	"github.com/kilianp07/trikesim/core/model"
	"github.com/kilianp07/trikesim/core/routing"
)

// Priority controls how a new route is merged into the to-go queue.
type Priority int

const (
	// Append splices the route after the queue's tail.
	Append Priority = iota
	// Front serves the new destination first, then reconnects to the
	// queue's head.
	Front
	// Replace discards the queue.
	Replace
)

func (p Priority) String() string {
	switch p {
	case Append:
		return "append"
	case Front:
		return "front"
	case Replace:
		return "replace"
	}
	return "unknown"
}

// UpdatePath plans a route to dest and merges it into the to-go queue.
// It reports false when the vehicle is mid-claim and dest is not the
// claimed pickup, or when any required leg has no usable route. Being
// already at dest, or having dest as the queue's tail, succeeds without
// change.
func (v *Tricycle) UpdatePath(ctx context.Context, dest geo.Point, prio Priority) bool {
	if v.status == model.TricycleEnqueuing && (v.enqueued == nil || !v.atLocation(dest, v.enqueued.Src)) {
		return false
	}
	cur := v.Position()
	if v.atLocation(cur, dest) {
		return true
	}
	if n := len(v.toGo); n > 0 && v.toGo[n-1] == dest {
		return true
	}

	if prio == Replace || len(v.toGo) == 0 {
		route, ok := v.plan(ctx, cur, dest)
		if !ok {
			return false
		}
		v.toGo = v.trimHead(route)
		return true
	}

	if prio == Front {
		route, ok := v.plan(ctx, cur, dest)
		if !ok {
			return false
		}
		connector, ok := v.plan(ctx, dest, v.toGo[0])
		if !ok {
			return false
		}
		queue := v.trimHead(route)
		queue = append(queue, connector[1:]...)
		v.toGo = append(queue, v.toGo[1:]...)
		return true
	}

	tail := v.toGo[len(v.toGo)-1]
	connector, ok := v.plan(ctx, tail, dest)
	if !ok {
		return false
	}
	queue := make(geo.Path, 0, len(v.toGo)+len(connector)-1)
	queue = append(queue, v.toGo[:len(v.toGo)-1]...)
	v.toGo = append(queue, connector...)
	return true
}

// plan asks the planner for a route with at least two waypoints.
func (v *Tricycle) plan(ctx context.Context, a, b geo.Point) (geo.Path, bool) {
	route, err := v.planner.FindRoute(ctx, a, b)
	if err != nil {
		if !errors.Is(err, routing.ErrNoRoute) {
			v.log.Warnf("route %s: planner error: %v", v.cfg.ID, err)
		}
		return nil, false
	}
	if len(route) < 2 {
		return nil, false
	}
	return route, true
}

// trimHead copies route, dropping its first waypoint when the vehicle is
// already standing on it.
func (v *Tricycle) trimHead(route geo.Path) geo.Path {
	if v.atLocation(route[0], v.Position()) {
		route = route[1:]
	}
	return append(make(geo.Path, 0, len(route)), route...)
}

func (v *Tricycle) atLocation(a, b geo.Point) bool {
	return geo.Within(a, b, v.cfg.locationTolerance())
}

// AtLocation reports whether the vehicle stands on p.
func (v *Tricycle) AtLocation(p geo.Point) bool { return v.atLocation(v.Position(), p) }

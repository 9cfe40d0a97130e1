// Package routing defines the route planner used by vehicles together with
// planner decorators and the corridor test used by route-aware claiming.
//
// Planners must be idempotent: the same pair of points always yields the same
// waypoints or ErrNoRoute. Callers treat ErrNoRoute as an expected outcome.
package routing

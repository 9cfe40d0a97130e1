// Package spatial provides the registry of live passengers and vehicles and
// answers radius queries over them.
package spatial

import (
	"sort"

	"github.com/paulmach/orb"

	"github.com/kilianp07/trikesim/core/geo"
	"github.com/kilianp07/trikesim/core/model"
)

// Locatable is anything with an identity and a current position.
type Locatable interface {
	ID() string
	Position() geo.Point
}

// Map holds references to live entities inside a bounding box. It does not
// own them; the simulator decides when they are added and removed.
type Map struct {
	bound      orb.Bound
	passengers []*model.Passenger
	vehicles   []Locatable
}

// NewMap returns an empty map covering the box spanned by min and max.
func NewMap(min, max geo.Point) *Map {
	return &Map{bound: orb.Bound{Min: min, Max: max}}
}

// Bounds returns the south-west and north-east corners.
func (m *Map) Bounds() (geo.Point, geo.Point) { return m.bound.Min, m.bound.Max }

// Contains reports whether p lies within the map bounds.
func (m *Map) Contains(p geo.Point) bool { return m.bound.Contains(p) }

// AddPassenger registers p. Registering the same passenger twice is a no-op.
func (m *Map) AddPassenger(p *model.Passenger) {
	for _, q := range m.passengers {
		if q == p {
			return
		}
	}
	m.passengers = append(m.passengers, p)
}

// RemovePassenger drops p from the registry, keeping the order of the rest.
func (m *Map) RemovePassenger(p *model.Passenger) bool {
	for i, q := range m.passengers {
		if q == p {
			m.passengers = append(m.passengers[:i], m.passengers[i+1:]...)
			return true
		}
	}
	return false
}

// Passengers returns the registered passengers in registration order.
func (m *Map) Passengers() []*model.Passenger {
	return append([]*model.Passenger(nil), m.passengers...)
}

// AddVehicle registers v.
func (m *Map) AddVehicle(v Locatable) {
	m.vehicles = append(m.vehicles, v)
}

// Vehicles returns the registered vehicles in registration order.
func (m *Map) Vehicles() []Locatable {
	return append([]Locatable(nil), m.vehicles...)
}

// PassengerHit is a passenger found by a radius query with its distance.
type PassengerHit struct {
	Passenger *model.Passenger
	Distance  float64
}

// PassengersNear returns the passengers whose source lies within radius
// metres of p, nearest first. Equal distances keep registration order.
func (m *Map) PassengersNear(p geo.Point, radius float64) []PassengerHit {
	var hits []PassengerHit
	for _, q := range m.passengers {
		if d := geo.Distance(p, q.Src); d <= radius {
			hits = append(hits, PassengerHit{Passenger: q, Distance: d})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	return hits
}

// NearestWaiting returns the closest WAITING passenger within radius of p.
func (m *Map) NearestWaiting(p geo.Point, radius float64) *model.Passenger {
	for _, h := range m.PassengersNear(p, radius) {
		if h.Passenger.Status == model.PassengerWaiting {
			return h.Passenger
		}
	}
	return nil
}

// VehiclesNear returns the vehicles within radius metres of p in
// registration order.
func (m *Map) VehiclesNear(p geo.Point, radius float64) []Locatable {
	var out []Locatable
	for _, v := range m.vehicles {
		if geo.Distance(p, v.Position()) <= radius {
			out = append(out, v)
		}
	}
	return out
}

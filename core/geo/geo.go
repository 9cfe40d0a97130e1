package geo

import (
	"math"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
)

// Point is a (longitude, latitude) coordinate.
type Point = orb.Point

// NewPoint builds a point from its x (longitude) and y (latitude).
func NewPoint(x, y float64) Point { return Point{x, y} }

// Distance returns the great-circle distance between a and b in metres.
func Distance(a, b Point) float64 {
	return orbgeo.DistanceHaversine(a, b)
}

// Euclidean returns the planar distance between a and b in coordinate units.
func Euclidean(a, b Point) float64 {
	return planar.Distance(a, b)
}

// Interpolate returns the point at fraction t along the segment a→b.
// t is clamped to [0, 1].
func Interpolate(a, b Point, t float64) Point {
	t = math.Max(0, math.Min(1, t))
	return Point{a[0] + (b[0]-a[0])*t, a[1] + (b[1]-a[1])*t}
}

// Within reports whether a and b are at most tol metres apart.
func Within(a, b Point, tol float64) bool {
	return Distance(a, b) <= tol
}

// Path is an ordered sequence of waypoints.
type Path []Point

// Length returns the great-circle length of the path in metres.
func (p Path) Length() float64 {
	var total float64
	for i := 1; i < len(p); i++ {
		total += Distance(p[i-1], p[i])
	}
	return total
}

// LineString converts the path for use with orb algorithms.
func (p Path) LineString() orb.LineString {
	return orb.LineString(p)
}

// DistanceFrom returns the planar distance from c to the closest point of
// the path, in coordinate units.
func (p Path) DistanceFrom(c Point) float64 {
	switch len(p) {
	case 0:
		return math.Inf(1)
	case 1:
		return planar.Distance(p[0], c)
	}
	return planar.DistanceFrom(p.LineString(), c)
}

package geo

import (
	"errors"
	"math"
)

// ErrShortCycle is returned when a cycle is built from fewer than two points.
var ErrShortCycle = errors.New("geo: cycle needs at least two points")

// Cycle is a closed sequence of points driven in order, wrapping back to
// the first point after the last.
type Cycle struct {
	points []Point
}

// NewCycle builds a cycle from the given points.
func NewCycle(points ...Point) (*Cycle, error) {
	if len(points) < 2 {
		return nil, ErrShortCycle
	}
	return &Cycle{points: append([]Point(nil), points...)}, nil
}

// Points returns a copy of the cycle's points.
func (c *Cycle) Points() []Point { return append([]Point(nil), c.points...) }

// Len returns the number of points.
func (c *Cycle) Len() int { return len(c.points) }

// Start returns the first point.
func (c *Cycle) Start() Point { return c.points[0] }

// End returns the last point.
func (c *Cycle) End() Point { return c.points[len(c.points)-1] }

// NearestIndex returns the index of the point closest to p. Ties go to the
// lowest index.
func (c *Cycle) NearestIndex(p Point) int {
	best, bestD := 0, math.Inf(1)
	for i, q := range c.points {
		if d := Euclidean(p, q); d < bestD {
			best, bestD = i, d
		}
	}
	return best
}

// Next returns the point following the one nearest to p.
func (c *Cycle) Next(p Point) Point {
	return c.points[(c.NearestIndex(p)+1)%len(c.points)]
}

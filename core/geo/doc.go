// Package geo holds the geometry primitives shared by the simulation:
// points in (longitude, latitude) order, ordered paths and back-and-forth
// cycles. Distances between geographic points are great-circle metres.
package geo

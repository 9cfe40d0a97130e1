// Package fleet implements the vehicles of the simulation and the terminals
// where they queue.
//
// A Tricycle owns its to-go queue of waypoints and its claim on at most one
// passenger it has not picked up yet. Every method is meant to be called from
// the single simulation loop; none of them are safe for concurrent use.
package fleet

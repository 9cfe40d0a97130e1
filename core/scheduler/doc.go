// Package scheduler selects which onboard passenger a vehicle drops off
// next. FirstCome keeps boarding order; Optimal searches every drop-off order
// exhaustively and is meant for the small capacities of tricycles.
package scheduler

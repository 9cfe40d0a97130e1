package kpi

// Record aggregates the trip KPIs of one vehicle in one run.
type Record struct {
	RunID     string `json:"run_id"`
	VehicleID string `json:"vehicle_id"`
	// Distances are in metres.
	Distance   float64 `json:"distance"`
	Productive float64 `json:"productive_distance"`
	Trips      int     `json:"trips"`
}

// Efficiency returns the productive share of the distance as a percentage.
func (r Record) Efficiency() float64 {
	if r.Distance == 0 {
		return 0
	}
	return r.Productive / r.Distance * 100
}

// DistancePerTrip returns metres driven per delivered passenger.
func (r Record) DistancePerTrip() float64 {
	if r.Trips == 0 {
		return 0
	}
	return r.Distance / float64(r.Trips)
}

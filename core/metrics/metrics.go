package metrics

import (
	"time"

	"github.com/kilianp07/trikesim/core/metrics/kpi"
)

// TickStats is the state of a run at the end of one tick.
type TickStats struct {
	RunID string `json:"run_id"`
	Tick  int64  `json:"tick"`
	// Time is the simulated clock in seconds.
	Time int64 `json:"time"`

	Waiting   int `json:"waiting"`
	Enqueued  int `json:"enqueued"`
	Onboard   int `json:"onboard"`
	Completed int `json:"completed"`

	ActiveTricycles int            `json:"active_tricycles"`
	Statuses        map[string]int `json:"statuses"`

	// Distances are cumulative, in metres.
	Distance           float64 `json:"distance"`
	ProductiveDistance float64 `json:"productive_distance"`

	Wall time.Time `json:"-"`
}

// MetricsSink records per-tick simulation state.
type MetricsSink interface {
	RecordTick(ts TickStats) error
}

// Summary aggregates a finished run.
type Summary struct {
	RunID           string `json:"run_id"`
	Seed            int64  `json:"seed"`
	TotalPassengers int    `json:"total_passengers"`
	Completed       int    `json:"total_trips_completed"`
	// CompletionRate is a percentage.
	CompletionRate float64 `json:"completion_rate"`
	// Times are in simulated seconds.
	AverageWait   float64 `json:"average_wait_time"`
	MedianWait    float64 `json:"median_wait_time"`
	AverageTravel float64 `json:"average_travel_time"`

	TotalDistanceKm      float64 `json:"total_distance_km"`
	ProductiveDistanceKm float64 `json:"productive_distance_km"`
	// Efficiency is a percentage of productive over total distance.
	Efficiency float64 `json:"efficiency_percentage"`

	ActiveTricycles  int   `json:"active_tricycles"`
	TotalTricycles   int   `json:"total_tricycles"`
	TotalTerminals   int   `json:"total_terminals"`
	Ticks            int64 `json:"ticks"`
	EndTime          int64 `json:"end_time"`
	LastActivityTime int64 `json:"last_activity_time"`

	ClaimRejections map[string]int `json:"claim_rejections"`
	VehicleFaults   int            `json:"vehicle_faults"`
	Elapsed         time.Duration  `json:"elapsed_ns"`
}

// SummaryRecorder is implemented by sinks able to record run summaries.
type SummaryRecorder interface {
	RecordSummary(s Summary) error
}

// VehicleFault is a vehicle retired after a runtime failure.
type VehicleFault struct {
	RunID     string
	VehicleID string
	Phase     string
	Time      int64
	Error     string
}

// VehicleFaultRecorder records vehicle faults.
type VehicleFaultRecorder interface {
	RecordVehicleFault(f VehicleFault) error
}

// ClaimRejectionRecorder counts claims refused by the claim policy.
type ClaimRejectionRecorder interface {
	RecordClaimRejection(vehicleID, reason string)
}

// VehicleKPIRecorder receives per-vehicle KPIs once a run ends.
type VehicleKPIRecorder interface {
	RecordVehicleKPI(r kpi.Record) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordTick(TickStats) error            { return nil }
func (NopSink) RecordSummary(Summary) error           { return nil }
func (NopSink) RecordVehicleFault(VehicleFault) error { return nil }
func (NopSink) RecordClaimRejection(string, string)   {}
func (NopSink) RecordVehicleKPI(kpi.Record) error     { return nil }

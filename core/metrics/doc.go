// Package metrics defines the sinks receiving simulation telemetry. A sink
// records per-tick state and may optionally implement SummaryRecorder,
// VehicleFaultRecorder, ClaimRejectionRecorder or VehicleKPIRecorder; callers
// detect those with a type assertion. NewMetricsSink builds sinks from
// configuration and returns a MultiSink when several are configured.
// Concrete backends live in infra/metrics and infra/mqtt.
package metrics

package metrics

import (
	"errors"

	"github.com/kilianp07/trikesim/core/metrics/kpi"
)

// Closer is implemented by sinks holding a connection.
type Closer interface {
	Close()
}

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordTick forwards the tick to every sink. All sinks are tried; the
// errors are joined.
func (m *MultiSink) RecordTick(ts TickStats) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.RecordTick(ts); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordSummary forwards summaries when supported by the sink.
func (m *MultiSink) RecordSummary(sum Summary) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(SummaryRecorder); ok {
			if err := rec.RecordSummary(sum); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// RecordVehicleFault forwards faults when supported by the sink.
func (m *MultiSink) RecordVehicleFault(f VehicleFault) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(VehicleFaultRecorder); ok {
			if err := rec.RecordVehicleFault(f); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// RecordClaimRejection forwards rejections when supported by the sink.
func (m *MultiSink) RecordClaimRejection(vehicleID, reason string) {
	for _, s := range m.Sinks {
		if rec, ok := s.(ClaimRejectionRecorder); ok {
			rec.RecordClaimRejection(vehicleID, reason)
		}
	}
}

// RecordVehicleKPI forwards vehicle KPIs when supported by the sink.
func (m *MultiSink) RecordVehicleKPI(r kpi.Record) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(VehicleKPIRecorder); ok {
			if err := rec.RecordVehicleKPI(r); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink implementing Closer.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		if c, ok := s.(Closer); ok {
			c.Close()
		}
	}
}

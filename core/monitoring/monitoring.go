package monitoring

import (
	"fmt"
	"time"
)

// Monitor defines methods used for error reporting.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Recover()
	Flush(timeout time.Duration)
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Recover()                                  {}
func (NopMonitor) Flush(time.Duration)                       {}

var current Monitor = NopMonitor{}

// Init sets the global monitor implementation.
func Init(m Monitor) {
	if m != nil {
		current = m
	}
}

// Current returns the global monitor.
func Current() Monitor { return current }

// CaptureException records the error with optional tags.
func CaptureException(err error, tags map[string]string) {
	if current != nil {
		current.CaptureException(err, tags)
	}
}

// Recover captures panics in goroutines.
func Recover() {
	if current != nil {
		current.Recover()
	}
}

// Flush flushes buffered events.
func Flush(d time.Duration) {
	if current != nil {
		current.Flush(d)
	}
}

// VehicleFault is a panic recovered while driving one vehicle.
type VehicleFault struct {
	RunID     string
	VehicleID string
	Phase     string
	Time      int64
	Cause     any
}

func (f VehicleFault) Error() string {
	return fmt.Sprintf("vehicle %s faulted in %s at t=%d: %v", f.VehicleID, f.Phase, f.Time, f.Cause)
}

// CaptureVehicleFault reports f to m with run, vehicle and phase tags. A nil
// m falls back to the global monitor.
func CaptureVehicleFault(m Monitor, f VehicleFault) {
	if m == nil {
		m = current
	}
	if m == nil {
		return
	}
	m.CaptureException(f, map[string]string{
		"run_id":     f.RunID,
		"vehicle_id": f.VehicleID,
		"phase":      f.Phase,
	})
}

package metrics

import (
	"context"
	"sync"

	"github.com/kilianp07/trikesim/core/logger"
	coremetrics "github.com/kilianp07/trikesim/core/metrics"
	"github.com/kilianp07/trikesim/core/metrics/kpi"
	"github.com/kilianp07/trikesim/internal/eventbus"
)

// StartTickCollector subscribes to the bus and records every tick on sink.
// It stops when the context is canceled or the bus is closed; the returned
// channel is closed once the subscriber is drained.
func StartTickCollector(ctx context.Context, bus *eventbus.TypedBus[coremetrics.TickStats], sink coremetrics.MetricsSink, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	log = logger.OrNop(log)
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ts, ok := <-sub:
				if !ok {
					return
				}
				if err := sink.RecordTick(ts); err != nil {
					log.Warnf("record tick %d of %s: %v", ts.Tick, ts.RunID, err)
				}
			}
		}
	}()
	return done
}

// AsyncSink takes ticks off the simulation loop. RecordTick publishes on a
// bus drained by a collector goroutine; the rarer records are forwarded
// synchronously once the pending ticks are flushed.
type AsyncSink struct {
	target coremetrics.MetricsSink
	bus    *eventbus.TypedBus[coremetrics.TickStats]
	done   <-chan struct{}
	log    logger.Logger

	mu     sync.Mutex
	closed bool
}

// NewAsyncSink starts a collector draining into target. buffer sizes the
// bus channel; ticks beyond it are dropped and counted.
func NewAsyncSink(ctx context.Context, target coremetrics.MetricsSink, buffer int, log logger.Logger) *AsyncSink {
	bus := eventbus.NewTypedWithBuffer[coremetrics.TickStats](buffer)
	return &AsyncSink{
		target: target,
		bus:    bus,
		done:   StartTickCollector(ctx, bus, target, log),
		log:    logger.OrNop(log),
	}
}

// RecordTick implements coremetrics.MetricsSink without blocking.
func (a *AsyncSink) RecordTick(ts coremetrics.TickStats) error {
	a.bus.Publish(ts)
	return nil
}

// Dropped returns the ticks lost because the collector fell behind.
func (a *AsyncSink) Dropped() uint64 { return a.bus.Dropped() }

// Close stops accepting ticks and waits for the collector to drain.
func (a *AsyncSink) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	a.mu.Unlock()
	a.bus.Close()
	<-a.done
	if n := a.bus.Dropped(); n > 0 {
		a.log.Warnf("%d ticks dropped by the metrics collector", n)
	}
}

// RecordSummary flushes pending ticks then forwards the summary.
func (a *AsyncSink) RecordSummary(sum coremetrics.Summary) error {
	a.Close()
	if rec, ok := a.target.(coremetrics.SummaryRecorder); ok {
		return rec.RecordSummary(sum)
	}
	return nil
}

// RecordVehicleFault forwards faults when supported by the target.
func (a *AsyncSink) RecordVehicleFault(f coremetrics.VehicleFault) error {
	if rec, ok := a.target.(coremetrics.VehicleFaultRecorder); ok {
		return rec.RecordVehicleFault(f)
	}
	return nil
}

// RecordClaimRejection forwards rejections when supported by the target.
func (a *AsyncSink) RecordClaimRejection(vehicleID, reason string) {
	if rec, ok := a.target.(coremetrics.ClaimRejectionRecorder); ok {
		rec.RecordClaimRejection(vehicleID, reason)
	}
}

// RecordVehicleKPI forwards vehicle KPIs when supported by the target.
func (a *AsyncSink) RecordVehicleKPI(r kpi.Record) error {
	if rec, ok := a.target.(coremetrics.VehicleKPIRecorder); ok {
		return rec.RecordVehicleKPI(r)
	}
	return nil
}

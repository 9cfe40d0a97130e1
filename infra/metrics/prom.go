package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/trikesim/core/metrics"
	"github.com/kilianp07/trikesim/core/metrics/kpi"
)

// PromSink exposes simulation telemetry as Prometheus metrics.
type PromSink struct {
	passengers *prometheus.GaugeVec
	statuses   *prometheus.GaugeVec
	active     *prometheus.GaugeVec
	distance   *prometheus.GaugeVec
	ticks      *prometheus.CounterVec

	completion *prometheus.GaugeVec
	efficiency *prometheus.GaugeVec
	waitTime   *prometheus.GaugeVec

	faults     *prometheus.CounterVec
	rejections *prometheus.CounterVec

	vehicleDistance *prometheus.GaugeVec
	vehicleTrips    *prometheus.GaugeVec
}

// NewPromSink registers simulation metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by an earlier sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		passengers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "trikesim_passengers",
			Help: "Passengers per lifecycle state at the last tick",
		}, []string{"run_id", "state"}),
		statuses: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "trikesim_tricycles",
			Help: "Tricycles per status at the last tick",
		}, []string{"run_id", "status"}),
		active: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "trikesim_tricycles_active",
			Help: "Tricycles taking part in the tick loop",
		}, []string{"run_id"}),
		distance: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "trikesim_distance_meters",
			Help: "Cumulative fleet distance",
		}, []string{"run_id", "kind"}),
		ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trikesim_ticks_total",
			Help: "Ticks simulated",
		}, []string{"run_id"}),
		completion: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "trikesim_run_completion_rate",
			Help: "Percentage of passengers delivered in a finished run",
		}, []string{"run_id"}),
		efficiency: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "trikesim_run_efficiency",
			Help: "Percentage of distance driven with passengers onboard",
		}, []string{"run_id"}),
		waitTime: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "trikesim_run_wait_seconds",
			Help: "Passenger wait time of a finished run",
		}, []string{"run_id", "stat"}),
		faults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trikesim_vehicle_faults_total",
			Help: "Vehicles retired after a runtime failure",
		}, []string{"phase"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trikesim_claim_rejections_total",
			Help: "Claims refused by the claim policy",
		}, []string{"reason"}),
		vehicleDistance: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "trikesim_vehicle_distance_meters",
			Help: "Distance per vehicle in a finished run",
		}, []string{"run_id", "vehicle_id", "kind"}),
		vehicleTrips: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "trikesim_vehicle_trips",
			Help: "Passengers delivered per vehicle in a finished run",
		}, []string{"run_id", "vehicle_id"}),
	}

	var err error
	var errs []error
	if s.passengers, err = register(reg, s.passengers); err != nil {
		errs = append(errs, err)
	}
	if s.statuses, err = register(reg, s.statuses); err != nil {
		errs = append(errs, err)
	}
	if s.active, err = register(reg, s.active); err != nil {
		errs = append(errs, err)
	}
	if s.distance, err = register(reg, s.distance); err != nil {
		errs = append(errs, err)
	}
	if s.ticks, err = register(reg, s.ticks); err != nil {
		errs = append(errs, err)
	}
	if s.completion, err = register(reg, s.completion); err != nil {
		errs = append(errs, err)
	}
	if s.efficiency, err = register(reg, s.efficiency); err != nil {
		errs = append(errs, err)
	}
	if s.waitTime, err = register(reg, s.waitTime); err != nil {
		errs = append(errs, err)
	}
	if s.faults, err = register(reg, s.faults); err != nil {
		errs = append(errs, err)
	}
	if s.rejections, err = register(reg, s.rejections); err != nil {
		errs = append(errs, err)
	}
	if s.vehicleDistance, err = register(reg, s.vehicleDistance); err != nil {
		errs = append(errs, err)
	}
	if s.vehicleTrips, err = register(reg, s.vehicleTrips); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return s, nil
}

// register returns the collector already registered under the same
// descriptor when there is one.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordTick sets the per-tick gauges.
func (s *PromSink) RecordTick(ts coremetrics.TickStats) error {
	s.passengers.WithLabelValues(ts.RunID, "waiting").Set(float64(ts.Waiting))
	s.passengers.WithLabelValues(ts.RunID, "enqueued").Set(float64(ts.Enqueued))
	s.passengers.WithLabelValues(ts.RunID, "onboard").Set(float64(ts.Onboard))
	s.passengers.WithLabelValues(ts.RunID, "completed").Set(float64(ts.Completed))
	for status, n := range ts.Statuses {
		s.statuses.WithLabelValues(ts.RunID, status).Set(float64(n))
	}
	s.active.WithLabelValues(ts.RunID).Set(float64(ts.ActiveTricycles))
	s.distance.WithLabelValues(ts.RunID, "total").Set(ts.Distance)
	s.distance.WithLabelValues(ts.RunID, "productive").Set(ts.ProductiveDistance)
	s.ticks.WithLabelValues(ts.RunID).Inc()
	return nil
}

// RecordSummary sets the run level gauges.
func (s *PromSink) RecordSummary(sum coremetrics.Summary) error {
	s.completion.WithLabelValues(sum.RunID).Set(sum.CompletionRate)
	s.efficiency.WithLabelValues(sum.RunID).Set(sum.Efficiency)
	s.waitTime.WithLabelValues(sum.RunID, "average").Set(sum.AverageWait)
	s.waitTime.WithLabelValues(sum.RunID, "median").Set(sum.MedianWait)
	return nil
}

// RecordVehicleFault counts retired vehicles by phase.
func (s *PromSink) RecordVehicleFault(f coremetrics.VehicleFault) error {
	s.faults.WithLabelValues(f.Phase).Inc()
	return nil
}

// RecordClaimRejection counts refused claims by reason.
func (s *PromSink) RecordClaimRejection(_, reason string) {
	s.rejections.WithLabelValues(reason).Inc()
}

// RecordVehicleKPI exposes the per-vehicle distances and trips.
func (s *PromSink) RecordVehicleKPI(r kpi.Record) error {
	s.vehicleDistance.WithLabelValues(r.RunID, r.VehicleID, "total").Set(r.Distance)
	s.vehicleDistance.WithLabelValues(r.RunID, r.VehicleID, "productive").Set(r.Productive)
	s.vehicleTrips.WithLabelValues(r.RunID, r.VehicleID).Set(float64(r.Trips))
	return nil
}

package mqtt

import (
	"encoding/json"
	"fmt"

	coremetrics "github.com/kilianp07/trikesim/core/metrics"
)

// publisher is the subset of PahoClient used by the sink.
type publisher interface {
	Publish(kind, topic string, retained bool, payload []byte) error
}

// TelemetrySink publishes simulation telemetry as JSON:
//
//	<prefix>/runs/<run>/tick     every TickEvery-th tick
//	<prefix>/runs/<run>/summary  retained
//	<prefix>/runs/<run>/fault    per retired vehicle
type TelemetrySink struct {
	pub       publisher
	prefix    string
	tickEvery int64
	// disconnect is set when the sink owns its client.
	disconnect func()
}

// NewTelemetrySink connects to the broker and returns the sink. The sink
// owns the client: Close disconnects it.
func NewTelemetrySink(cfg Config) (*TelemetrySink, *PahoClient, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	cli, err := NewPahoClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	sink := newTelemetrySink(cli, cfg)
	sink.disconnect = cli.Disconnect
	return sink, cli, nil
}

func newTelemetrySink(pub publisher, cfg Config) *TelemetrySink {
	cfg.SetDefaults()
	return &TelemetrySink{pub: pub, prefix: cfg.TopicPrefix, tickEvery: int64(cfg.TickEvery)}
}

// Close disconnects the owned client. Later calls do nothing.
func (s *TelemetrySink) Close() {
	if s.disconnect != nil {
		s.disconnect()
		s.disconnect = nil
	}
}

func (s *TelemetrySink) topic(runID, leaf string) string {
	if runID == "" {
		runID = "default"
	}
	return fmt.Sprintf("%s/runs/%s/%s", s.prefix, runID, leaf)
}

// RecordTick implements coremetrics.MetricsSink.
func (s *TelemetrySink) RecordTick(ts coremetrics.TickStats) error {
	if s.tickEvery > 1 && ts.Tick%s.tickEvery != 0 {
		return nil
	}
	payload, err := json.Marshal(ts)
	if err != nil {
		return err
	}
	return s.pub.Publish("tick", s.topic(ts.RunID, "tick"), false, payload)
}

// RecordSummary publishes the summary as a retained message.
func (s *TelemetrySink) RecordSummary(sum coremetrics.Summary) error {
	payload, err := json.Marshal(sum)
	if err != nil {
		return err
	}
	return s.pub.Publish("summary", s.topic(sum.RunID, "summary"), true, payload)
}

// RecordVehicleFault publishes a retired vehicle.
func (s *TelemetrySink) RecordVehicleFault(f coremetrics.VehicleFault) error {
	payload, err := json.Marshal(struct {
		VehicleID string `json:"vehicle_id"`
		Phase     string `json:"phase"`
		Time      int64  `json:"time"`
		Error     string `json:"error"`
	}{f.VehicleID, f.Phase, f.Time, f.Error})
	if err != nil {
		return err
	}
	return s.pub.Publish("fault", s.topic(f.RunID, "fault"), false, payload)
}

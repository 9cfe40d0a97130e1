package metrics

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/kilianp07/trikesim/core/logger"
	coremetrics "github.com/kilianp07/trikesim/core/metrics"
	"github.com/kilianp07/trikesim/core/metrics/kpi"
	infralog "github.com/kilianp07/trikesim/infra/logger"
)

// InfluxConfig locates the InfluxDB bucket receiving the points.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes simulation telemetry to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig, log logger.Logger) *InfluxSink {
	if log == nil {
		log = infralog.New("influx-sink")
	}
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      log,
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig, log logger.Logger) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg, log)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the HTTP client.
func (s *InfluxSink) Close() { s.client.Close() }

func (s *InfluxSink) write(p *write.Point) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordTick writes one "tick" point. The simulated clock is a field; the
// point time is the wall clock of the tick.
func (s *InfluxSink) RecordTick(ts coremetrics.TickStats) error {
	p := write.NewPointWithMeasurement("tick").
		AddTag("run_id", ts.RunID).
		AddField("tick", ts.Tick).
		AddField("sim_time", ts.Time).
		AddField("waiting", ts.Waiting).
		AddField("enqueued", ts.Enqueued).
		AddField("onboard", ts.Onboard).
		AddField("completed", ts.Completed).
		AddField("active_tricycles", ts.ActiveTricycles).
		AddField("distance_m", round3(ts.Distance)).
		AddField("productive_distance_m", round3(ts.ProductiveDistance)).
		SetTime(wallOrNow(ts.Wall))
	for status, n := range ts.Statuses {
		p.AddField("status_"+strings.ToLower(status), n)
	}
	return s.write(p)
}

// RecordSummary writes the "run_summary" point of a finished run.
func (s *InfluxSink) RecordSummary(sum coremetrics.Summary) error {
	p := write.NewPointWithMeasurement("run_summary").
		AddTag("run_id", sum.RunID).
		AddTag("seed", fmt.Sprint(sum.Seed)).
		AddField("total_passengers", sum.TotalPassengers).
		AddField("completed", sum.Completed).
		AddField("completion_rate", round3(sum.CompletionRate)).
		AddField("average_wait", round3(sum.AverageWait)).
		AddField("median_wait", round3(sum.MedianWait)).
		AddField("average_travel", round3(sum.AverageTravel)).
		AddField("total_distance_km", round3(sum.TotalDistanceKm)).
		AddField("productive_distance_km", round3(sum.ProductiveDistanceKm)).
		AddField("efficiency", round3(sum.Efficiency)).
		AddField("active_tricycles", sum.ActiveTricycles).
		AddField("ticks", sum.Ticks).
		AddField("vehicle_faults", sum.VehicleFaults).
		SetTime(time.Now())
	return s.write(p)
}

// RecordVehicleFault writes a "vehicle_fault" point.
func (s *InfluxSink) RecordVehicleFault(f coremetrics.VehicleFault) error {
	p := write.NewPointWithMeasurement("vehicle_fault").
		AddTag("run_id", f.RunID).
		AddTag("vehicle_id", f.VehicleID).
		AddTag("phase", f.Phase).
		AddField("sim_time", f.Time).
		AddField("error", f.Error).
		SetTime(time.Now())
	return s.write(p)
}

// RecordVehicleKPI writes a "vehicle_kpi" point.
func (s *InfluxSink) RecordVehicleKPI(r kpi.Record) error {
	p := write.NewPointWithMeasurement("vehicle_kpi").
		AddTag("run_id", r.RunID).
		AddTag("vehicle_id", r.VehicleID).
		AddField("distance_m", round3(r.Distance)).
		AddField("productive_distance_m", round3(r.Productive)).
		AddField("trips", r.Trips).
		AddField("efficiency", round3(r.Efficiency())).
		SetTime(time.Now())
	return s.write(p)
}

func wallOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}

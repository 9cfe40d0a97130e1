package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/trikesim/config"
	"github.com/kilianp07/trikesim/core/eventlog"
	coremetrics "github.com/kilianp07/trikesim/core/metrics"
	"github.com/kilianp07/trikesim/core/metrics/kpi"
	coremon "github.com/kilianp07/trikesim/core/monitoring"
	corerouting "github.com/kilianp07/trikesim/core/routing"
	"github.com/kilianp07/trikesim/core/scheduler"
	"github.com/kilianp07/trikesim/core/sim"
	infrakpi "github.com/kilianp07/trikesim/infra/kpi"
	"github.com/kilianp07/trikesim/infra/logger"
	"github.com/kilianp07/trikesim/infra/metrics"
	"github.com/kilianp07/trikesim/infra/monitoring"
	"github.com/kilianp07/trikesim/infra/mqtt"
	"github.com/kilianp07/trikesim/infra/routing"
	"github.com/kilianp07/trikesim/pkg/export"
)

// Service runs the configured scenario runs.count times and persists
// every run.
type Service struct {
	cfg          *config.Config
	log          logger.Logger
	planner      corerouting.Planner
	closePlanner func() error
	hotspots     *sim.HotspotCache
	sink         *coremetrics.MultiSink
	events       eventlog.Store
	kpis         kpi.Store
	closeKPIs    func() error
	monitor      coremon.Monitor
	newRunID     func(sim.Config) string
}

// kpiSink keeps vehicle KPIs for the run exports.
type kpiSink struct {
	coremetrics.NopSink
	store kpi.Store
}

func (k kpiSink) RecordVehicleKPI(r kpi.Record) error { return k.store.Add(r) }

// RunID names a run after its population: <trikes>-<terminals>-<passengers>-<uuid8>.
func RunID(cfg sim.Config) string {
	return fmt.Sprintf("%d-%d-%d-%s", cfg.Tricycles, cfg.TerminalCount(), cfg.Passengers, uuid.NewString()[:8])
}

var openKPIStore = func(path string) (kpi.Store, func() error, error) {
	store, err := infrakpi.NewSQLiteStore(path)
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}

// New creates a Service from the configuration.
func New(ctx context.Context, cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	svc := &Service{cfg: cfg, log: logg, kpis: kpi.NewMemoryStore(), newRunID: RunID}
	if cfg.KPI.Path != "" {
		store, closeStore, err := openKPIStore(cfg.KPI.Path)
		if err != nil {
			return nil, fmt.Errorf("kpi store: %w", err)
		}
		svc.kpis, svc.closeKPIs = store, closeStore
	}

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		svc.Close()
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)
	svc.monitor = mon

	planner, closePlanner, err := routing.NewPlanner(ctx, cfg.Routing, logger.New("routing"))
	if err != nil {
		svc.Close()
		return nil, fmt.Errorf("route planner: %w", err)
	}
	svc.planner, svc.closePlanner = planner, closePlanner
	svc.hotspots = sim.NewHotspotCache(planner, logg)

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks, coremetrics.Env{Logger: logger.New("metrics")})
	if err != nil {
		svc.Close()
		return nil, fmt.Errorf("metrics sinks: %w", err)
	}
	sinks := []coremetrics.MetricsSink{sink, kpiSink{store: svc.kpis}}
	if cfg.MQTT.Enabled {
		tel, _, err := mqtt.NewTelemetrySink(cfg.MQTT)
		if err != nil {
			svc.Close()
			return nil, fmt.Errorf("mqtt telemetry: %w", err)
		}
		sinks = append(sinks, tel)
	}
	svc.sink = coremetrics.NewMultiSink(sinks...)

	events, err := eventlog.New(ctx, cfg.EventLog.Module())
	if err != nil {
		svc.Close()
		return nil, fmt.Errorf("event log: %w", err)
	}
	svc.events = events
	return svc, nil
}

// Events returns the event store runs are persisted to.
func (s *Service) Events() eventlog.Store { return s.events }

// Run executes every configured run in sequence. Run i uses seed
// simulation.seed + i; all runs share the resolved hotspots.
func (s *Service) Run(ctx context.Context) ([]sim.Summary, error) {
	if port := s.cfg.Metrics.PrometheusPort; port != "" {
		addr := port
		if !strings.Contains(addr, ":") {
			addr = ":" + addr
		}
		go func() {
			if err := metrics.StartPromServer(ctx, addr, prometheus.DefaultGatherer, s.log); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	summaries := make([]sim.Summary, 0, s.cfg.Runs.Count)
	for i := 0; i < s.cfg.Runs.Count; i++ {
		sum, err := s.runOnce(ctx, i)
		if err != nil {
			return summaries, err
		}
		summaries = append(summaries, sum)
	}
	return summaries, nil
}

func (s *Service) runOnce(ctx context.Context, i int) (sim.Summary, error) {
	simCfg := s.cfg.Simulation
	simCfg.Seed += int64(i)
	runID := s.newRunID(simCfg)
	log := logger.New("sim")

	sched, err := scheduler.New(s.cfg.Tricycle.Scheduler)
	if err != nil {
		return sim.Summary{}, fmt.Errorf("scheduler: %w", err)
	}
	async := metrics.NewAsyncSink(ctx, s.sink, s.cfg.Metrics.BusBuffer, log)
	defer async.Close()
	claims, err := s.cfg.NewClaimPolicy(s.planner, log, async)
	if err != nil {
		return sim.Summary{}, fmt.Errorf("claim policy: %w", err)
	}

	builder, err := sim.NewBuilder(simCfg, sim.WorldDeps{
		Planner:   s.planner,
		Scheduler: sched,
		Claims:    claims,
		Hotspots:  s.hotspots,
		Logger:    log,
	})
	if err != nil {
		return sim.Summary{}, err
	}
	world, err := builder.Build(ctx, rand.New(rand.NewSource(simCfg.Seed)))
	if err != nil {
		return sim.Summary{}, fmt.Errorf("build run %s: %w", runID, err)
	}
	out := s.cfg.Output
	simulator, err := sim.New(builder.Config(), world, sim.Deps{
		RunID:        runID,
		Sink:         async,
		Monitor:      s.monitor,
		Logger:       log,
		KeepTimeline: !out.Disabled && !out.SkipReport,
	})
	if err != nil {
		return sim.Summary{}, err
	}
	sum, err := simulator.Run(ctx)
	if err != nil {
		return sum, fmt.Errorf("run %s: %w", runID, err)
	}

	if err := eventlog.Persist(ctx, s.events, runID, world); err != nil {
		s.log.Errorf("persist events of %s: %v", runID, err)
	}
	if out.Disabled {
		return sum, nil
	}
	kpis, err := s.kpis.Query(runID)
	if err != nil {
		s.log.Warnf("vehicle kpis of %s: %v", runID, err)
	}
	dir := filepath.Join(out.Dir, runID)
	err = export.WriteRun(dir, export.Result{
		RunID:    runID,
		Config:   builder.Config(),
		Summary:  sum,
		World:    world,
		Timeline: simulator.Timeline(),
		KPIs:     kpis,
	}, export.Options{SkipEntities: out.SkipEntities, SkipCSV: out.SkipCSV, SkipReport: out.SkipReport})
	if err != nil {
		return sum, fmt.Errorf("export %s: %w", runID, err)
	}
	s.log.Infof("run %s written to %s", runID, dir)
	return sum, nil
}

// Close releases the planner, the stores and the sink connections.
func (s *Service) Close() error {
	var errs []error
	if s.events != nil {
		errs = append(errs, s.events.Close())
	}
	if s.closePlanner != nil {
		errs = append(errs, s.closePlanner())
	}
	if s.closeKPIs != nil {
		errs = append(errs, s.closeKPIs())
	}
	if s.sink != nil {
		s.sink.Close()
	}
	if s.monitor != nil {
		s.monitor.Flush(s.cfg.Sentry.FlushTimeout())
	}
	return errors.Join(errs...)
}

package sim

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/kilianp07/trikesim/core/fleet"
	"github.com/kilianp07/trikesim/core/geo"
	"github.com/kilianp07/trikesim/core/logger"
	"github.com/kilianp07/trikesim/core/metrics"
	"github.com/kilianp07/trikesim/core/model"
	"github.com/kilianp07/trikesim/core/monitoring"
)

// Phase names used in fault reports.
const (
	PhaseClaim    = "claim"
	PhaseLoad     = "load"
	PhaseMove     = "move"
	PhaseTerminal = "terminal"
)

// Summary aggregates a finished run.
type Summary = metrics.Summary

// Deps are the run-level collaborators of a Simulator.
type Deps struct {
	RunID   string
	Sink    metrics.MetricsSink
	Monitor monitoring.Monitor
	Logger  logger.Logger
	// KeepTimeline retains every TickStats for reporting.
	KeepTimeline bool
}

// Simulator drives a World through the four tick phases.
type Simulator struct {
	cfg   Config
	world *World
	deps  Deps
	log   logger.Logger

	tick       int64
	now        int64
	lastActive int64
	faults     int
	timeline   []metrics.TickStats
	elapsed    time.Duration
}

// New prepares a simulator at time zero.
func New(cfg Config, world *World, deps Deps) (*Simulator, error) {
	cfg.SetDefaults()
	if world == nil {
		return nil, fmt.Errorf("%w: world required", ErrConfig)
	}
	if deps.Sink == nil {
		deps.Sink = metrics.NopSink{}
	}
	if deps.Monitor == nil {
		deps.Monitor = monitoring.Current()
	}
	return &Simulator{cfg: cfg, world: world, deps: deps, log: logger.OrNop(deps.Logger)}, nil
}

func (s *Simulator) World() *World                 { return s.world }
func (s *Simulator) Now() int64                    { return s.now }
func (s *Simulator) Ticks() int64                  { return s.tick }
func (s *Simulator) Timeline() []metrics.TickStats { return s.timeline }
func (s *Simulator) RunID() string                 { return s.deps.RunID }

// Done reports whether the horizon is reached or every passenger was
// delivered.
func (s *Simulator) Done() bool {
	if s.now >= s.cfg.Horizon {
		return true
	}
	return s.tick > 0 && s.allCompleted()
}

func (s *Simulator) allCompleted() bool {
	for _, p := range s.world.Passengers {
		if p.Status != model.PassengerCompleted {
			return false
		}
	}
	return true
}

// Step runs one tick and advances the clock.
func (s *Simulator) Step(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	now := s.now

	for _, v := range s.world.Tricycles {
		if !v.Active() {
			continue
		}
		s.guard(v, PhaseClaim, func() { v.ClaimNearby(ctx, now) })
	}

	for _, v := range s.world.Tricycles {
		if !v.Active() {
			continue
		}
		s.guard(v, PhaseLoad, func() {
			if len(v.TryUnload(ctx, now)) > 0 {
				s.markActive(now)
			}
			v.TryLoad(ctx, now)
		})
	}

	for _, v := range s.world.Tricycles {
		if !v.Active() {
			continue
		}
		s.guard(v, PhaseMove, func() {
			if _, moved := v.Move(now); !moved {
				s.idle(ctx, v, now)
			}
		})
	}

	for _, t := range s.world.Terminals {
		s.matchTerminal(ctx, t, now)
	}

	s.tick++
	s.now = int64(math.Round(float64(s.tick) * s.cfg.TickSeconds))
	s.record()
	return nil
}

// matchTerminal releases head vehicles loaded with queued passengers. Each
// head is guarded on its own; a retired head is evicted and the next one
// is tried in the same tick.
func (s *Simulator) matchTerminal(ctx context.Context, t *fleet.Terminal, now int64) {
	for t.HasPassengers() {
		head := t.Head()
		if head == nil {
			return
		}
		matched := false
		s.guard(head, PhaseTerminal, func() {
			m, ok := t.MatchHead(now)
			if !ok {
				return
			}
			matched = true
			m.Tricycle.ScheduleNext(ctx)
		})
		if !matched && !head.Finished() {
			return
		}
	}
}

// idle handles a vehicle that could not move this tick.
func (s *Simulator) idle(ctx context.Context, v *fleet.Tricycle, now int64) {
	if len(v.TryUnload(ctx, now)) > 0 {
		s.markActive(now)
	}
	if !v.Active() {
		return
	}
	switch {
	case v.Enqueued() != nil:
		if !v.UpdatePath(ctx, v.Enqueued().Src, fleet.Front) {
			v.ReleaseClaim(now)
		}
	case v.HasPassenger():
		if v.ScheduleNext(ctx) == nil {
			s.log.Debugf("%s: could not schedule next drop-off", v.ID())
		}
	case !v.Roaming():
		s.returnToTerminal(ctx, v, now)
	default:
		v.OnCycleComplete(ctx, now)
		v.LoadNextCyclePoint(ctx)
	}
}

// returnToTerminal parks v at the terminal it stands on, or routes it to
// the nearest terminal with room. A vehicle with nowhere to go is retired.
func (s *Simulator) returnToTerminal(ctx context.Context, v *fleet.Tricycle, now int64) {
	var nearest *fleet.Terminal
	best := math.Inf(1)
	for _, t := range s.world.Terminals {
		if t.Full() {
			continue
		}
		if v.AtLocation(t.Location) {
			st := v.Status()
			if (st == model.TricycleIdle || st == model.TricycleReturning) && t.AddTricycle(v) {
				return
			}
		}
		if d := geo.Euclidean(v.Position(), t.Location); d < best {
			nearest, best = t, d
		}
	}
	if nearest == nil {
		s.log.Infof("%s: no terminal available, finishing", v.ID())
		v.Finish(now)
		return
	}
	if !v.UpdatePath(ctx, nearest.Location, fleet.Front) {
		s.log.Infof("%s: no route to %s, finishing", v.ID(), nearest.ID)
		v.Finish(now)
	}
}

// guard runs fn and retires v if it panics.
func (s *Simulator) guard(v *fleet.Tricycle, phase string, fn func()) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		fault := monitoring.VehicleFault{RunID: s.deps.RunID, VehicleID: v.ID(), Phase: phase, Time: s.now, Cause: r}
		s.faults++
		s.log.Errorf("%v", fault)
		monitoring.CaptureVehicleFault(s.deps.Monitor, fault)
		if rec, ok := s.deps.Sink.(metrics.VehicleFaultRecorder); ok {
			if err := rec.RecordVehicleFault(metrics.VehicleFault{
				RunID: s.deps.RunID, VehicleID: v.ID(), Phase: phase, Time: s.now, Error: fault.Error(),
			}); err != nil {
				s.log.Warnf("record vehicle fault: %v", err)
			}
		}
		v.Finish(s.now)
	}()
	fn()
}

func (s *Simulator) markActive(now int64) {
	s.lastActive = now + int64(math.Round(s.cfg.TickSeconds))
}

func (s *Simulator) record() {
	ts := s.Stats()
	if s.deps.KeepTimeline {
		s.timeline = append(s.timeline, ts)
	}
	if err := s.deps.Sink.RecordTick(ts); err != nil {
		s.log.Warnf("record tick %d: %v", ts.Tick, err)
	}
}

// Stats summarises the current tick.
func (s *Simulator) Stats() metrics.TickStats {
	ts := metrics.TickStats{
		RunID:    s.deps.RunID,
		Tick:     s.tick,
		Time:     s.now,
		Statuses: make(map[string]int, len(model.TricycleStatuses)),
		Wall:     time.Now(),
	}
	for _, p := range s.world.Passengers {
		switch p.Status {
		case model.PassengerWaiting:
			ts.Waiting++
		case model.PassengerEnqueued:
			ts.Enqueued++
		case model.PassengerOnboard:
			ts.Onboard++
		case model.PassengerCompleted:
			ts.Completed++
		}
	}
	for _, v := range s.world.Tricycles {
		if v.Active() {
			ts.ActiveTricycles++
		}
		ts.Statuses[string(v.Status())]++
		ts.Distance += v.TotalDistance()
		ts.ProductiveDistance += v.ProductiveDistance()
	}
	return ts
}

// Run steps until Done or ctx is cancelled, then records the summary.
func (s *Simulator) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	s.log.Infof("run %s started: %d tricycles, %d passengers, horizon %d",
		s.deps.RunID, len(s.world.Tricycles), len(s.world.Passengers), s.cfg.Horizon)
	for !s.Done() {
		if err := s.Step(ctx); err != nil {
			s.elapsed = time.Since(start)
			return s.Summary(), err
		}
	}
	s.elapsed = time.Since(start)
	sum := s.Summary()
	if rec, ok := s.deps.Sink.(metrics.SummaryRecorder); ok {
		if err := rec.RecordSummary(sum); err != nil {
			s.log.Warnf("record summary: %v", err)
		}
	}
	if rec, ok := s.deps.Sink.(metrics.VehicleKPIRecorder); ok {
		for _, r := range s.VehicleKPIs() {
			if err := rec.RecordVehicleKPI(r); err != nil {
				s.log.Warnf("record kpi for %s: %v", r.VehicleID, err)
				break
			}
		}
	}
	s.log.Infof("run %s finished at t=%d: %d/%d completed (%.1f%%)",
		s.deps.RunID, s.now, sum.Completed, sum.TotalPassengers, sum.CompletionRate)
	return sum, nil
}

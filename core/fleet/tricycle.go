package fleet

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/samber/lo"

	"github.com/kilianp07/trikesim/core/dispatch"
	"github.com/kilianp07/trikesim/core/geo"
	"github.com/kilianp07/trikesim/core/logger"
	"github.com/kilianp07/trikesim/core/model"
	"github.com/kilianp07/trikesim/core/routing"
	"github.com/kilianp07/trikesim/core/scheduler"
	"github.com/kilianp07/trikesim/core/spatial"
)

// Dwell hints attached to WAIT events, in milliseconds.
const (
	loadDwellMillis    = 200
	dropoffDwellMillis = 100
)

// RoamPathGenerator produces fresh roam cycles.
type RoamPathGenerator interface {
	NewRoamPath(ctx context.Context) (*geo.Cycle, error)
}

// Deps are the collaborators shared by every vehicle of a run.
type Deps struct {
	Planner   routing.Planner
	Scheduler scheduler.DropoffScheduler
	Claims    dispatch.ClaimPolicy
	Map       *spatial.Map
	Roam      RoamPathGenerator
	Logger    logger.Logger
}

// Tricycle is a capacity-limited vehicle.
type Tricycle struct {
	cfg      Config
	planner  routing.Planner
	sched    scheduler.DropoffScheduler
	claims   dispatch.ClaimPolicy
	registry *spatial.Map
	roam     RoamPathGenerator
	log      logger.Logger

	status     model.TricycleStatus
	active     bool
	path       geo.Path
	toGo       geo.Path
	passengers []*model.Passenger
	enqueued   *model.Passenger
	roamPath   *geo.Cycle
	cycleCount int

	totalDistance      float64
	productiveDistance float64
	deathTime          int64
	events             model.EventLog
}

// New creates an active vehicle at cfg.Start. Roaming vehicles start in
// ROAMING, the others in IDLE. Missing scheduler and claim policy default
// to first-come and nearest.
func New(cfg Config, deps Deps) (*Tricycle, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("tricycle %s: %w", cfg.ID, err)
	}
	if deps.Planner == nil || deps.Map == nil {
		return nil, errors.New("tricycle: planner and map are required")
	}
	if deps.Scheduler == nil {
		deps.Scheduler = scheduler.FirstCome{}
	}
	if deps.Claims == nil {
		deps.Claims = dispatch.Nearest{}
	}
	v := &Tricycle{
		cfg:       cfg,
		planner:   deps.Planner,
		sched:     deps.Scheduler,
		claims:    deps.Claims,
		registry:  deps.Map,
		roam:      deps.Roam,
		log:       logger.OrNop(deps.Logger),
		status:    model.TricycleIdle,
		active:    true,
		path:      geo.Path{cfg.Start},
		deathTime: -1,
	}
	if cfg.Roaming {
		v.status = model.TricycleRoaming
	}
	v.events.Append(model.Event{Kind: model.EventAppear, Time: cfg.CreateTime, Location: cfg.Start})
	deps.Map.AddVehicle(v)
	return v, nil
}

func (v *Tricycle) ID() string                   { return v.cfg.ID }
func (v *Tricycle) Position() geo.Point          { return v.path[len(v.path)-1] }
func (v *Tricycle) Status() model.TricycleStatus { return v.status }
func (v *Tricycle) Roaming() bool                { return v.cfg.Roaming }
func (v *Tricycle) Active() bool                 { return v.active }
func (v *Tricycle) Capacity() int                { return v.cfg.Capacity }
func (v *Tricycle) Full() bool                   { return len(v.passengers) >= v.cfg.Capacity }
func (v *Tricycle) HasPassenger() bool           { return len(v.passengers) > 0 }
func (v *Tricycle) Enqueued() *model.Passenger   { return v.enqueued }
func (v *Tricycle) RoamPath() *geo.Cycle         { return v.roamPath }
func (v *Tricycle) CycleCount() int              { return v.cycleCount }
func (v *Tricycle) TotalDistance() float64       { return v.totalDistance }
func (v *Tricycle) ProductiveDistance() float64  { return v.productiveDistance }
func (v *Tricycle) CreateTime() int64            { return v.cfg.CreateTime }
func (v *Tricycle) DeathTime() int64             { return v.deathTime }

// Passengers returns the onboard passengers in boarding order.
func (v *Tricycle) Passengers() []*model.Passenger {
	return append([]*model.Passenger(nil), v.passengers...)
}

// ToGo returns a copy of the pending waypoints.
func (v *Tricycle) ToGo() geo.Path { return append(geo.Path(nil), v.toGo...) }

// Path returns a copy of the travelled positions.
func (v *Tricycle) Path() geo.Path { return append(geo.Path(nil), v.path...) }

// Events returns a copy of the event log.
func (v *Tricycle) Events() model.EventLog { return append(model.EventLog(nil), v.events...) }

// SetStatus applies a transition from the status table. Illegal requests,
// including staying in the same status, leave the status unchanged.
func (v *Tricycle) SetStatus(next model.TricycleStatus) bool {
	if !v.status.CanTransition(next) {
		v.log.Debugw("transition rejected", map[string]any{
			"vehicle_id": v.cfg.ID, "from": string(v.status), "to": string(next),
		})
		return false
	}
	v.status = next
	return true
}

// ClaimNearby reserves the nearest waiting passenger if the claim policy
// agrees, then routes to its pickup. Only active ROAMING or SERVING
// vehicles with a free seat and no outstanding claim look for passengers.
func (v *Tricycle) ClaimNearby(ctx context.Context, now int64) *model.Passenger {
	if !v.active || v.enqueued != nil || v.Full() {
		return nil
	}
	if v.status != model.TricycleRoaming && v.status != model.TricycleServing {
		return nil
	}
	radius := v.cfg.IdleRadius
	if v.HasPassenger() {
		radius = v.cfg.ServingRadius
	}
	cur := v.Position()
	p := v.registry.NearestWaiting(cur, radius)
	if p == nil {
		return nil
	}
	c := dispatch.Candidate{VehicleID: v.cfg.ID, Position: cur, Onboard: len(v.passengers), Passenger: p}
	if len(v.toGo) > 0 {
		next := v.toGo[0]
		c.Next = &next
	}
	if !v.claims.ShouldClaim(ctx, c) {
		return nil
	}
	if !p.OnEnqueue(v.cfg.ID, now, cur) {
		return nil
	}
	v.enqueued = p
	v.events.Append(model.Event{Kind: model.EventEnqueue, Time: now, Location: cur, Ref: p.ID})
	v.SetStatus(model.TricycleEnqueuing)

	if !lo.Contains(v.toGo, p.Src) && !v.UpdatePath(ctx, p.Src, Front) {
		v.log.Debugf("%s: no route to pickup of %s, releasing claim", v.cfg.ID, p.ID)
		v.ReleaseClaim(now)
		return nil
	}
	return p
}

// ReleaseClaim resets the outstanding claim, if any, and settles the status.
func (v *Tricycle) ReleaseClaim(now int64) {
	p := v.enqueued
	if p == nil {
		return
	}
	p.OnReset(now, p.Src)
	v.events.Append(model.Event{Kind: model.EventReset, Time: now, Location: v.Position(), Ref: p.ID})
	v.enqueued = nil
	v.settle()
}

// settle leaves ENQUEUING once no claim is outstanding.
func (v *Tricycle) settle() {
	if v.status != model.TricycleEnqueuing {
		return
	}
	switch {
	case v.HasPassenger():
		v.SetStatus(model.TricycleServing)
	case v.cfg.Roaming:
		v.SetStatus(model.TricycleRoaming)
	default:
		v.SetStatus(model.TricycleIdle)
	}
}

// TryLoad picks up the claimed passenger when standing on its source. A
// full vehicle resets the claim instead.
func (v *Tricycle) TryLoad(ctx context.Context, now int64) *model.Passenger {
	p := v.enqueued
	if !v.active || p == nil || !v.atLocation(v.Position(), p.Src) {
		return nil
	}
	if v.Full() {
		v.log.Debugf("%s: full at pickup of %s", v.cfg.ID, p.ID)
		v.ReleaseClaim(now)
		return nil
	}
	if !v.Load(p, now) {
		v.ReleaseClaim(now)
		return nil
	}
	v.ScheduleNext(ctx)
	return p
}

// Load boards p. Waiting passengers (terminal queues) are claimed first.
func (v *Tricycle) Load(p *model.Passenger, now int64) bool {
	if v.Full() {
		return false
	}
	cur := v.Position()
	if p.Status == model.PassengerWaiting && !p.OnEnqueue(v.cfg.ID, now, cur) {
		return false
	}
	if !p.OnLoad(v.cfg.ID, now, cur) {
		return false
	}
	v.passengers = append(v.passengers, p)
	v.events.Append(model.Event{Kind: model.EventLoad, Time: now, Location: cur, Ref: p.ID})
	v.events.Append(model.Event{Kind: model.EventWait, Time: now, Location: cur, Millis: loadDwellMillis})
	if v.enqueued == p {
		v.enqueued = nil
	}
	v.cycleCount = 0
	if v.enqueued == nil && v.status != model.TricycleServing {
		v.SetStatus(model.TricycleServing)
	}
	v.registry.RemovePassenger(p)
	return true
}

// TryUnload drops every passenger whose destination is within the drop-off
// radius, then re-plans toward the outstanding claim or the next drop-off.
func (v *Tricycle) TryUnload(ctx context.Context, now int64) []*model.Passenger {
	if !v.active {
		return nil
	}
	cur := v.Position()
	dropped, kept := lo.FilterReject(v.passengers, func(p *model.Passenger, _ int) bool {
		return geo.Within(cur, p.Dest, v.cfg.dropoffRadius())
	})
	for _, p := range dropped {
		p.OnDropoff(now, cur)
		v.events.Append(model.Event{Kind: model.EventDropoff, Time: now, Location: cur, Ref: p.ID})
	}
	v.passengers = kept

	if !v.HasPassenger() && v.enqueued == nil {
		target := model.TricycleReturning
		if v.cfg.Roaming {
			target = model.TricycleRoaming
		}
		if v.status != target {
			v.SetStatus(target)
		}
	}
	if len(dropped) == 0 {
		return nil
	}
	v.events.Append(model.Event{Kind: model.EventWait, Time: now, Location: cur, Millis: dropoffDwellMillis})
	switch {
	case v.enqueued != nil:
		if !v.UpdatePath(ctx, v.enqueued.Src, Front) {
			v.ReleaseClaim(now)
		}
	case v.HasPassenger():
		v.ScheduleNext(ctx)
	}
	return dropped
}

// ScheduleNext asks the scheduler for the next drop-off and routes to it
// with front priority. It returns the chosen passenger, or nil when nothing
// could be planned; the caller retries on a later tick.
func (v *Tricycle) ScheduleNext(ctx context.Context) *model.Passenger {
	if !v.HasPassenger() {
		return nil
	}
	_, p := v.sched.SelectNextDropoff(v.Position(), v.Passengers())
	if p == nil || !v.UpdatePath(ctx, p.Dest, Front) {
		return nil
	}
	if v.status != model.TricycleServing {
		v.SetStatus(model.TricycleServing)
	}
	return p
}

// Move advances the vehicle toward the head of its queue by one tick and
// returns the distance covered. It reports false when the vehicle did not
// move: parked at a terminal, inactive, or nothing left to drive.
func (v *Tricycle) Move(now int64) (float64, bool) {
	if !v.active || v.status == model.TricycleTerminal {
		return 0, false
	}
	cur := v.Position()
	for len(v.toGo) > 0 && geo.Distance(cur, v.toGo[0]) == 0 {
		v.toGo = v.toGo[1:]
	}
	if len(v.toGo) == 0 {
		return 0, false
	}
	next := v.toGo[0]
	required := geo.Distance(cur, next)
	travelled := math.Min(required, v.cfg.Speed*v.cfg.TickSeconds)
	progress := travelled / required

	pos := next
	if progress < 1 {
		pos = geo.Interpolate(cur, next, progress)
	} else {
		v.toGo = v.toGo[1:]
	}
	v.path = append(v.path, pos)
	v.totalDistance += travelled
	if v.HasPassenger() {
		v.productiveDistance += travelled
	}
	v.events.Append(model.Event{Kind: model.EventMove, Time: now, Location: pos})
	return travelled, true
}

// OnCycleComplete counts an exhausted roam leg for an empty ROAMING vehicle
// without a claim, and draws a new roam path after MaxCycles legs.
func (v *Tricycle) OnCycleComplete(ctx context.Context, now int64) {
	if v.status != model.TricycleRoaming || v.HasPassenger() || v.enqueued != nil {
		return
	}
	v.cycleCount++
	if v.cycleCount >= v.cfg.MaxCycles {
		v.NewRoamPath(ctx, now)
	}
}

// LoadNextCyclePoint queues the roam path point following the current
// position.
func (v *Tricycle) LoadNextCyclePoint(ctx context.Context) bool {
	if v.roamPath == nil {
		return false
	}
	return v.UpdatePath(ctx, v.roamPath.Next(v.Position()), Append)
}

// NewRoamPath draws a roam cycle and queues its start. The previous roam
// path is kept when generation or routing fails.
func (v *Tricycle) NewRoamPath(ctx context.Context, now int64) bool {
	if v.roam == nil {
		return false
	}
	c, err := v.roam.NewRoamPath(ctx)
	if err != nil {
		v.log.Warnf("%s: roam path generation failed: %v", v.cfg.ID, err)
		return false
	}
	if !v.UpdatePath(ctx, c.Start(), Append) {
		return false
	}
	v.roamPath = c
	v.cycleCount = 0
	v.events.Append(model.Event{
		Kind: model.EventNewRoamPath, Time: now, Location: v.Position(),
		Path: []geo.Point{c.Start(), c.End()},
	})
	return true
}

// Finish retires the vehicle. An outstanding claim is released so the
// passenger can be served by someone else.
func (v *Tricycle) Finish(now int64) {
	if v.Finished() {
		return
	}
	v.ReleaseClaim(now)
	v.active = false
	v.deathTime = now
	v.toGo = nil
	v.events.Append(model.Event{Kind: model.EventFinish, Time: now, Location: v.Position()})
}

// Finished reports whether the vehicle was retired.
func (v *Tricycle) Finished() bool { return v.deathTime >= 0 }

// park deactivates the vehicle inside a terminal.
func (v *Tricycle) park() bool {
	if !v.SetStatus(model.TricycleTerminal) {
		return false
	}
	v.active = false
	v.toGo = nil
	return true
}

// release puts a parked vehicle back on the road.
func (v *Tricycle) release() { v.active = true }

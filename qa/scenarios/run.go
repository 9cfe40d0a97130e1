package scenarios

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/trikesim/core/dispatch"
	"github.com/kilianp07/trikesim/core/factory"
	"github.com/kilianp07/trikesim/core/fleet"
	"github.com/kilianp07/trikesim/core/geo"
	"github.com/kilianp07/trikesim/core/model"
	"github.com/kilianp07/trikesim/core/routing"
	"github.com/kilianp07/trikesim/core/scheduler"
	"github.com/kilianp07/trikesim/core/sim"
	"github.com/kilianp07/trikesim/core/spatial"
	"github.com/kilianp07/trikesim/infra/metrics"
)

// Result is the outcome of one scenario.
type Result struct {
	Summary sim.Summary
	World   *sim.World
	// Registry holds the run's Prometheus metrics.
	Registry *prometheus.Registry
}

type fixedRoam struct{ c *geo.Cycle }

func (f fixedRoam) NewRoamPath(context.Context) (*geo.Cycle, error) {
	if f.c == nil {
		return nil, errors.New("no roam path defined")
	}
	return f.c, nil
}

// Run builds the scenario world on the straight-line planner and
// simulates it to completion or to the horizon.
func Run(ctx context.Context, sc *Scenario) (*Result, error) {
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		return nil, fmt.Errorf("prom sink: %w", err)
	}
	planner := routing.StraightLine{Step: 25}
	sched, err := scheduler.New(factory.ModuleConfig{Type: sc.Tricycle.Scheduler})
	if err != nil {
		return nil, err
	}
	claims, err := dispatch.New(factory.ModuleConfig{Type: sc.Tricycle.ClaimPolicy}, dispatch.Env{Planner: planner, Recorder: sink})
	if err != nil {
		return nil, err
	}

	cfg := sim.Config{
		Horizon: sc.Horizon,
		Tricycle: fleet.Config{
			Capacity:  sc.Tricycle.Capacity,
			Speed:     sc.Tricycle.Speed,
			MaxCycles: sc.Tricycle.MaxCycles,
		},
	}
	cfg.SetDefaults()
	w, err := buildWorld(ctx, sc, cfg, fleet.Deps{Planner: planner, Scheduler: sched, Claims: claims})
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}

	s, err := sim.New(cfg, w, sim.Deps{RunID: sc.Name, Sink: sink})
	if err != nil {
		return nil, err
	}
	sum, err := s.Run(ctx)
	if err != nil {
		return nil, err
	}
	return &Result{Summary: sum, World: w, Registry: reg}, nil
}

func buildWorld(ctx context.Context, sc *Scenario, cfg sim.Config, deps fleet.Deps) (*sim.World, error) {
	w := &sim.World{Map: spatial.NewMap(cfg.BoundsMin, cfg.BoundsMax), Claims: deps.Claims}
	deps.Map = w.Map
	terminals := map[string]*fleet.Terminal{}
	for _, def := range sc.Terminals {
		loc, err := def.Location.Point()
		if err != nil {
			return nil, fmt.Errorf("terminal %s: %w", def.ID, err)
		}
		t := fleet.NewTerminal(def.ID, loc, def.Capacity)
		terminals[def.ID] = t
		w.Terminals = append(w.Terminals, t)
	}

	for _, def := range sc.Tricycles {
		tc := cfg.Tricycle
		tc.ID = def.ID
		home := terminals[def.Terminal]
		if def.Terminal != "" && home == nil {
			return nil, fmt.Errorf("tricycle %s: unknown terminal %s", def.ID, def.Terminal)
		}
		tc.Roaming = home == nil
		var err error
		if tc.Start, err = def.Start.Point(); err != nil {
			if home == nil {
				return nil, fmt.Errorf("tricycle %s: %w", def.ID, err)
			}
			tc.Start = home.Location
		}
		vdeps := deps
		if len(def.Roam) > 0 {
			cycle, err := roamCycle(def.Roam)
			if err != nil {
				return nil, fmt.Errorf("tricycle %s: %w", def.ID, err)
			}
			vdeps.Roam = fixedRoam{cycle}
		}
		v, err := fleet.New(tc, vdeps)
		if err != nil {
			return nil, err
		}
		switch {
		case home != nil:
			if !home.AddTricycle(v) {
				return nil, fmt.Errorf("tricycle %s: terminal %s is full", def.ID, home.ID)
			}
		case vdeps.Roam != nil:
			v.NewRoamPath(ctx, 0)
		}
		w.Tricycles = append(w.Tricycles, v)
	}

	for _, def := range sc.Passengers {
		dest, err := def.Dest.Point()
		if err != nil {
			return nil, fmt.Errorf("passenger %s: %w", def.ID, err)
		}
		t := terminals[def.Terminal]
		if def.Terminal != "" && t == nil {
			return nil, fmt.Errorf("passenger %s: unknown terminal %s", def.ID, def.Terminal)
		}
		var src geo.Point
		if t != nil {
			src = t.Location
		} else if src, err = def.Src.Point(); err != nil {
			return nil, fmt.Errorf("passenger %s: %w", def.ID, err)
		}
		p := model.NewPassenger(def.ID, src, dest, def.CreateTime)
		if t != nil {
			t.AddPassenger(p)
		}
		w.Map.AddPassenger(p)
		w.Passengers = append(w.Passengers, p)
	}
	return w, nil
}

func roamCycle(coords []Coord) (*geo.Cycle, error) {
	pts := make([]geo.Point, 0, len(coords))
	for _, c := range coords {
		p, err := c.Point()
		if err != nil {
			return nil, err
		}
		pts = append(pts, p)
	}
	return geo.NewCycle(pts...)
}

// Check compares r against the expectations.
func (e Expected) Check(r *Result) error {
	var errs []error
	if e.Completed != nil && r.Summary.Completed != *e.Completed {
		errs = append(errs, fmt.Errorf("completed %d, want %d", r.Summary.Completed, *e.Completed))
	}
	if r.Summary.CompletionRate < e.MinCompletionRate {
		errs = append(errs, fmt.Errorf("completion rate %.1f%%, want at least %.1f%%", r.Summary.CompletionRate, e.MinCompletionRate))
	}
	for _, v := range r.World.Tricycles {
		want, ok := e.Statuses[v.ID()]
		if ok && model.TricycleStatus(want) != v.Status() {
			errs = append(errs, fmt.Errorf("%s is %s, want %s", v.ID(), v.Status(), want))
		}
	}
	return errors.Join(errs...)
}

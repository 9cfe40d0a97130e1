package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/samber/lo"

	"github.com/kilianp07/trikesim/core/fleet"
	"github.com/kilianp07/trikesim/core/geo"
	"github.com/kilianp07/trikesim/core/metrics"
	"github.com/kilianp07/trikesim/core/metrics/kpi"
	"github.com/kilianp07/trikesim/core/sim"
)

// Result is everything written for one finished run.
type Result struct {
	RunID    string
	Config   sim.Config
	Summary  metrics.Summary
	World    *sim.World
	Timeline []metrics.TickStats
	// KPIs are written to kpis.json when present.
	KPIs []kpi.Record
}

// Options selects the optional outputs of WriteRun.
type Options struct {
	SkipEntities bool
	SkipCSV      bool
	SkipReport   bool
}

// Metadata describes the scenario a run was generated from.
type Metadata struct {
	ID                  string      `json:"id"`
	Seed                int64       `json:"seed"`
	MaxTime             int64       `json:"max_time"`
	TickSeconds         float64     `json:"tick_seconds"`
	TotalTricycles      int         `json:"total_tricycles"`
	TotalTerminals      int         `json:"total_terminals"`
	TotalPassengers     int         `json:"total_passengers"`
	RoamingTrikeChance  float64     `json:"roaming_trike_chance"`
	RoadPassengerChance float64     `json:"road_passenger_chance"`
	Hotspots            []geo.Point `json:"hotspots"`
	Tricycle            TrikeConfig `json:"trike_config"`
	EndTime             int64       `json:"end_time"`
	ElapsedSeconds      float64     `json:"elapsed_time"`
	LastActivityTime    int64       `json:"last_activity_time"`
}

// TrikeConfig is the vehicle template of a run.
type TrikeConfig struct {
	Capacity          int     `json:"capacity"`
	Speed             float64 `json:"speed"`
	MaxCycles         int     `json:"max_cycles"`
	ServingRadius     float64 `json:"serving_radius"`
	IdleRadius        float64 `json:"idle_radius"`
	DropoffRadius     float64 `json:"dropoff_radius"`
	LocationTolerance float64 `json:"location_tolerance"`
}

// TerminalState is a terminal and what is left in its queues.
type TerminalState struct {
	ID                  string    `json:"id"`
	Location            geo.Point `json:"location"`
	Capacity            int       `json:"capacity"`
	RemainingPassengers []string  `json:"remaining_passengers"`
	RemainingTricycles  []string  `json:"remaining_tricycles"`
}

// RoamEndpoints is the current roam path of a roaming tricycle.
type RoamEndpoints struct {
	TricycleID  string      `json:"tricycle_id"`
	StartPoint  geo.Point   `json:"start_point"`
	EndPoint    geo.Point   `json:"end_point"`
	Checkpoints []geo.Point `json:"checkpoints"`
}

// NewMetadata derives the metadata of r.
func NewMetadata(r Result) Metadata {
	tc := r.Config.Tricycle
	m := Metadata{
		ID:                  r.RunID,
		Seed:                r.Config.Seed,
		MaxTime:             r.Config.Horizon,
		TickSeconds:         r.Config.TickSeconds,
		RoamingTrikeChance:  r.Config.RoamingTrikeChance,
		RoadPassengerChance: r.Config.RoadPassengerChance,
		Tricycle: TrikeConfig{
			Capacity:          tc.Capacity,
			Speed:             tc.Speed,
			MaxCycles:         tc.MaxCycles,
			ServingRadius:     tc.ServingRadius,
			IdleRadius:        tc.IdleRadius,
			DropoffRadius:     lo.FromPtr(tc.DropoffRadius),
			LocationTolerance: lo.FromPtr(tc.LocationTolerance),
		},
		EndTime:          r.Summary.EndTime,
		ElapsedSeconds:   r.Summary.Elapsed.Round(time.Millisecond).Seconds(),
		LastActivityTime: r.Summary.LastActivityTime,
	}
	if w := r.World; w != nil {
		m.TotalTricycles = len(w.Tricycles)
		m.TotalTerminals = len(w.Terminals)
		m.TotalPassengers = len(w.Passengers)
		m.Hotspots = w.Hotspots
	}
	return m
}

// Terminals returns the end state of every terminal.
func Terminals(terminals []*fleet.Terminal) []TerminalState {
	out := make([]TerminalState, 0, len(terminals))
	for _, t := range terminals {
		s := t.Snapshot()
		out = append(out, TerminalState{
			ID:                  s.ID,
			Location:            s.Location,
			Capacity:            s.Capacity,
			RemainingPassengers: s.Passengers,
			RemainingTricycles:  s.Vehicles,
		})
	}
	return out
}

// RoamPaths returns the roam endpoints of every roaming tricycle.
func RoamPaths(tricycles []*fleet.Tricycle) []RoamEndpoints {
	out := []RoamEndpoints{}
	for _, v := range tricycles {
		c := v.RoamPath()
		if !v.Roaming() || c == nil {
			continue
		}
		out = append(out, RoamEndpoints{
			TricycleID:  v.ID(),
			StartPoint:  c.Start(),
			EndPoint:    c.End(),
			Checkpoints: c.Points(),
		})
	}
	return out
}

// VehicleKPI is a kpi.Record with its derived ratios.
type VehicleKPI struct {
	kpi.Record
	Efficiency      float64 `json:"efficiency_percentage"`
	DistancePerTrip float64 `json:"distance_per_trip"`
}

// KPIReport adds the derived ratios to every record.
func KPIReport(records []kpi.Record) []VehicleKPI {
	out := make([]VehicleKPI, len(records))
	for i, r := range records {
		out[i] = VehicleKPI{Record: r, Efficiency: r.Efficiency(), DistancePerTrip: r.DistancePerTrip()}
	}
	return out
}

// WriteRun writes the outputs of r under dir, creating it if needed.
func WriteRun(dir string, r Result, o Options) error {
	if r.World == nil {
		return fmt.Errorf("export: run %s has no world", r.RunID)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	files := map[string]any{
		"summary.json":        r.Summary,
		"metadata.json":       NewMetadata(r),
		"terminals.json":      Terminals(r.World.Terminals),
		"roam_endpoints.json": RoamPaths(r.World.Tricycles),
	}
	if len(r.KPIs) > 0 {
		files["kpis.json"] = KPIReport(r.KPIs)
	}
	for name, v := range files {
		if err := writeJSONFile(filepath.Join(dir, name), v); err != nil {
			return err
		}
	}

	if !o.SkipEntities {
		if err := writeEntities(dir, r.World); err != nil {
			return err
		}
	}
	if !o.SkipCSV {
		if err := writeFile(filepath.Join(dir, "passengers.csv"), func(f *os.File) error {
			return WritePassengersCSV(f, r.World.Passengers)
		}); err != nil {
			return err
		}
	}
	if !o.SkipReport && len(r.Timeline) > 0 {
		if err := writeFile(filepath.Join(dir, "report.html"), func(f *os.File) error {
			return WriteReport(f, r.RunID, r.Timeline)
		}); err != nil {
			return err
		}
	}
	return nil
}

func writeEntities(dir string, w *sim.World) error {
	trikes := filepath.Join(dir, "tricycles")
	passengers := filepath.Join(dir, "passengers")
	for _, d := range []string{trikes, passengers} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	for _, v := range w.Tricycles {
		if err := writeJSONFile(filepath.Join(trikes, v.ID()+".json"), v.Snapshot()); err != nil {
			return err
		}
	}
	for _, p := range w.Passengers {
		if err := writeJSONFile(filepath.Join(passengers, p.ID+".json"), p); err != nil {
			return err
		}
	}
	return nil
}

func writeJSONFile(path string, v any) error {
	return writeFile(path, func(f *os.File) error { return WriteJSON(f, v) })
}

func writeFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

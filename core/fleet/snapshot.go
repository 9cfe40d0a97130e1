package fleet

import (
	"github.com/kilianp07/trikesim/core/geo"
	"github.com/kilianp07/trikesim/core/model"
)

// Snapshot is the serialisable state of a vehicle.
type Snapshot struct {
	ID                 string               `json:"id"`
	Roaming            bool                 `json:"roaming"`
	Capacity           int                  `json:"capacity"`
	Status             model.TricycleStatus `json:"status"`
	Active             bool                 `json:"active"`
	CreateTime         int64                `json:"create_time"`
	DeathTime          int64                `json:"death_time"`
	TotalDistance      float64              `json:"total_distance"`
	ProductiveDistance float64              `json:"productive_distance"`
	Passengers         []string             `json:"passengers"`
	Enqueued           string               `json:"enqueued,omitempty"`
	RoamPath           []geo.Point          `json:"roam_path,omitempty"`
	Path               geo.Path             `json:"path"`
	Events             model.EventLog       `json:"events"`
}

// Snapshot captures the current state of v.
func (v *Tricycle) Snapshot() Snapshot {
	s := Snapshot{
		ID:                 v.cfg.ID,
		Roaming:            v.cfg.Roaming,
		Capacity:           v.cfg.Capacity,
		Status:             v.status,
		Active:             v.active,
		CreateTime:         v.cfg.CreateTime,
		DeathTime:          v.deathTime,
		TotalDistance:      v.totalDistance,
		ProductiveDistance: v.productiveDistance,
		Passengers:         make([]string, 0, len(v.passengers)),
		Path:               v.Path(),
		Events:             v.Events(),
	}
	for _, p := range v.passengers {
		s.Passengers = append(s.Passengers, p.ID)
	}
	if v.enqueued != nil {
		s.Enqueued = v.enqueued.ID
	}
	if v.roamPath != nil {
		s.RoamPath = v.roamPath.Points()
	}
	return s
}

// TerminalSnapshot is the serialisable state of a terminal.
type TerminalSnapshot struct {
	ID         string    `json:"id"`
	Location   geo.Point `json:"location"`
	Capacity   int       `json:"capacity"`
	Vehicles   []string  `json:"vehicles"`
	Passengers []string  `json:"passengers"`
}

// Snapshot captures the queues of t.
func (t *Terminal) Snapshot() TerminalSnapshot {
	s := TerminalSnapshot{
		ID: t.ID, Location: t.Location, Capacity: t.Capacity,
		Vehicles: make([]string, 0, len(t.vehicles)), Passengers: make([]string, 0, len(t.passengers)),
	}
	for _, v := range t.vehicles {
		s.Vehicles = append(s.Vehicles, v.ID())
	}
	for _, p := range t.passengers {
		s.Passengers = append(s.Passengers, p.ID)
	}
	return s
}

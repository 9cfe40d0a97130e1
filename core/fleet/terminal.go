package fleet

import (
	"github.com/kilianp07/trikesim/core/geo"
	"github.com/kilianp07/trikesim/core/model"
)

// Terminal capacities used by generated scenarios.
const (
	FixedTerminalCapacity  = 20
	RandomTerminalCapacity = 100
)

// Terminal is a parking spot with a FIFO of idle vehicles and a FIFO of
// passengers waiting for them.
type Terminal struct {
	ID       string
	Location geo.Point
	// Capacity bounds the vehicle queue; zero means unlimited.
	Capacity int

	vehicles   []*Tricycle
	passengers []*model.Passenger
}

// NewTerminal creates an empty terminal.
func NewTerminal(id string, loc geo.Point, capacity int) *Terminal {
	return &Terminal{ID: id, Location: loc, Capacity: capacity}
}

// AddTricycle parks v at the back of the queue. Only IDLE or RETURNING
// vehicles are accepted, and only while there is room.
func (t *Terminal) AddTricycle(v *Tricycle) bool {
	if t.Full() {
		return false
	}
	if s := v.Status(); s != model.TricycleIdle && s != model.TricycleReturning {
		return false
	}
	if !v.park() {
		return false
	}
	t.vehicles = append(t.vehicles, v)
	return true
}

// Full reports whether the vehicle queue is at capacity.
func (t *Terminal) Full() bool { return t.Capacity > 0 && len(t.vehicles) >= t.Capacity }

// AddPassenger queues p at the terminal.
func (t *Terminal) AddPassenger(p *model.Passenger) {
	p.Terminal = t.ID
	t.passengers = append(t.passengers, p)
}

// Vehicles returns the parked vehicles, head first.
func (t *Terminal) Vehicles() []*Tricycle { return append([]*Tricycle(nil), t.vehicles...) }

// Passengers returns the queued passengers, head first.
func (t *Terminal) Passengers() []*model.Passenger {
	return append([]*model.Passenger(nil), t.passengers...)
}

// LoadHead boards queued passengers into the head vehicle, front of the
// queue first, until the vehicle is full or a load fails. Passengers
// claimed by a road vehicle stay queued; passengers already served
// elsewhere are dropped from the queue.
func (t *Terminal) LoadHead(now int64) []*model.Passenger {
	if len(t.vehicles) == 0 {
		return nil
	}
	head := t.vehicles[0]
	var loaded, remaining []*model.Passenger
	stop := false
	for _, p := range t.passengers {
		switch {
		case p.Status == model.PassengerOnboard || p.Status == model.PassengerCompleted:
			continue
		case stop || p.Status != model.PassengerWaiting || head.Full():
			remaining = append(remaining, p)
		case head.Load(p, now):
			loaded = append(loaded, p)
		default:
			stop = true
			remaining = append(remaining, p)
		}
	}
	t.passengers = remaining
	return loaded
}

// PopTricycle releases the head vehicle back to active duty.
func (t *Terminal) PopTricycle() *Tricycle {
	if len(t.vehicles) == 0 {
		return nil
	}
	v := t.vehicles[0]
	t.vehicles = t.vehicles[1:]
	v.release()
	return v
}

// Match is one vehicle released with the passengers it took.
type Match struct {
	Tricycle   *Tricycle
	Passengers []*model.Passenger
}

// Head returns the vehicle at the front of the queue, or nil. Retired
// vehicles are evicted first so they never block the queue.
func (t *Terminal) Head() *Tricycle {
	for len(t.vehicles) > 0 && t.vehicles[0].Finished() {
		t.vehicles = t.vehicles[1:]
	}
	if len(t.vehicles) == 0 {
		return nil
	}
	return t.vehicles[0]
}

// HasPassengers reports whether passengers are queued.
func (t *Terminal) HasPassengers() bool { return len(t.passengers) > 0 }

// MatchHead loads the head vehicle and releases it. It reports false when
// there is no head or it accepted nobody.
func (t *Terminal) MatchHead(now int64) (Match, bool) {
	if t.Head() == nil {
		return Match{}, false
	}
	loaded := t.LoadHead(now)
	if len(loaded) == 0 {
		return Match{}, false
	}
	return Match{Tricycle: t.PopTricycle(), Passengers: loaded}, true
}

// Match pairs head vehicles with queued passengers until one queue is
// empty or the head vehicle accepts nobody.
func (t *Terminal) Match(now int64) []Match {
	var out []Match
	for t.HasPassengers() {
		m, ok := t.MatchHead(now)
		if !ok {
			break
		}
		out = append(out, m)
	}
	return out
}

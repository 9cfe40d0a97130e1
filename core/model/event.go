package model

import "github.com/kilianp07/trikesim/core/geo"

// EventKind identifies the type of an entity event.
type EventKind string

const (
	EventAppear      EventKind = "APPEAR"
	EventEnqueue     EventKind = "ENQUEUE"
	EventLoad        EventKind = "LOAD"
	EventDropoff     EventKind = "DROP-OFF"
	EventReset       EventKind = "RESET"
	EventMove        EventKind = "MOVE"
	EventWait        EventKind = "WAIT"
	EventNewRoamPath EventKind = "NEW_ROAM_PATH"
	EventFinish      EventKind = "FINISH"
)

// Event is one entry of an entity's append-only audit log.
type Event struct {
	Kind     EventKind `json:"type"`
	Time     int64     `json:"time"`
	Location geo.Point `json:"location"`
	// Ref is the counterpart entity, a passenger for vehicle events and a
	// vehicle for passenger events.
	Ref string `json:"ref,omitempty"`
	// Count is the number of coalesced MOVE ticks.
	Count int `json:"count,omitempty"`
	// Millis is the dwell hint of a WAIT event.
	Millis int         `json:"millis,omitempty"`
	Path   []geo.Point `json:"path,omitempty"`
}

// EventLog is an ordered list of events.
type EventLog []Event

// Append adds ev to the log. Consecutive MOVE events are merged into the
// last one, which keeps its time and location and increments its count.
func (l *EventLog) Append(ev Event) {
	if ev.Kind == EventMove {
		if n := len(*l); n > 0 && (*l)[n-1].Kind == EventMove {
			(*l)[n-1].Count++
			return
		}
		if ev.Count == 0 {
			ev.Count = 1
		}
	}
	*l = append(*l, ev)
}

// Last returns the most recent event.
func (l EventLog) Last() (Event, bool) {
	if len(l) == 0 {
		return Event{}, false
	}
	return l[len(l)-1], true
}

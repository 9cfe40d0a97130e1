package model

import "github.com/kilianp07/trikesim/core/geo"

// PassengerStatus is the lifecycle state of a passenger.
type PassengerStatus string

const (
	PassengerWaiting   PassengerStatus = "WAITING"
	PassengerEnqueued  PassengerStatus = "ENQUEUED"
	PassengerOnboard   PassengerStatus = "ONBOARD"
	PassengerCompleted PassengerStatus = "COMPLETED"
)

// Passenger is a transport request travelling from Src to Dest.
type Passenger struct {
	ID         string          `json:"id"`
	Src        geo.Point       `json:"src"`
	Dest       geo.Point       `json:"dest"`
	Status     PassengerStatus `json:"status"`
	ClaimedBy  string          `json:"claimed_by,omitempty"`
	CreateTime int64           `json:"create_time"`
	PickupTime int64           `json:"pickup_time"`
	DeathTime  int64           `json:"death_time"`
	// Terminal is set for passengers that queue at a terminal.
	Terminal string   `json:"terminal,omitempty"`
	Events   EventLog `json:"events"`
}

// NewPassenger creates a WAITING passenger and records its APPEAR event.
func NewPassenger(id string, src, dest geo.Point, createTime int64) *Passenger {
	p := &Passenger{
		ID:         id,
		Src:        src,
		Dest:       dest,
		Status:     PassengerWaiting,
		CreateTime: createTime,
		PickupTime: -1,
		DeathTime:  -1,
	}
	p.Events.Append(Event{Kind: EventAppear, Time: createTime, Location: src})
	return p
}

// OnEnqueue records a claim by vehicleID. It only succeeds from WAITING.
func (p *Passenger) OnEnqueue(vehicleID string, t int64, loc geo.Point) bool {
	if p.Status != PassengerWaiting {
		return false
	}
	p.Status = PassengerEnqueued
	p.ClaimedBy = vehicleID
	p.Events.Append(Event{Kind: EventEnqueue, Time: t, Location: loc, Ref: vehicleID})
	return true
}

// OnLoad moves a passenger claimed by vehicleID onboard.
func (p *Passenger) OnLoad(vehicleID string, t int64, loc geo.Point) bool {
	if p.Status != PassengerEnqueued || p.ClaimedBy != vehicleID {
		return false
	}
	p.Status = PassengerOnboard
	p.PickupTime = t
	p.Events.Append(Event{Kind: EventLoad, Time: t, Location: loc, Ref: vehicleID})
	return true
}

// OnDropoff completes the trip. The carrying vehicle stays on the event.
func (p *Passenger) OnDropoff(t int64, loc geo.Point) bool {
	if p.Status != PassengerOnboard {
		return false
	}
	vehicle := p.ClaimedBy
	p.Status = PassengerCompleted
	p.ClaimedBy = ""
	p.DeathTime = t
	p.Events.Append(Event{Kind: EventDropoff, Time: t, Location: loc, Ref: vehicle})
	return true
}

// OnReset releases an outstanding claim.
func (p *Passenger) OnReset(t int64, loc geo.Point) bool {
	if p.Status != PassengerEnqueued {
		return false
	}
	vehicle := p.ClaimedBy
	p.Status = PassengerWaiting
	p.ClaimedBy = ""
	p.Events.Append(Event{Kind: EventReset, Time: t, Location: loc, Ref: vehicle})
	return true
}

// WaitTime is the time between appearance and pickup, or -1 if never picked up.
func (p *Passenger) WaitTime() int64 {
	if p.PickupTime < 0 {
		return -1
	}
	return p.PickupTime - p.CreateTime
}

// TravelTime is the time spent onboard, or -1 if the trip is not complete.
func (p *Passenger) TravelTime() int64 {
	if p.Status != PassengerCompleted {
		return -1
	}
	return p.DeathTime - p.PickupTime
}

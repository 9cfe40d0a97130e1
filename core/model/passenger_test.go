package model

import (
	"testing"

	"github.com/kilianp07/trikesim/core/geo"
)

func checkClaimInvariant(t *testing.T, p *Passenger) {
	t.Helper()
	claimed := p.Status == PassengerEnqueued || p.Status == PassengerOnboard
	if claimed != (p.ClaimedBy != "") {
		t.Fatalf("status %s with claimedBy %q", p.Status, p.ClaimedBy)
	}
}

func checkMonotonic(t *testing.T, p *Passenger) {
	t.Helper()
	for i := 1; i < len(p.Events); i++ {
		if p.Events[i].Time < p.Events[i-1].Time {
			t.Fatalf("event %d at %d before event %d at %d", i, p.Events[i].Time, i-1, p.Events[i-1].Time)
		}
	}
}

func TestPassengerLifecycle(t *testing.T) {
	src, dst := geo.NewPoint(0, 0), geo.NewPoint(0, 1)
	p := NewPassenger("p1", src, dst, 3)
	checkClaimInvariant(t, p)

	if !p.OnEnqueue("t1", 4, src) {
		t.Fatal("enqueue failed")
	}
	checkClaimInvariant(t, p)
	if p.OnEnqueue("t2", 5, src) {
		t.Fatal("second claim must fail")
	}
	if p.OnLoad("t2", 5, src) {
		t.Fatal("load by another vehicle must fail")
	}
	if !p.OnLoad("t1", 6, src) {
		t.Fatal("load failed")
	}
	checkClaimInvariant(t, p)
	if !p.OnDropoff(10, dst) {
		t.Fatal("dropoff failed")
	}
	checkClaimInvariant(t, p)
	checkMonotonic(t, p)

	if p.Status != PassengerCompleted {
		t.Fatalf("expected COMPLETED, got %s", p.Status)
	}
	if p.WaitTime() != 3 || p.TravelTime() != 4 {
		t.Fatalf("wait %d travel %d", p.WaitTime(), p.TravelTime())
	}
	kinds := []EventKind{EventAppear, EventEnqueue, EventLoad, EventDropoff}
	if len(p.Events) != len(kinds) {
		t.Fatalf("expected %d events, got %d", len(kinds), len(p.Events))
	}
	for i, k := range kinds {
		if p.Events[i].Kind != k {
			t.Errorf("event %d: expected %s got %s", i, k, p.Events[i].Kind)
		}
	}
	if p.Events[3].Ref != "t1" {
		t.Errorf("dropoff should reference t1, got %q", p.Events[3].Ref)
	}
}

func TestPassengerReset(t *testing.T) {
	p := NewPassenger("p1", geo.NewPoint(0, 0), geo.NewPoint(1, 1), 0)
	if p.OnReset(1, p.Src) {
		t.Fatal("reset from WAITING must fail")
	}
	p.OnEnqueue("t1", 1, p.Src)
	if !p.OnReset(2, p.Src) {
		t.Fatal("reset failed")
	}
	checkClaimInvariant(t, p)
	if p.Status != PassengerWaiting {
		t.Fatalf("expected WAITING, got %s", p.Status)
	}
	last, _ := p.Events.Last()
	if last.Kind != EventReset || last.Ref != "t1" {
		t.Fatalf("unexpected last event %+v", last)
	}
	if p.OnDropoff(3, p.Dest) {
		t.Fatal("dropoff from WAITING must fail")
	}
}

func TestEventLogCoalescesMoves(t *testing.T) {
	var l EventLog
	l.Append(Event{Kind: EventMove, Time: 1})
	l.Append(Event{Kind: EventMove, Time: 2})
	l.Append(Event{Kind: EventMove, Time: 3})
	l.Append(Event{Kind: EventWait, Time: 4})
	l.Append(Event{Kind: EventMove, Time: 5})
	if len(l) != 3 {
		t.Fatalf("expected 3 events, got %d", len(l))
	}
	if l[0].Count != 3 || l[0].Time != 1 {
		t.Fatalf("unexpected coalesced move %+v", l[0])
	}
	if l[2].Count != 1 {
		t.Fatalf("fresh move should count 1, got %d", l[2].Count)
	}
}

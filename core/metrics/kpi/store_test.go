package kpi

import "testing"

func TestMemoryStore_Aggregation(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Add(Record{RunID: "r1", VehicleID: "trike_1", Distance: 200, Productive: 50, Trips: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Add(Record{RunID: "r1", VehicleID: "trike_1", Distance: 100, Productive: 100, Trips: 2}); err != nil {
		t.Fatalf("add2: %v", err)
	}
	if err := s.Add(Record{RunID: "r1", VehicleID: "trike_0", Distance: 10}); err != nil {
		t.Fatalf("add3: %v", err)
	}
	recs, err := s.Query("r1")
	if err != nil || len(recs) != 2 {
		t.Fatalf("query: %v len=%d", err, len(recs))
	}
	if recs[0].VehicleID != "trike_0" {
		t.Fatalf("expected ordering by vehicle, got %s", recs[0].VehicleID)
	}
	if recs[1].Distance != 300 || recs[1].Trips != 3 {
		t.Fatalf("unexpected aggregate %+v", recs[1])
	}
	if other, _ := s.Query("r2"); len(other) != 0 {
		t.Fatalf("expected no records for unknown run")
	}
}

func TestRecordCalculations(t *testing.T) {
	r := Record{Distance: 400, Productive: 100, Trips: 4}
	if r.Efficiency() != 25 {
		t.Fatalf("efficiency %f", r.Efficiency())
	}
	if r.DistancePerTrip() != 100 {
		t.Fatalf("distance per trip %f", r.DistancePerTrip())
	}
	if (Record{}).Efficiency() != 0 || (Record{}).DistancePerTrip() != 0 {
		t.Fatalf("zero record must yield zero ratios")
	}
}

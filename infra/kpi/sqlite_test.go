package kpi

import (
	"path/filepath"
	"testing"

	core "github.com/kilianp07/trikesim/core/metrics/kpi"
)

func TestSQLiteStore_Aggregation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "kpi.db")
	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Add(core.Record{RunID: "r1", VehicleID: "trike_1", Distance: 200, Productive: 50, Trips: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Add(core.Record{RunID: "r1", VehicleID: "trike_1", Distance: 100, Productive: 100, Trips: 2}); err != nil {
		t.Fatalf("add2: %v", err)
	}
	if err := s.Add(core.Record{RunID: "r1", VehicleID: "trike_0", Distance: 10}); err != nil {
		t.Fatalf("add3: %v", err)
	}
	if err := s.Add(core.Record{RunID: "r2", VehicleID: "trike_0", Distance: 5}); err != nil {
		t.Fatalf("add4: %v", err)
	}
	recs, err := s.Query("r1")
	if err != nil || len(recs) != 2 {
		t.Fatalf("query: %v len=%d", err, len(recs))
	}
	if recs[0].VehicleID != "trike_0" {
		t.Fatalf("expected ordering by vehicle, got %s", recs[0].VehicleID)
	}
	if recs[1].Distance != 300 || recs[1].Productive != 150 || recs[1].Trips != 3 {
		t.Fatalf("unexpected aggregate %+v", recs[1])
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	recs, err = reopened.Query("r2")
	if err != nil || len(recs) != 1 || recs[0].RunID != "r2" {
		t.Fatalf("expected persisted r2 record, got %+v (%v)", recs, err)
	}
	if none, _ := reopened.Query("missing"); len(none) != 0 {
		t.Fatalf("expected no records for unknown run")
	}
}

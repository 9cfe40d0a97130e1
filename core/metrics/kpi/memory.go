package kpi

import (
	"sort"
	"sync"
)

// MemoryStore stores records in memory for testing or lightweight usage.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]map[string]*Record
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]map[string]*Record{}}
}

// Add inserts or updates the record aggregated by run and vehicle.
func (s *MemoryStore) Add(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[r.RunID] == nil {
		s.data[r.RunID] = map[string]*Record{}
	}
	rec := s.data[r.RunID][r.VehicleID]
	if rec == nil {
		rec = &Record{RunID: r.RunID, VehicleID: r.VehicleID}
		s.data[r.RunID][r.VehicleID] = rec
	}
	rec.Distance += r.Distance
	rec.Productive += r.Productive
	rec.Trips += r.Trips
	return nil
}

// Query returns the records of a run ordered by vehicle id.
func (s *MemoryStore) Query(runID string) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make([]Record, 0, len(s.data[runID]))
	for _, r := range s.data[runID] {
		res = append(res, *r)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].VehicleID < res[j].VehicleID })
	return res, nil
}

package eventlog

import (
	"context"
	"sync"
)

// MemoryStore keeps records in process.
type MemoryStore struct {
	mu   sync.RWMutex
	recs []Record
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

// Append implements Store.
func (m *MemoryStore) Append(_ context.Context, recs ...Record) error {
	m.mu.Lock()
	m.recs = append(m.recs, recs...)
	m.mu.Unlock()
	return nil
}

// Query implements Store. Records are returned in insertion order.
func (m *MemoryStore) Query(_ context.Context, q Query) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Record
	for _, r := range m.recs {
		if q.Matches(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Close implements Store.
func (m *MemoryStore) Close() error { return nil }

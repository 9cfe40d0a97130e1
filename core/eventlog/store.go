// Package eventlog persists the per-entity event logs produced by a run so
// they can be queried after the simulation ends.
package eventlog

import (
	"context"

	"github.com/kilianp07/trikesim/core/model"
)

// Entity kinds stored in Record.EntityKind.
const (
	EntityPassenger = "passenger"
	EntityTricycle  = "tricycle"
)

// Record is one event of one entity in one run.
type Record struct {
	RunID      string      `json:"run_id"`
	EntityKind string      `json:"entity_kind"`
	EntityID   string      `json:"entity_id"`
	Seq        int         `json:"seq"`
	Event      model.Event `json:"event"`
}

// Query filters records. Zero fields match everything; To <= 0 leaves the
// time range open ended.
type Query struct {
	RunID      string
	EntityKind string
	EntityID   string
	Kind       model.EventKind
	From       int64
	To         int64
}

// Matches reports whether r satisfies q.
func (q Query) Matches(r Record) bool {
	switch {
	case q.RunID != "" && r.RunID != q.RunID:
		return false
	case q.EntityKind != "" && r.EntityKind != q.EntityKind:
		return false
	case q.EntityID != "" && r.EntityID != q.EntityID:
		return false
	case q.Kind != "" && r.Event.Kind != q.Kind:
		return false
	case r.Event.Time < q.From:
		return false
	case q.To > 0 && r.Event.Time > q.To:
		return false
	}
	return true
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, recs ...Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// FromLog flattens an entity's event log into records.
func FromLog(runID, entityKind, entityID string, log model.EventLog) []Record {
	out := make([]Record, len(log))
	for i, ev := range log {
		out[i] = Record{RunID: runID, EntityKind: entityKind, EntityID: entityID, Seq: i, Event: ev}
	}
	return out
}

// NopStore discards everything.
type NopStore struct{}

func (NopStore) Append(context.Context, ...Record) error         { return nil }
func (NopStore) Query(context.Context, Query) ([]Record, error) { return nil, nil }
func (NopStore) Close() error                                    { return nil }

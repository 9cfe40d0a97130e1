package kpi

// Store persists vehicle KPI records.
type Store interface {
	Add(Record) error
	Query(runID string) ([]Record, error)
}

package kpi

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	core "github.com/kilianp07/trikesim/core/metrics/kpi"
)

// SQLiteStore persists vehicle KPI records in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database (and its directory) and
// ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS vehicle_kpi (
        run_id TEXT,
        vehicle_id TEXT,
        distance REAL,
        productive REAL,
        trips INTEGER,
        PRIMARY KEY(run_id, vehicle_id)
    );`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Add inserts or updates the KPI record.
func (s *SQLiteStore) Add(r core.Record) error {
	_, err := s.db.Exec(`INSERT INTO vehicle_kpi (run_id, vehicle_id, distance, productive, trips)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT(run_id, vehicle_id) DO UPDATE SET
            distance = distance + excluded.distance,
            productive = productive + excluded.productive,
            trips = trips + excluded.trips`,
		r.RunID, r.VehicleID, r.Distance, r.Productive, r.Trips)
	return err
}

// Query returns the records of a run ordered by vehicle id.
func (s *SQLiteStore) Query(runID string) ([]core.Record, error) {
	rows, err := s.db.Query(`SELECT vehicle_id, distance, productive, trips
        FROM vehicle_kpi WHERE run_id = ? ORDER BY vehicle_id`, runID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	res := []core.Record{}
	for rows.Next() {
		r := core.Record{RunID: runID}
		if err := rows.Scan(&r.VehicleID, &r.Distance, &r.Productive, &r.Trips); err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

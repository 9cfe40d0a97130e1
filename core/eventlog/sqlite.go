package eventlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists records to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS entity_events (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        run_id TEXT NOT NULL,
        entity_kind TEXT NOT NULL,
        entity_id TEXT NOT NULL,
        seq INTEGER NOT NULL,
        kind TEXT NOT NULL,
        t INTEGER NOT NULL,
        record TEXT NOT NULL
    );
    CREATE INDEX IF NOT EXISTS entity_events_run ON entity_events (run_id, entity_id);`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Append writes the records in one transaction.
func (s *SQLiteStore) Append(ctx context.Context, recs ...Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO entity_events (run_id, entity_kind, entity_id, seq, kind, t, record) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer func() { _ = stmt.Close() }()
	for _, r := range recs {
		b, err := json.Marshal(r)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if _, err := stmt.ExecContext(ctx, r.RunID, r.EntityKind, r.EntityID, r.Seq, string(r.Event.Kind), r.Event.Time, string(b)); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Query returns records matching q ordered by entity and sequence.
func (s *SQLiteStore) Query(ctx context.Context, q Query) ([]Record, error) {
	query, args := buildQuery(q, func(int) string { return "?" })
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []Record
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var r Record
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			return nil, fmt.Errorf("unmarshal record: %w", err)
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

// buildQuery renders the SELECT for q; placeholder renders the n-th
// argument marker of the target SQL dialect.
func buildQuery(q Query, placeholder func(n int) string) (string, []any) {
	var args []any
	query := `SELECT record FROM entity_events WHERE 1=1`
	add := func(clause string, v any) {
		args = append(args, v)
		query += fmt.Sprintf(clause, placeholder(len(args)))
	}
	if q.RunID != "" {
		add(` AND run_id = %s`, q.RunID)
	}
	if q.EntityKind != "" {
		add(` AND entity_kind = %s`, q.EntityKind)
	}
	if q.EntityID != "" {
		add(` AND entity_id = %s`, q.EntityID)
	}
	if q.Kind != "" {
		add(` AND kind = %s`, string(q.Kind))
	}
	if q.From != 0 {
		add(` AND t >= %s`, q.From)
	}
	if q.To > 0 {
		add(` AND t <= %s`, q.To)
	}
	query += ` ORDER BY run_id, entity_kind, entity_id, seq`
	return query, args
}

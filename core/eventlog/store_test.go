package eventlog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/trikesim/core/factory"
	"github.com/kilianp07/trikesim/core/geo"
	"github.com/kilianp07/trikesim/core/model"
)

func sampleRecords() []Record {
	var pl model.EventLog
	pl.Append(model.Event{Kind: model.EventAppear, Time: 0, Location: geo.NewPoint(121, 14.6)})
	pl.Append(model.Event{Kind: model.EventEnqueue, Time: 4, Location: geo.NewPoint(121, 14.6), Ref: "trike_0"})
	pl.Append(model.Event{Kind: model.EventLoad, Time: 9, Location: geo.NewPoint(121, 14.6), Ref: "trike_0"})
	var tl model.EventLog
	tl.Append(model.Event{Kind: model.EventAppear, Time: 0, Location: geo.NewPoint(121.001, 14.6)})
	tl.Append(model.Event{Kind: model.EventMove, Time: 1})
	tl.Append(model.Event{Kind: model.EventMove, Time: 2})
	recs := FromLog("run-1", EntityPassenger, "passenger_0", pl)
	return append(recs, FromLog("run-1", EntityTricycle, "trike_0", tl)...)
}

func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.Append(ctx, sampleRecords()...))
	require.NoError(t, s.Append(ctx, FromLog("run-2", EntityPassenger, "passenger_0", model.EventLog{{Kind: model.EventAppear}})...))

	all, err := s.Query(ctx, Query{RunID: "run-1"})
	require.NoError(t, err)
	assert.Len(t, all, 5)

	loads, err := s.Query(ctx, Query{RunID: "run-1", Kind: model.EventLoad})
	require.NoError(t, err)
	require.Len(t, loads, 1)
	assert.Equal(t, "trike_0", loads[0].Event.Ref)
	assert.Equal(t, 2, loads[0].Seq)

	trike, err := s.Query(ctx, Query{EntityKind: EntityTricycle})
	require.NoError(t, err)
	require.Len(t, trike, 2)
	assert.Equal(t, 2, trike[1].Event.Count)

	window, err := s.Query(ctx, Query{RunID: "run-1", EntityID: "passenger_0", From: 1, To: 5})
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, model.EventEnqueue, window[0].Event.Kind)
}

func TestJSONLStore(t *testing.T) {
	s, err := NewJSONLStore(filepath.Join(t.TempDir(), "events", "log.jsonl"))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	testStore(t, s)
}

func TestRotatingJSONLStore(t *testing.T) {
	s, err := NewRotatingJSONLStore(filepath.Join(t.TempDir(), "log.jsonl"), 1, 2, 1)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	testStore(t, s)
}

func TestRotatingJSONLStore_Rotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log.jsonl")
	store, err := NewRotatingJSONLStore(path, 1, 2, 1)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = store.Close() }()
	rec := Record{RunID: "r", EntityKind: EntityTricycle, EntityID: "trike_0",
		Event: model.Event{Kind: model.EventNewRoamPath, Path: make([]geo.Point, 2000)}}
	for i := 0; i < 120; i++ {
		if err := store.Append(context.Background(), rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	files, _ := filepath.Glob(filepath.Join(dir, "log*.jsonl"))
	if len(files) < 2 {
		t.Fatalf("expected rotated files, got %v", files)
	}
	out, err := store.Query(context.Background(), Query{RunID: "r"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("expected records across rotated files")
	}
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	testStore(t, s)
}

func TestNewFromConfig(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx, factory.ModuleConfig{})
	require.NoError(t, err)
	assert.IsType(t, NopStore{}, s)

	s, err = New(ctx, factory.ModuleConfig{Type: "sqlite", Conf: map[string]any{"path": filepath.Join(t.TempDir(), "x.db")}})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	_ = s.Close()

	_, err = New(ctx, factory.ModuleConfig{Type: "jsonl"})
	assert.Error(t, err)
	_, err = New(ctx, factory.ModuleConfig{Type: "parquet"})
	assert.ErrorIs(t, err, factory.ErrUnknownType)
}

func TestBuildQueryPlaceholders(t *testing.T) {
	q, args := buildQuery(Query{RunID: "r", Kind: model.EventLoad, To: 10}, func(n int) string { return "$" + string(rune('0'+n)) })
	assert.Contains(t, q, "run_id = $1")
	assert.Contains(t, q, "kind = $2")
	assert.Contains(t, q, "t <= $3")
	assert.Equal(t, []any{"r", "LOAD", int64(10)}, args)
}

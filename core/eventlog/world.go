package eventlog

import (
	"context"

	"github.com/kilianp07/trikesim/core/sim"
)

// RecordsFor flattens the event logs of every passenger and tricycle of w.
// Passengers come first, each entity in world order.
func RecordsFor(runID string, w *sim.World) []Record {
	var out []Record
	for _, p := range w.Passengers {
		out = append(out, FromLog(runID, EntityPassenger, p.ID, p.Events)...)
	}
	for _, v := range w.Tricycles {
		out = append(out, FromLog(runID, EntityTricycle, v.ID(), v.Events())...)
	}
	return out
}

// Persist appends the records of w to s.
func Persist(ctx context.Context, s Store, runID string, w *sim.World) error {
	recs := RecordsFor(runID, w)
	if len(recs) == 0 {
		return nil
	}
	return s.Append(ctx, recs...)
}

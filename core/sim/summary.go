package sim

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/trikesim/core/metrics/kpi"
	"github.com/kilianp07/trikesim/core/model"
)

// rejectionCounter is implemented by claim policies that count refusals.
type rejectionCounter interface {
	Rejections() map[string]int
}

// Summary aggregates the run so far.
func (s *Simulator) Summary() Summary {
	w := s.world
	sum := Summary{
		RunID:            s.deps.RunID,
		Seed:             s.cfg.Seed,
		TotalPassengers:  len(w.Passengers),
		TotalTricycles:   len(w.Tricycles),
		TotalTerminals:   len(w.Terminals),
		Ticks:            s.tick,
		EndTime:          s.now,
		LastActivityTime: s.lastActive,
		VehicleFaults:    s.faults,
		Elapsed:          s.elapsed,
		ClaimRejections:  map[string]int{},
	}

	var waits, travels []float64
	for _, p := range w.Passengers {
		if p.Status != model.PassengerCompleted {
			continue
		}
		waits = append(waits, float64(p.WaitTime()))
		travels = append(travels, float64(p.TravelTime()))
	}
	sum.Completed = len(waits)
	if sum.TotalPassengers > 0 {
		sum.CompletionRate = float64(sum.Completed) / float64(sum.TotalPassengers) * 100
	}
	if len(waits) > 0 {
		sum.AverageWait = stat.Mean(waits, nil)
		sum.AverageTravel = stat.Mean(travels, nil)
		sort.Float64s(waits)
		sum.MedianWait = stat.Quantile(0.5, stat.Empirical, waits, nil)
	}

	var total, productive float64
	for _, v := range w.Tricycles {
		if v.Active() {
			sum.ActiveTricycles++
		}
		total += v.TotalDistance()
		productive += v.ProductiveDistance()
	}
	sum.TotalDistanceKm = total / 1000
	sum.ProductiveDistanceKm = productive / 1000
	if total > 0 {
		sum.Efficiency = productive / total * 100
	}

	if rc, ok := w.Claims.(rejectionCounter); ok {
		for k, v := range rc.Rejections() {
			sum.ClaimRejections[k] = v
		}
	}
	return sum
}

// VehicleKPIs returns one record per tricycle. Trips counts drop-offs.
func (s *Simulator) VehicleKPIs() []kpi.Record {
	out := make([]kpi.Record, 0, len(s.world.Tricycles))
	for _, v := range s.world.Tricycles {
		r := kpi.Record{
			RunID:      s.deps.RunID,
			VehicleID:  v.ID(),
			Distance:   v.TotalDistance(),
			Productive: v.ProductiveDistance(),
		}
		for _, ev := range v.Events() {
			if ev.Kind == model.EventDropoff {
				r.Trips++
			}
		}
		out = append(out, r)
	}
	return out
}

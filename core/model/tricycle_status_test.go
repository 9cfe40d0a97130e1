package model

import "testing"

func TestTricycleTransitionsExhaustive(t *testing.T) {
	allowed := map[TricycleStatus]map[TricycleStatus]bool{
		TricycleIdle:      {TricycleServing: true, TricycleTerminal: true, TricycleEnqueuing: true},
		TricycleServing:   {TricycleReturning: true, TricycleRoaming: true},
		TricycleTerminal:  {TricycleServing: true, TricycleEnqueuing: true},
		TricycleRoaming:   {TricycleServing: true, TricycleEnqueuing: true},
		TricycleReturning: {TricycleTerminal: true, TricycleEnqueuing: true},
		TricycleEnqueuing: {TricycleServing: true, TricycleRoaming: true, TricycleIdle: true},
	}
	for _, from := range TricycleStatuses {
		for _, to := range TricycleStatuses {
			if got, want := from.CanTransition(to), allowed[from][to]; got != want {
				t.Errorf("%s -> %s: got %v want %v", from, to, got, want)
			}
		}
	}
}

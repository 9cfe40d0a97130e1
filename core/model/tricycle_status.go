package model

// TricycleStatus is the operating state of a vehicle.
type TricycleStatus string

const (
	TricycleIdle      TricycleStatus = "IDLE"
	TricycleServing   TricycleStatus = "SERVING"
	TricycleTerminal  TricycleStatus = "TERMINAL"
	TricycleRoaming   TricycleStatus = "ROAMING"
	TricycleReturning TricycleStatus = "RETURNING"
	TricycleEnqueuing TricycleStatus = "ENQUEUING"
)

// TricycleStatuses lists every status in declaration order.
var TricycleStatuses = []TricycleStatus{
	TricycleIdle, TricycleServing, TricycleTerminal,
	TricycleRoaming, TricycleReturning, TricycleEnqueuing,
}

var tricycleTransitions = map[TricycleStatus][]TricycleStatus{
	TricycleIdle:      {TricycleServing, TricycleTerminal, TricycleEnqueuing},
	TricycleServing:   {TricycleReturning, TricycleRoaming},
	TricycleTerminal:  {TricycleServing, TricycleEnqueuing},
	TricycleRoaming:   {TricycleServing, TricycleEnqueuing},
	TricycleReturning: {TricycleTerminal, TricycleEnqueuing},
	TricycleEnqueuing: {TricycleServing, TricycleRoaming, TricycleIdle},
}

// CanTransition reports whether s may move to next.
func (s TricycleStatus) CanTransition(next TricycleStatus) bool {
	for _, allowed := range tricycleTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

package scheduler

import (
	"math"

	"gonum.org/v1/gonum/stat/combin"

	"github.com/kilianp07/trikesim/core/geo"
	"github.com/kilianp07/trikesim/core/model"
)

// MaxOptimalPassengers bounds the onboard set the Optimal scheduler accepts.
// 8! orders is the largest search that stays fast inside a tick.
const MaxOptimalPassengers = 8

// DropoffScheduler picks the next passenger to drop off.
type DropoffScheduler interface {
	// SelectNextDropoff returns the index into onboard and the passenger.
	// It returns (-1, nil) when onboard is empty.
	SelectNextDropoff(from geo.Point, onboard []*model.Passenger) (int, *model.Passenger)
}

// FirstCome serves passengers in boarding order.
type FirstCome struct{}

// SelectNextDropoff implements DropoffScheduler.
func (FirstCome) SelectNextDropoff(_ geo.Point, onboard []*model.Passenger) (int, *model.Passenger) {
	if len(onboard) == 0 {
		return -1, nil
	}
	return 0, onboard[0]
}

// Optimal enumerates every drop-off order and keeps the shortest one.
// Among orders of equal length the first enumerated wins.
type Optimal struct{}

// SelectNextDropoff implements DropoffScheduler.
func (Optimal) SelectNextDropoff(from geo.Point, onboard []*model.Passenger) (int, *model.Passenger) {
	order, _ := BestOrder(from, onboard)
	if order == nil {
		return -1, nil
	}
	return order[0], onboard[order[0]]
}

// BestOrder returns the index order with the shortest total distance from
// `from` through every destination, and that distance.
func BestOrder(from geo.Point, onboard []*model.Passenger) ([]int, float64) {
	n := len(onboard)
	if n == 0 {
		return nil, 0
	}
	gen := combin.NewPermutationGenerator(n, n)
	perm := make([]int, n)
	var best []int
	bestLen := math.Inf(1)
	for gen.Next() {
		gen.Permutation(perm)
		if l := OrderLength(from, onboard, perm); l < bestLen {
			bestLen = l
			best = append(best[:0], perm...)
		}
	}
	return best, bestLen
}

// OrderLength is the great-circle length of visiting the destinations of
// onboard in the given index order, starting at from.
func OrderLength(from geo.Point, onboard []*model.Passenger, order []int) float64 {
	total, cur := 0.0, from
	for _, i := range order {
		total += geo.Distance(cur, onboard[i].Dest)
		cur = onboard[i].Dest
	}
	return total
}

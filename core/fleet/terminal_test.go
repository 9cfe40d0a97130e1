package fleet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/trikesim/core/model"
)

func TestTerminalMatchingRespectsCapacity(t *testing.T) {
	m, p := newWorld()
	term := NewTerminal("terminal_0", ptA, 0)
	first := newTricycle(t, Config{ID: "trike_0", Start: ptA, Capacity: 2}, Deps{Planner: p, Map: m})
	second := newTricycle(t, Config{ID: "trike_1", Start: ptA, Capacity: 2}, Deps{Planner: p, Map: m})
	require.True(t, term.AddTricycle(first))
	require.True(t, term.AddTricycle(second))
	assert.False(t, first.Active())
	assert.Equal(t, model.TricycleTerminal, first.Status())

	var ps []*model.Passenger
	for _, id := range []string{"p0", "p1", "p2"} {
		pass := model.NewPassenger(id, ptA, ptE, 0)
		m.AddPassenger(pass)
		term.AddPassenger(pass)
		ps = append(ps, pass)
	}

	loaded := term.LoadHead(1)
	assert.Equal(t, ps[:2], loaded)
	assert.Equal(t, []*model.Passenger{ps[2]}, term.Passengers())
	assert.Equal(t, first, term.PopTricycle())
	assert.True(t, first.Active())
	assert.Equal(t, model.TricycleServing, first.Status())

	matches := term.Match(2)
	require.Len(t, matches, 1)
	assert.Equal(t, second, matches[0].Tricycle)
	assert.Equal(t, []*model.Passenger{ps[2]}, matches[0].Passengers)
	assert.Empty(t, term.Passengers())
	assert.Empty(t, term.Vehicles())
	for _, pass := range ps {
		assert.Equal(t, model.PassengerOnboard, pass.Status)
		assert.NotEmpty(t, pass.ClaimedBy)
	}
}

func TestTerminalSkipsPassengersClaimedOnTheRoad(t *testing.T) {
	m, p := newWorld()
	term := NewTerminal("terminal_0", ptA, 0)
	v := newTricycle(t, Config{Start: ptA, Capacity: 3}, Deps{Planner: p, Map: m})
	require.True(t, term.AddTricycle(v))

	claimed := model.NewPassenger("claimed", ptA, ptE, 0)
	claimed.OnEnqueue("road_trike", 0, ptA)
	served := model.NewPassenger("served", ptA, ptE, 0)
	served.OnEnqueue("road_trike", 0, ptA)
	served.OnLoad("road_trike", 0, ptA)
	free := model.NewPassenger("free", ptA, ptE, 0)
	term.AddPassenger(claimed)
	term.AddPassenger(served)
	term.AddPassenger(free)

	matches := term.Match(1)
	require.Len(t, matches, 1)
	assert.Equal(t, []*model.Passenger{free}, matches[0].Passengers)
	assert.Equal(t, []*model.Passenger{claimed}, term.Passengers())
}

func TestTerminalAdmission(t *testing.T) {
	m, p := newWorld()
	term := NewTerminal("terminal_0", ptA, 1)
	roamer := newTricycle(t, Config{ID: "roamer", Start: ptA, Roaming: true}, Deps{Planner: p, Map: m})
	assert.False(t, term.AddTricycle(roamer), "roaming vehicles cannot park")

	a := newTricycle(t, Config{ID: "a", Start: ptA}, Deps{Planner: p, Map: m})
	b := newTricycle(t, Config{ID: "b", Start: ptA}, Deps{Planner: p, Map: m})
	assert.True(t, term.AddTricycle(a))
	assert.False(t, term.AddTricycle(b), "terminal full")
	assert.True(t, b.Active())

	assert.Nil(t, NewTerminal("empty", ptA, 0).PopTricycle())
}

func TestTerminalEvictsRetiredHead(t *testing.T) {
	m, p := newWorld()
	term := NewTerminal("terminal_0", ptA, 0)
	retired := newTricycle(t, Config{ID: "retired", Start: ptA}, Deps{Planner: p, Map: m})
	next := newTricycle(t, Config{ID: "next", Start: ptA}, Deps{Planner: p, Map: m})
	require.True(t, term.AddTricycle(retired))
	require.True(t, term.AddTricycle(next))
	retired.Finish(0)

	pass := model.NewPassenger("p0", ptA, ptE, 0)
	m.AddPassenger(pass)
	term.AddPassenger(pass)
	assert.True(t, term.HasPassengers())

	m0, ok := term.MatchHead(1)
	require.True(t, ok)
	assert.Equal(t, next, m0.Tricycle)
	assert.Equal(t, []*model.Passenger{pass}, m0.Passengers)
	assert.Empty(t, term.Vehicles())
	assert.False(t, term.HasPassengers())

	_, ok = term.MatchHead(2)
	assert.False(t, ok)
	assert.Nil(t, term.Head())
}

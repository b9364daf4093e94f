package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// scriptRoller replays a fixed sequence of dice rolls and deck picks.
type scriptRoller struct {
	rolls [][2]int
	picks []int
}

func (r *scriptRoller) Roll() (int, int) {
	if len(r.rolls) == 0 {
		return 1, 2
	}
	d := r.rolls[0]
	r.rolls = r.rolls[1:]
	return d[0], d[1]
}

func (r *scriptRoller) Pick(n int) int {
	if len(r.picks) == 0 {
		return 0
	}
	p := r.picks[0]
	r.picks = r.picks[1:]
	return p % n
}

func newTestEngine(dice Roller) *Engine {
	if dice == nil {
		dice = &scriptRoller{}
	}
	return New(DefaultBoard(), DefaultDecks(), dice, 1500, zap.NewNop().Sugar())
}

// startedGame builds a running game with a fixed turn order, skipping the
// lobby and order-roll ceremony.
func startedGame(e *Engine, ids ...string) *GameState {
	g := e.NewGame("game-1")
	for _, id := range ids {
		g.Players = append(g.Players, Player{ID: id, Name: "Player " + id, Money: 1500})
	}
	g.TurnOrder = append([]string(nil), ids...)
	g.Phase = PhaseRolling
	return g
}

func eventTypes(events []Event) []EventType {
	types := make([]EventType, len(events))
	for i, ev := range events {
		types[i] = ev.Type
	}
	return types
}

func TestNewGameInitialState(t *testing.T) {
	e := newTestEngine(nil)
	g := e.NewGame("game-1")

	assert.Equal(t, PhaseWaiting, g.Phase)
	assert.Len(t, g.Properties, 28)
	assert.Nil(t, g.OrderRolls)

	med := g.PropertyAt(1)
	require.NotNil(t, med)
	assert.Equal(t, "Mediterranean Avenue", med.Name)
	assert.Equal(t, 60, med.Price)
	assert.Empty(t, med.OwnerID)

	rr := g.PropertyAt(5)
	require.NotNil(t, rr)
	assert.Equal(t, PropertyTypeRailroad, rr.Type)

	assert.Nil(t, g.PropertyAt(0), "corners are not ownable")
}

func TestAddPlayerAndStart(t *testing.T) {
	e := newTestEngine(nil)
	g := e.NewGame("game-1")

	g, _, err := e.AddPlayer(g, "p1", "Alice", false)
	require.NoError(t, err)
	g, _, err = e.AddPlayer(g, "p2", "Bob", false)
	require.NoError(t, err)
	assert.Equal(t, 1500, g.PlayerByID("p1").Money)

	_, _, err = e.AddPlayer(g, "p1", "Alice again", false)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeAlreadyJoined, verr.Code)

	g, events, err := e.Start(g)
	require.NoError(t, err)
	require.NotNil(t, g.OrderRolls)
	assert.Contains(t, eventTypes(events), EventGameStarted)

	// Roster is locked once order rolling begins.
	_, _, err = e.AddPlayer(g, "p3", "Carol", false)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeRosterLocked, verr.Code)

	_, _, err = e.Start(g)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeRosterLocked, verr.Code)
}

func TestStartNeedsTwoPlayers(t *testing.T) {
	e := newTestEngine(nil)
	g := e.NewGame("game-1")
	g, _, err := e.AddPlayer(g, "p1", "Alice", false)
	require.NoError(t, err)

	_, _, err = e.Start(g)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeNotEnoughPlayers, verr.Code)
}

func TestCloneIsDeep(t *testing.T) {
	e := newTestEngine(nil)
	g := startedGame(e, "p1", "p2")
	g.PropertyAt(1).OwnerID = "p1"
	g.OrderRolls = map[string]int{"p1": 7}
	g.RentOwed = &RentOwed{Amount: 50, Kind: ObligationTax}
	g.PendingTrades = []Trade{{ID: "t1", OfferedProperties: []int{1}}}

	c := g.Clone()
	c.Players[0].Money = 1
	c.PropertyAt(1).OwnerID = "p2"
	c.TurnOrder[0] = "px"
	c.OrderRolls["p1"] = 99
	c.RentOwed.Amount = 999
	c.PendingTrades[0].OfferedProperties[0] = 39

	assert.Equal(t, 1500, g.Players[0].Money)
	assert.Equal(t, "p1", g.PropertyAt(1).OwnerID)
	assert.Equal(t, "p1", g.TurnOrder[0])
	assert.Equal(t, 7, g.OrderRolls["p1"])
	assert.Equal(t, 50, g.RentOwed.Amount)
	assert.Equal(t, 1, g.PendingTrades[0].OfferedProperties[0])
}

func TestOperationsLeaveInputUntouched(t *testing.T) {
	e := newTestEngine(&scriptRoller{rolls: [][2]int{{1, 2}}})
	g := startedGame(e, "p1", "p2")

	next, _, err := e.Roll(g, "p1")
	require.NoError(t, err)
	assert.NotSame(t, g, next)
	assert.Equal(t, 0, g.PlayerByID("p1").Position, "input state must stay pristine")
	assert.Equal(t, 3, next.PlayerByID("p1").Position)
}

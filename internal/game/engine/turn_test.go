package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollWrapsAndOffersPurchase(t *testing.T) {
	e := newTestEngine(&scriptRoller{rolls: [][2]int{{3, 3}}})
	g := startedGame(e, "p1", "p2")
	g.PlayerByID("p1").Position = 35

	g, events, err := e.Roll(g, "p1")
	require.NoError(t, err)

	p := g.PlayerByID("p1")
	assert.Equal(t, 1, p.Position)
	assert.Equal(t, 1700, p.Money, "pass-start bonus credited on wrap")
	assert.Equal(t, 1, g.DoublesCount)
	assert.Equal(t, PhaseAction, g.Phase)
	require.NotNil(t, g.PropertyDecision)
	assert.Equal(t, 1, g.PropertyDecision.Position)
	assert.Equal(t, 60, g.PropertyDecision.Price)

	types := eventTypes(events)
	assert.Contains(t, types, EventRollResult)
	assert.Contains(t, types, EventPassedStart)
	assert.Contains(t, types, EventPurchaseOffered)
}

func TestBuyThenExtraRollForDoubles(t *testing.T) {
	e := newTestEngine(&scriptRoller{rolls: [][2]int{{3, 3}}})
	g := startedGame(e, "p1", "p2")
	g.PlayerByID("p1").Position = 35

	g, _, err := e.Roll(g, "p1")
	require.NoError(t, err)

	g, events, err := e.Buy(g, "p1")
	require.NoError(t, err)

	p := g.PlayerByID("p1")
	assert.Equal(t, 1640, p.Money)
	assert.Equal(t, "p1", g.PropertyAt(1).OwnerID)
	assert.Nil(t, g.PropertyDecision)
	assert.Contains(t, eventTypes(events), EventPropertyBought)

	// The double earns another roll for the same player.
	assert.Equal(t, PhaseRolling, g.Phase)
	assert.Nil(t, g.LastRoll)
	assert.Equal(t, "p1", g.CurrentPlayer().ID)
}

func TestDeclineLeavesPropertyUnowned(t *testing.T) {
	e := newTestEngine(&scriptRoller{rolls: [][2]int{{1, 2}}})
	g := startedGame(e, "p1", "p2")

	g, _, err := e.Roll(g, "p1")
	require.NoError(t, err)
	require.NotNil(t, g.PropertyDecision)

	g, events, err := e.Decline(g, "p1")
	require.NoError(t, err)
	assert.Empty(t, g.PropertyAt(3).OwnerID)
	assert.Equal(t, 1500, g.PlayerByID("p1").Money)
	assert.Equal(t, PhaseEndTurn, g.Phase)
	assert.Contains(t, eventTypes(events), EventPurchaseDeclined)
}

func TestBuyRejectedWhenUnaffordable(t *testing.T) {
	e := newTestEngine(&scriptRoller{rolls: [][2]int{{1, 2}}})
	g := startedGame(e, "p1", "p2")
	g.PlayerByID("p1").Money = 50

	g, _, err := e.Roll(g, "p1")
	require.NoError(t, err)

	_, _, err = e.Buy(g, "p1")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeCannotAfford, verr.Code)
	require.NotNil(t, g.PropertyDecision, "offer stays pending after a failed buy")

	// Declining is still possible.
	g, _, err = e.Decline(g, "p1")
	require.NoError(t, err)
	assert.Equal(t, PhaseEndTurn, g.Phase)
}

func TestThreeConsecutiveDoublesSendToJail(t *testing.T) {
	e := newTestEngine(&scriptRoller{rolls: [][2]int{{5, 5}, {5, 5}, {5, 5}}})
	g := startedGame(e, "p1", "p2")

	g, _, err := e.Roll(g, "p1")
	require.NoError(t, err)
	assert.Equal(t, 10, g.PlayerByID("p1").Position, "just visiting")
	assert.Equal(t, PhaseRolling, g.Phase)
	assert.Equal(t, 1, g.DoublesCount)

	g, _, err = e.Roll(g, "p1")
	require.NoError(t, err)
	assert.Equal(t, 20, g.PlayerByID("p1").Position)
	assert.Equal(t, 2, g.DoublesCount)

	g, events, err := e.Roll(g, "p1")
	require.NoError(t, err)

	p := g.PlayerByID("p1")
	assert.True(t, p.InJail)
	assert.Equal(t, 10, p.Position)
	assert.Equal(t, 1500, p.Money, "speeding moves nobody and collects nothing")
	assert.Equal(t, "p2", g.CurrentPlayer().ID, "turn ends immediately")
	assert.Equal(t, PhaseRolling, g.Phase)
	assert.Equal(t, 0, g.DoublesCount)
	types := eventTypes(events)
	assert.Contains(t, types, EventJailEntered)
	assert.Contains(t, types, EventTurnEnded)
}

func TestRollRejectsOutOfTurn(t *testing.T) {
	e := newTestEngine(nil)
	g := startedGame(e, "p1", "p2")

	_, _, err := e.Roll(g, "p2")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeNotCurrentPlayer, verr.Code)

	_, _, err = e.Roll(g, "ghost")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "player", nf.Resource)
}

func TestRollRejectsWrongPhase(t *testing.T) {
	e := newTestEngine(&scriptRoller{rolls: [][2]int{{1, 2}, {1, 1}}})
	g := startedGame(e, "p1", "p2")

	g, _, err := e.Roll(g, "p1")
	require.NoError(t, err)
	require.Equal(t, PhaseAction, g.Phase)

	_, _, err = e.Roll(g, "p1")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeWrongPhase, verr.Code)
}

func TestEndTurnRequiresResolvedDecisions(t *testing.T) {
	e := newTestEngine(&scriptRoller{rolls: [][2]int{{1, 2}}})
	g := startedGame(e, "p1", "p2")

	g, _, err := e.Roll(g, "p1")
	require.NoError(t, err)
	require.NotNil(t, g.PropertyDecision)

	// END_TURN has not been reached yet, the pending offer blocks it.
	_, _, err = e.EndTurn(g, "p1")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeWrongPhase, verr.Code)

	g, _, err = e.Decline(g, "p1")
	require.NoError(t, err)
	g, events, err := e.EndTurn(g, "p1")
	require.NoError(t, err)
	assert.Equal(t, "p2", g.CurrentPlayer().ID)
	assert.Equal(t, PhaseRolling, g.Phase)
	assert.Contains(t, eventTypes(events), EventTurnEnded)
}

func TestAdvanceTurnSkipsBankruptPlayers(t *testing.T) {
	e := newTestEngine(&scriptRoller{rolls: [][2]int{{2, 3}}})
	g := startedGame(e, "p1", "p2", "p3")
	g.PlayerByID("p2").Bankrupt = true
	g.BankruptPlayers = []string{"p2"}

	g, _, err := e.Roll(g, "p1")
	require.NoError(t, err)
	require.Equal(t, PhaseAction, g.Phase)
	g, _, err = e.Decline(g, "p1")
	require.NoError(t, err)
	g, _, err = e.EndTurn(g, "p1")
	require.NoError(t, err)

	assert.Equal(t, "p3", g.CurrentPlayer().ID)
}

func TestOrderRollFixesTurnOrderDescending(t *testing.T) {
	e := newTestEngine(&scriptRoller{rolls: [][2]int{{1, 2}, {5, 6}, {2, 2}}})
	g := e.NewGame("game-1")
	for _, id := range []string{"p1", "p2", "p3"} {
		var err error
		g, _, err = e.AddPlayer(g, id, id, false)
		require.NoError(t, err)
	}
	g, _, err := e.Start(g)
	require.NoError(t, err)

	g, _, err = e.Roll(g, "p1") // 3
	require.NoError(t, err)
	assert.Equal(t, PhaseWaiting, g.Phase)

	_, _, err = e.Roll(g, "p1")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeAlreadyRolled, verr.Code)

	g, _, err = e.Roll(g, "p2") // 11
	require.NoError(t, err)
	g, events, err := e.Roll(g, "p3") // 4
	require.NoError(t, err)

	assert.Equal(t, []string{"p2", "p3", "p1"}, g.TurnOrder)
	assert.Equal(t, "p2", g.CurrentPlayer().ID)
	assert.Equal(t, PhaseRolling, g.Phase)
	assert.Nil(t, g.OrderRolls)
	assert.Contains(t, eventTypes(events), EventTurnOrderFixed)
}

func TestOrderRollTiesRerollOnlyTiedPlayers(t *testing.T) {
	e := newTestEngine(&scriptRoller{rolls: [][2]int{
		{5, 5}, // p1: 10
		{4, 6}, // p2: 10, tied with p1
		{1, 2}, // p3: 3
		{3, 4}, // p1 reroll: 7
		{1, 1}, // p2 reroll: 2
	}})
	g := e.NewGame("game-1")
	for _, id := range []string{"p1", "p2", "p3"} {
		var err error
		g, _, err = e.AddPlayer(g, id, id, false)
		require.NoError(t, err)
	}
	g, _, err := e.Start(g)
	require.NoError(t, err)

	g, _, err = e.Roll(g, "p1")
	require.NoError(t, err)
	g, _, err = e.Roll(g, "p2")
	require.NoError(t, err)
	g, _, err = e.Roll(g, "p3")
	require.NoError(t, err)

	// Tie between p1 and p2: their rolls are discarded, p3 keeps its 3.
	assert.Equal(t, PhaseWaiting, g.Phase)
	assert.Len(t, g.OrderRolls, 1)
	assert.Equal(t, 3, g.OrderRolls["p3"])

	_, _, err = e.Roll(g, "p3")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeAlreadyRolled, verr.Code)

	g, _, err = e.Roll(g, "p1")
	require.NoError(t, err)
	g, _, err = e.Roll(g, "p2")
	require.NoError(t, err)

	assert.Equal(t, []string{"p1", "p3", "p2"}, g.TurnOrder)
	assert.Equal(t, PhaseRolling, g.Phase)
}

func TestActionsRejectedAfterGameOver(t *testing.T) {
	e := newTestEngine(nil)
	g := startedGame(e, "p1", "p2")
	g.Phase = PhaseGameOver
	g.Winner = "p1"

	var verr *ValidationError
	_, _, err := e.Roll(g, "p1")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeGameOver, verr.Code)

	_, _, err = e.EndTurn(g, "p1")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeGameOver, verr.Code)
}

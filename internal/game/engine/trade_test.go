package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func proposeTestTrade(t *testing.T, e *Engine, g *GameState) (*GameState, string) {
	t.Helper()
	g.PropertyAt(1).OwnerID = "p1"
	g.PropertyAt(3).OwnerID = "p2"

	g, events, err := e.ProposeTrade(g, "p1", "p2", []int{1}, []int{3}, 100, 0)
	require.NoError(t, err)
	require.Len(t, g.PendingTrades, 1)
	assert.Contains(t, eventTypes(events), EventTradeProposed)
	return g, g.PendingTrades[0].ID
}

func TestAcceptTradeSwapsAssets(t *testing.T) {
	e := newTestEngine(nil)
	g := startedGame(e, "p1", "p2")
	g, tradeID := proposeTestTrade(t, e, g)

	g, events, err := e.AcceptTrade(g, "p2", tradeID)
	require.NoError(t, err)

	assert.Equal(t, "p2", g.PropertyAt(1).OwnerID)
	assert.Equal(t, "p1", g.PropertyAt(3).OwnerID)
	assert.Equal(t, 1400, g.PlayerByID("p1").Money)
	assert.Equal(t, 1600, g.PlayerByID("p2").Money)
	assert.Equal(t, TradeStatusAccepted, g.TradeByID(tradeID).Status)
	assert.Contains(t, eventTypes(events), EventTradeAccepted)
}

func TestAcceptStaleTradeRejected(t *testing.T) {
	e := newTestEngine(nil)
	g := startedGame(e, "p1", "p2", "p3")
	g, tradeID := proposeTestTrade(t, e, g)

	// The offered street changes hands before acceptance.
	g.PropertyAt(1).OwnerID = "p3"

	_, _, err := e.AcceptTrade(g, "p2", tradeID)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeStaleTrade, verr.Code)

	// Nothing moved and the offer is still pending.
	assert.Equal(t, "p3", g.PropertyAt(1).OwnerID)
	assert.Equal(t, "p2", g.PropertyAt(3).OwnerID)
	assert.Equal(t, 1500, g.PlayerByID("p1").Money)
	assert.Equal(t, TradeStatusPending, g.TradeByID(tradeID).Status)
}

func TestAcceptTradeStaleWhenMoneyGone(t *testing.T) {
	e := newTestEngine(nil)
	g := startedGame(e, "p1", "p2")
	g, tradeID := proposeTestTrade(t, e, g)

	g.PlayerByID("p1").Money = 40 // below the offered 100

	_, _, err := e.AcceptTrade(g, "p2", tradeID)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeStaleTrade, verr.Code)
}

func TestRejectTrade(t *testing.T) {
	e := newTestEngine(nil)
	g := startedGame(e, "p1", "p2")
	g, tradeID := proposeTestTrade(t, e, g)

	g, events, err := e.RejectTrade(g, "p2", tradeID)
	require.NoError(t, err)

	assert.Equal(t, TradeStatusRejected, g.TradeByID(tradeID).Status)
	assert.Equal(t, "p1", g.PropertyAt(1).OwnerID)
	assert.Contains(t, eventTypes(events), EventTradeRejected)

	// A settled trade cannot be accepted afterwards.
	_, _, err = e.AcceptTrade(g, "p2", tradeID)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeInvalidTrade, verr.Code)
}

func TestProposerMayWithdrawOwnTrade(t *testing.T) {
	e := newTestEngine(nil)
	g := startedGame(e, "p1", "p2")
	g, tradeID := proposeTestTrade(t, e, g)

	g, _, err := e.RejectTrade(g, "p1", tradeID)
	require.NoError(t, err)
	assert.Equal(t, TradeStatusRejected, g.TradeByID(tradeID).Status)
}

func TestOnlyRecipientMayAccept(t *testing.T) {
	e := newTestEngine(nil)
	g := startedGame(e, "p1", "p2", "p3")
	g, tradeID := proposeTestTrade(t, e, g)

	_, _, err := e.AcceptTrade(g, "p3", tradeID)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeNotCurrentPlayer, verr.Code)
}

func TestProposeTradeValidatesOwnership(t *testing.T) {
	e := newTestEngine(nil)
	g := startedGame(e, "p1", "p2")
	g.PropertyAt(3).OwnerID = "p2"

	_, _, err := e.ProposeTrade(g, "p1", "p2", []int{1}, []int{3}, 0, 0)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeInvalidTrade, verr.Code)

	_, _, err = e.ProposeTrade(g, "p1", "p1", nil, nil, 0, 0)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeInvalidTrade, verr.Code)

	_, _, err = e.ProposeTrade(g, "p1", "p2", nil, nil, -5, 0)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeInvalidTrade, verr.Code)
}

func TestTradeWithUnknownPartyOrTrade(t *testing.T) {
	e := newTestEngine(nil)
	g := startedGame(e, "p1", "p2")

	var nf *NotFoundError
	_, _, err := e.ProposeTrade(g, "p1", "ghost", nil, nil, 10, 0)
	require.ErrorAs(t, err, &nf)

	_, _, err = e.AcceptTrade(g, "p2", "no-such-trade")
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "trade", nf.Resource)
}

func TestBankruptPlayersCannotTrade(t *testing.T) {
	e := newTestEngine(nil)
	g := startedGame(e, "p1", "p2", "p3")
	g.PlayerByID("p2").Bankrupt = true

	_, _, err := e.ProposeTrade(g, "p1", "p2", nil, nil, 10, 0)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeInvalidTrade, verr.Code)
}

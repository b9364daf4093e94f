package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBankruptcyTransfersAssetsToCreditor(t *testing.T) {
	e := newTestEngine(nil)
	g := startedGame(e, "p1", "p2", "p3")
	g.PropertyAt(1).OwnerID = "p1"
	g.PropertyAt(3).OwnerID = "p1"
	g.PlayerByID("p1").Money = 20
	g.Phase = PhaseAction
	g.RentOwed = &RentOwed{Position: 24, CreditorID: "p2", Amount: 500, Kind: ObligationRent}

	g, events, err := e.Pay(g, "p1")
	require.NoError(t, err)

	p := g.PlayerByID("p1")
	assert.True(t, p.Bankrupt)
	assert.Equal(t, 0, p.Money)
	assert.Contains(t, g.BankruptPlayers, "p1")
	assert.Equal(t, "p2", g.PropertyAt(1).OwnerID)
	assert.Equal(t, "p2", g.PropertyAt(3).OwnerID)
	assert.Equal(t, 1500, g.PlayerByID("p2").Money, "creditor receives assets, not the uncovered debt")

	// The bankrupt player's turn is over and play continues.
	assert.Equal(t, "p2", g.CurrentPlayer().ID)
	assert.Equal(t, PhaseRolling, g.Phase)
	assert.Nil(t, g.RentOwed)
	assert.Contains(t, eventTypes(events), EventBankruptcy)
}

func TestBankruptcyToBankFreesProperties(t *testing.T) {
	e := newTestEngine(nil)
	g := startedGame(e, "p1", "p2", "p3")
	prop := g.PropertyAt(1)
	prop.OwnerID = "p1"
	prop.HouseCount = 3
	mort := g.PropertyAt(3)
	mort.OwnerID = "p1"
	mort.Mortgaged = true
	g.PlayerByID("p1").Money = 20
	g.Phase = PhaseAction
	g.RentOwed = &RentOwed{Amount: 200, Kind: ObligationTax}

	g, _, err := e.Pay(g, "p1")
	require.NoError(t, err)

	assert.True(t, g.PlayerByID("p1").Bankrupt)

	// Bank-owed debt returns the slots to the market, cleared.
	freed := g.PropertyAt(1)
	assert.Empty(t, freed.OwnerID)
	assert.Equal(t, 0, freed.HouseCount)
	assert.Empty(t, g.PropertyAt(3).OwnerID)
	assert.False(t, g.PropertyAt(3).Mortgaged)
}

func TestLastOpponentStandingWins(t *testing.T) {
	e := newTestEngine(nil)
	g := startedGame(e, "p1", "p2")
	g.PlayerByID("p1").Money = 20
	g.Phase = PhaseAction
	g.RentOwed = &RentOwed{Position: 3, CreditorID: "p2", Amount: 100, Kind: ObligationRent}

	g, events, err := e.Pay(g, "p1")
	require.NoError(t, err)

	assert.Equal(t, PhaseGameOver, g.Phase)
	assert.Equal(t, "p2", g.Winner)
	assert.False(t, g.HasPendingDecision())
	types := eventTypes(events)
	assert.Contains(t, types, EventBankruptcy)
	assert.Contains(t, types, EventGameOver)

	// Nothing is accepted after the terminal phase.
	_, _, err = e.Roll(g, "p2")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeGameOver, verr.Code)
}

func TestBankruptPlayerLosesJailState(t *testing.T) {
	e := newTestEngine(nil)
	g := startedGame(e, "p1", "p2", "p3")
	p := g.PlayerByID("p1")
	p.Money = 20
	p.InJail = true
	p.JailTurns = 2
	g.Phase = PhaseAction
	g.RentOwed = &RentOwed{Amount: 100, Kind: ObligationTax}

	g, _, err := e.Pay(g, "p1")
	require.NoError(t, err)

	p = g.PlayerByID("p1")
	assert.True(t, p.Bankrupt)
	assert.False(t, p.InJail)
	assert.Equal(t, 0, p.JailTurns)
}

func TestDeclareBankruptcyIsIdempotent(t *testing.T) {
	e := newTestEngine(nil)
	g := startedGame(e, "p1", "p2", "p3")

	events := e.declareBankruptcy(g, "p1", "")
	require.NotEmpty(t, events)
	assert.Len(t, g.BankruptPlayers, 1)

	events = e.declareBankruptcy(g, "p1", "")
	assert.Empty(t, events)
	assert.Len(t, g.BankruptPlayers, 1)
}

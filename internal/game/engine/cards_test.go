package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withDrawnCard parks a card as the pending decision for the current player.
func withDrawnCard(g *GameState, card Card) *GameState {
	g.Phase = PhaseAction
	g.DrawnCard = &card
	return g
}

func TestLandingOnChanceDrawsCard(t *testing.T) {
	// Pick index 5 of the chance deck: collect $50 dividend.
	e := newTestEngine(&scriptRoller{rolls: [][2]int{{3, 4}}, picks: []int{5}})
	g := startedGame(e, "p1", "p2")

	g, events, err := e.Roll(g, "p1")
	require.NoError(t, err)

	require.NotNil(t, g.DrawnCard)
	assert.Equal(t, "chance-06", g.DrawnCard.ID)
	assert.Equal(t, PhaseAction, g.Phase)
	assert.Contains(t, eventTypes(events), EventCardDrawn)

	g, events, err = e.ApplyCard(g, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1550, g.PlayerByID("p1").Money)
	assert.Nil(t, g.DrawnCard)
	assert.Equal(t, PhaseEndTurn, g.Phase)
	assert.Contains(t, eventTypes(events), EventCardApplied)
}

func TestApplyCardRequiresPendingCard(t *testing.T) {
	e := newTestEngine(nil)
	g := startedGame(e, "p1", "p2")
	g.Phase = PhaseAction

	_, _, err := e.ApplyCard(g, "p1")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeNoPendingDecision, verr.Code)
}

func TestCardAdvanceToGoCollectsBonus(t *testing.T) {
	e := newTestEngine(nil)
	g := startedGame(e, "p1", "p2")
	g.PlayerByID("p1").Position = 7
	g = withDrawnCard(g, Card{ID: "c", Action: CardAction{Kind: CardMove, Destination: 0}})

	g, events, err := e.ApplyCard(g, "p1")
	require.NoError(t, err)

	p := g.PlayerByID("p1")
	assert.Equal(t, 0, p.Position)
	assert.Equal(t, 1700, p.Money)
	assert.Contains(t, eventTypes(events), EventPassedStart)
}

func TestCardMoveForwardResolvesLanding(t *testing.T) {
	e := newTestEngine(nil)
	g := startedGame(e, "p1", "p2")
	g.PlayerByID("p1").Position = 7
	g = withDrawnCard(g, Card{ID: "c", Action: CardAction{Kind: CardMove, Destination: 24}})

	g, _, err := e.ApplyCard(g, "p1")
	require.NoError(t, err)

	assert.Equal(t, 24, g.PlayerByID("p1").Position)
	assert.Equal(t, 1500, g.PlayerByID("p1").Money, "no wrap, no bonus")
	require.NotNil(t, g.PropertyDecision)
	assert.Equal(t, 24, g.PropertyDecision.Position)
	assert.Equal(t, PhaseAction, g.Phase, "new decision keeps the action phase")
}

func TestCardMoveBackNeverPaysBonus(t *testing.T) {
	e := newTestEngine(nil)
	g := startedGame(e, "p1", "p2")
	g.PlayerByID("p1").Position = 1
	g = withDrawnCard(g, Card{ID: "c", Action: CardAction{Kind: CardMoveRelative, Offset: -3}})

	g, _, err := e.ApplyCard(g, "p1")
	require.NoError(t, err)

	p := g.PlayerByID("p1")
	assert.Equal(t, 38, p.Position, "wraps backwards onto Luxury Tax")
	assert.Equal(t, 1500, p.Money)
	require.NotNil(t, g.RentOwed)
	assert.Equal(t, 100, g.RentOwed.Amount)
}

func TestCardNearestRailroadOwesDoubleRent(t *testing.T) {
	e := newTestEngine(nil)
	g := startedGame(e, "p1", "p2")
	g.PlayerByID("p1").Position = 7
	g.PropertyAt(15).OwnerID = "p2"
	g.LastRoll = []int{3, 4}
	g = withDrawnCard(g, Card{ID: "c", Action: CardAction{Kind: CardMoveToNearest, Nearest: SpaceRailroad}})

	g, _, err := e.ApplyCard(g, "p1")
	require.NoError(t, err)

	assert.Equal(t, 15, g.PlayerByID("p1").Position)
	require.NotNil(t, g.RentOwed)
	assert.Equal(t, 50, g.RentOwed.Amount, "single-railroad rent, doubled")
	assert.Equal(t, "p2", g.RentOwed.CreditorID)
}

func TestCardNearestUtilityOffersPurchaseWhenUnowned(t *testing.T) {
	e := newTestEngine(nil)
	g := startedGame(e, "p1", "p2")
	g.PlayerByID("p1").Position = 7
	g = withDrawnCard(g, Card{ID: "c", Action: CardAction{Kind: CardMoveToNearest, Nearest: SpaceUtility}})

	g, _, err := e.ApplyCard(g, "p1")
	require.NoError(t, err)

	assert.Equal(t, 12, g.PlayerByID("p1").Position)
	require.NotNil(t, g.PropertyDecision)
	assert.Equal(t, 12, g.PropertyDecision.Position)
	assert.True(t, g.PropertyDecision.DoubleRent)
}

func TestCardPaySetsPendingObligation(t *testing.T) {
	e := newTestEngine(nil)
	g := startedGame(e, "p1", "p2")
	g = withDrawnCard(g, Card{ID: "c", Action: CardAction{Kind: CardPay, Amount: 15}})

	g, _, err := e.ApplyCard(g, "p1")
	require.NoError(t, err)

	require.NotNil(t, g.RentOwed)
	assert.Equal(t, 15, g.RentOwed.Amount)
	assert.Equal(t, ObligationTax, g.RentOwed.Kind)
	assert.Equal(t, PhaseAction, g.Phase)

	g, _, err = e.Pay(g, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1485, g.PlayerByID("p1").Money)
}

func TestCardCollectFromEachPlayer(t *testing.T) {
	e := newTestEngine(nil)
	g := startedGame(e, "p1", "p2", "p3")
	g = withDrawnCard(g, Card{ID: "c", Action: CardAction{Kind: CardCollectFromEach, Amount: 50}})

	g, _, err := e.ApplyCard(g, "p1")
	require.NoError(t, err)

	assert.Equal(t, 1600, g.PlayerByID("p1").Money)
	assert.Equal(t, 1450, g.PlayerByID("p2").Money)
	assert.Equal(t, 1450, g.PlayerByID("p3").Money)
}

func TestCardCollectFromEachBankruptsBrokePayer(t *testing.T) {
	e := newTestEngine(nil)
	g := startedGame(e, "p1", "p2", "p3")
	g.PlayerByID("p2").Money = 30
	g.PropertyAt(1).OwnerID = "p2"
	g = withDrawnCard(g, Card{ID: "c", Action: CardAction{Kind: CardCollectFromEach, Amount: 50}})

	g, events, err := e.ApplyCard(g, "p1")
	require.NoError(t, err)

	assert.True(t, g.PlayerByID("p2").Bankrupt)
	assert.Equal(t, "p1", g.PropertyAt(1).OwnerID, "assets go to the collector")
	assert.Contains(t, eventTypes(events), EventBankruptcy)
}

func TestCardPayEachPlayer(t *testing.T) {
	e := newTestEngine(nil)
	g := startedGame(e, "p1", "p2", "p3")
	g = withDrawnCard(g, Card{ID: "c", Action: CardAction{Kind: CardPayEach, Amount: 50}})

	g, _, err := e.ApplyCard(g, "p1")
	require.NoError(t, err)

	assert.Equal(t, 1400, g.PlayerByID("p1").Money)
	assert.Equal(t, 1550, g.PlayerByID("p2").Money)
	assert.Equal(t, 1550, g.PlayerByID("p3").Money)
}

func TestCardRepairChargesPerImprovement(t *testing.T) {
	e := newTestEngine(nil)
	g := startedGame(e, "p1", "p2")
	med := g.PropertyAt(1)
	med.OwnerID = "p1"
	med.HouseCount = 3
	baltic := g.PropertyAt(3)
	baltic.OwnerID = "p1"
	baltic.HasHotel = true
	g = withDrawnCard(g, Card{ID: "c", Action: CardAction{Kind: CardRepair, HouseFee: 25, HotelFee: 100}})

	g, _, err := e.ApplyCard(g, "p1")
	require.NoError(t, err)

	require.NotNil(t, g.RentOwed)
	assert.Equal(t, 175, g.RentOwed.Amount)
}

func TestCardRepairWithNothingBuiltIsFree(t *testing.T) {
	e := newTestEngine(nil)
	g := startedGame(e, "p1", "p2")
	g = withDrawnCard(g, Card{ID: "c", Action: CardAction{Kind: CardRepair, HouseFee: 25, HotelFee: 100}})

	g, _, err := e.ApplyCard(g, "p1")
	require.NoError(t, err)
	assert.Nil(t, g.RentOwed)
	assert.Equal(t, PhaseEndTurn, g.Phase)
}

func TestCardGoToJail(t *testing.T) {
	e := newTestEngine(nil)
	g := startedGame(e, "p1", "p2")
	g = withDrawnCard(g, Card{ID: "c", Action: CardAction{Kind: CardJail}})

	g, events, err := e.ApplyCard(g, "p1")
	require.NoError(t, err)

	p := g.PlayerByID("p1")
	assert.True(t, p.InJail)
	assert.Equal(t, 10, p.Position)
	assert.Contains(t, eventTypes(events), EventJailEntered)
}

func TestCardGetOutOfJailFree(t *testing.T) {
	e := newTestEngine(nil)
	g := startedGame(e, "p1", "p2")
	g = withDrawnCard(g, Card{ID: "c", Action: CardAction{Kind: CardJailFree}})

	g, _, err := e.ApplyCard(g, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, g.PlayerByID("p1").JailFreeCards)
}

func TestCardUnknownKindIsInvariantViolation(t *testing.T) {
	e := newTestEngine(nil)
	g := startedGame(e, "p1", "p2")
	g = withDrawnCard(g, Card{ID: "c", Action: CardAction{Kind: "teleport"}})

	_, _, err := e.ApplyCard(g, "p1")
	var ierr *InvariantError
	require.ErrorAs(t, err, &ierr)
}

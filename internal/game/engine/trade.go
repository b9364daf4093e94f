package engine

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// ProposeTrade creates a pending peer-to-peer offer. Ownership and funds
// are validated at proposal time and again at acceptance; trades are
// independent of the turn phase.
func (e *Engine) ProposeTrade(g *GameState, fromID, toID string, offered, requested []int, offeredMoney, requestedMoney int) (*GameState, []Event, error) {
	if g.Phase == PhaseGameOver {
		return nil, nil, newValidationError(CodeGameOver, "game %s is already over", g.ID)
	}
	if err := e.validateTradeParties(g, fromID, toID); err != nil {
		return nil, nil, err
	}
	if offeredMoney < 0 || requestedMoney < 0 {
		return nil, nil, newValidationError(CodeInvalidTrade, "trade money amounts must be non-negative")
	}
	if err := e.validateTradeSides(g, fromID, toID, offered, requested); err != nil {
		return nil, nil, err
	}

	g = g.Clone()
	trade := Trade{
		ID:                  uuid.New().String(),
		FromPlayerID:        fromID,
		ToPlayerID:          toID,
		OfferedProperties:   append([]int(nil), offered...),
		RequestedProperties: append([]int(nil), requested...),
		OfferedMoney:        offeredMoney,
		RequestedMoney:      requestedMoney,
		Status:              TradeStatusPending,
		CreatedAt:           time.Now(),
	}
	g.PendingTrades = append(g.PendingTrades, trade)
	events := []Event{newEvent(g, EventTradeProposed, fromID, map[string]interface{}{
		"tradeId":    trade.ID,
		"toPlayerId": toID,
	})}
	return g, events, nil
}

// AcceptTrade atomically swaps the named properties and money between the
// two players, provided everything offered is still owned and affordable at
// acceptance time; a stale offer is rejected without touching either side.
func (e *Engine) AcceptTrade(g *GameState, playerID, tradeID string) (*GameState, []Event, error) {
	if g.Phase == PhaseGameOver {
		return nil, nil, newValidationError(CodeGameOver, "game %s is already over", g.ID)
	}
	trade := g.TradeByID(tradeID)
	if trade == nil {
		return nil, nil, &NotFoundError{Resource: "trade", ID: tradeID}
	}
	if trade.Status != TradeStatusPending {
		return nil, nil, newValidationError(CodeInvalidTrade, "trade %s is already %s", tradeID, trade.Status)
	}
	if trade.ToPlayerID != playerID {
		return nil, nil, newValidationError(CodeNotCurrentPlayer, "trade %s is not addressed to player %s", tradeID, playerID)
	}
	if err := e.validateTradeParties(g, trade.FromPlayerID, trade.ToPlayerID); err != nil {
		return nil, nil, err
	}

	// Stale-ownership check before anything moves.
	if err := e.validateTradeSides(g, trade.FromPlayerID, trade.ToPlayerID, trade.OfferedProperties, trade.RequestedProperties); err != nil {
		return nil, nil, &ValidationError{Code: CodeStaleTrade, Message: "offered assets changed hands since the proposal"}
	}
	from := g.PlayerByID(trade.FromPlayerID)
	to := g.PlayerByID(trade.ToPlayerID)
	if from.Money < trade.OfferedMoney || to.Money < trade.RequestedMoney {
		return nil, nil, &ValidationError{Code: CodeStaleTrade, Message: "a party can no longer cover the agreed money"}
	}

	g = g.Clone()
	trade = g.TradeByID(tradeID)
	for _, pos := range trade.OfferedProperties {
		g.PropertyAt(pos).OwnerID = trade.ToPlayerID
	}
	for _, pos := range trade.RequestedProperties {
		g.PropertyAt(pos).OwnerID = trade.FromPlayerID
	}
	g.PlayerByID(trade.FromPlayerID).Money += trade.RequestedMoney - trade.OfferedMoney
	g.PlayerByID(trade.ToPlayerID).Money += trade.OfferedMoney - trade.RequestedMoney
	trade.Status = TradeStatusAccepted

	events := []Event{newEvent(g, EventTradeAccepted, playerID, map[string]interface{}{
		"tradeId":      trade.ID,
		"fromPlayerId": trade.FromPlayerID,
	})}
	return g, events, e.checkInvariants(g)
}

// RejectTrade declines a pending offer.
func (e *Engine) RejectTrade(g *GameState, playerID, tradeID string) (*GameState, []Event, error) {
	if g.Phase == PhaseGameOver {
		return nil, nil, newValidationError(CodeGameOver, "game %s is already over", g.ID)
	}
	trade := g.TradeByID(tradeID)
	if trade == nil {
		return nil, nil, &NotFoundError{Resource: "trade", ID: tradeID}
	}
	if trade.Status != TradeStatusPending {
		return nil, nil, newValidationError(CodeInvalidTrade, "trade %s is already %s", tradeID, trade.Status)
	}
	if trade.ToPlayerID != playerID && trade.FromPlayerID != playerID {
		return nil, nil, newValidationError(CodeNotCurrentPlayer, "player %s is not a party to trade %s", playerID, tradeID)
	}

	g = g.Clone()
	g.TradeByID(tradeID).Status = TradeStatusRejected
	events := []Event{newEvent(g, EventTradeRejected, playerID, map[string]interface{}{
		"tradeId": tradeID,
	})}
	return g, events, nil
}

func (e *Engine) validateTradeParties(g *GameState, fromID, toID string) error {
	from := g.PlayerByID(fromID)
	if from == nil {
		return &NotFoundError{Resource: "player", ID: fromID}
	}
	to := g.PlayerByID(toID)
	if to == nil {
		return &NotFoundError{Resource: "player", ID: toID}
	}
	if fromID == toID {
		return newValidationError(CodeInvalidTrade, "cannot trade with yourself")
	}
	if from.Bankrupt || to.Bankrupt {
		return newValidationError(CodeInvalidTrade, "bankrupt players cannot trade")
	}
	return nil
}

func (e *Engine) validateTradeSides(g *GameState, fromID, toID string, offered, requested []int) error {
	for _, pos := range offered {
		prop := g.PropertyAt(pos)
		if prop == nil {
			return &NotFoundError{Resource: "property", ID: strconv.Itoa(pos)}
		}
		if prop.OwnerID != fromID {
			return newValidationError(CodeInvalidTrade, "property at %d is not owned by %s", pos, fromID)
		}
	}
	for _, pos := range requested {
		prop := g.PropertyAt(pos)
		if prop == nil {
			return &NotFoundError{Resource: "property", ID: strconv.Itoa(pos)}
		}
		if prop.OwnerID != toID {
			return newValidationError(CodeInvalidTrade, "property at %d is not owned by %s", pos, toID)
		}
	}
	return nil
}

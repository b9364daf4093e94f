package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/proptycoon/backend/internal/game/engine"
)

// Game is the persisted wrapper around an engine state: lobby metadata plus
// the version counter the optimistic save path compares against.
type Game struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GameID     string             `bson:"gameId" json:"gameId"`
	Code       string             `bson:"code" json:"code"` // Alphanumeric room code
	Name       string             `bson:"name" json:"name"`
	HostID     string             `bson:"hostId" json:"hostId"`
	MaxPlayers int                `bson:"maxPlayers" json:"maxPlayers"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`

	// Version increments on every successful save. A save conditioned on a
	// version that is no longer current is rejected as a conflict.
	Version int64 `bson:"version" json:"version"`

	State engine.GameState `bson:"state" json:"state"`
}

// Phase is a convenience accessor for listing and filtering.
func (g *Game) Phase() engine.GamePhase {
	return g.State.Phase
}

// Joinable reports whether the lobby still accepts players.
func (g *Game) Joinable() bool {
	return g.State.Phase == engine.PhaseWaiting &&
		g.State.OrderRolls == nil &&
		len(g.State.Players) < g.MaxPlayers
}

// GameAction is one player intent submitted over HTTP or WebSocket. Every
// mutation of a running game flows through this shape.
type GameAction struct {
	Type      ActionType             `json:"type"`
	PlayerID  string                 `json:"playerId"`
	GameID    string                 `json:"gameId"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// ActionType represents the type of a game action
type ActionType string

const (
	ActionRollDice        ActionType = "ROLL_DICE"
	ActionBuyProperty     ActionType = "BUY_PROPERTY"
	ActionDeclineProperty ActionType = "DECLINE_PROPERTY"
	ActionPay             ActionType = "PAY"
	ActionApplyCard       ActionType = "APPLY_CARD"
	ActionPayJailFine     ActionType = "PAY_JAIL_FINE"
	ActionUseJailCard     ActionType = "USE_JAIL_CARD"
	ActionEndTurn         ActionType = "END_TURN"
	ActionProposeTrade    ActionType = "PROPOSE_TRADE"
	ActionAcceptTrade     ActionType = "ACCEPT_TRADE"
	ActionRejectTrade     ActionType = "REJECT_TRADE"
)

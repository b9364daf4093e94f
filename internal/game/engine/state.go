package engine

import (
	"time"
)

// BoardSize is the number of spaces on the board.
const BoardSize = 40

// GamePhase represents the phase of a game
type GamePhase string

const (
	PhaseWaiting  GamePhase = "WAITING"
	PhaseRolling  GamePhase = "ROLLING"
	PhaseAction   GamePhase = "ACTION"
	PhaseEndTurn  GamePhase = "END_TURN"
	PhaseGameOver GamePhase = "GAME_OVER"
)

// PropertyType represents the type of an ownable board slot
type PropertyType string

const (
	PropertyTypeStreet   PropertyType = "property"
	PropertyTypeRailroad PropertyType = "railroad"
	PropertyTypeUtility  PropertyType = "utility"
)

// Player represents a participant in a game
type Player struct {
	ID            string `bson:"playerId" json:"playerId"`
	Name          string `bson:"name" json:"name"`
	Money         int    `bson:"money" json:"money"`
	Position      int    `bson:"position" json:"position"`
	InJail        bool   `bson:"inJail" json:"inJail"`
	JailTurns     int    `bson:"jailTurns" json:"jailTurns"`
	JailFreeCards int    `bson:"jailFreeCards" json:"jailFreeCards"`
	Bankrupt      bool   `bson:"bankrupt" json:"bankrupt"`
	IsBot         bool   `bson:"isBot" json:"isBot"`
}

// Property is an ownable board slot. Static fields (price, rent schedule)
// are copied from the board definition at game creation so a finished game
// is self-describing history.
type Property struct {
	Position   int          `bson:"position" json:"position"`
	Name       string       `bson:"name" json:"name"`
	Type       PropertyType `bson:"type" json:"type"`
	Price      int          `bson:"price" json:"price"`
	ColorGroup string       `bson:"colorGroup,omitempty" json:"colorGroup,omitempty"`
	RentLevels []int        `bson:"rentLevels,omitempty" json:"rentLevels,omitempty"`
	HouseCost  int          `bson:"houseCost,omitempty" json:"houseCost,omitempty"`
	HouseCount int          `bson:"houseCount" json:"houseCount"`
	HasHotel   bool         `bson:"hasHotel" json:"hasHotel"`
	Mortgaged  bool         `bson:"mortgaged" json:"mortgaged"`
	OwnerID    string       `bson:"ownerId,omitempty" json:"ownerId,omitempty"`
}

// DecisionKind classifies a pending rent-like obligation
type DecisionKind string

const (
	ObligationRent DecisionKind = "rent"
	ObligationTax  DecisionKind = "tax"
	ObligationFine DecisionKind = "fine"
)

// PropertyDecision is a pending purchase offer for the current player.
type PropertyDecision struct {
	Position int  `bson:"position" json:"position"`
	Price    int  `bson:"price" json:"price"`
	// DoubleRent marks offers produced by advance-to-nearest cards: if the
	// slot is owned, the rent owed is doubled instead.
	DoubleRent bool `bson:"doubleRent,omitempty" json:"doubleRent,omitempty"`
}

// RentOwed is a pending mandatory payment for the current player.
// An empty CreditorID means the debt is owed to the bank.
type RentOwed struct {
	Position   int          `bson:"position,omitempty" json:"position,omitempty"`
	CreditorID string       `bson:"creditorId,omitempty" json:"creditorId,omitempty"`
	Amount     int          `bson:"amount" json:"amount"`
	Kind       DecisionKind `bson:"kind" json:"kind"`
}

// TradeStatus represents the lifecycle state of a trade offer
type TradeStatus string

const (
	TradeStatusPending  TradeStatus = "pending"
	TradeStatusAccepted TradeStatus = "accepted"
	TradeStatusRejected TradeStatus = "rejected"
)

// Trade is a peer-to-peer offer exchanging properties and money.
type Trade struct {
	ID                  string      `bson:"tradeId" json:"tradeId"`
	FromPlayerID        string      `bson:"fromPlayerId" json:"fromPlayerId"`
	ToPlayerID          string      `bson:"toPlayerId" json:"toPlayerId"`
	OfferedProperties   []int       `bson:"offeredProperties,omitempty" json:"offeredProperties,omitempty"`
	RequestedProperties []int       `bson:"requestedProperties,omitempty" json:"requestedProperties,omitempty"`
	OfferedMoney        int         `bson:"offeredMoney" json:"offeredMoney"`
	RequestedMoney      int         `bson:"requestedMoney" json:"requestedMoney"`
	Status              TradeStatus `bson:"status" json:"status"`
	CreatedAt           time.Time   `bson:"createdAt" json:"createdAt"`
}

// GameState is the authoritative state of one match. It is mutated only
// through Engine operations, which clone it first: a failed operation never
// leaves a partially applied state behind.
type GameState struct {
	ID                 string     `bson:"gameId" json:"gameId"`
	Players            []Player   `bson:"players" json:"players"`
	Properties         []Property `bson:"properties" json:"properties"`
	Phase              GamePhase  `bson:"phase" json:"phase"`
	TurnOrder          []string   `bson:"turnOrder,omitempty" json:"turnOrder,omitempty"`
	CurrentPlayerIndex int        `bson:"currentPlayerIndex" json:"currentPlayerIndex"`
	DoublesCount       int        `bson:"doublesCount" json:"doublesCount"`
	LastRoll           []int      `bson:"lastRoll,omitempty" json:"lastRoll,omitempty"`
	BankruptPlayers    []string   `bson:"bankruptPlayers,omitempty" json:"bankruptPlayers,omitempty"`

	// OrderRolls collects the initial-order rolls while phase is WAITING.
	// Nil until the host starts the game; non-nil signals the roster is
	// locked and order rolling is underway.
	OrderRolls map[string]int `bson:"orderRolls,omitempty" json:"orderRolls,omitempty"`

	// Pending-decision slots; at most one is non-nil at a time.
	PropertyDecision *PropertyDecision `bson:"propertyDecision,omitempty" json:"propertyDecision,omitempty"`
	RentOwed         *RentOwed         `bson:"rentOwed,omitempty" json:"rentOwed,omitempty"`
	DrawnCard        *Card             `bson:"drawnCard,omitempty" json:"drawnCard,omitempty"`

	PendingTrades []Trade `bson:"pendingTrades,omitempty" json:"pendingTrades,omitempty"`
	Winner        string  `bson:"winner,omitempty" json:"winner,omitempty"`
}

// Clone returns a deep copy of the state.
func (g *GameState) Clone() *GameState {
	c := *g

	c.Players = make([]Player, len(g.Players))
	copy(c.Players, g.Players)

	c.Properties = make([]Property, len(g.Properties))
	copy(c.Properties, g.Properties)
	for i := range c.Properties {
		if g.Properties[i].RentLevels != nil {
			c.Properties[i].RentLevels = append([]int(nil), g.Properties[i].RentLevels...)
		}
	}

	if g.TurnOrder != nil {
		c.TurnOrder = append([]string(nil), g.TurnOrder...)
	}
	if g.LastRoll != nil {
		c.LastRoll = append([]int(nil), g.LastRoll...)
	}
	if g.BankruptPlayers != nil {
		c.BankruptPlayers = append([]string(nil), g.BankruptPlayers...)
	}
	if g.OrderRolls != nil {
		c.OrderRolls = make(map[string]int, len(g.OrderRolls))
		for k, v := range g.OrderRolls {
			c.OrderRolls[k] = v
		}
	}
	if g.PropertyDecision != nil {
		d := *g.PropertyDecision
		c.PropertyDecision = &d
	}
	if g.RentOwed != nil {
		r := *g.RentOwed
		c.RentOwed = &r
	}
	if g.DrawnCard != nil {
		d := *g.DrawnCard
		c.DrawnCard = &d
	}
	if g.PendingTrades != nil {
		c.PendingTrades = make([]Trade, len(g.PendingTrades))
		copy(c.PendingTrades, g.PendingTrades)
		for i := range c.PendingTrades {
			if g.PendingTrades[i].OfferedProperties != nil {
				c.PendingTrades[i].OfferedProperties = append([]int(nil), g.PendingTrades[i].OfferedProperties...)
			}
			if g.PendingTrades[i].RequestedProperties != nil {
				c.PendingTrades[i].RequestedProperties = append([]int(nil), g.PendingTrades[i].RequestedProperties...)
			}
		}
	}
	return &c
}

// PlayerByID returns the player with the given id, or nil.
func (g *GameState) PlayerByID(id string) *Player {
	for i := range g.Players {
		if g.Players[i].ID == id {
			return &g.Players[i]
		}
	}
	return nil
}

// PropertyAt returns the ownable property at the given board position, or nil
// if the position is not an ownable slot.
func (g *GameState) PropertyAt(position int) *Property {
	for i := range g.Properties {
		if g.Properties[i].Position == position {
			return &g.Properties[i]
		}
	}
	return nil
}

// PropertyByID resolves a trade's property reference, which is a position.
func (g *GameState) PropertyByID(position int) *Property {
	return g.PropertyAt(position)
}

// PropertiesOwnedBy returns the derived owned-property set of a player.
func (g *GameState) PropertiesOwnedBy(playerID string) []*Property {
	var owned []*Property
	for i := range g.Properties {
		if g.Properties[i].OwnerID == playerID {
			owned = append(owned, &g.Properties[i])
		}
	}
	return owned
}

// CurrentPlayer returns the player whose turn it is, or nil before the turn
// order is fixed.
func (g *GameState) CurrentPlayer() *Player {
	if len(g.TurnOrder) == 0 || g.CurrentPlayerIndex < 0 || g.CurrentPlayerIndex >= len(g.TurnOrder) {
		return nil
	}
	return g.PlayerByID(g.TurnOrder[g.CurrentPlayerIndex])
}

// ActivePlayers returns the non-bankrupt players.
func (g *GameState) ActivePlayers() []*Player {
	var active []*Player
	for i := range g.Players {
		if !g.Players[i].Bankrupt {
			active = append(active, &g.Players[i])
		}
	}
	return active
}

// TradeByID returns the trade with the given id, or nil.
func (g *GameState) TradeByID(id string) *Trade {
	for i := range g.PendingTrades {
		if g.PendingTrades[i].ID == id {
			return &g.PendingTrades[i]
		}
	}
	return nil
}

// HasPendingDecision reports whether any decision slot is occupied.
func (g *GameState) HasPendingDecision() bool {
	return g.PropertyDecision != nil || g.RentOwed != nil || g.DrawnCard != nil
}

// lastRollIsDoubles reports whether the most recent roll was a double.
func (g *GameState) lastRollIsDoubles() bool {
	return len(g.LastRoll) == 2 && g.LastRoll[0] == g.LastRoll[1]
}

// lastRollTotal returns the pip total of the most recent roll.
func (g *GameState) lastRollTotal() int {
	if len(g.LastRoll) != 2 {
		return 0
	}
	return g.LastRoll[0] + g.LastRoll[1]
}

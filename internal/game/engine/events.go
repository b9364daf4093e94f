package engine

import "time"

// EventType identifies an emitted game event
type EventType string

const (
	EventGameStarted      EventType = "game_started"
	EventOrderRoll        EventType = "order_roll"
	EventTurnOrderFixed   EventType = "turn_order_fixed"
	EventRollResult       EventType = "roll_result"
	EventPassedStart      EventType = "passed_start"
	EventPurchaseOffered  EventType = "purchase_offered"
	EventPropertyBought   EventType = "property_bought"
	EventPurchaseDeclined EventType = "purchase_declined"
	EventRentOwed         EventType = "rent_owed"
	EventRentPaid         EventType = "rent_paid"
	EventCardDrawn        EventType = "card_drawn"
	EventCardApplied      EventType = "card_applied"
	EventJailEntered      EventType = "jail_entered"
	EventJailExited       EventType = "jail_exited"
	EventBankruptcy       EventType = "bankruptcy"
	EventTurnEnded        EventType = "turn_ended"
	EventGameOver         EventType = "game_over"
	EventTradeProposed    EventType = "trade_proposed"
	EventTradeAccepted    EventType = "trade_accepted"
	EventTradeRejected    EventType = "trade_rejected"
)

// Event is one entry of the list a mutation emits. The caller forwards
// events to the notifier after persisting the new state; the engine itself
// never broadcasts.
type Event struct {
	Type      EventType              `json:"type"`
	GameID    string                 `json:"gameId"`
	PlayerID  string                 `json:"playerId,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func newEvent(g *GameState, t EventType, playerID string, payload map[string]interface{}) Event {
	return Event{
		Type:      t,
		GameID:    g.ID,
		PlayerID:  playerID,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

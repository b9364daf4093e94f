package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/proptycoon/backend/internal/game/engine"
	"github.com/proptycoon/backend/internal/game/models"
)

// Message priority levels
const (
	PriorityHigh   = "high"   // State updates, turn changes, critical events
	PriorityNormal = "normal" // Regular game events
	PriorityLow    = "low"    // Lobby chatter, cosmetic updates
)

// ActionSink receives player intents submitted over a WebSocket connection.
// The game manager implements it; the indirection keeps this package free of
// a manager dependency.
type ActionSink interface {
	SubmitAction(ctx context.Context, action models.GameAction) error
}

// BroadcastMessage is one outbound payload addressed to a game room.
type BroadcastMessage struct {
	GameID   string
	Payload  []byte
	Priority string
	// ExceptPlayerID suppresses delivery to one player, typically the sender.
	ExceptPlayerID string
}

// Hub maintains the set of active WebSocket connections grouped by game and
// fans broadcast messages out to them.
type Hub struct {
	// Registered clients by gameID -> playerID -> client
	clients      map[string]map[string]*Client
	clientsMutex sync.RWMutex

	register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage

	sink   ActionSink
	logger *zap.SugaredLogger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub creates a hub; Run must be started on it before clients register.
func NewHub(sink ActionSink, logger *zap.SugaredLogger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *BroadcastMessage, 256),
		sink:       sink,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Run processes registration and broadcast traffic until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case <-h.ctx.Done():
			return

		case client := <-h.register:
			h.clientsMutex.Lock()
			room, ok := h.clients[client.gameID]
			if !ok {
				room = make(map[string]*Client)
				h.clients[client.gameID] = room
			}
			if old, ok := room[client.playerID]; ok {
				// A reconnect replaces the previous connection.
				old.close()
			}
			room[client.playerID] = client
			h.clientsMutex.Unlock()
			h.logger.Infow("client connected",
				"gameId", client.gameID, "playerId", client.playerID)

		case client := <-h.unregister:
			h.clientsMutex.Lock()
			if room, ok := h.clients[client.gameID]; ok {
				if current, ok := room[client.playerID]; ok && current == client {
					delete(room, client.playerID)
					client.close()
					if len(room) == 0 {
						delete(h.clients, client.gameID)
					}
				}
			}
			h.clientsMutex.Unlock()
			h.logger.Infow("client disconnected",
				"gameId", client.gameID, "playerId", client.playerID)

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

// Stop shuts the hub down and closes every connection.
func (h *Hub) Stop() {
	h.cancel()
	h.clientsMutex.Lock()
	defer h.clientsMutex.Unlock()
	for _, room := range h.clients {
		for _, client := range room {
			client.close()
		}
	}
	h.clients = make(map[string]map[string]*Client)
}

func (h *Hub) deliver(msg *BroadcastMessage) {
	h.clientsMutex.RLock()
	defer h.clientsMutex.RUnlock()
	room, ok := h.clients[msg.GameID]
	if !ok {
		return
	}
	for playerID, client := range room {
		if playerID == msg.ExceptPlayerID {
			continue
		}
		client.send(msg.Payload, msg.Priority)
	}
}

// BroadcastToGame queues a raw payload for every client of a game.
func (h *Hub) BroadcastToGame(gameID string, payload []byte, priority string) {
	select {
	case h.broadcast <- &BroadcastMessage{GameID: gameID, Payload: payload, Priority: priority}:
	case <-h.ctx.Done():
	}
}

// BroadcastEvents forwards an engine event batch to a game room.
func (h *Hub) BroadcastEvents(gameID string, events []engine.Event) {
	payload, err := json.Marshal(map[string]interface{}{
		"type":   "game_events",
		"gameId": gameID,
		"events": events,
	})
	if err != nil {
		h.logger.Errorw("failed to marshal event broadcast", "gameId", gameID, "error", err)
		return
	}
	h.BroadcastToGame(gameID, payload, PriorityNormal)
}

// BroadcastState forwards a full state snapshot to a game room.
func (h *Hub) BroadcastState(gameID string, state *engine.GameState) {
	payload, err := json.Marshal(map[string]interface{}{
		"type":   "state_update",
		"gameId": gameID,
		"state":  state,
	})
	if err != nil {
		h.logger.Errorw("failed to marshal state broadcast", "gameId", gameID, "error", err)
		return
	}
	h.BroadcastToGame(gameID, payload, PriorityHigh)
}

// SendToPlayer queues a payload for a single client, if connected.
func (h *Hub) SendToPlayer(gameID, playerID string, payload []byte, priority string) {
	h.clientsMutex.RLock()
	defer h.clientsMutex.RUnlock()
	if room, ok := h.clients[gameID]; ok {
		if client, ok := room[playerID]; ok {
			client.send(payload, priority)
		}
	}
}

// ConnectedPlayers lists the player ids with a live connection to a game.
func (h *Hub) ConnectedPlayers(gameID string) []string {
	h.clientsMutex.RLock()
	defer h.clientsMutex.RUnlock()
	room := h.clients[gameID]
	players := make([]string, 0, len(room))
	for playerID := range room {
		players = append(players, playerID)
	}
	return players
}

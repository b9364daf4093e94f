package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/proptycoon/backend/internal/game/models"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// Client represents one WebSocket connection of a player in a game.
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	playerID string
	gameID   string

	// Priority queues for outbound messages. The write pump drains high
	// before normal before low.
	highPriorityQueue   chan []byte
	normalPriorityQueue chan []byte
	lowPriorityQueue    chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

// NewClient wraps an upgraded connection and registers it with the hub.
func NewClient(hub *Hub, conn *websocket.Conn, gameID, playerID string) *Client {
	c := &Client{
		hub:                 hub,
		conn:                conn,
		playerID:            playerID,
		gameID:              gameID,
		highPriorityQueue:   make(chan []byte, 64),
		normalPriorityQueue: make(chan []byte, 128),
		lowPriorityQueue:    make(chan []byte, 64),
		done:                make(chan struct{}),
	}
	hub.register <- c
	go c.writePump()
	go c.readPump()
	return c
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// send queues a payload on the matching priority channel; a full queue drops
// the message rather than blocking the hub.
func (c *Client) send(payload []byte, priority string) {
	var queue chan []byte
	switch priority {
	case PriorityHigh:
		queue = c.highPriorityQueue
	case PriorityLow:
		queue = c.lowPriorityQueue
	default:
		queue = c.normalPriorityQueue
	}
	select {
	case queue <- payload:
	case <-c.done:
	default:
		c.hub.logger.Warnw("dropping message, client queue full",
			"gameId", c.gameID, "playerId", c.playerID, "priority", priority)
	}
}

// readPump relays inbound intents to the action sink until the connection
// drops.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warnw("unexpected websocket close",
					"gameId", c.gameID, "playerId", c.playerID, "error", err)
			}
			return
		}
		c.handleMessage(payload)
	}
}

// handleMessage decodes one inbound frame. The only accepted payload is a
// game action; player and game ids come from the authenticated connection,
// never from the frame.
func (c *Client) handleMessage(payload []byte) {
	var action models.GameAction
	if err := json.Unmarshal(payload, &action); err != nil {
		c.hub.logger.Warnw("discarding malformed websocket message",
			"gameId", c.gameID, "playerId", c.playerID, "error", err)
		return
	}
	action.GameID = c.gameID
	action.PlayerID = c.playerID
	action.Timestamp = time.Now()

	if err := c.hub.sink.SubmitAction(c.hub.ctx, action); err != nil {
		c.sendError(action.Type, err)
	}
}

func (c *Client) sendError(actionType models.ActionType, err error) {
	payload, mErr := json.Marshal(map[string]interface{}{
		"type":   "action_rejected",
		"action": actionType,
		"error":  err.Error(),
	})
	if mErr != nil {
		return
	}
	c.send(payload, PriorityHigh)
}

// writePump drains the priority queues onto the wire and keeps the
// connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		// High priority first, then normal, then low.
		select {
		case payload := <-c.highPriorityQueue:
			if !c.write(payload) {
				return
			}
			continue
		default:
		}

		select {
		case <-c.done:
			return
		case payload := <-c.highPriorityQueue:
			if !c.write(payload) {
				return
			}
		case payload := <-c.normalPriorityQueue:
			if !c.write(payload) {
				return
			}
		case payload := <-c.lowPriorityQueue:
			if !c.write(payload) {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) write(payload []byte) bool {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		c.hub.logger.Debugw("write failed, closing client",
			"gameId", c.gameID, "playerId", c.playerID, "error", err)
		return false
	}
	return true
}

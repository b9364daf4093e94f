package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/proptycoon/backend/internal/game/manager"
	gamews "github.com/proptycoon/backend/internal/game/websocket"
)

// WebSocketHandler upgrades authenticated connections and hands them to the
// hub. Authentication happens in the JWT middleware, which also accepts the
// token as a query parameter because browsers cannot set headers on
// WebSocket upgrades.
type WebSocketHandler struct {
	hub         *gamews.Hub
	gameManager *manager.GameManager
	logger      *zap.SugaredLogger
}

// NewWebSocketHandler creates a new WebSocketHandler
func NewWebSocketHandler(hub *gamews.Hub, gameManager *manager.GameManager, logger *zap.SugaredLogger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:         hub,
		gameManager: gameManager,
		logger:      logger,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The JWT check is the real gate; origins are not restricted.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleConnection upgrades a connection for one game room.
func (h *WebSocketHandler) HandleConnection(c echo.Context) error {
	gameID := c.Param("gameId")
	if gameID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing game ID")
	}

	userID, ok := c.Get("userID").(string)
	if !ok || userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}

	// Only seated players get a socket into the room.
	game, err := h.gameManager.GetGame(c.Request().Context(), gameID)
	if err != nil {
		return engineHTTPError(err)
	}
	seated := false
	for i := range game.State.Players {
		if game.State.Players[i].ID == userID {
			seated = true
			break
		}
	}
	if !seated {
		return echo.NewHTTPError(http.StatusForbidden, "Not a player in this game")
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Errorw("failed to upgrade connection",
			"gameId", gameID, "playerId", userID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to establish WebSocket connection")
	}

	gamews.NewClient(h.hub, conn, gameID, userID)
	h.logger.Infow("websocket connection established", "gameId", gameID, "playerId", userID)
	return nil
}

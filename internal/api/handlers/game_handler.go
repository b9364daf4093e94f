package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/proptycoon/backend/internal/game/engine"
	"github.com/proptycoon/backend/internal/game/manager"
	"github.com/proptycoon/backend/internal/game/models"
)

// GameHandler handles lobby and gameplay requests. Every mutation goes
// through the game manager, so HTTP and WebSocket intents share one path.
type GameHandler struct {
	gameManager *manager.GameManager
	logger      *zap.SugaredLogger
}

// NewGameHandler creates a new GameHandler
func NewGameHandler(gameManager *manager.GameManager, logger *zap.SugaredLogger) *GameHandler {
	return &GameHandler{
		gameManager: gameManager,
		logger:      logger,
	}
}

// CreateGameRequest represents a create game request
type CreateGameRequest struct {
	GameName   string `json:"gameName" validate:"required,min=1,max=40"`
	PlayerName string `json:"playerName" validate:"required,min=1,max=20"`
}

// JoinGameRequest represents a join game request
type JoinGameRequest struct {
	Code       string `json:"code" validate:"required,len=6"`
	PlayerName string `json:"playerName" validate:"required,min=1,max=20"`
}

// AddBotRequest represents an add bot request
type AddBotRequest struct {
	Name string `json:"name,omitempty" validate:"omitempty,min=1,max=20"`
}

// TradeProposalRequest represents a propose trade request
type TradeProposalRequest struct {
	ToPlayerID          string `json:"toPlayerId" validate:"required"`
	OfferedProperties   []int  `json:"offeredProperties"`
	RequestedProperties []int  `json:"requestedProperties"`
	OfferedMoney        int    `json:"offeredMoney" validate:"gte=0"`
	RequestedMoney      int    `json:"requestedMoney" validate:"gte=0"`
}

// TradeResponseRequest represents an accept or reject of a pending trade
type TradeResponseRequest struct {
	TradeID string `json:"tradeId" validate:"required"`
	Accept  bool   `json:"accept"`
}

// GameResponse is the lobby-facing summary of a game.
type GameResponse struct {
	GameID     string `json:"gameId"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	Phase      string `json:"phase"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"maxPlayers"`
	HostID     string `json:"hostId"`
	CreatedAt  string `json:"createdAt"`
}

func toGameResponse(game *models.Game) GameResponse {
	return GameResponse{
		GameID:     game.GameID,
		Code:       game.Code,
		Name:       game.Name,
		Phase:      string(game.Phase()),
		Players:    len(game.State.Players),
		MaxPlayers: game.MaxPlayers,
		HostID:     game.HostID,
		CreatedAt:  game.CreatedAt.Format(time.RFC3339),
	}
}

// engineHTTPError maps engine error kinds onto HTTP status codes.
// Validation failures carry their machine-readable code so clients can
// branch without parsing messages.
func engineHTTPError(err error) error {
	var verr *engine.ValidationError
	if errors.As(err, &verr) {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{
			"code":    verr.Code,
			"message": verr.Message,
		})
	}
	var nferr *engine.NotFoundError
	if errors.As(err, &nferr) {
		return echo.NewHTTPError(http.StatusNotFound, nferr.Error())
	}
	var cerr *engine.ConflictError
	if errors.As(err, &cerr) {
		return echo.NewHTTPError(http.StatusConflict, "Game was modified concurrently, retry the action")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
}

// CreateGame creates a new lobby with the caller as host.
func (h *GameHandler) CreateGame(c echo.Context) error {
	var req CreateGameRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	userID := c.Get("userID").(string)
	game, err := h.gameManager.CreateGame(c.Request().Context(), userID, req.PlayerName, req.GameName)
	if err != nil {
		h.logger.Errorw("failed to create game", "hostId", userID, "error", err)
		return engineHTTPError(err)
	}

	return c.JSON(http.StatusCreated, toGameResponse(game))
}

// ListGames lists joinable lobbies.
func (h *GameHandler) ListGames(c echo.Context) error {
	games, err := h.gameManager.ListAvailableGames(c.Request().Context())
	if err != nil {
		h.logger.Errorw("failed to list games", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list games")
	}

	list := make([]GameResponse, 0, len(games))
	for _, game := range games {
		list = append(list, toGameResponse(game))
	}
	return c.JSON(http.StatusOK, list)
}

// GetGame returns the lobby summary for one game.
func (h *GameHandler) GetGame(c echo.Context) error {
	game, err := h.gameManager.GetGame(c.Request().Context(), c.Param("gameId"))
	if err != nil {
		return engineHTTPError(err)
	}
	return c.JSON(http.StatusOK, toGameResponse(game))
}

// GetGameByCode returns the lobby summary for a room code, so clients can
// preview a game before joining.
func (h *GameHandler) GetGameByCode(c echo.Context) error {
	game, err := h.gameManager.GetGameByCode(c.Request().Context(), c.Param("code"))
	if err != nil {
		return engineHTTPError(err)
	}
	return c.JSON(http.StatusOK, toGameResponse(game))
}

// GetGameState returns the full game state snapshot.
func (h *GameHandler) GetGameState(c echo.Context) error {
	game, err := h.gameManager.GetGame(c.Request().Context(), c.Param("gameId"))
	if err != nil {
		return engineHTTPError(err)
	}
	return c.JSON(http.StatusOK, game.State)
}

// JoinGame adds the caller to a lobby identified by its room code.
func (h *GameHandler) JoinGame(c echo.Context) error {
	var req JoinGameRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	userID := c.Get("userID").(string)
	game, err := h.gameManager.JoinGame(c.Request().Context(), req.Code, userID, req.PlayerName)
	if err != nil {
		return engineHTTPError(err)
	}

	return c.JSON(http.StatusOK, toGameResponse(game))
}

// StartGame locks the roster and opens initial-order rolling.
func (h *GameHandler) StartGame(c echo.Context) error {
	userID := c.Get("userID").(string)
	game, err := h.gameManager.StartGame(c.Request().Context(), c.Param("gameId"), userID)
	if err != nil {
		return engineHTTPError(err)
	}
	return c.JSON(http.StatusOK, game.State)
}

// AddBot adds an automated player to the lobby.
func (h *GameHandler) AddBot(c echo.Context) error {
	var req AddBotRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	userID := c.Get("userID").(string)
	game, err := h.gameManager.AddBot(c.Request().Context(), c.Param("gameId"), userID, req.Name)
	if err != nil {
		return engineHTTPError(err)
	}
	return c.JSON(http.StatusOK, toGameResponse(game))
}

// RollDice submits a dice roll for the caller.
func (h *GameHandler) RollDice(c echo.Context) error {
	return h.submitAction(c, models.ActionRollDice, nil)
}

// BuyProperty accepts the pending purchase offer.
func (h *GameHandler) BuyProperty(c echo.Context) error {
	return h.submitAction(c, models.ActionBuyProperty, nil)
}

// DeclineProperty declines the pending purchase offer.
func (h *GameHandler) DeclineProperty(c echo.Context) error {
	return h.submitAction(c, models.ActionDeclineProperty, nil)
}

// Pay settles the caller's pending debt.
func (h *GameHandler) Pay(c echo.Context) error {
	return h.submitAction(c, models.ActionPay, nil)
}

// ApplyCard resolves the card the caller has drawn.
func (h *GameHandler) ApplyCard(c echo.Context) error {
	return h.submitAction(c, models.ActionApplyCard, nil)
}

// PayJailFine pays the fine for an immediate jail release.
func (h *GameHandler) PayJailFine(c echo.Context) error {
	return h.submitAction(c, models.ActionPayJailFine, nil)
}

// UseJailCard spends a held get-out-of-jail card.
func (h *GameHandler) UseJailCard(c echo.Context) error {
	return h.submitAction(c, models.ActionUseJailCard, nil)
}

// EndTurn passes the turn to the next player.
func (h *GameHandler) EndTurn(c echo.Context) error {
	return h.submitAction(c, models.ActionEndTurn, nil)
}

// ProposeTrade submits a trade proposal to another player.
func (h *GameHandler) ProposeTrade(c echo.Context) error {
	var req TradeProposalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return h.submitAction(c, models.ActionProposeTrade, map[string]interface{}{
		"toPlayerId":          req.ToPlayerID,
		"offeredProperties":   intsToInterfaces(req.OfferedProperties),
		"requestedProperties": intsToInterfaces(req.RequestedProperties),
		"offeredMoney":        req.OfferedMoney,
		"requestedMoney":      req.RequestedMoney,
	})
}

// RespondToTrade accepts or rejects a pending trade.
func (h *GameHandler) RespondToTrade(c echo.Context) error {
	var req TradeResponseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	actionType := models.ActionRejectTrade
	if req.Accept {
		actionType = models.ActionAcceptTrade
	}
	return h.submitAction(c, actionType, map[string]interface{}{
		"tradeId": req.TradeID,
	})
}

// submitAction routes one intent through the game manager and returns the
// resulting state snapshot.
func (h *GameHandler) submitAction(c echo.Context, actionType models.ActionType, payload map[string]interface{}) error {
	userID := c.Get("userID").(string)
	action := models.GameAction{
		Type:      actionType,
		PlayerID:  userID,
		GameID:    c.Param("gameId"),
		Payload:   payload,
		Timestamp: time.Now(),
	}

	game, err := h.gameManager.ProcessGameAction(c.Request().Context(), action)
	if err != nil {
		return engineHTTPError(err)
	}
	return c.JSON(http.StatusOK, game.State)
}

// intsToInterfaces matches the shape JSON decoding gives WebSocket payloads,
// so the manager parses both transports identically.
func intsToInterfaces(values []int) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

package manager

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/proptycoon/backend/internal/config"
	"github.com/proptycoon/backend/internal/db/mongodb"
	"github.com/proptycoon/backend/internal/game/engine"
	"github.com/proptycoon/backend/internal/game/models"
	"github.com/proptycoon/backend/internal/game/utils"
)

// MessageQueue is the outbound notification pipe. The manager enqueues after
// every successful save; a worker drains into the WebSocket hub.
type MessageQueue interface {
	EnqueueGameEvents(ctx context.Context, gameID string, events []engine.Event, state *engine.GameState) error
}

// GameManager owns the lifecycle of games: lobby, intent processing,
// persistence and bot driving. All mutations of one game are serialized
// through its session lock, so engine operations never race on the same
// state.
type GameManager struct {
	ctx    context.Context
	store  *mongodb.GameStore
	queue  MessageQueue
	engine *engine.Engine
	cfg    config.GameConfig
	logger *zap.SugaredLogger

	sessions *sessionRegistry
}

// NewGameManager creates a new game manager instance.
func NewGameManager(ctx context.Context, store *mongodb.GameStore, queue MessageQueue, eng *engine.Engine, cfg config.GameConfig, logger *zap.SugaredLogger) *GameManager {
	gm := &GameManager{
		ctx:      ctx,
		store:    store,
		queue:    queue,
		engine:   eng,
		cfg:      cfg,
		logger:   logger,
		sessions: newSessionRegistry(),
	}
	go gm.runCleanupTask()
	return gm
}

// CreateGame creates a lobby with the host as its first player and returns
// the stored game.
func (gm *GameManager) CreateGame(ctx context.Context, hostID, hostName, gameName string) (*models.Game, error) {
	code, err := utils.GenerateRoomCode()
	if err != nil {
		return nil, fmt.Errorf("generating room code: %w", err)
	}

	gameID := uuid.New().String()
	state := gm.engine.NewGame(gameID)
	newState, _, err := gm.engine.AddPlayer(state, hostID, hostName, false)
	if err != nil {
		return nil, err
	}

	game := &models.Game{
		GameID:     gameID,
		Code:       code,
		Name:       gameName,
		HostID:     hostID,
		MaxPlayers: gm.cfg.MaxPlayers,
		State:      *newState,
	}
	if err := gm.store.Insert(ctx, game); err != nil {
		return nil, err
	}

	gm.logger.Infow("game created",
		"gameId", gameID, "code", code, "hostId", hostID)
	return game, nil
}

// JoinGame adds a player to a lobby identified by its room code.
func (gm *GameManager) JoinGame(ctx context.Context, code, playerID, playerName string) (*models.Game, error) {
	normalized, err := utils.NormalizeRoomCode(code)
	if err != nil {
		return nil, &engine.NotFoundError{Resource: "game", ID: code}
	}
	game, err := gm.store.FindByCode(ctx, normalized)
	if err != nil {
		return nil, err
	}
	return gm.mutate(ctx, game.GameID, func(g *models.Game) (*engine.GameState, []engine.Event, error) {
		if len(g.State.Players) >= g.MaxPlayers {
			return nil, nil, &engine.ValidationError{
				Code:    engine.CodeRosterLocked,
				Message: fmt.Sprintf("game %s is full", g.GameID),
			}
		}
		return gm.engine.AddPlayer(&g.State, playerID, playerName, false)
	})
}

// AddBot adds an automated player to a lobby. Only the host may do this.
func (gm *GameManager) AddBot(ctx context.Context, gameID, requesterID, botName string) (*models.Game, error) {
	if botName == "" {
		botName = "Bot"
	}
	return gm.mutate(ctx, gameID, func(g *models.Game) (*engine.GameState, []engine.Event, error) {
		if g.HostID != requesterID {
			return nil, nil, &engine.ValidationError{
				Code:    engine.CodeNotCurrentPlayer,
				Message: "only the host can add bots",
			}
		}
		if len(g.State.Players) >= g.MaxPlayers {
			return nil, nil, &engine.ValidationError{
				Code:    engine.CodeRosterLocked,
				Message: fmt.Sprintf("game %s is full", g.GameID),
			}
		}
		botID := "bot-" + uuid.New().String()[:8]
		return gm.engine.AddPlayer(&g.State, botID, botName, true)
	})
}

// StartGame locks the roster and opens initial-order rolling. Only the host
// may start.
func (gm *GameManager) StartGame(ctx context.Context, gameID, requesterID string) (*models.Game, error) {
	game, err := gm.mutate(ctx, gameID, func(g *models.Game) (*engine.GameState, []engine.Event, error) {
		if g.HostID != requesterID {
			return nil, nil, &engine.ValidationError{
				Code:    engine.CodeNotCurrentPlayer,
				Message: "only the host can start the game",
			}
		}
		if len(g.State.Players) < gm.cfg.MinimumPlayersToStart {
			return nil, nil, &engine.ValidationError{
				Code:    engine.CodeNotEnoughPlayers,
				Message: fmt.Sprintf("need at least %d players", gm.cfg.MinimumPlayersToStart),
			}
		}
		return gm.engine.Start(&g.State)
	})
	if err != nil {
		return nil, err
	}
	gm.runBots(gameID)
	return game, nil
}

// GetGame returns the current stored game.
func (gm *GameManager) GetGame(ctx context.Context, gameID string) (*models.Game, error) {
	return gm.store.Load(ctx, gameID)
}

// GetGameByCode returns the stored game for a room code.
func (gm *GameManager) GetGameByCode(ctx context.Context, code string) (*models.Game, error) {
	normalized, err := utils.NormalizeRoomCode(code)
	if err != nil {
		return nil, &engine.NotFoundError{Resource: "game", ID: code}
	}
	return gm.store.FindByCode(ctx, normalized)
}

// ListAvailableGames returns joinable lobbies, newest first.
func (gm *GameManager) ListAvailableGames(ctx context.Context) ([]*models.Game, error) {
	games, err := gm.store.ListByPhase(ctx, engine.PhaseWaiting, 50)
	if err != nil {
		return nil, err
	}
	available := games[:0]
	for _, g := range games {
		if g.Joinable() {
			available = append(available, g)
		}
	}
	return available, nil
}

// SubmitAction validates and applies one player intent. It implements the
// WebSocket hub's ActionSink, and the HTTP handlers call it too, so every
// mutation path is identical.
func (gm *GameManager) SubmitAction(ctx context.Context, action models.GameAction) error {
	_, err := gm.ProcessGameAction(ctx, action)
	return err
}

// ProcessGameAction applies one intent and returns the resulting game.
func (gm *GameManager) ProcessGameAction(ctx context.Context, action models.GameAction) (*models.Game, error) {
	game, err := gm.mutate(ctx, action.GameID, func(g *models.Game) (*engine.GameState, []engine.Event, error) {
		return gm.dispatch(&g.State, action)
	})
	if err != nil {
		return nil, err
	}
	gm.runBots(action.GameID)
	return game, nil
}

// dispatch maps an action type onto the engine operation it names.
func (gm *GameManager) dispatch(state *engine.GameState, action models.GameAction) (*engine.GameState, []engine.Event, error) {
	switch action.Type {
	case models.ActionRollDice:
		return gm.engine.Roll(state, action.PlayerID)
	case models.ActionBuyProperty:
		return gm.engine.Buy(state, action.PlayerID)
	case models.ActionDeclineProperty:
		return gm.engine.Decline(state, action.PlayerID)
	case models.ActionPay:
		return gm.engine.Pay(state, action.PlayerID)
	case models.ActionApplyCard:
		return gm.engine.ApplyCard(state, action.PlayerID)
	case models.ActionPayJailFine:
		return gm.engine.PayJailFine(state, action.PlayerID)
	case models.ActionUseJailCard:
		return gm.engine.UseJailCard(state, action.PlayerID)
	case models.ActionEndTurn:
		return gm.engine.EndTurn(state, action.PlayerID)
	case models.ActionProposeTrade:
		return gm.dispatchProposeTrade(state, action)
	case models.ActionAcceptTrade:
		tradeID, _ := action.Payload["tradeId"].(string)
		return gm.engine.AcceptTrade(state, action.PlayerID, tradeID)
	case models.ActionRejectTrade:
		tradeID, _ := action.Payload["tradeId"].(string)
		return gm.engine.RejectTrade(state, action.PlayerID, tradeID)
	default:
		return nil, nil, &engine.ValidationError{
			Code:    engine.CodeWrongPhase,
			Message: fmt.Sprintf("unknown action type %s", action.Type),
		}
	}
}

func (gm *GameManager) dispatchProposeTrade(state *engine.GameState, action models.GameAction) (*engine.GameState, []engine.Event, error) {
	toID, _ := action.Payload["toPlayerId"].(string)
	offered := intSlice(action.Payload["offeredProperties"])
	requested := intSlice(action.Payload["requestedProperties"])
	offeredMoney := intValue(action.Payload["offeredMoney"])
	requestedMoney := intValue(action.Payload["requestedMoney"])
	return gm.engine.ProposeTrade(state, action.PlayerID, toID, offered, requested, offeredMoney, requestedMoney)
}

// mutate is the serialization boundary: load, apply, optimistic save and
// notify, all under the game's session lock.
func (gm *GameManager) mutate(ctx context.Context, gameID string, apply func(*models.Game) (*engine.GameState, []engine.Event, error)) (*models.Game, error) {
	session := gm.sessions.acquire(gameID)
	session.mutex.Lock()
	defer session.mutex.Unlock()

	game, err := gm.store.Load(ctx, gameID)
	if err != nil {
		return nil, err
	}

	newState, events, err := apply(game)
	if err != nil {
		return nil, err
	}
	game.State = *newState

	if err := gm.store.Save(ctx, game); err != nil {
		var conflict *engine.ConflictError
		if errors.As(err, &conflict) {
			// The session lock serializes writers in this process; a conflict
			// here means another instance touched the game. Surface it so the
			// caller retries against the fresh state.
			gm.logger.Warnw("optimistic save conflict", "gameId", gameID)
		}
		return nil, err
	}

	if err := gm.queue.EnqueueGameEvents(ctx, gameID, events, &game.State); err != nil {
		// Persistence succeeded; a notification failure must not fail the
		// intent. Clients recover from the next state broadcast.
		gm.logger.Errorw("failed to enqueue game events", "gameId", gameID, "error", err)
	}
	return game, nil
}

// runCleanupTask periodically removes idle finished games and their sessions.
func (gm *GameManager) runCleanupTask() {
	expiry := time.Duration(gm.cfg.IdleGameExpiryDuration) * time.Hour
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	ticker := time.NewTicker(30 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-gm.ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-expiry)
			removed, err := gm.store.DeleteIdle(gm.ctx, cutoff)
			if err != nil {
				gm.logger.Errorw("idle game cleanup failed", "error", err)
				continue
			}
			if removed > 0 {
				gm.logger.Infow("removed idle games", "count", removed)
			}
			gm.sessions.evictIdle(cutoff)
		}
	}
}

func intSlice(v interface{}) []int {
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]int, 0, len(raw))
	for _, item := range raw {
		out = append(out, intValue(item))
	}
	return out
}

// intValue tolerates the numeric types JSON decoding produces.
func intValue(v interface{}) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	default:
		return 0
	}
}

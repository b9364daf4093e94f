package manager

import (
	"errors"
	"time"

	"github.com/proptycoon/backend/internal/game/engine"
	"github.com/proptycoon/backend/internal/game/models"
)

// maxBotMoves bounds one driver run so a defect in the policy can never spin
// a game forever.
const maxBotMoves = 200

// runBots starts a driver goroutine when any bot has something to do. Bots
// submit their intents through the same ProcessGameAction path as humans, so
// they obey every validation gate and their moves broadcast normally.
func (gm *GameManager) runBots(gameID string) {
	if !gm.sessions.tryStartBots(gameID) {
		return
	}
	go gm.driveBots(gameID)
}

func (gm *GameManager) driveBots(gameID string) {
	defer gm.sessions.stopBots(gameID)

	cfg := engine.BotConfig{
		Reserve:       gm.cfg.BotReserve,
		WealthRatio:   gm.cfg.BotWealthRatio,
		FewProperties: gm.cfg.BotFewProperties,
	}
	delay := time.Duration(gm.cfg.BotMoveDelay) * time.Millisecond

	for moves := 0; moves < maxBotMoves; moves++ {
		select {
		case <-gm.ctx.Done():
			return
		case <-time.After(delay):
		}

		// Read outside the session lock; the suggestion is re-validated by
		// the engine when the intent is applied.
		game, err := gm.store.Load(gm.ctx, gameID)
		if err != nil {
			gm.logger.Errorw("bot driver failed to load game", "gameId", gameID, "error", err)
			return
		}

		botID, intent := gm.nextBotIntent(&game.State, cfg)
		if intent == engine.IntentNone {
			return
		}

		action := models.GameAction{
			Type:      intentToAction(intent),
			PlayerID:  botID,
			GameID:    gameID,
			Timestamp: time.Now(),
		}
		if _, err := gm.ProcessGameAction(gm.ctx, action); err != nil {
			var verr *engine.ValidationError
			if errors.As(err, &verr) {
				// A human moved in between; re-read and try again.
				continue
			}
			gm.logger.Errorw("bot action failed",
				"gameId", gameID, "botId", botID, "action", action.Type, "error", err)
			return
		}
	}
	gm.logger.Warnw("bot driver hit its move bound", "gameId", gameID)
}

// nextBotIntent finds a bot with a pending move. During order rolling every
// bot may act; afterwards only the current player can.
func (gm *GameManager) nextBotIntent(state *engine.GameState, cfg engine.BotConfig) (string, engine.Intent) {
	for i := range state.Players {
		p := &state.Players[i]
		if !p.IsBot || p.Bankrupt {
			continue
		}
		if intent := gm.engine.SuggestAction(state, p.ID, cfg); intent != engine.IntentNone {
			return p.ID, intent
		}
	}
	return "", engine.IntentNone
}

func intentToAction(intent engine.Intent) models.ActionType {
	switch intent {
	case engine.IntentRoll:
		return models.ActionRollDice
	case engine.IntentBuy:
		return models.ActionBuyProperty
	case engine.IntentDecline:
		return models.ActionDeclineProperty
	case engine.IntentPay:
		return models.ActionPay
	case engine.IntentApplyCard:
		return models.ActionApplyCard
	case engine.IntentEndTurn:
		return models.ActionEndTurn
	default:
		return models.ActionEndTurn
	}
}

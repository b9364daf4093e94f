package engine

// Intent is the next action a bot wants to submit. Bots go through the same
// validation gates as human players; suggestion never mutates the state.
type Intent string

const (
	IntentRoll      Intent = "roll"
	IntentBuy       Intent = "buy"
	IntentDecline   Intent = "decline"
	IntentPay       Intent = "pay"
	IntentApplyCard Intent = "apply_card"
	IntentEndTurn   Intent = "end_turn"
	IntentNone      Intent = ""
)

// BotConfig tunes the purchase policy.
type BotConfig struct {
	// Reserve is the cash floor a bot keeps after any purchase.
	Reserve int
	// WealthRatio buys when money is at least this multiple of the price.
	WealthRatio int
	// FewProperties buys regardless of ratio while the portfolio is smaller
	// than this, as long as the reserve holds.
	FewProperties int
}

// DefaultBotConfig mirrors the tuning the bundled bots play with.
func DefaultBotConfig() BotConfig {
	return BotConfig{Reserve: 200, WealthRatio: 3, FewProperties: 3}
}

// SuggestAction inspects the state and returns the intent the bot should
// submit next, or IntentNone when it is not the bot's move.
func (e *Engine) SuggestAction(g *GameState, playerID string, cfg BotConfig) Intent {
	if g.Phase == PhaseGameOver || (g.Phase == PhaseWaiting && g.OrderRolls == nil) {
		return IntentNone
	}
	p := g.PlayerByID(playerID)
	if p == nil || p.Bankrupt {
		return IntentNone
	}

	if g.Phase == PhaseWaiting {
		if _, rolled := g.OrderRolls[playerID]; !rolled {
			return IntentRoll
		}
		return IntentNone
	}

	cur := g.CurrentPlayer()
	if cur == nil || cur.ID != playerID {
		return IntentNone
	}

	switch g.Phase {
	case PhaseRolling:
		return IntentRoll

	case PhaseAction:
		if g.DrawnCard != nil {
			return IntentApplyCard
		}
		if g.RentOwed != nil {
			// Pay whatever is owed; the engine routes shortfall to bankruptcy.
			return IntentPay
		}
		if g.PropertyDecision != nil {
			if e.shouldBuy(g, p, g.PropertyDecision.Price, cfg) {
				return IntentBuy
			}
			return IntentDecline
		}
		return IntentEndTurn

	case PhaseEndTurn:
		return IntentEndTurn
	}
	return IntentNone
}

// shouldBuy applies the purchase policy: never dip below the reserve, and
// beyond that buy when rich relative to the price or while the portfolio is
// still small.
func (e *Engine) shouldBuy(g *GameState, p *Player, price int, cfg BotConfig) bool {
	if p.Money-price < cfg.Reserve {
		return false
	}
	if cfg.WealthRatio > 0 && p.Money >= price*cfg.WealthRatio {
		return true
	}
	return len(g.PropertiesOwnedBy(p.ID)) < cfg.FewProperties
}

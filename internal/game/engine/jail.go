package engine

// maxJailTurns is the number of failed rolls after which release is forced
// and the fine charged.
const maxJailTurns = 3

// enterJail moves a player straight to the jail position. It bypasses
// movement, pass-start credit and space resolution, and cancels any extra
// roll a double would have granted.
func (e *Engine) enterJail(g *GameState, playerID string) []Event {
	p := g.PlayerByID(playerID)
	p.Position = e.board.JailPosition
	p.InJail = true
	p.JailTurns = 0
	g.DoublesCount = 0
	return []Event{newEvent(g, EventJailEntered, playerID, map[string]interface{}{
		"position": e.board.JailPosition,
	})}
}

// releaseFromJail clears a player's jail state.
func (e *Engine) releaseFromJail(g *GameState, playerID, reason string) []Event {
	p := g.PlayerByID(playerID)
	p.InJail = false
	p.JailTurns = 0
	return []Event{newEvent(g, EventJailExited, playerID, map[string]interface{}{
		"reason": reason,
	})}
}

// PayJailFine releases the current player by paying the fine before rolling.
// Unlike a forced release, the voluntary payment requires sufficient funds.
func (e *Engine) PayJailFine(g *GameState, playerID string) (*GameState, []Event, error) {
	g, err := e.beginTurnAction(g, playerID, PhaseRolling)
	if err != nil {
		return nil, nil, err
	}
	p := g.PlayerByID(playerID)
	if !p.InJail {
		return nil, nil, newValidationError(CodeNotJailed, "player %s is not in jail", playerID)
	}
	if len(g.LastRoll) != 0 {
		return nil, nil, newValidationError(CodeAlreadyRolled, "jail fine must be paid before rolling")
	}
	if p.Money < e.board.JailFine {
		return nil, nil, newValidationError(CodeCannotAfford, "fine is %d, player has %d", e.board.JailFine, p.Money)
	}
	p.Money -= e.board.JailFine
	events := e.releaseFromJail(g, playerID, "paid_fine")
	return g, events, e.checkInvariants(g)
}

// UseJailCard releases the current player by consuming a jail-free card.
func (e *Engine) UseJailCard(g *GameState, playerID string) (*GameState, []Event, error) {
	g, err := e.beginTurnAction(g, playerID, PhaseRolling)
	if err != nil {
		return nil, nil, err
	}
	p := g.PlayerByID(playerID)
	if !p.InJail {
		return nil, nil, newValidationError(CodeNotJailed, "player %s is not in jail", playerID)
	}
	if len(g.LastRoll) != 0 {
		return nil, nil, newValidationError(CodeAlreadyRolled, "jail card must be used before rolling")
	}
	if p.JailFreeCards <= 0 {
		return nil, nil, newValidationError(CodeNoJailFreeCard, "player %s holds no jail-free card", playerID)
	}
	p.JailFreeCards--
	events := e.releaseFromJail(g, playerID, "used_card")
	return g, events, e.checkInvariants(g)
}

// rollInJail handles a jailed player's roll: doubles release and move,
// a third failed roll forces release with the fine charged, anything else
// burns the turn.
func (e *Engine) rollInJail(g *GameState, playerID string, d1, d2 int) ([]Event, error) {
	p := g.PlayerByID(playerID)
	g.LastRoll = []int{d1, d2}
	events := []Event{newEvent(g, EventRollResult, playerID, map[string]interface{}{
		"dice":      []int{d1, d2},
		"isDoubles": d1 == d2,
		"inJail":    true,
	})}

	if d1 == d2 {
		events = append(events, e.releaseFromJail(g, playerID, "rolled_doubles")...)
		// A release double grants no extra roll.
		g.DoublesCount = 0
		moveEvents, err := e.moveAndResolve(g, playerID, d1+d2)
		if err != nil {
			return nil, err
		}
		events = append(events, moveEvents...)
		e.settlePhaseAfterMove(g)
		return events, nil
	}

	p.JailTurns++
	if p.JailTurns < maxJailTurns {
		g.Phase = PhaseEndTurn
		return events, nil
	}

	// Third failed roll: release is forced and the fine is charged whether
	// or not the player can cover it.
	events = append(events, e.releaseFromJail(g, playerID, "forced")...)
	if p.Money < e.board.JailFine {
		events = append(events, e.declareBankruptcy(g, playerID, "")...)
		e.finishBankruptTurn(g, playerID)
		return events, nil
	}
	p.Money -= e.board.JailFine
	events = append(events, newEvent(g, EventRentPaid, playerID, map[string]interface{}{
		"amount": e.board.JailFine,
		"kind":   string(ObligationFine),
	}))
	moveEvents, err := e.moveAndResolve(g, playerID, d1+d2)
	if err != nil {
		return nil, err
	}
	events = append(events, moveEvents...)
	e.settlePhaseAfterMove(g)
	return events, nil
}

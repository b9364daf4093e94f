package engine

// declareBankruptcy removes a player from play. Money is zeroed, and the
// owned properties either transfer to the creditor as-is or, for bank-owed
// debts, return to the market cleared of improvements and mortgages.
// The win check runs on the same transition.
func (e *Engine) declareBankruptcy(g *GameState, debtorID, creditorID string) []Event {
	p := g.PlayerByID(debtorID)
	if p == nil || p.Bankrupt {
		return nil
	}

	p.Bankrupt = true
	p.Money = 0
	p.InJail = false
	p.JailTurns = 0
	g.BankruptPlayers = append(g.BankruptPlayers, debtorID)

	var transferred []int
	for _, prop := range g.PropertiesOwnedBy(debtorID) {
		transferred = append(transferred, prop.Position)
		if creditorID != "" {
			prop.OwnerID = creditorID
		} else {
			// Freed to the bank: purchasable again, improvements gone.
			prop.OwnerID = ""
			prop.HouseCount = 0
			prop.HasHotel = false
			prop.Mortgaged = false
		}
	}

	e.logger.Infow("player bankrupt",
		"gameId", g.ID, "playerId", debtorID, "creditorId", creditorID,
		"propertiesTransferred", len(transferred))

	events := []Event{newEvent(g, EventBankruptcy, debtorID, map[string]interface{}{
		"creditorId": creditorID,
		"properties": transferred,
	})}

	if winner := e.checkGameOver(g); winner != "" {
		events = append(events, newEvent(g, EventGameOver, winner, map[string]interface{}{
			"winner": winner,
		}))
	}
	return events
}

// checkGameOver flips the game to its terminal phase when exactly one
// non-bankrupt player remains, returning the winner id.
func (e *Engine) checkGameOver(g *GameState) string {
	active := g.ActivePlayers()
	if len(active) != 1 {
		return ""
	}
	g.Phase = PhaseGameOver
	g.Winner = active[0].ID
	g.PropertyDecision = nil
	g.RentOwed = nil
	g.DrawnCard = nil
	return g.Winner
}

// finishBankruptTurn cleans up after the current player went bankrupt
// mid-turn: pending decisions are void and play moves on unless the game
// just ended.
func (e *Engine) finishBankruptTurn(g *GameState, playerID string) {
	if g.Phase == PhaseGameOver {
		return
	}
	g.PropertyDecision = nil
	g.RentOwed = nil
	g.DrawnCard = nil
	cur := g.CurrentPlayer()
	if cur != nil && cur.ID == playerID {
		e.advanceTurn(g)
		return
	}
	if cur != nil && cur.Bankrupt {
		e.advanceTurn(g)
	}
}

package engine

import "fmt"

// applyCard interprets a card's tagged action against the game state. Every
// kind is handled exhaustively; an unknown kind is a data defect, not a
// fallback path.
func (e *Engine) applyCard(g *GameState, playerID string, card Card) ([]Event, error) {
	p := g.PlayerByID(playerID)
	events := []Event{newEvent(g, EventCardApplied, playerID, map[string]interface{}{
		"cardId": card.ID,
		"text":   card.Text,
	})}

	switch card.Action.Kind {
	case CardMove:
		moved, err := e.moveTo(g, playerID, card.Action.Destination)
		if err != nil {
			return nil, err
		}
		events = append(events, moved...)

	case CardMoveRelative:
		pos := ((p.Position+card.Action.Offset)%BoardSize + BoardSize) % BoardSize
		// A backward move never passes start.
		if card.Action.Offset >= 0 {
			moved, err := e.moveTo(g, playerID, pos)
			if err != nil {
				return nil, err
			}
			events = append(events, moved...)
		} else {
			p.Position = pos
			resolved, err := e.resolveLanding(g, playerID, g.lastRollTotal())
			if err != nil {
				return nil, err
			}
			events = append(events, resolved...)
		}

	case CardMoveToNearest:
		events = append(events, e.moveToNearest(g, playerID, card.Action.Nearest)...)

	case CardCollect:
		p.Money += card.Action.Amount

	case CardPay:
		g.RentOwed = &RentOwed{Amount: card.Action.Amount, Kind: ObligationTax}
		events = append(events, newEvent(g, EventRentOwed, playerID, map[string]interface{}{
			"amount": card.Action.Amount,
			"kind":   string(ObligationTax),
		}))

	case CardCollectFromEach:
		var broke []string
		for i := range g.Players {
			other := &g.Players[i]
			if other.ID == playerID || other.Bankrupt {
				continue
			}
			other.Money -= card.Action.Amount
			p.Money += card.Action.Amount
			if other.Money < 0 {
				broke = append(broke, other.ID)
			}
		}
		for _, id := range broke {
			events = append(events, e.declareBankruptcy(g, id, playerID)...)
		}

	case CardPayEach:
		for i := range g.Players {
			other := &g.Players[i]
			if other.ID == playerID || other.Bankrupt {
				continue
			}
			p.Money -= card.Action.Amount
			other.Money += card.Action.Amount
		}
		if p.Money < 0 {
			events = append(events, e.declareBankruptcy(g, playerID, "")...)
			e.finishBankruptTurn(g, playerID)
		}

	case CardRepair:
		cost := 0
		for _, prop := range g.PropertiesOwnedBy(playerID) {
			cost += prop.HouseCount * card.Action.HouseFee
			if prop.HasHotel {
				cost += card.Action.HotelFee
			}
		}
		if cost > 0 {
			g.RentOwed = &RentOwed{Amount: cost, Kind: ObligationTax}
			events = append(events, newEvent(g, EventRentOwed, playerID, map[string]interface{}{
				"amount": cost,
				"kind":   string(ObligationTax),
			}))
		}

	case CardJail:
		events = append(events, e.enterJail(g, playerID)...)

	case CardJailFree:
		p.JailFreeCards++

	default:
		return nil, &InvariantError{Message: fmt.Sprintf("unknown card action kind %q", card.Action.Kind)}
	}

	return events, nil
}

// moveTo places a player on an absolute destination, crediting the
// pass-start bonus when the move wraps, then resolves the landing.
func (e *Engine) moveTo(g *GameState, playerID string, destination int) ([]Event, error) {
	p := g.PlayerByID(playerID)
	destination = ((destination % BoardSize) + BoardSize) % BoardSize

	var events []Event
	if destination <= p.Position {
		p.Money += e.board.PassStartBonus
		events = append(events, newEvent(g, EventPassedStart, playerID, map[string]interface{}{
			"bonus": e.board.PassStartBonus,
		}))
	}
	p.Position = destination
	resolved, err := e.resolveLanding(g, playerID, g.lastRollTotal())
	if err != nil {
		return nil, err
	}
	return append(events, resolved...), nil
}

// moveToNearest advances clockwise to the next space of the wanted type.
// The landing is special-cased: unowned offers a purchase, owned by another
// owes double rent, instead of the generic lookup.
func (e *Engine) moveToNearest(g *GameState, playerID string, want SpaceType) []Event {
	p := g.PlayerByID(playerID)

	var events []Event
	for step := 1; step <= BoardSize; step++ {
		pos := (p.Position + step) % BoardSize
		space := e.board.SpaceAt(pos)
		if space.Type != want {
			continue
		}
		if pos < p.Position {
			p.Money += e.board.PassStartBonus
			events = append(events, newEvent(g, EventPassedStart, playerID, map[string]interface{}{
				"bonus": e.board.PassStartBonus,
			}))
		}
		p.Position = pos
		events = append(events, e.resolveOwnable(g, playerID, space, g.lastRollTotal(), true)...)
		return events
	}
	return events
}

package engine

// resolveLanding dispatches on the type of the space a player just landed
// on. It only ever produces pending decisions and immediate no-decision
// effects; money obligations are settled later by the Pay intent.
func (e *Engine) resolveLanding(g *GameState, playerID string, diceTotal int) ([]Event, error) {
	p := g.PlayerByID(playerID)
	space := e.board.SpaceAt(p.Position)

	switch space.Type {
	case SpaceProperty, SpaceRailroad, SpaceUtility:
		return e.resolveOwnable(g, playerID, space, diceTotal, false), nil

	case SpaceTax:
		g.RentOwed = &RentOwed{
			Position: space.Position,
			Amount:   space.TaxAmount,
			Kind:     ObligationTax,
		}
		return []Event{newEvent(g, EventRentOwed, playerID, map[string]interface{}{
			"amount": space.TaxAmount,
			"kind":   string(ObligationTax),
		})}, nil

	case SpaceChance:
		return e.drawCard(g, playerID, DeckChance), nil

	case SpaceChest:
		return e.drawCard(g, playerID, DeckChest), nil

	case SpaceGoToJail:
		return e.enterJail(g, playerID), nil

	case SpaceStart, SpaceFreeParking, SpaceJail:
		return nil, nil
	}
	return nil, nil
}

// resolveOwnable produces the pending decision for an ownable slot:
// a purchase offer when unowned, a rent obligation when owned by another,
// nothing when owned by the lander or mortgaged. doubleRent marks landings
// forced by an advance-to-nearest card.
func (e *Engine) resolveOwnable(g *GameState, playerID string, space *Space, diceTotal int, doubleRent bool) []Event {
	prop := g.PropertyAt(space.Position)
	if prop == nil {
		return nil
	}

	if prop.OwnerID == "" {
		g.PropertyDecision = &PropertyDecision{
			Position:   prop.Position,
			Price:      prop.Price,
			DoubleRent: doubleRent,
		}
		return []Event{newEvent(g, EventPurchaseOffered, playerID, map[string]interface{}{
			"position": prop.Position,
			"name":     prop.Name,
			"price":    prop.Price,
		})}
	}

	if prop.OwnerID == playerID || prop.Mortgaged {
		return nil
	}

	rent := RentFor(g, e.board, prop, diceTotal)
	if doubleRent {
		rent *= 2
	}
	g.RentOwed = &RentOwed{
		Position:   prop.Position,
		CreditorID: prop.OwnerID,
		Amount:     rent,
		Kind:       ObligationRent,
	}
	return []Event{newEvent(g, EventRentOwed, playerID, map[string]interface{}{
		"position":   prop.Position,
		"creditorId": prop.OwnerID,
		"amount":     rent,
	})}
}

// drawCard draws uniformly from a deck, with replacement, and parks the
// card as the pending decision.
func (e *Engine) drawCard(g *GameState, playerID string, deck DeckType) []Event {
	cards := e.decks.Chance
	if deck == DeckChest {
		cards = e.decks.Chest
	}
	if len(cards) == 0 {
		return nil
	}
	card := cards[e.dice.Pick(len(cards))]
	g.DrawnCard = &card
	return []Event{newEvent(g, EventCardDrawn, playerID, map[string]interface{}{
		"cardId": card.ID,
		"deck":   string(card.Deck),
		"text":   card.Text,
	})}
}

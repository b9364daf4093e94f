package engine

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// Engine validates and applies game intents. It is stateless across games:
// every operation takes the current GameState, clones it, and returns the
// mutated clone together with the emitted events. On error the input state
// is untouched.
type Engine struct {
	board          *Board
	decks          Decks
	dice           Roller
	initialBalance int
	logger         *zap.SugaredLogger
}

// New creates an engine bound to a board, two card decks and a dice source.
func New(board *Board, decks Decks, dice Roller, initialBalance int, logger *zap.SugaredLogger) *Engine {
	return &Engine{
		board:          board,
		decks:          decks,
		dice:           dice,
		initialBalance: initialBalance,
		logger:         logger,
	}
}

// Board returns the board the engine plays on.
func (e *Engine) Board() *Board {
	return e.board
}

// NewGame builds the initial WAITING state for a match.
func (e *Engine) NewGame(gameID string) *GameState {
	g := &GameState{
		ID:    gameID,
		Phase: PhaseWaiting,
	}
	for i := range e.board.Spaces {
		s := &e.board.Spaces[i]
		if !s.Ownable() {
			continue
		}
		g.Properties = append(g.Properties, Property{
			Position:   s.Position,
			Name:       s.Name,
			Type:       spaceToPropertyType(s.Type),
			Price:      s.Price,
			ColorGroup: s.ColorGroup,
			RentLevels: append([]int(nil), s.RentLevels...),
			HouseCost:  s.HouseCost,
		})
	}
	return g
}

func spaceToPropertyType(t SpaceType) PropertyType {
	switch t {
	case SpaceRailroad:
		return PropertyTypeRailroad
	case SpaceUtility:
		return PropertyTypeUtility
	default:
		return PropertyTypeStreet
	}
}

// AddPlayer joins a player to a WAITING game whose roster is not yet locked.
func (e *Engine) AddPlayer(g *GameState, playerID, name string, isBot bool) (*GameState, []Event, error) {
	if g.Phase != PhaseWaiting {
		return nil, nil, newValidationError(CodeWrongPhase, "cannot join a game in phase %s", g.Phase)
	}
	if g.OrderRolls != nil {
		return nil, nil, newValidationError(CodeRosterLocked, "order rolling has already begun")
	}
	if g.PlayerByID(playerID) != nil {
		return nil, nil, newValidationError(CodeAlreadyJoined, "player %s is already in the game", playerID)
	}
	g = g.Clone()
	g.Players = append(g.Players, Player{
		ID:    playerID,
		Name:  name,
		Money: e.initialBalance,
		IsBot: isBot,
	})
	return g, nil, nil
}

// Start locks the roster and opens initial-order rolling.
func (e *Engine) Start(g *GameState) (*GameState, []Event, error) {
	if g.Phase != PhaseWaiting {
		return nil, nil, newValidationError(CodeWrongPhase, "cannot start a game in phase %s", g.Phase)
	}
	if g.OrderRolls != nil {
		return nil, nil, newValidationError(CodeRosterLocked, "game already started")
	}
	if len(g.Players) < 2 {
		return nil, nil, newValidationError(CodeNotEnoughPlayers, "need at least 2 players, have %d", len(g.Players))
	}
	g = g.Clone()
	g.OrderRolls = make(map[string]int)
	events := []Event{newEvent(g, EventGameStarted, "", map[string]interface{}{
		"players": len(g.Players),
	})}
	return g, events, nil
}

// Roll is the single dice entry point: during WAITING it records an
// initial-order roll, during steady play it moves the current player.
func (e *Engine) Roll(g *GameState, playerID string) (*GameState, []Event, error) {
	if g.Phase == PhaseWaiting {
		return e.rollForOrder(g, playerID)
	}

	g, err := e.beginTurnAction(g, playerID, PhaseRolling)
	if err != nil {
		return nil, nil, err
	}

	d1, d2 := e.dice.Roll()
	p := g.PlayerByID(playerID)

	if p.InJail {
		events, err := e.rollInJail(g, playerID, d1, d2)
		if err != nil {
			return nil, nil, err
		}
		return g, events, e.checkInvariants(g)
	}

	g.LastRoll = []int{d1, d2}
	var events []Event

	if d1 == d2 {
		g.DoublesCount++
		if g.DoublesCount >= 3 {
			// Speeding: straight to jail, no movement, turn over.
			events = append(events, newEvent(g, EventRollResult, playerID, map[string]interface{}{
				"dice":      []int{d1, d2},
				"isDoubles": true,
				"speeding":  true,
			}))
			events = append(events, e.enterJail(g, playerID)...)
			e.advanceTurn(g)
			events = append(events, newEvent(g, EventTurnEnded, playerID, nil))
			return g, events, e.checkInvariants(g)
		}
	}

	moveEvents, err := e.moveAndResolve(g, playerID, d1+d2)
	if err != nil {
		return nil, nil, err
	}
	events = append(events, newEvent(g, EventRollResult, playerID, map[string]interface{}{
		"dice":        []int{d1, d2},
		"isDoubles":   d1 == d2,
		"newPosition": p.Position,
	}))
	events = append(events, moveEvents...)
	e.settlePhaseAfterMove(g)
	return g, events, e.checkInvariants(g)
}

// rollForOrder records one initial-order roll. Once every player has a
// recorded roll, ties discard only the tied players' rolls; when no ties
// remain the turn order is fixed descending by total.
func (e *Engine) rollForOrder(g *GameState, playerID string) (*GameState, []Event, error) {
	if g.OrderRolls == nil {
		return nil, nil, newValidationError(CodeWrongPhase, "game has not been started")
	}
	if g.PlayerByID(playerID) == nil {
		return nil, nil, &NotFoundError{Resource: "player", ID: playerID}
	}
	if _, rolled := g.OrderRolls[playerID]; rolled {
		return nil, nil, newValidationError(CodeAlreadyRolled, "player %s already rolled for order", playerID)
	}

	g = g.Clone()
	d1, d2 := e.dice.Roll()
	g.OrderRolls[playerID] = d1 + d2
	events := []Event{newEvent(g, EventOrderRoll, playerID, map[string]interface{}{
		"dice":  []int{d1, d2},
		"total": d1 + d2,
	})}

	if len(g.OrderRolls) < len(g.Players) {
		return g, events, nil
	}

	// Everyone has rolled: discard rolls tied with any other player.
	counts := make(map[int]int)
	for _, total := range g.OrderRolls {
		counts[total]++
	}
	tied := false
	for id, total := range g.OrderRolls {
		if counts[total] > 1 {
			delete(g.OrderRolls, id)
			tied = true
		}
	}
	if tied {
		return g, events, nil
	}

	ids := make([]string, 0, len(g.OrderRolls))
	for id := range g.OrderRolls {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return g.OrderRolls[ids[i]] > g.OrderRolls[ids[j]]
	})
	g.TurnOrder = ids
	g.CurrentPlayerIndex = 0
	g.Phase = PhaseRolling
	g.OrderRolls = nil
	events = append(events, newEvent(g, EventTurnOrderFixed, "", map[string]interface{}{
		"turnOrder": g.TurnOrder,
	}))
	return g, events, e.checkInvariants(g)
}

// Buy accepts the pending purchase offer.
func (e *Engine) Buy(g *GameState, playerID string) (*GameState, []Event, error) {
	g, err := e.beginTurnAction(g, playerID, PhaseAction)
	if err != nil {
		return nil, nil, err
	}
	if g.PropertyDecision == nil {
		return nil, nil, newValidationError(CodeNoPendingDecision, "no purchase offer pending")
	}
	p := g.PlayerByID(playerID)
	prop := g.PropertyAt(g.PropertyDecision.Position)
	if prop == nil {
		return nil, nil, &NotFoundError{Resource: "property", ID: fmt.Sprintf("%d", g.PropertyDecision.Position)}
	}
	if p.Money < g.PropertyDecision.Price {
		return nil, nil, newValidationError(CodeCannotAfford, "price is %d, player has %d", g.PropertyDecision.Price, p.Money)
	}

	p.Money -= g.PropertyDecision.Price
	prop.OwnerID = playerID
	events := []Event{newEvent(g, EventPropertyBought, playerID, map[string]interface{}{
		"position": prop.Position,
		"name":     prop.Name,
		"price":    g.PropertyDecision.Price,
	})}
	g.PropertyDecision = nil
	e.settlePhaseAfterAction(g)
	return g, events, e.checkInvariants(g)
}

// Decline passes on the pending purchase offer; the slot stays unowned.
func (e *Engine) Decline(g *GameState, playerID string) (*GameState, []Event, error) {
	g, err := e.beginTurnAction(g, playerID, PhaseAction)
	if err != nil {
		return nil, nil, err
	}
	if g.PropertyDecision == nil {
		return nil, nil, newValidationError(CodeNoPendingDecision, "no purchase offer pending")
	}
	events := []Event{newEvent(g, EventPurchaseDeclined, playerID, map[string]interface{}{
		"position": g.PropertyDecision.Position,
	})}
	g.PropertyDecision = nil
	e.settlePhaseAfterAction(g)
	return g, events, e.checkInvariants(g)
}

// Pay settles the pending rent, tax or fine. Inability to pay routes to
// bankruptcy resolution rather than failing the intent.
func (e *Engine) Pay(g *GameState, playerID string) (*GameState, []Event, error) {
	g, err := e.beginTurnAction(g, playerID, PhaseAction)
	if err != nil {
		return nil, nil, err
	}
	if g.RentOwed == nil {
		return nil, nil, newValidationError(CodeNoPendingDecision, "no payment pending")
	}
	p := g.PlayerByID(playerID)
	owed := *g.RentOwed

	if p.Money < owed.Amount {
		e.logger.Infow("player cannot cover obligation, resolving bankruptcy",
			"gameId", g.ID, "playerId", playerID, "owed", owed.Amount, "available", p.Money)
		events := e.declareBankruptcy(g, playerID, owed.CreditorID)
		e.finishBankruptTurn(g, playerID)
		return g, events, e.checkInvariants(g)
	}

	p.Money -= owed.Amount
	if owed.CreditorID != "" {
		creditor := g.PlayerByID(owed.CreditorID)
		if creditor == nil {
			return nil, nil, &NotFoundError{Resource: "player", ID: owed.CreditorID}
		}
		creditor.Money += owed.Amount
	}
	events := []Event{newEvent(g, EventRentPaid, playerID, map[string]interface{}{
		"amount":     owed.Amount,
		"creditorId": owed.CreditorID,
		"kind":       string(owed.Kind),
	})}
	g.RentOwed = nil
	e.settlePhaseAfterAction(g)
	return g, events, e.checkInvariants(g)
}

// ApplyCard consumes the pending drawn card and applies its effect.
func (e *Engine) ApplyCard(g *GameState, playerID string) (*GameState, []Event, error) {
	g, err := e.beginTurnAction(g, playerID, PhaseAction)
	if err != nil {
		return nil, nil, err
	}
	if g.DrawnCard == nil {
		return nil, nil, newValidationError(CodeNoPendingDecision, "no drawn card pending")
	}
	card := *g.DrawnCard
	g.DrawnCard = nil
	events, err := e.applyCard(g, playerID, card)
	if err != nil {
		return nil, nil, err
	}
	if !g.HasPendingDecision() {
		e.settlePhaseAfterAction(g)
	}
	return g, events, e.checkInvariants(g)
}

// EndTurn advances play to the next non-bankrupt player.
func (e *Engine) EndTurn(g *GameState, playerID string) (*GameState, []Event, error) {
	g, err := e.beginTurnAction(g, playerID, PhaseEndTurn)
	if err != nil {
		return nil, nil, err
	}
	if g.HasPendingDecision() {
		return nil, nil, newValidationError(CodeWrongPhase, "a pending decision must be resolved first")
	}
	e.advanceTurn(g)
	events := []Event{newEvent(g, EventTurnEnded, playerID, map[string]interface{}{
		"nextPlayer": g.TurnOrder[g.CurrentPlayerIndex],
	})}
	return g, events, e.checkInvariants(g)
}

// beginTurnAction runs the shared validation gate and returns a clone ready
// to mutate: the game must not be over, it must be the submitter's turn, and
// the phase must match.
func (e *Engine) beginTurnAction(g *GameState, playerID string, phase GamePhase) (*GameState, error) {
	if g.Phase == PhaseGameOver {
		return nil, newValidationError(CodeGameOver, "game %s is already over", g.ID)
	}
	if g.PlayerByID(playerID) == nil {
		return nil, &NotFoundError{Resource: "player", ID: playerID}
	}
	if g.Phase != phase {
		return nil, newValidationError(CodeWrongPhase, "action requires phase %s, game is in %s", phase, g.Phase)
	}
	cur := g.CurrentPlayer()
	if cur == nil || cur.ID != playerID {
		return nil, newValidationError(CodeNotCurrentPlayer, "it is not player %s's turn", playerID)
	}
	return g.Clone(), nil
}

// moveAndResolve moves a player clockwise by total pips, credits the
// pass-start bonus on wrap-around, and resolves the landed space.
func (e *Engine) moveAndResolve(g *GameState, playerID string, total int) ([]Event, error) {
	p := g.PlayerByID(playerID)
	old := p.Position
	p.Position = (old + total) % BoardSize

	var events []Event
	if p.Position < old {
		p.Money += e.board.PassStartBonus
		events = append(events, newEvent(g, EventPassedStart, playerID, map[string]interface{}{
			"bonus": e.board.PassStartBonus,
		}))
	}
	resolved, err := e.resolveLanding(g, playerID, total)
	if err != nil {
		return nil, err
	}
	return append(events, resolved...), nil
}

// settlePhaseAfterMove decides the phase once movement and resolution are
// done: a pending decision forces ACTION, an un-jailed double earns another
// roll, anything else waits for end-turn.
func (e *Engine) settlePhaseAfterMove(g *GameState) {
	if g.Phase == PhaseGameOver {
		return
	}
	cur := g.CurrentPlayer()
	if cur == nil || cur.Bankrupt {
		return
	}
	if g.HasPendingDecision() {
		g.Phase = PhaseAction
		return
	}
	e.grantExtraRollOrEnd(g, cur)
}

// settlePhaseAfterAction mirrors settlePhaseAfterMove for the moment a
// pending decision has just been consumed.
func (e *Engine) settlePhaseAfterAction(g *GameState) {
	e.settlePhaseAfterMove(g)
}

func (e *Engine) grantExtraRollOrEnd(g *GameState, cur *Player) {
	if g.lastRollIsDoubles() && g.DoublesCount > 0 && !cur.InJail {
		g.Phase = PhaseRolling
		g.LastRoll = nil
		return
	}
	g.Phase = PhaseEndTurn
}

// advanceTurn moves CurrentPlayerIndex to the next non-bankrupt entry of the
// turn order and resets the per-turn fields.
func (e *Engine) advanceTurn(g *GameState) {
	if len(g.TurnOrder) == 0 {
		return
	}
	for i := 1; i <= len(g.TurnOrder); i++ {
		idx := (g.CurrentPlayerIndex + i) % len(g.TurnOrder)
		p := g.PlayerByID(g.TurnOrder[idx])
		if p != nil && !p.Bankrupt {
			g.CurrentPlayerIndex = idx
			break
		}
	}
	g.DoublesCount = 0
	g.LastRoll = nil
	g.PropertyDecision = nil
	g.RentOwed = nil
	g.DrawnCard = nil
	g.Phase = PhaseRolling
}

// checkInvariants verifies the structural invariants after a mutation. A
// violation aborts the mutation wholesale; it is a defect, never patched
// silently.
func (e *Engine) checkInvariants(g *GameState) error {
	if g.Phase == PhaseGameOver {
		return nil
	}
	seen := make(map[string]bool, len(g.TurnOrder))
	for _, id := range g.TurnOrder {
		if seen[id] {
			err := &InvariantError{Message: fmt.Sprintf("duplicate player %s in turn order", id)}
			e.logger.Errorw("state invariant violated", "gameId", g.ID, "error", err)
			return err
		}
		seen[id] = true
		if g.PlayerByID(id) == nil {
			err := &InvariantError{Message: fmt.Sprintf("turn order references unknown player %s", id)}
			e.logger.Errorw("state invariant violated", "gameId", g.ID, "error", err)
			return err
		}
	}
	if len(g.TurnOrder) > 0 {
		cur := g.CurrentPlayer()
		if cur == nil || cur.Bankrupt {
			err := &InvariantError{Message: "current player index references a bankrupt or missing player"}
			e.logger.Errorw("state invariant violated", "gameId", g.ID, "error", err)
			return err
		}
	}
	// Ownership is exclusive because positions are unique keys; a duplicate
	// entry would let two owners claim one slot.
	seenPos := make(map[int]bool, len(g.Properties))
	for i := range g.Properties {
		pos := g.Properties[i].Position
		if seenPos[pos] {
			err := &InvariantError{Message: fmt.Sprintf("duplicate property entry for position %d", pos)}
			e.logger.Errorw("state invariant violated", "gameId", g.ID, "error", err)
			return err
		}
		seenPos[pos] = true
	}
	return nil
}

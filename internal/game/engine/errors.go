package engine

import "fmt"

// Validation error codes surfaced to callers.
const (
	CodeNotCurrentPlayer  = "not_current_player"
	CodeWrongPhase        = "wrong_phase"
	CodeNoPendingDecision = "no_pending_decision"
	CodeGameOver          = "game_over"
	CodeAlreadyRolled     = "already_rolled"
	CodeNotJailed         = "not_jailed"
	CodeNoJailFreeCard    = "no_jail_free_card"
	CodeCannotAfford      = "cannot_afford"
	CodeStaleTrade        = "stale_trade"
	CodeInvalidTrade      = "invalid_trade"
	CodeRosterLocked      = "roster_locked"
	CodeAlreadyJoined     = "already_joined"
	CodeNotEnoughPlayers  = "not_enough_players"
)

// ValidationError rejects a malformed or mistimed intent before any
// mutation; the state is unchanged when one is returned.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newValidationError(code, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an unknown game, player, property or trade.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ConflictError reports a stale save or an action already in flight for the
// same game. Callers should reload and retry the intent from scratch.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// InsufficientFundsError is internal to the engine: a mandatory obligation
// that cannot be covered routes to bankruptcy resolution instead of
// surfacing this to the caller.
type InsufficientFundsError struct {
	PlayerID  string
	Required  int
	Available int
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("player %s has %d, needs %d", e.PlayerID, e.Available, e.Required)
}

// InvariantError marks a corrupted state detected during a mutation. The
// mutation is aborted wholesale and the error logged for investigation.
type InvariantError struct {
	Message string
}

func (e *InvariantError) Error() string {
	return "invariant violation: " + e.Message
}

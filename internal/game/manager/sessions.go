package manager

import (
	"sync"
	"time"
)

// GameSession is the in-process handle for one game. Its mutex is the
// serialization boundary: every mutation of the game's state runs under it.
type GameSession struct {
	gameID string
	mutex  sync.Mutex

	// botRunning guards against stacking multiple bot-driver goroutines for
	// the same game.
	botRunning bool
	lastTouch  time.Time
}

type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*GameSession
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{sessions: make(map[string]*GameSession)}
}

// acquire returns the session for a game, creating it on first use.
func (r *sessionRegistry) acquire(gameID string) *GameSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[gameID]
	if !ok {
		session = &GameSession{gameID: gameID}
		r.sessions[gameID] = session
	}
	session.lastTouch = time.Now()
	return session
}

// tryStartBots marks the session's bot driver as running. It returns false
// when a driver is already active.
func (r *sessionRegistry) tryStartBots(gameID string) bool {
	session := r.acquire(gameID)
	r.mu.Lock()
	defer r.mu.Unlock()
	if session.botRunning {
		return false
	}
	session.botRunning = true
	return true
}

func (r *sessionRegistry) stopBots(gameID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[gameID]; ok {
		session.botRunning = false
	}
}

// evictIdle drops sessions untouched since the cutoff. Locks are per-session
// and re-created on demand, so eviction is safe for games still in the store.
func (r *sessionRegistry) evictIdle(cutoff time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, session := range r.sessions {
		if !session.botRunning && session.lastTouch.Before(cutoff) {
			delete(r.sessions, id)
		}
	}
}

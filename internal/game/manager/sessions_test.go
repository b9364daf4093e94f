package manager

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionRegistryAcquireReturnsSameSession(t *testing.T) {
	r := newSessionRegistry()

	first := r.acquire("game-1")
	second := r.acquire("game-1")
	assert.Same(t, first, second)

	other := r.acquire("game-2")
	assert.NotSame(t, first, other)
}

func TestTryStartBotsGuardsAgainstStacking(t *testing.T) {
	r := newSessionRegistry()

	assert.True(t, r.tryStartBots("game-1"))
	assert.False(t, r.tryStartBots("game-1"))

	r.stopBots("game-1")
	assert.True(t, r.tryStartBots("game-1"))
}

func TestEvictIdleSkipsActiveAndRecentSessions(t *testing.T) {
	r := newSessionRegistry()

	stale := r.acquire("stale")
	stale.lastTouch = time.Now().Add(-2 * time.Hour)

	busy := r.acquire("busy")
	r.tryStartBots("busy")
	busy.lastTouch = time.Now().Add(-2 * time.Hour)

	r.acquire("fresh")

	r.evictIdle(time.Now().Add(-time.Hour))

	r.mu.Lock()
	defer r.mu.Unlock()
	assert.NotContains(t, r.sessions, "stale")
	assert.Contains(t, r.sessions, "busy")
	assert.Contains(t, r.sessions, "fresh")
}

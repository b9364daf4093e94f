package handlers

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proptycoon/backend/internal/game/engine"
	"github.com/proptycoon/backend/internal/game/models"
)

func TestEngineHTTPErrorMapsValidationToBadRequest(t *testing.T) {
	err := engineHTTPError(&engine.ValidationError{
		Code:    engine.CodeNotCurrentPlayer,
		Message: "it is not your turn",
	})

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)

	body, ok := httpErr.Message.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, engine.CodeNotCurrentPlayer, body["code"])
	assert.Equal(t, "it is not your turn", body["message"])
}

func TestEngineHTTPErrorMapsNotFound(t *testing.T) {
	err := engineHTTPError(&engine.NotFoundError{Resource: "game", ID: "nope"})

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestEngineHTTPErrorMapsConflict(t *testing.T) {
	err := engineHTTPError(&engine.ConflictError{Message: "stale save"})

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusConflict, httpErr.Code)
}

func TestEngineHTTPErrorMapsUnknownToInternal(t *testing.T) {
	err := engineHTTPError(errors.New("mongo fell over"))

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusInternalServerError, httpErr.Code)
}

func TestEngineHTTPErrorUnwrapsWrappedErrors(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), &engine.ConflictError{Message: "stale"})
	err := engineHTTPError(wrapped)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusConflict, httpErr.Code)
}

func TestToGameResponse(t *testing.T) {
	created := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	game := &models.Game{
		GameID:     "game-1",
		Code:       "ABCDEF",
		Name:       "Friday night",
		HostID:     "host-1",
		MaxPlayers: 4,
		CreatedAt:  created,
		State: engine.GameState{
			Phase: engine.PhaseWaiting,
			Players: []engine.Player{
				{ID: "host-1"},
				{ID: "p2"},
			},
		},
	}

	resp := toGameResponse(game)
	assert.Equal(t, "game-1", resp.GameID)
	assert.Equal(t, "ABCDEF", resp.Code)
	assert.Equal(t, string(engine.PhaseWaiting), resp.Phase)
	assert.Equal(t, 2, resp.Players)
	assert.Equal(t, 4, resp.MaxPlayers)
	assert.Equal(t, created.Format(time.RFC3339), resp.CreatedAt)
}

func TestIntsToInterfacesMatchesJSONShape(t *testing.T) {
	out := intsToInterfaces([]int{1, 3, 5})
	require.Len(t, out, 3)
	assert.Equal(t, 1, out[0])
	assert.Equal(t, 5, out[2])

	assert.Empty(t, intsToInterfaces(nil))
}

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func runMiddleware(t *testing.T, req *http.Request) (userID interface{}, err error) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := JWTMiddleware(testSecret)(func(c echo.Context) error {
		userID = c.Get("userID")
		return c.NoContent(http.StatusOK)
	})
	err = handler(c)
	return userID, err
}

func TestJWTMiddlewareAcceptsBearerToken(t *testing.T) {
	token, err := GenerateJWT("user-1", testSecret, 1)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)

	userID, err := runMiddleware(t, req)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestJWTMiddlewareAcceptsQueryParamToken(t *testing.T) {
	token, err := GenerateJWT("user-2", testSecret, 1)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/?token="+token, nil)

	userID, err := runMiddleware(t, req)
	require.NoError(t, err)
	assert.Equal(t, "user-2", userID)
}

func TestJWTMiddlewareRejectsMissingToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := runMiddleware(t, req)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestJWTMiddlewareRejectsForgedToken(t *testing.T) {
	token, err := GenerateJWT("user-3", "some-other-secret", 1)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	_, err = runMiddleware(t, req)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestJWTMiddlewareRejectsExpiredToken(t *testing.T) {
	token, err := GenerateJWT("user-4", testSecret, -1)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	_, err = runMiddleware(t, req)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestGenerateJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT("user-5", testSecret, 2)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

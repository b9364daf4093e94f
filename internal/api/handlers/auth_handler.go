package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/proptycoon/backend/internal/api/middleware/auth"
	"github.com/proptycoon/backend/internal/config"
	"github.com/proptycoon/backend/internal/db/mongodb"
	"github.com/proptycoon/backend/internal/models"
)

// AuthHandler handles registration, login and token refresh.
type AuthHandler struct {
	cfg       *config.Config
	logger    *zap.SugaredLogger
	userStore *mongodb.UserStore
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(cfg *config.Config, userStore *mongodb.UserStore, logger *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{
		cfg:       cfg,
		logger:    logger,
		userStore: userStore,
	}
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=20"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest represents a user login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse represents an authentication response
type AuthResponse struct {
	UserID   string `json:"userId"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Token    string `json:"token"`
}

// Register handles user registration
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()

	// Reject duplicates up front so the caller gets a 409 instead of a
	// generic index-violation error.
	if _, err := h.userStore.GetUserByEmail(ctx, req.Email); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "User with this email already exists")
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		h.logger.Errorw("failed to check existing email", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to register user")
	}
	if _, err := h.userStore.GetUserByUsername(ctx, req.Username); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "User with this username already exists")
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		h.logger.Errorw("failed to check existing username", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to register user")
	}

	user := &models.User{
		Username:  req.Username,
		Email:     req.Email,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := user.HashPassword(req.Password); err != nil {
		h.logger.Errorw("failed to hash password", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to register user")
	}
	if err := h.userStore.CreateUser(ctx, user); err != nil {
		h.logger.Errorw("failed to create user", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to register user")
	}

	token, err := auth.GenerateJWT(user.ID.Hex(), h.cfg.JWT.Secret, h.cfg.JWT.Expiration)
	if err != nil {
		h.logger.Errorw("failed to generate token", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}

	return c.JSON(http.StatusCreated, AuthResponse{
		UserID:   user.ID.Hex(),
		Username: user.Username,
		Email:    user.Email,
		Token:    token,
	})
}

// Login handles user login
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()

	user, err := h.userStore.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
		}
		h.logger.Errorw("failed to get user by email", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to log in")
	}

	if !user.CheckPassword(req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	token, err := auth.GenerateJWT(user.ID.Hex(), h.cfg.JWT.Secret, h.cfg.JWT.Expiration)
	if err != nil {
		h.logger.Errorw("failed to generate token", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}

	return c.JSON(http.StatusOK, AuthResponse{
		UserID:   user.ID.Hex(),
		Username: user.Username,
		Email:    user.Email,
		Token:    token,
	})
}

// RefreshToken issues a fresh token for an already-authenticated user.
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	userID := c.Get("userID").(string)

	token, err := auth.GenerateJWT(userID, h.cfg.JWT.Secret, h.cfg.JWT.Expiration)
	if err != nil {
		h.logger.Errorw("failed to generate token", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"token": token,
	})
}

// Logout handles user logout. Tokens are short lived, so the server keeps no
// blacklist; the client just discards its copy.
func (h *AuthHandler) Logout(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/proptycoon/backend/internal/db/mongodb"
)

// UserHandler handles user profile requests.
type UserHandler struct {
	userStore *mongodb.UserStore
	logger    *zap.SugaredLogger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userStore *mongodb.UserStore, logger *zap.SugaredLogger) *UserHandler {
	return &UserHandler{
		userStore: userStore,
		logger:    logger,
	}
}

// UserProfileResponse represents a user profile response
type UserProfileResponse struct {
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// UpdateProfileRequest represents a profile update request
type UpdateProfileRequest struct {
	Username  string `json:"username,omitempty" validate:"omitempty,min=3,max=20"`
	AvatarURL string `json:"avatarUrl,omitempty" validate:"omitempty,url"`
}

// GetProfile returns the authenticated user's profile.
func (h *UserHandler) GetProfile(c echo.Context) error {
	userID := c.Get("userID").(string)
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	user, err := h.userStore.GetUserByID(c.Request().Context(), oid)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		h.logger.Errorw("failed to load user profile", "userId", userID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load profile")
	}

	return c.JSON(http.StatusOK, UserProfileResponse{
		UserID:    user.ID.Hex(),
		Username:  user.Username,
		Email:     user.Email,
		AvatarURL: user.AvatarURL,
	})
}

// UpdateProfile updates the authenticated user's profile.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID := c.Get("userID").(string)
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Username == "" && req.AvatarURL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Nothing to update")
	}

	if err := h.userStore.UpdateProfile(c.Request().Context(), oid, req.Username, req.AvatarURL); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		h.logger.Errorw("failed to update user profile", "userId", userID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update profile")
	}

	h.logger.Infow("user profile updated", "userId", userID)
	return c.NoContent(http.StatusNoContent)
}

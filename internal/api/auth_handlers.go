package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/voiceflow-cms/server/domain/entities"
	"github.com/voiceflow-cms/server/domain/repositories"
	"github.com/voiceflow-cms/server/internal/auth"
)

func (h *Handler) register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}
	if req.Email == "" || req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_fields",
			Message: "Email, username and password are required",
		})
	}
	if len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "weak_password",
			Message: "Password must be at least 8 characters",
		})
	}

	if _, err := h.users.GetByEmail(c.Request().Context(), req.Email); err == nil {
		return c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "email_taken",
			Message: "Email is already registered",
		})
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error"})
	}

	user := &entities.User{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hash,
		Role:         entities.RoleCreator,
	}
	if err := h.users.Create(c.Request().Context(), user); err != nil {
		h.logger.Error("Failed to create user", zap.Error(err))
		return c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "registration_failed",
			Message: err.Error(),
		})
	}

	h.logger.Info("User registered",
		zap.String("userID", user.ID),
		zap.String("username", user.Username))
	return h.issueToken(c, user)
}

func (h *Handler) login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	user, err := h.users.GetByEmail(c.Request().Context(), req.Email)
	if err != nil || !auth.VerifyPassword(req.Password, user.PasswordHash) {
		// Same answer for unknown email and wrong password
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "authentication_failed",
			Message: "Invalid email or password",
		})
	}

	return h.issueToken(c, user)
}

func (h *Handler) issueToken(c echo.Context, user *entities.User) error {
	token, err := h.issuer.Generate(user.ID, user.Username, string(user.Role))
	if err != nil {
		h.logger.Error("Failed to generate token",
			zap.String("userID", user.ID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "token_generation_failed",
			Message: "Failed to generate authentication token",
		})
	}

	claims, _ := h.issuer.Validate(token)
	expiresAt := time.Now().Add(time.Hour)
	if claims != nil && claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	return c.JSON(http.StatusOK, AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	})
}

func (h *Handler) currentUser(c echo.Context) error {
	claims := currentClaims(c)
	user, err := h.users.GetByID(c.Request().Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found"})
		}
		h.logger.Error("Failed to load user", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error"})
	}
	return c.JSON(http.StatusOK, user)
}

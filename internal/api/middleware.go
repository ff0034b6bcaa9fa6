package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/voiceflow-cms/server/domain/entities"
	"github.com/voiceflow-cms/server/internal/auth"
)

const claimsKey = "claims"

// requireAuth validates the bearer token and stores its claims on the
// request context.
func (h *Handler) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "missing_token",
				Message: "Authorization header with bearer token is required",
			})
		}

		claims, err := h.issuer.Validate(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "invalid_token",
				Message: "Token is invalid or expired",
			})
		}

		c.Set(claimsKey, claims)
		return next(c)
	}
}

// requireAdmin allows only administrators through.
func (h *Handler) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims := currentClaims(c)
		if claims == nil || claims.Role != string(entities.RoleAdmin) {
			return c.JSON(http.StatusForbidden, ErrorResponse{
				Error:   "forbidden",
				Message: "Administrator role required",
			})
		}
		return next(c)
	}
}

func currentClaims(c echo.Context) *auth.Claims {
	claims, _ := c.Get(claimsKey).(*auth.Claims)
	return claims
}

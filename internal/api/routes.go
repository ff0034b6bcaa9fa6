// Package api wires the REST and WebSocket endpoints onto an Echo
// instance.
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/voiceflow-cms/server/domain/repositories"
	"github.com/voiceflow-cms/server/internal/auth"
	"github.com/voiceflow-cms/server/internal/gateway"
	"github.com/voiceflow-cms/server/usecase"
)

// Handler bundles the dependencies the HTTP endpoints need.
type Handler struct {
	users      repositories.UserRepository
	workspaces repositories.WorkspaceRepository
	content    repositories.ContentRepository
	voice      *usecase.VoiceService
	bus        repositories.EventBus
	issuer     *auth.TokenIssuer
	logger     *zap.Logger
}

// NewHandler creates the API handler.
func NewHandler(
	users repositories.UserRepository,
	workspaces repositories.WorkspaceRepository,
	content repositories.ContentRepository,
	voice *usecase.VoiceService,
	bus repositories.EventBus,
	issuer *auth.TokenIssuer,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		users:      users,
		workspaces: workspaces,
		content:    content,
		voice:      voice,
		bus:        bus,
		issuer:     issuer,
		logger:     logger,
	}
}

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, h *Handler, gw *gateway.Gateway, registry *prometheus.Registry) {
	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "voiceflow-server",
		})
	})

	e.GET("/metrics", echo.WrapHandler(
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// API v1 routes
	v1 := e.Group("/api/v1")

	// User Management APIs
	v1.POST("/users/register", h.register)
	v1.POST("/users/login", h.login)

	// Everything below requires a valid token
	protected := v1.Group("", h.requireAuth)
	protected.GET("/users/me", h.currentUser)

	// Workspace APIs
	protected.POST("/workspaces", h.createWorkspace)
	protected.GET("/workspaces", h.listWorkspaces)
	protected.GET("/workspaces/:id", h.getWorkspace)
	protected.DELETE("/workspaces/:id", h.deleteWorkspace)

	// Content APIs
	protected.POST("/workspaces/:id/content", h.createContent)
	protected.GET("/workspaces/:id/content", h.listContent)
	protected.GET("/content/:id", h.getContent)
	protected.PUT("/content/:id", h.updateContent)
	protected.POST("/content/:id/publish", h.publishContent)
	protected.DELETE("/content/:id", h.deleteContent)

	// Voice APIs
	protected.POST("/voice/transcribe", h.transcribe)
	protected.POST("/voice/synthesize", h.synthesize)
	protected.POST("/voice/enroll", h.enroll)
	protected.POST("/voice/identify", h.identify)

	// Feature flag administration
	admin := v1.Group("/admin", h.requireAuth, h.requireAdmin)
	admin.PUT("/flags/:key", h.setFlag)
	admin.GET("/flags/:key", h.getFlag)

	// WebSocket endpoints
	e.GET("/ws/voice", gw.HandleVoice)
	e.GET("/ws/collab/:workspace_id", gw.HandleCollab)
	e.GET("/ws/spatial/:workspace_id", gw.HandleSpatial)
}

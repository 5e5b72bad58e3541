package http

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/maitred-ai/maitred/internal/chat"
	"github.com/maitred-ai/maitred/internal/store"
)

// Handler handles HTTP requests.
type Handler struct {
	personas map[string]*chat.Service
	store    store.Store
	logger   *slog.Logger
}

// NewHandler creates a handler over the persona services and the shared
// conversation store.
func NewHandler(personas []*chat.Service, st store.Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	byName := make(map[string]*chat.Service, len(personas))
	for _, p := range personas {
		byName[p.Name()] = p
	}
	return &Handler{
		personas: byName,
		store:    st,
		logger:   logger,
	}
}

// RegisterRoutes registers routes with the echo server. authMW, when
// non-nil, guards everything under /v1.
func (h *Handler) RegisterRoutes(e *echo.Echo, authMW echo.MiddlewareFunc) {
	g := e.Group("/v1")
	if authMW != nil {
		g.Use(authMW)
	}

	g.POST("/personas/:persona/chat", h.Chat)
	g.GET("/sessions", h.ListSessions)
	g.GET("/sessions/:session_id/messages", h.GetSessionMessages)
	g.DELETE("/sessions/:session_id", h.DeleteSession)

	e.GET("/health", h.Health)
}

// Health returns health status.
// GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"version": "0.1.0",
	})
}

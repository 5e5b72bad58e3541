package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// MessageDTO is the outbound message shape.
type MessageDTO struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ListSessions lists sessions ordered by most recent activity.
// GET /v1/sessions
func (h *Handler) ListSessions(c echo.Context) error {
	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)

	ctx := c.Request().Context()
	sessions, err := h.store.ListSessions(ctx, limit, offset)
	if err != nil {
		h.logger.Error("list sessions failed", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"sessions": sessions,
	})
}

// GetSessionMessages retrieves messages for a session in chronological
// order. A session that was never created is a 404; an existing session with
// no messages yields an empty list.
// GET /v1/sessions/:session_id/messages
func (h *Handler) GetSessionMessages(c echo.Context) error {
	sessionID := c.Param("session_id")
	limit := queryInt(c, "limit", 50)

	ctx := c.Request().Context()
	exists, err := h.store.SessionExists(ctx, sessionID)
	if err != nil {
		h.logger.Error("check session failed", "session_id", sessionID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	if !exists {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found"})
	}

	messages, err := h.store.GetMessages(ctx, sessionID, limit)
	if err != nil {
		h.logger.Error("get messages failed", "session_id", sessionID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	dtos := make([]MessageDTO, 0, len(messages))
	for _, m := range messages {
		dtos = append(dtos, MessageDTO{
			Role:      string(m.Role),
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"messages": dtos,
	})
}

// DeleteSession removes a session and its messages. Deleting an unknown
// session succeeds.
// DELETE /v1/sessions/:session_id
func (h *Handler) DeleteSession(c echo.Context) error {
	sessionID := c.Param("session_id")

	ctx := c.Request().Context()
	if err := h.store.DeleteSession(ctx, sessionID); err != nil {
		h.logger.Error("delete session failed", "session_id", sessionID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func queryInt(c echo.Context, name string, defaultVal int) int {
	if v := c.QueryParam(name); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val >= 0 {
			return val
		}
	}
	return defaultVal
}

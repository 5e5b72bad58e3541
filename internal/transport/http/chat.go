package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/maitred-ai/maitred/internal/assistant"
)

// ChatRequest is the inbound chat payload.
type ChatRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatResponse is the chat reply payload.
type ChatResponse struct {
	Answer    string `json:"answer"`
	SessionID string `json:"session_id"`
}

// Chat routes a question to a persona.
// POST /v1/personas/:persona/chat
func (h *Handler) Chat(c echo.Context) error {
	persona := c.Param("persona")
	svc, ok := h.personas[persona]
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "unknown persona: " + persona})
	}

	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.Question) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "question is required"})
	}

	ctx := c.Request().Context()
	answer, sessionID, err := svc.Ask(ctx, req.Question, req.SessionID)
	if err != nil {
		h.logger.Error("ask failed", "persona", persona, "error", err)
		if errors.Is(err, assistant.ErrUpstream) {
			return c.JSON(http.StatusBadGateway, map[string]string{"error": "assistant unavailable"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, ChatResponse{
		Answer:    answer,
		SessionID: sessionID,
	})
}

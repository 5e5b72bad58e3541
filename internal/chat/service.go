// Package chat implements the persona chat services: session lifecycle,
// history windowing and the ask orchestration around the external assistant.
package chat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/maitred-ai/maitred/internal/assistant"
	"github.com/maitred-ai/maitred/internal/domain"
	"github.com/maitred-ai/maitred/internal/store"
)

// titleMaxRunes is how much of the first question becomes the session title.
const titleMaxRunes = 60

// Responder is the external assistant as the chat service consumes it.
type Responder interface {
	GetResponse(ctx context.Context, prompt string) (assistant.Response, error)
}

// Service is one persona's chat façade. It is constructed once at startup
// and shared across requests; the conversation store holds all state.
type Service struct {
	name            string
	titlePrefix     string
	agent           Responder
	store           store.Store
	maxHistoryTurns int
	logger          *slog.Logger
}

// New creates a persona chat service.
func New(name, titlePrefix string, agent Responder, st store.Store, maxHistoryTurns int, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		name:            name,
		titlePrefix:     titlePrefix,
		agent:           agent,
		store:           st,
		maxHistoryTurns: maxHistoryTurns,
		logger:          logger,
	}
}

// Name returns the persona name.
func (s *Service) Name() string {
	return s.name
}

// Ask answers a question within a session. A missing or unknown session id
// starts a new session whose title comes from the question; a known id is
// reused verbatim. The new turn is persisted only after the assistant reply
// is obtained, so a failed call leaves no trace in history.
//
// Concurrent asks on the same session are not serialized: their appends may
// interleave, which keeps each message's chronological position but not turn
// adjacency.
func (s *Service) Ask(ctx context.Context, question, sessionID string) (string, string, error) {
	sessionID, err := s.resolveSession(ctx, question, sessionID)
	if err != nil {
		return "", "", err
	}

	history, err := s.store.GetMessages(ctx, sessionID, 2*s.maxHistoryTurns)
	if err != nil {
		return "", "", fmt.Errorf("load history: %w", err)
	}

	prompt := BuildTranscript(history, question)
	resp, err := s.agent.GetResponse(ctx, prompt)
	if err != nil {
		return "", "", fmt.Errorf("persona %s: %w", s.name, err)
	}

	answer, ok := resp.Text()
	if !ok {
		s.logger.Warn("assistant returned no textual content", "persona", s.name, "session_id", sessionID)
		answer = ""
	}

	if err := s.store.AppendMessage(ctx, sessionID, domain.RoleUser, question); err != nil {
		return "", "", fmt.Errorf("persist question: %w", err)
	}
	if err := s.store.AppendMessage(ctx, sessionID, domain.RoleAssistant, answer); err != nil {
		return "", "", fmt.Errorf("persist answer: %w", err)
	}

	s.logger.Debug("answered question", "persona", s.name, "session_id", sessionID)
	return answer, sessionID, nil
}

// resolveSession returns the session id to use, creating and titling a new
// session when the caller supplied none or an unknown one.
func (s *Service) resolveSession(ctx context.Context, question, sessionID string) (string, error) {
	if sessionID != "" {
		exists, err := s.store.SessionExists(ctx, sessionID)
		if err != nil {
			return "", fmt.Errorf("resolve session: %w", err)
		}
		if exists {
			return sessionID, nil
		}
	}

	id, err := s.store.CreateSession(ctx, "", "")
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	title := s.titlePrefix + titleSnippet(question, titleMaxRunes)
	if err := s.store.UpdateSessionTitleIfEmpty(ctx, id, title); err != nil {
		return "", fmt.Errorf("set session title: %w", err)
	}

	s.logger.Debug("created session", "persona", s.name, "session_id", id)
	return id, nil
}

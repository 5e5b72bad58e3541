package llm

import (
	"log/slog"
	"os"
	"time"
)

const (
	// EnvChatMode is the environment variable name for mode selection.
	EnvChatMode = "CHAT_MODE"
	// ModeMock indicates the mock client should be used.
	ModeMock = "MOCK"
)

// NewChatClient creates a chat client based on the CHAT_MODE environment
// variable. CHAT_MODE=MOCK returns a MockClient; otherwise a real Client.
func NewChatClient(baseURL, apiKey, apiVersion string, timeout time.Duration) ChatClient {
	if os.Getenv(EnvChatMode) == ModeMock {
		slog.Info("CHAT_MODE=MOCK detected, using mock chat client")
		return NewMockClient()
	}
	return NewClient(baseURL, apiKey, apiVersion, timeout)
}

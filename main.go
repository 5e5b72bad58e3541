package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/maitred-ai/maitred/internal/assistant"
	"github.com/maitred-ai/maitred/internal/auth"
	"github.com/maitred-ai/maitred/internal/chat"
	"github.com/maitred-ai/maitred/internal/config"
	"github.com/maitred-ai/maitred/internal/llm"
	"github.com/maitred-ai/maitred/internal/policy"
	"github.com/maitred-ai/maitred/internal/store"
	transport "github.com/maitred-ai/maitred/internal/transport/http"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("starting chat backend",
		"http_port", cfg.HTTPPort,
		"db_path", cfg.DBPath,
		"llm_url", cfg.LLMURL,
		"max_history_turns", cfg.MaxHistoryTurns)

	// Initialize conversation store
	db, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		logger.Error("failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize chat client (CHAT_MODE=MOCK selects the mock)
	chatClient := llm.NewChatClient(cfg.LLMURL, cfg.LLMAPIKey, cfg.LLMAPIVersion, cfg.LLMTimeout)

	// Initialize capability policy engine
	ctx := context.Background()
	policyEngine, err := policy.NewEngineFromFile(ctx, cfg.PolicyFile)
	if err != nil {
		logger.Error("failed to initialize policy engine", "error", err)
		os.Exit(1)
	}

	// Build the persona services, one per persona per process
	var personas []*chat.Service
	for _, def := range chat.Definitions() {
		agent := assistant.New(chatClient, cfg.LLMDeployment, def.Name, def.Instructions,
			def.Capabilities, policyEngine, logger.With("component", "assistant", "persona", def.Name))
		personas = append(personas, chat.New(def.Name, def.TitlePrefix, agent, db,
			cfg.MaxHistoryTurns, logger.With("component", "chat", "persona", def.Name)))
	}

	// Bearer-token validation (disabled when no issuer is configured)
	var authMW echo.MiddlewareFunc
	if cfg.AuthIssuer != "" {
		verifier, err := auth.NewVerifier(ctx, cfg.AuthIssuer, cfg.AuthAudience)
		if err != nil {
			logger.Error("failed to initialize token verifier", "error", err)
			os.Exit(1)
		}
		authMW = verifier.Middleware()
	} else {
		logger.Warn("AUTH_ISSUER not set, serving without bearer-token validation")
	}

	h := transport.NewHandler(personas, db, logger.With("component", "http"))
	server := transport.NewServer(h, authMW)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()
	logger.Info("API started", "port", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server gracefully", "error", err)
	}

	logger.Info("stopped")
}

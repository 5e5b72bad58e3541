// Package config provides configuration for the chat backend.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the backend configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// External assistant
	LLMURL        string
	LLMAPIKey     string
	LLMDeployment string
	LLMAPIVersion string
	LLMTimeout    time.Duration

	// Conversation store
	DBPath string

	// History windowing
	MaxHistoryTurns int

	// Bearer-token validation (auth disabled when Issuer is empty)
	AuthIssuer   string
	AuthAudience string

	// Capability policy (empty = built-in default policy)
	PolicyFile string

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		HTTPPort:        getEnvInt("HTTP_PORT", 8080),
		LLMURL:          getEnv("LLM_URL", ""),
		LLMAPIKey:       getEnv("LLM_API_KEY", ""),
		LLMDeployment:   getEnv("LLM_DEPLOYMENT", ""),
		LLMAPIVersion:   getEnv("LLM_API_VERSION", ""),
		LLMTimeout:      time.Duration(getEnvInt("LLM_TIMEOUT_MS", 60000)) * time.Millisecond,
		DBPath:          getEnv("CHAT_DB_PATH", "./data/chat.db"),
		MaxHistoryTurns: getEnvInt("MAX_HISTORY_TURNS", 10),
		AuthIssuer:      getEnv("AUTH_ISSUER", ""),
		AuthAudience:    getEnv("AUTH_AUDIENCE", ""),
		PolicyFile:      getEnv("CAPABILITY_POLICY_FILE", ""),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}
}

// Validate checks that all required settings are present. The returned error
// names every missing variable; the process must not serve traffic when it is
// non-nil.
func (c *Config) Validate() error {
	var missing []string
	if c.LLMURL == "" {
		missing = append(missing, "LLM_URL")
	}
	if c.LLMAPIKey == "" {
		missing = append(missing, "LLM_API_KEY")
	}
	if c.LLMDeployment == "" {
		missing = append(missing, "LLM_DEPLOYMENT")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if c.MaxHistoryTurns <= 0 {
		return fmt.Errorf("MAX_HISTORY_TURNS must be positive, got %d", c.MaxHistoryTurns)
	}
	return nil
}

// SlogLevel maps the configured log level to a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

// Package config loads and validates the Inkwell configuration file.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration.
type Config struct {
	Server        ServerConfig       `yaml:"server" json:"server"`
	Session       SessionConfig      `yaml:"session" json:"session"`
	Conversations ConversationConfig `yaml:"conversations" json:"conversations"`
	Tools         ToolsConfig        `yaml:"tools" json:"tools"`
	Formatter     FormatterConfig    `yaml:"formatter" json:"formatter"`
	Auth          AuthConfig         `yaml:"auth" json:"auth"`
	Logging       LogConfig          `yaml:"logging" json:"logging"`
}

// ServerConfig configures the HTTP gateway.
type ServerConfig struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`
}

// SessionConfig configures session token issuance.
type SessionConfig struct {
	TTL Duration `yaml:"ttl" json:"ttl"`
	// SweepSchedule is a cron expression for the expired-token janitor.
	SweepSchedule string `yaml:"sweep_schedule" json:"sweep_schedule"`
}

// ConversationConfig selects the conversation store backend.
type ConversationConfig struct {
	// Backend is "memory" or "sqlite".
	Backend string `yaml:"backend" json:"backend"`
	// Path is the SQLite database file when the backend is "sqlite".
	Path string `yaml:"path" json:"path"`
	// HistoryLimit caps messages returned per history read.
	HistoryLimit int `yaml:"history_limit" json:"history_limit"`
}

// ToolsConfig configures the remote tool-execution service.
type ToolsConfig struct {
	URL     string   `yaml:"url" json:"url"`
	Timeout Duration `yaml:"timeout" json:"timeout"`
}

// FormatterConfig configures the response formatting capability.
type FormatterConfig struct {
	// Provider is "openai" or "anthropic".
	Provider string   `yaml:"provider" json:"provider"`
	Model    string   `yaml:"model" json:"model"`
	APIKey   string   `yaml:"api_key" json:"api_key"`
	Timeout  Duration `yaml:"timeout" json:"timeout"`
}

// AuthConfig configures operator authentication.
type AuthConfig struct {
	// JWTSecret signs operator tokens for admin endpoints. Empty disables them.
	JWTSecret string   `yaml:"jwt_secret" json:"jwt_secret"`
	JWTExpiry Duration `yaml:"jwt_expiry" json:"jwt_expiry"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Default returns a configuration with defaults applied.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Session: SessionConfig{
			TTL:           Duration(24 * time.Hour),
			SweepSchedule: "@hourly",
		},
		Conversations: ConversationConfig{
			Backend:      "memory",
			HistoryLimit: 200,
		},
		Tools: ToolsConfig{
			URL:     "http://localhost:3000",
			Timeout: Duration(60 * time.Second),
		},
		Formatter: FormatterConfig{
			Provider: "openai",
			Model:    "gpt-4o",
			Timeout:  Duration(30 * time.Second),
		},
		Auth: AuthConfig{
			JWTExpiry: Duration(12 * time.Hour),
		},
		Logging: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive")
	}
	switch c.Conversations.Backend {
	case "memory":
	case "sqlite":
		if strings.TrimSpace(c.Conversations.Path) == "" {
			return fmt.Errorf("conversations.path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("unknown conversations.backend %q", c.Conversations.Backend)
	}
	if strings.TrimSpace(c.Tools.URL) == "" {
		return fmt.Errorf("tools.url is required")
	}
	if c.Tools.Timeout <= 0 {
		return fmt.Errorf("tools.timeout must be positive")
	}
	switch c.Formatter.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("unknown formatter.provider %q", c.Formatter.Provider)
	}
	return nil
}

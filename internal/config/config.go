// Package config handles configuration and environment loading for agentchat.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	apierrors "github.com/diogo/agentchat/internal/errors"
)

// Environment variables consulted for the agent API key, in order
const (
	EnvAPIKey       = "AGENTCHAT_API_KEY"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	EnvBaseURL      = "AGENTCHAT_BASE_URL"
)

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style"`             // glamour style name or path to JSON theme
	EnableEmoji      bool   `json:"enable_emoji"`      // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines"` // Preserve original line breaks
}

// Config represents the user configuration
type Config struct {
	DefaultModel string `json:"default_model"`
	// BaseURL points the agent at an OpenAI-compatible endpoint.
	// Empty means the official API.
	BaseURL string `json:"base_url,omitempty"`
	// SystemPrompt is prepended to every conversation as a system message.
	SystemPrompt string `json:"system_prompt,omitempty"`
	// RequestTimeout is the per-reply timeout in seconds.
	RequestTimeout  int            `json:"request_timeout"`
	Verbose         bool           `json:"verbose"`
	CopyToClipboard bool           `json:"copy_to_clipboard"`
	TUITheme        string         `json:"tui_theme,omitempty"`
	Markdown        MarkdownConfig `json:"markdown,omitempty"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		DefaultModel:    "gpt-4o-mini",
		RequestTimeout:  60,
		Verbose:         false,
		CopyToClipboard: false,
		TUITheme:        "tokyonight",
		Markdown:        DefaultMarkdownConfig(),
	}
}

// AvailableModels returns the models offered by the settings editor.
// Any other model name can still be set in the config file or with --model.
func AvailableModels() []string {
	return []string{
		"gpt-4o-mini",
		"gpt-4o",
		"gpt-4.1-mini",
		"gpt-4.1",
		"o4-mini",
	}
}

// Timeout returns RequestTimeout as a duration, falling back to the default
func (c Config) Timeout() time.Duration {
	if c.RequestTimeout <= 0 {
		return time.Duration(DefaultConfig().RequestTimeout) * time.Second
	}
	return time.Duration(c.RequestTimeout) * time.Second
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".agentchat"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetLogPath returns the path to the log file
func GetLogPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "agentchat.log"), nil
}

// LoadConfig loads the configuration from disk
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, apierrors.NewConfigError(configPath, err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), apierrors.NewConfigError(configPath, err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnv loads KEY=value pairs from the given .env files into the process
// environment. Missing files are ignored; existing variables are never overridden.
func LoadEnv(paths ...string) error {
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// APIKey returns the agent API key from the environment
func APIKey() (string, error) {
	for _, name := range []string{EnvAPIKey, EnvOpenAIAPIKey} {
		if v := os.Getenv(name); v != "" {
			return v, nil
		}
	}
	return "", apierrors.ErrMissingAPIKey
}

// ResolveBaseURL returns the base URL from the environment, then the config
func ResolveBaseURL(cfg Config) string {
	if v := os.Getenv(EnvBaseURL); v != "" {
		return v
	}
	return cfg.BaseURL
}

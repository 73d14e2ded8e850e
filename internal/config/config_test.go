package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	apierrors "github.com/diogo/agentchat/internal/errors"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.DefaultModel != "gpt-4o-mini" {
		t.Errorf("Expected default model to be 'gpt-4o-mini', got '%s'", cfg.DefaultModel)
	}
	if cfg.RequestTimeout != 60 {
		t.Errorf("Expected RequestTimeout 60, got %d", cfg.RequestTimeout)
	}
	if cfg.Verbose {
		t.Error("Expected Verbose to be false")
	}
	if cfg.TUITheme != "tokyonight" {
		t.Errorf("Expected tokyonight theme, got %s", cfg.TUITheme)
	}
}

func TestConfig_Timeout(t *testing.T) {
	if got := (Config{RequestTimeout: 5}).Timeout(); got != 5*time.Second {
		t.Errorf("Timeout() = %v, want 5s", got)
	}
	if got := (Config{}).Timeout(); got != 60*time.Second {
		t.Errorf("Timeout() with zero value = %v, want 60s", got)
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() returned error: %v", err)
	}
	if !filepath.IsAbs(path) {
		t.Errorf("GetConfigPath() returned relative path: %s", path)
	}
	if filepath.Base(path) != "config.json" {
		t.Errorf("expected config.json, got %s", filepath.Base(path))
	}
}

func TestLoadConfig_FileNotExists(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	cfg := DefaultConfig()
	cfg.DefaultModel = "gpt-4o"
	cfg.SystemPrompt = "Be brief."
	cfg.Verbose = true

	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig() returned error: %v", err)
	}

	configPath := filepath.Join(tmpDir, ".agentchat", "config.json")
	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("Failed to stat config file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("File permissions = %o, want 600", perm)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}
	if loaded != cfg {
		t.Errorf("loaded %+v, want %+v", loaded, cfg)
	}
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	dir := filepath.Join(tmpDir, ".agentchat")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	data, _ := json.Marshal(map[string]any{"default_model": "llama3"})
	if err := os.WriteFile(filepath.Join(dir, "config.json"), data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}
	if cfg.DefaultModel != "llama3" {
		t.Errorf("DefaultModel = %s, want llama3", cfg.DefaultModel)
	}
	if cfg.RequestTimeout != 60 {
		t.Errorf("RequestTimeout = %d, want default 60", cfg.RequestTimeout)
	}
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	dir := filepath.Join(tmpDir, ".agentchat")
	_ = os.MkdirAll(dir, 0o700)
	_ = os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0o600)

	cfg, err := LoadConfig()
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
	if !apierrors.IsConfigError(err) {
		t.Errorf("expected ConfigError, got %T", err)
	}
	if cfg != DefaultConfig() {
		t.Error("expected defaults on parse failure")
	}
}

func TestAPIKey(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvOpenAIAPIKey, "")

	if _, err := APIKey(); !errors.Is(err, apierrors.ErrMissingAPIKey) {
		t.Errorf("expected ErrMissingAPIKey, got %v", err)
	}

	t.Setenv(EnvOpenAIAPIKey, "sk-openai")
	if key, _ := APIKey(); key != "sk-openai" {
		t.Errorf("APIKey() = %s, want sk-openai", key)
	}

	t.Setenv(EnvAPIKey, "sk-agentchat")
	if key, _ := APIKey(); key != "sk-agentchat" {
		t.Errorf("APIKey() = %s, want sk-agentchat", key)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("AGENTCHAT_TEST_VALUE", "")
	_ = os.Unsetenv("AGENTCHAT_TEST_VALUE")

	envFile := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envFile, []byte("AGENTCHAT_TEST_VALUE=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := LoadEnv(filepath.Join(t.TempDir(), "missing.env"), envFile); err != nil {
		t.Fatalf("LoadEnv() returned error: %v", err)
	}
	if got := os.Getenv("AGENTCHAT_TEST_VALUE"); got != "from-file" {
		t.Errorf("AGENTCHAT_TEST_VALUE = %q, want from-file", got)
	}

	if err := LoadEnv(); err != nil {
		t.Errorf("LoadEnv() with no files returned error: %v", err)
	}
}

func TestResolveBaseURL(t *testing.T) {
	t.Setenv(EnvBaseURL, "")
	cfg := Config{BaseURL: "http://localhost:11434/v1"}
	if got := ResolveBaseURL(cfg); got != cfg.BaseURL {
		t.Errorf("ResolveBaseURL() = %s, want %s", got, cfg.BaseURL)
	}

	t.Setenv(EnvBaseURL, "http://proxy/v1")
	if got := ResolveBaseURL(cfg); got != "http://proxy/v1" {
		t.Errorf("ResolveBaseURL() = %s, want env value", got)
	}
}

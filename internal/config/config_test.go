package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"modelhub/internal/provider"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	return path
}

func TestNewProvidersConfig_ValidConfig(t *testing.T) {
	path := writeFile(t, "providers.json", `[
		{"name": "Ollama", "baseUrl": "http://ollama:11434"},
		{"name": "Featherless", "enabled": false}
	]`)

	config, err := NewProvidersConfig(path)
	if err != nil {
		t.Fatalf("NewProvidersConfig() error = %v, want nil", err)
	}

	if len(config.Entries()) != 2 {
		t.Errorf("Entries() returned %d entries, want 2", len(config.Entries()))
	}

	settings := config.Settings()
	if settings["Ollama"].BaseURL != "http://ollama:11434" {
		t.Errorf("Ollama base URL = %q, want http://ollama:11434", settings["Ollama"].BaseURL)
	}
	if config.IsEnabled("Featherless") {
		t.Error("Featherless should be disabled")
	}
	if !config.IsEnabled("Ollama") {
		t.Error("Ollama should be enabled")
	}
	if !config.IsEnabled("OpenRouter") {
		t.Error("Unlisted providers should be enabled")
	}
}

func TestNewProvidersConfig_FileNotFound(t *testing.T) {
	config, err := NewProvidersConfig("/nonexistent/path/providers.json")
	if err == nil {
		t.Error("NewProvidersConfig() error = nil, want error for nonexistent file")
	}
	if config != nil {
		t.Error("NewProvidersConfig() returned non-nil config for nonexistent file")
	}
}

func TestNewProvidersConfig_InvalidJSON(t *testing.T) {
	path := writeFile(t, "invalid.json", `{ this is not valid json }`)

	config, err := NewProvidersConfig(path)
	if err == nil {
		t.Error("NewProvidersConfig() error = nil, want error for invalid JSON")
	}
	if config != nil {
		t.Error("NewProvidersConfig() returned non-nil config for invalid JSON")
	}
}

func TestNewProvidersConfig_MissingName(t *testing.T) {
	path := writeFile(t, "providers.json", `[{"baseUrl": "http://x"}]`)

	if _, err := NewProvidersConfig(path); err == nil {
		t.Error("NewProvidersConfig() error = nil, want error for entry without name")
	}
}

func TestProvidersConfig_NilSafe(t *testing.T) {
	var config *ProvidersConfig
	if config.Entries() != nil {
		t.Error("Entries() on nil config should be nil")
	}
	if !config.IsEnabled("Ollama") {
		t.Error("nil config should enable every provider")
	}
}

func TestLoadConfig(t *testing.T) {
	providersPath := writeFile(t, "providers.json", `[{"name": "Ollama", "enabled": false}]`)

	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("PROVIDERS_CONFIG_PATH", providersPath)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CHAT_TEMPERATURE", "not-a-number")
	t.Setenv("JWT_TOKEN_EXPIRATION", "2h")
	t.Setenv("OLLAMA_API_BASE_URL", "http://gpu-box:11434")
	t.Setenv("CHAT_BACKEND", "http")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if config.Server.Port != "9090" {
		t.Errorf("Port = %s, want 9090", config.Server.Port)
	}
	if config.Chat.Temperature != 0.7 {
		t.Errorf("Temperature = %v, want default 0.7 for invalid value", config.Chat.Temperature)
	}
	if config.Auth.TokenExpiration != 2*time.Hour {
		t.Errorf("TokenExpiration = %v, want 2h", config.Auth.TokenExpiration)
	}
	if config.Providers.IsEnabled("Ollama") {
		t.Error("Ollama should be disabled by providers file")
	}
	if config.Env["OLLAMA_API_BASE_URL"] != "http://gpu-box:11434" {
		t.Errorf("Env snapshot missing OLLAMA_API_BASE_URL")
	}
	if config.Chat.Backend != provider.BackendHTTP {
		t.Errorf("Backend = %s, want http", config.Chat.Backend)
	}
}

func TestLoadConfig_InvalidBackend(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("CHAT_BACKEND", "carrier-pigeon")

	if _, err := LoadConfig(); err == nil {
		t.Error("Expected error for unknown CHAT_BACKEND")
	}
}

func TestLoadConfig_MissingProvidersFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("PROVIDERS_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.json"))

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if len(config.Providers.Entries()) != 0 {
		t.Error("Expected empty providers config")
	}
}

func TestLoadConfig_JWTSecretValidation(t *testing.T) {
	tests := []struct {
		name   string
		secret string
	}{
		{"missing", ""},
		{"too short", "short-secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", tt.secret)
			if _, err := LoadConfig(); err == nil {
				t.Error("LoadConfig() error = nil, want JWT_SECRET error")
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := writeFile(t, ".env", "MODELHUB_DOTENV_TEST=loaded\n")
	t.Setenv("MODELHUB_DOTENV_TEST", "")
	os.Unsetenv("MODELHUB_DOTENV_TEST")

	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env"), path); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("MODELHUB_DOTENV_TEST"); got != "loaded" {
		t.Errorf("MODELHUB_DOTENV_TEST = %q, want loaded", got)
	}
}

func TestGetDSN(t *testing.T) {
	db := DatabaseConfig{Host: "h", Port: "1", User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	want := "host=h port=1 user=u password=p dbname=n sslmode=disable"
	if got := db.GetDSN(); got != want {
		t.Errorf("GetDSN() = %q, want %q", got, want)
	}
}

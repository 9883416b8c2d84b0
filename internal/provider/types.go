package provider

import (
	"os"
	"strings"
)

// DefaultMaxTokens is used when a backend does not report a context length
const DefaultMaxTokens = 4096

// ModelInfo is the normalized descriptor of one invokable model
type ModelInfo struct {
	Name            string `json:"name"`
	Label           string `json:"label"`
	Provider        string `json:"provider"`
	MaxTokenAllowed int    `json:"maxTokenAllowed"`
}

// Config is the static, per-adapter record naming where credentials come from
type Config struct {
	BaseURLKey     string
	APITokenKey    string
	DefaultBaseURL string
}

// Settings is a user-controlled record for one provider
type Settings struct {
	Enabled *bool  `json:"enabled,omitempty"`
	BaseURL string `json:"baseUrl,omitempty"`
}

// IsEnabled reports whether the provider may be used; unset means enabled
func (s Settings) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// ProviderSettings maps provider name to its settings record
type ProviderSettings map[string]Settings

// For returns the settings for a provider, or the zero record. Names match
// exactly first, then case-insensitively, like Registry.Get.
func (ps ProviderSettings) For(name string) Settings {
	s, _ := lookupName(ps, name)
	return s
}

// APIKeys maps provider name to a call-time API key override
type APIKeys map[string]string

// For returns the call-time key for a provider, matched like ProviderSettings.For
func (k APIKeys) For(name string) string {
	key, _ := lookupName(k, name)
	return key
}

func lookupName[V any](m map[string]V, name string) (V, bool) {
	if v, ok := m[name]; ok {
		return v, true
	}
	for k, v := range m {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	var zero V
	return zero, false
}

// Env is a snapshot of server environment variables
type Env map[string]string

// EnvFromOS captures the current process environment
func EnvFromOS() Env {
	env := make(Env)
	for _, kv := range os.Environ() {
		if key, value, ok := strings.Cut(kv, "="); ok {
			env[key] = value
		}
	}
	return env
}

// Credentials are resolved per call and never cached
type Credentials struct {
	BaseURL string
	APIKey  string
}

// Message is one chat turn sent through a model handle
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage carries token accounting reported by a backend
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// GenerateOptions are optional sampling parameters for a handle call
type GenerateOptions struct {
	Temperature *float64
	TopP        *float64
	MaxTokens   int
}

package config

import (
	"encoding/json"
	"fmt"
	"os"

	"modelhub/internal/provider"
)

// ProviderEntry is one record of the providers config file
type ProviderEntry struct {
	Name    string `json:"name"`
	Enabled *bool  `json:"enabled,omitempty"`
	BaseURL string `json:"baseUrl,omitempty"`
}

// ProvidersConfig holds server-side provider settings
type ProvidersConfig struct {
	entries []ProviderEntry
}

// NewProvidersConfig reads provider settings from a JSON file
func NewProvidersConfig(configPath string) (*ProvidersConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var entries []ProviderEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	for i, e := range entries {
		if e.Name == "" {
			return nil, fmt.Errorf("provider entry %d has no name", i)
		}
	}

	return &ProvidersConfig{entries: entries}, nil
}

// Entries returns the configured provider records
func (pc *ProvidersConfig) Entries() []ProviderEntry {
	if pc == nil {
		return nil
	}
	return pc.entries
}

// Settings converts the file into the adapters' settings map
func (pc *ProvidersConfig) Settings() provider.ProviderSettings {
	settings := make(provider.ProviderSettings)
	for _, e := range pc.Entries() {
		settings[e.Name] = provider.Settings{Enabled: e.Enabled, BaseURL: e.BaseURL}
	}
	return settings
}

// IsEnabled reports whether a provider is enabled; unlisted providers are enabled
func (pc *ProvidersConfig) IsEnabled(name string) bool {
	return pc.Settings().For(name).IsEnabled()
}

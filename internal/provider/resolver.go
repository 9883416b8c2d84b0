package provider

import "strings"

// Resolve computes the effective base URL and API key for a provider.
//
// Base URL: settings override, then the named environment variable, then the
// adapter's default. API key: call-time key, then the named environment
// variable. Empty values are treated as absent.
func Resolve(name string, cfg Config, apiKeys APIKeys, settings ProviderSettings, env Env) Credentials {
	baseURL := firstNonEmpty(
		settings.For(name).BaseURL,
		lookup(env, cfg.BaseURLKey),
		cfg.DefaultBaseURL,
	)

	apiKey := firstNonEmpty(apiKeys.For(name), lookup(env, cfg.APITokenKey))

	return Credentials{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
	}
}

func lookup(env Env, key string) string {
	if env == nil || key == "" {
		return ""
	}
	return env[key]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

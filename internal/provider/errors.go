package provider

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredentials means no base URL or API key could be resolved
	ErrMissingCredentials = errors.New("missing provider credentials")
	// ErrUnknownProvider is returned by the registry for unregistered names
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrProviderDisabled is returned when settings turn a provider off
	ErrProviderDisabled = errors.New("provider disabled")

	errMalformedBody   = errors.New("malformed response body")
	errUnexpectedShape = errors.New("unexpected response shape")
)

// ConfigError is the fatal error raised when a model instance cannot be built
type ConfigError struct {
	Provider string
	Missing  string
	Err      error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: cannot create model instance, %s not configured: %v", e.Provider, e.Missing, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// MaxMessageChars bounds a single user message
	MaxMessageChars = 32000
	maxNameLen      = 200
	maxAPIKeyLen    = 512
)

// ChatRequestValidator validates chat and selection requests
type ChatRequestValidator struct{}

// NewChatRequestValidator creates a new ChatRequestValidator
func NewChatRequestValidator() *ChatRequestValidator {
	return &ChatRequestValidator{}
}

// ValidateMessage validates a chat message
func (v *ChatRequestValidator) ValidateMessage(message string) error {
	if strings.TrimSpace(message) == "" {
		return errors.New("message cannot be empty")
	}
	if n := utf8.RuneCountInString(message); n > MaxMessageChars {
		return fmt.Errorf("message must be at most %d characters, got %d", MaxMessageChars, n)
	}
	return nil
}

// ValidateTemperature validates the temperature parameter
func (v *ChatRequestValidator) ValidateTemperature(temperature *float64) error {
	if temperature == nil {
		return nil // optional
	}
	if *temperature < 0 || *temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %.2f", *temperature)
	}
	return nil
}

// ValidateChatRequest validates a complete chat request
func (v *ChatRequestValidator) ValidateChatRequest(message string, temperature *float64) error {
	if err := v.ValidateMessage(message); err != nil {
		return err
	}
	return v.ValidateTemperature(temperature)
}

// ValidateProviderName validates a provider name from a selection request
func (v *ChatRequestValidator) ValidateProviderName(name string) error {
	return validateName("provider", name)
}

// ValidateModelName validates a model id from a selection request
func (v *ChatRequestValidator) ValidateModelName(name string) error {
	return validateName("model", name)
}

// ValidateAPIKeys validates per-call API key overrides keyed by provider name
func (v *ChatRequestValidator) ValidateAPIKeys(keys map[string]string) error {
	for name, key := range keys {
		if err := validateName("provider", name); err != nil {
			return fmt.Errorf("api keys: %w", err)
		}
		if len(key) > maxAPIKeyLen {
			return fmt.Errorf("api key for %s must be at most %d characters", name, maxAPIKeyLen)
		}
	}
	return nil
}

func validateName(field, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%s cannot be empty", field)
	}
	if len(name) > maxNameLen {
		return fmt.Errorf("%s must be at most %d characters, got %d", field, maxNameLen, len(name))
	}
	return nil
}

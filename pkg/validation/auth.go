package validation

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

const (
	minUsernameLen = 3
	maxUsernameLen = 50
	minPasswordLen = 6
	maxPasswordLen = 128
	maxEmailLen    = 255
)

// AuthRequestValidator validates login and registration requests
type AuthRequestValidator struct{}

// NewAuthRequestValidator creates a new AuthRequestValidator
func NewAuthRequestValidator() *AuthRequestValidator {
	return &AuthRequestValidator{}
}

// ValidateUsername checks length and allowed characters
func (v *AuthRequestValidator) ValidateUsername(username string) error {
	switch {
	case username == "":
		return errors.New("username cannot be empty")
	case len(username) < minUsernameLen:
		return fmt.Errorf("username must be at least %d characters long, got %d", minUsernameLen, len(username))
	case len(username) > maxUsernameLen:
		return fmt.Errorf("username must be at most %d characters long, got %d", maxUsernameLen, len(username))
	case !usernamePattern.MatchString(username):
		return errors.New("username can only contain letters, numbers, underscores, and hyphens")
	}
	return nil
}

// ValidatePassword checks password length bounds
func (v *AuthRequestValidator) ValidatePassword(password string) error {
	switch {
	case password == "":
		return errors.New("password cannot be empty")
	case len(password) < minPasswordLen:
		return fmt.Errorf("password must be at least %d characters long, got %d", minPasswordLen, len(password))
	case len(password) > maxPasswordLen:
		return fmt.Errorf("password must be at most %d characters long, got %d", maxPasswordLen, len(password))
	}
	return nil
}

// ValidateEmail accepts an empty email; anything else must look like an address
func (v *AuthRequestValidator) ValidateEmail(email string) error {
	if email == "" {
		return nil
	}
	if len(email) > maxEmailLen {
		return fmt.Errorf("email must be at most %d characters long, got %d", maxEmailLen, len(email))
	}
	if !emailPattern.MatchString(email) {
		return errors.New("invalid email format")
	}
	return nil
}

// ValidateLoginRequest only requires both fields; credentials are checked against the database
func (v *AuthRequestValidator) ValidateLoginRequest(username, password string) error {
	if username == "" {
		return errors.New("username cannot be empty")
	}
	if password == "" {
		return errors.New("password cannot be empty")
	}
	return nil
}

// ValidateRegisterRequest validates a registration request
func (v *AuthRequestValidator) ValidateRegisterRequest(username, email, password string) error {
	if err := v.ValidateUsername(username); err != nil {
		return err
	}
	if err := v.ValidateEmail(email); err != nil {
		return err
	}
	return v.ValidatePassword(password)
}

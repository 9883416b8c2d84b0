package validation

import (
	"strings"
	"testing"
)

func TestAuthRequestValidator_ValidateUsername(t *testing.T) {
	validator := NewAuthRequestValidator()

	tests := []struct {
		name     string
		username string
		wantErr  bool
		errMsg   string
	}{
		{name: "valid username", username: "testuser"},
		{name: "valid username with underscore and hyphen", username: "test_user-1"},
		{name: "minimum length username", username: "abc"},
		{name: "empty username", username: "", wantErr: true, errMsg: "username cannot be empty"},
		{name: "username too short", username: "ab", wantErr: true, errMsg: "at least 3 characters"},
		{name: "username too long", username: strings.Repeat("a", 51), wantErr: true, errMsg: "at most 50 characters"},
		{name: "username with spaces", username: "test user", wantErr: true, errMsg: "can only contain"},
		{name: "username with special characters", username: "test@user", wantErr: true, errMsg: "can only contain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateUsername(tt.username)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUsername() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("ValidateUsername() error message = %v, want to contain %v", err.Error(), tt.errMsg)
			}
		})
	}
}

func TestAuthRequestValidator_ValidatePassword(t *testing.T) {
	validator := NewAuthRequestValidator()

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "valid password", password: "secret123"},
		{name: "minimum length", password: "123456"},
		{name: "empty", password: "", wantErr: true},
		{name: "too short", password: "12345", wantErr: true},
		{name: "too long", password: strings.Repeat("x", 129), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := validator.ValidatePassword(tt.password); (err != nil) != tt.wantErr {
				t.Errorf("ValidatePassword() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAuthRequestValidator_ValidateEmail(t *testing.T) {
	validator := NewAuthRequestValidator()

	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{name: "empty email is optional", email: ""},
		{name: "valid email", email: "test@example.com"},
		{name: "valid email with plus", email: "test+tag@mail.example.org"},
		{name: "missing at", email: "invalid-email", wantErr: true},
		{name: "missing tld", email: "a@b", wantErr: true},
		{name: "too long", email: strings.Repeat("a", 250) + "@example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := validator.ValidateEmail(tt.email); (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAuthRequestValidator_ValidateLoginRequest(t *testing.T) {
	validator := NewAuthRequestValidator()

	if err := validator.ValidateLoginRequest("demo", "demo123"); err != nil {
		t.Errorf("ValidateLoginRequest() error = %v", err)
	}
	if err := validator.ValidateLoginRequest("", "demo123"); err == nil {
		t.Error("Expected error for empty username")
	}
	if err := validator.ValidateLoginRequest("demo", ""); err == nil {
		t.Error("Expected error for empty password")
	}
}

func TestAuthRequestValidator_ValidateRegisterRequest(t *testing.T) {
	validator := NewAuthRequestValidator()

	tests := []struct {
		name     string
		username string
		email    string
		password string
		errMsg   string
	}{
		{name: "valid registration request", username: "testuser", email: "test@example.com", password: "password123"},
		{name: "valid registration without email", username: "testuser", password: "password123"},
		{name: "invalid username", username: "ab", email: "test@example.com", password: "password123", errMsg: "at least 3 characters"},
		{name: "invalid email", username: "testuser", email: "invalid-email", password: "password123", errMsg: "invalid email format"},
		{name: "invalid password", username: "testuser", email: "test@example.com", password: "12345", errMsg: "at least 6 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateRegisterRequest(tt.username, tt.email, tt.password)
			if tt.errMsg == "" {
				if err != nil {
					t.Errorf("ValidateRegisterRequest() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("ValidateRegisterRequest() error = %v, want to contain %v", err, tt.errMsg)
			}
		})
	}
}

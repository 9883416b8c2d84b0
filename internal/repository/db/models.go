package db

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a requested row does not exist
	ErrNotFound = errors.New("not found")
	// ErrUsernameTaken is returned by CreateUser for duplicate usernames
	ErrUsernameTaken = errors.New("username already exists")
)

// User represents a user in the database
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    string
}

// Selection is the persisted provider/model choice of a user
type Selection struct {
	UserID    string
	Provider  string
	Model     string
	UpdatedAt time.Time
}

// Conversation represents a conversation in the database
type Conversation struct {
	ID        string
	UserID    string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Message represents a message in a conversation
type Message struct {
	ID             string
	ConversationID string
	Role           string
	Content        string
	Provider       string // provider that produced an assistant message
	Model          string
	CreatedAt      time.Time
}

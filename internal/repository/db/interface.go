package db

// Database defines the interface for all database operations.
// Services depend on it so tests can swap in a mock.
type Database interface {
	// Users
	GetUserByUsername(username string) (*User, error)
	CreateUser(username, email, password string) (*User, error)

	// Selections
	GetSelection(userID string) (*Selection, error)
	SaveSelection(userID, provider, model string) error

	// Conversations
	CreateConversation(userID, title string) (*Conversation, error)
	GetConversation(id string) (*Conversation, error)
	GetConversationsByUser(userID string) ([]Conversation, error)

	// Messages
	AddMessage(conversationID, role, content, provider, model string) (*Message, error)
	GetConversationMessages(conversationID string) ([]Message, error)
}

package conversation

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"modelhub/internal/logger"
	"modelhub/internal/provider"
	"modelhub/internal/repository/db"

	"github.com/sirupsen/logrus"
)

// ExportVersion is written into every export document
const ExportVersion = 1

var (
	// ErrUnauthorized is returned when a user touches a conversation they do not own
	ErrUnauthorized = errors.New("unauthorized: user does not own this conversation")
	// ErrInvalidExport is returned by Import for documents it cannot accept
	ErrInvalidExport = errors.New("invalid export document")
)

// ConversationInfo is the listing view of a conversation
type ConversationInfo struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ExportedMessage is one message of an export document
type ExportedMessage struct {
	Role     string `json:"role"`
	Content  string `json:"content"`
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
}

// Export is the portable form of a conversation
type Export struct {
	Version    int               `json:"version"`
	Title      string            `json:"title"`
	ExportedAt time.Time         `json:"exported_at"`
	Messages   []ExportedMessage `json:"messages"`
}

// ConversationService handles conversation history, export and import
type ConversationService struct {
	db db.Database
}

// NewConversationService creates a new ConversationService
func NewConversationService(database db.Database) *ConversationService {
	return &ConversationService{
		db: database,
	}
}

// Create starts a conversation titled after its first message
func (s *ConversationService) Create(userID, firstMessage string) (*db.Conversation, error) {
	title := firstMessage
	if runes := []rune(title); len(runes) > 100 {
		title = string(runes[:100])
	}
	conv, err := s.db.CreateConversation(userID, title)
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return conv, nil
}

// GetUserConversations retrieves all conversations for a user
func (s *ConversationService) GetUserConversations(userID string) ([]ConversationInfo, error) {
	conversations, err := s.db.GetConversationsByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve conversations: %w", err)
	}

	result := make([]ConversationInfo, 0, len(conversations))
	for _, conv := range conversations {
		result = append(result, ConversationInfo{
			ID:        conv.ID,
			Title:     conv.Title,
			CreatedAt: conv.CreatedAt.String(),
			UpdatedAt: conv.UpdatedAt.String(),
		})
	}

	return result, nil
}

// Authorize fails unless userID owns the conversation
func (s *ConversationService) Authorize(conversationID, userID string) (*db.Conversation, error) {
	conversation, err := s.db.GetConversation(conversationID)
	if err != nil {
		return nil, fmt.Errorf("conversation not found: %w", err)
	}
	if conversation.UserID != userID {
		return nil, ErrUnauthorized
	}
	return conversation, nil
}

// Messages returns a conversation's history as chat messages
func (s *ConversationService) Messages(conversationID string) ([]provider.Message, error) {
	rows, err := s.db.GetConversationMessages(conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve messages: %w", err)
	}

	messages := make([]provider.Message, 0, len(rows))
	for _, r := range rows {
		messages = append(messages, provider.Message{Role: r.Role, Content: r.Content})
	}
	return messages, nil
}

// Append stores one message in a conversation
func (s *ConversationService) Append(conversationID, role, content, providerName, model string) error {
	if _, err := s.db.AddMessage(conversationID, role, content, providerName, model); err != nil {
		return fmt.Errorf("failed to add message: %w", err)
	}
	return nil
}

// Export serializes a conversation owned by userID
func (s *ConversationService) Export(conversationID, userID string) ([]byte, error) {
	conversation, err := s.Authorize(conversationID, userID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.GetConversationMessages(conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve messages: %w", err)
	}

	doc := Export{
		Version:    ExportVersion,
		Title:      conversation.Title,
		ExportedAt: time.Now().UTC(),
		Messages:   make([]ExportedMessage, 0, len(rows)),
	}
	for _, r := range rows {
		doc.Messages = append(doc.Messages, ExportedMessage{
			Role:     r.Role,
			Content:  r.Content,
			Provider: r.Provider,
			Model:    r.Model,
		})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}
	return data, nil
}

// Import creates a new conversation for userID from an export document
func (s *ConversationService) Import(userID string, payload []byte) (*db.Conversation, error) {
	var doc Export
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExport, err)
	}
	if doc.Version != ExportVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidExport, doc.Version)
	}
	for i, m := range doc.Messages {
		if m.Role == "" {
			return nil, fmt.Errorf("%w: message %d has no role", ErrInvalidExport, i)
		}
	}

	title := doc.Title
	if title == "" {
		title = "Imported conversation"
	}
	conv, err := s.db.CreateConversation(userID, title)
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	for _, m := range doc.Messages {
		if _, err := s.db.AddMessage(conv.ID, m.Role, m.Content, m.Provider, m.Model); err != nil {
			return nil, fmt.Errorf("failed to import message: %w", err)
		}
	}

	logger.Log.WithFields(logrus.Fields{
		"conversation_id": conv.ID,
		"message_count":   len(doc.Messages),
	}).Info("Imported conversation")

	return conv, nil
}

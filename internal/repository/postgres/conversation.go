package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"modelhub/internal/logger"
	"modelhub/internal/repository/db"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CreateConversation creates a new conversation for a user
func (p *PostgresDB) CreateConversation(userID, title string) (*db.Conversation, error) {
	convID := uuid.New().String()
	var createdAt, updatedAt time.Time

	query := `
	INSERT INTO conversations (id, user_id, title)
	VALUES ($1, $2, $3)
	RETURNING id, created_at, updated_at
	`

	if err := p.conn.QueryRow(query, convID, userID, title).Scan(&convID, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("error creating conversation: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{"conversation_id": convID, "user_id": userID}).Info("Created new conversation")

	return &db.Conversation{
		ID:        convID,
		UserID:    userID,
		Title:     title,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

// GetConversationsByUser retrieves all conversations for a user, newest first
func (p *PostgresDB) GetConversationsByUser(userID string) ([]db.Conversation, error) {
	query := `
	SELECT id, user_id, title, created_at, updated_at
	FROM conversations
	WHERE user_id = $1
	ORDER BY updated_at DESC
	`

	rows, err := p.conn.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying conversations: %w", err)
	}
	defer rows.Close()

	var conversations []db.Conversation
	for rows.Next() {
		var conv db.Conversation
		if err := rows.Scan(&conv.ID, &conv.UserID, &conv.Title, &conv.CreatedAt, &conv.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning conversation: %w", err)
		}
		conversations = append(conversations, conv)
	}

	return conversations, rows.Err()
}

// GetConversation retrieves a specific conversation
func (p *PostgresDB) GetConversation(convID string) (*db.Conversation, error) {
	var conv db.Conversation
	query := `SELECT id, user_id, title, created_at, updated_at FROM conversations WHERE id = $1`

	err := p.conn.QueryRow(query, convID).Scan(&conv.ID, &conv.UserID, &conv.Title, &conv.CreatedAt, &conv.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("conversation %w", db.ErrNotFound)
		}
		return nil, fmt.Errorf("error retrieving conversation: %w", err)
	}

	return &conv, nil
}

// AddMessage appends a message to a conversation
func (p *PostgresDB) AddMessage(conversationID, role, content, provider, model string) (*db.Message, error) {
	msgID := uuid.New().String()
	var createdAt time.Time

	query := `
	INSERT INTO messages (id, conversation_id, role, content, provider, model)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id, created_at
	`

	if err := p.conn.QueryRow(query, msgID, conversationID, role, content, provider, model).Scan(&msgID, &createdAt); err != nil {
		return nil, fmt.Errorf("error adding message: %w", err)
	}

	updateQuery := `UPDATE conversations SET updated_at = CURRENT_TIMESTAMP WHERE id = $1`
	if _, err := p.conn.Exec(updateQuery, conversationID); err != nil {
		logger.Log.WithError(err).Warn("Error updating conversation timestamp")
	}

	return &db.Message{
		ID:             msgID,
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		Provider:       provider,
		Model:          model,
		CreatedAt:      createdAt,
	}, nil
}

// GetConversationMessages returns all messages of a conversation in insertion order
func (p *PostgresDB) GetConversationMessages(conversationID string) ([]db.Message, error) {
	query := `
	SELECT id, conversation_id, role, content, COALESCE(provider, ''), COALESCE(model, ''), created_at
	FROM messages
	WHERE conversation_id = $1
	ORDER BY created_at ASC, seq ASC
	`

	rows, err := p.conn.Query(query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("error querying messages: %w", err)
	}
	defer rows.Close()

	var messages []db.Message
	for rows.Next() {
		var msg db.Message
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Role, &msg.Content, &msg.Provider, &msg.Model, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning message: %w", err)
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

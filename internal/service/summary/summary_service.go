package summary

import (
	"context"
	"errors"
	"fmt"

	"modelhub/internal/logger"
	"modelhub/internal/provider"
	"modelhub/internal/repository/db"
	"modelhub/internal/service/chat"

	"github.com/sirupsen/logrus"
)

// DefaultPrompt is the system prompt used when none is configured
const DefaultPrompt = `You are a conversation summarizer. Your task is to create a concise, comprehensive summary of the conversation that captures:
1. The main topics discussed
2. Key questions asked and answers provided
3. Important decisions or conclusions reached
4. Any action items or next steps mentioned

Format the summary in a clear, structured way that can be used as context for continuing the conversation.`

// ErrEmptyConversation is returned when there is nothing to summarize
var ErrEmptyConversation = errors.New("conversation has no messages")

// Conversations is the history access the summarizer needs
type Conversations interface {
	Authorize(conversationID, userID string) (*db.Conversation, error)
	Messages(conversationID string) ([]provider.Message, error)
}

// Generator runs a non-streamed completion; *chat.HandleTransport satisfies it
type Generator interface {
	Generate(ctx context.Context, req chat.TransportRequest) (string, *provider.Usage, error)
}

// SummarizeRequest contains the parameters for summarization
type SummarizeRequest struct {
	ConversationID string
	UserID         string
	Provider       string
	Model          string
	APIKeys        provider.APIKeys
	Temperature    *float64
}

// SummarizeResponse contains the result of summarization
type SummarizeResponse struct {
	ConversationID string          `json:"conversation_id"`
	Summary        string          `json:"summary"`
	Provider       string          `json:"provider"`
	Model          string          `json:"model"`
	MessageCount   int             `json:"message_count"`
	Usage          *provider.Usage `json:"usage,omitempty"`
}

// SummaryService summarizes a conversation with the caller's selected model
type SummaryService struct {
	conversations Conversations
	generator     Generator
	prompt        string
}

// NewSummaryService creates a new SummaryService; an empty prompt means DefaultPrompt
func NewSummaryService(conversations Conversations, generator Generator, prompt string) *SummaryService {
	if prompt == "" {
		prompt = DefaultPrompt
	}
	return &SummaryService{
		conversations: conversations,
		generator:     generator,
		prompt:        prompt,
	}
}

// SummarizeConversation asks the model for a summary of the whole conversation
func (s *SummaryService) SummarizeConversation(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error) {
	if req.Model == "" {
		return nil, chat.ErrNoModelSelected
	}
	if _, err := s.conversations.Authorize(req.ConversationID, req.UserID); err != nil {
		return nil, err
	}

	history, err := s.conversations.Messages(req.ConversationID)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, ErrEmptyConversation
	}

	messages := make([]provider.Message, 0, len(history)+1)
	messages = append(messages, provider.Message{Role: "system", Content: s.prompt})
	for _, m := range history {
		// only the summarizer prompt is sent as system
		if m.Role == "system" {
			continue
		}
		messages = append(messages, m)
	}

	log := logger.Log.WithFields(logrus.Fields{
		"conversation_id": req.ConversationID,
		"provider":        req.Provider,
		"model":           req.Model,
	})
	log.WithField("message_count", len(history)).Info("Calling LLM to generate summary")

	text, usage, err := s.generator.Generate(ctx, chat.TransportRequest{
		Provider: req.Provider,
		Model:    req.Model,
		Messages: messages,
		APIKeys:  req.APIKeys,
		Options:  provider.GenerateOptions{Temperature: req.Temperature},
	})
	if err != nil {
		return nil, fmt.Errorf("LLM error during summarization: %w", err)
	}

	log.WithField("summary_chars", len(text)).Info("Generated summary")

	return &SummarizeResponse{
		ConversationID: req.ConversationID,
		Summary:        text,
		Provider:       req.Provider,
		Model:          req.Model,
		MessageCount:   len(history),
		Usage:          usage,
	}, nil
}

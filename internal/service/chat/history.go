package chat

import (
	"sync"

	"modelhub/internal/provider"
)

// MemoryHistory keeps conversation turns in memory, for the CLI
type MemoryHistory struct {
	mu            sync.Mutex
	conversations map[string][]provider.Message
}

func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{conversations: make(map[string][]provider.Message)}
}

func (h *MemoryHistory) Messages(conversationID string) ([]provider.Message, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]provider.Message(nil), h.conversations[conversationID]...), nil
}

func (h *MemoryHistory) Append(conversationID, role, content, providerName, model string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conversations[conversationID] = append(h.conversations[conversationID], provider.Message{Role: role, Content: content})
	return nil
}

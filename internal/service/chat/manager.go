package chat

import (
	"sync"

	"modelhub/internal/logger"
)

// Factory builds the orchestrator for a user
type Factory func(userID string) (*Orchestrator, error)

// Manager keeps one orchestrator per user
type Manager struct {
	factory Factory

	mu       sync.Mutex
	sessions map[string]*Orchestrator
}

// NewManager creates a Manager that builds sessions with factory
func NewManager(factory Factory) *Manager {
	return &Manager{
		factory:  factory,
		sessions: make(map[string]*Orchestrator),
	}
}

// Session returns the user's orchestrator, creating it on first use
func (m *Manager) Session(userID string) (*Orchestrator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if o, ok := m.sessions[userID]; ok {
		return o, nil
	}

	o, err := m.factory(userID)
	if err != nil {
		return nil, err
	}
	m.sessions[userID] = o
	logger.Log.WithField("user_id", userID).Debug("Created chat session")
	return o, nil
}

// Drop forgets a user's session, stopping any stream it has in flight
func (m *Manager) Drop(userID string) {
	m.mu.Lock()
	o, ok := m.sessions[userID]
	delete(m.sessions, userID)
	m.mu.Unlock()

	if ok {
		o.Stop()
	}
}

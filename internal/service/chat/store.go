package chat

import (
	"errors"
	"fmt"

	"modelhub/internal/repository/db"
)

// Selection is the chosen provider and model
type Selection struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// SelectionStore is the persistence boundary for a session's selection:
// loaded once when the orchestrator starts, saved on every change.
type SelectionStore interface {
	Load() (Selection, bool, error)
	Save(Selection) error
}

// DBSelectionStore persists one user's selection through db.Database
type DBSelectionStore struct {
	db     db.Database
	userID string
}

// NewDBSelectionStore binds a store to a user
func NewDBSelectionStore(database db.Database, userID string) *DBSelectionStore {
	return &DBSelectionStore{db: database, userID: userID}
}

func (s *DBSelectionStore) Load() (Selection, bool, error) {
	sel, err := s.db.GetSelection(s.userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return Selection{}, false, nil
		}
		return Selection{}, false, fmt.Errorf("failed to load selection: %w", err)
	}
	return Selection{Provider: sel.Provider, Model: sel.Model}, true, nil
}

func (s *DBSelectionStore) Save(sel Selection) error {
	if err := s.db.SaveSelection(s.userID, sel.Provider, sel.Model); err != nil {
		return fmt.Errorf("failed to save selection: %w", err)
	}
	return nil
}

// MemorySelectionStore keeps the selection in memory, for the CLI and tests
type MemorySelectionStore struct {
	sel   Selection
	saved bool
	Saves int
}

func (s *MemorySelectionStore) Load() (Selection, bool, error) {
	return s.sel, s.saved, nil
}

func (s *MemorySelectionStore) Save(sel Selection) error {
	s.sel = sel
	s.saved = true
	s.Saves++
	return nil
}

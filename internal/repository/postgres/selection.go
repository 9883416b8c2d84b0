package postgres

import (
	"database/sql"
	"fmt"

	"modelhub/internal/logger"
	"modelhub/internal/repository/db"

	"github.com/sirupsen/logrus"
)

// GetSelection returns the stored provider/model choice of a user
func (p *PostgresDB) GetSelection(userID string) (*db.Selection, error) {
	sel := db.Selection{UserID: userID}
	query := `SELECT provider, model, updated_at FROM selections WHERE user_id = $1`

	err := p.conn.QueryRow(query, userID).Scan(&sel.Provider, &sel.Model, &sel.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("selection %w", db.ErrNotFound)
		}
		return nil, fmt.Errorf("error retrieving selection: %w", err)
	}

	return &sel, nil
}

// SaveSelection upserts the provider/model choice of a user
func (p *PostgresDB) SaveSelection(userID, provider, model string) error {
	query := `
	INSERT INTO selections (user_id, provider, model)
	VALUES ($1, $2, $3)
	ON CONFLICT (user_id) DO UPDATE
	SET provider = EXCLUDED.provider, model = EXCLUDED.model, updated_at = CURRENT_TIMESTAMP
	`

	if _, err := p.conn.Exec(query, userID, provider, model); err != nil {
		return fmt.Errorf("error saving selection: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id":  userID,
		"provider": provider,
		"model":    model,
	}).Debug("Saved selection")
	return nil
}

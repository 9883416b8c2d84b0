package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"modelhub/internal/logger"
	"modelhub/internal/repository/db"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// CreateUser creates a new user with hashed password
func (p *PostgresDB) CreateUser(username, email, password string) (*db.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	userID := uuid.New().String()
	var createdAt string

	query := `
	INSERT INTO users (id, username, email, password_hash)
	VALUES ($1, $2, $3, $4)
	RETURNING id, created_at
	`

	err = p.conn.QueryRow(query, userID, username, email, string(hashedPassword)).Scan(&userID, &createdAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, db.ErrUsernameTaken
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{"username": username, "user_id": userID}).Info("Created new user")

	return &db.User{
		ID:           userID,
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    createdAt,
	}, nil
}

// GetUserByUsername retrieves a user by username
func (p *PostgresDB) GetUserByUsername(username string) (*db.User, error) {
	var user db.User
	query := `SELECT id, username, email, password_hash, created_at FROM users WHERE username = $1`

	err := p.conn.QueryRow(query, username).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user %w", db.ErrNotFound)
		}
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}

	return &user, nil
}

// SeedDemoUser creates the demo user if it doesn't exist
func SeedDemoUser(database db.Database) error {
	if _, err := database.GetUserByUsername("demo"); err == nil {
		logger.Log.Info("Demo user already exists, skipping seed")
		return nil
	}

	if _, err := database.CreateUser("demo", "demo@example.com", "demo123"); err != nil && !errors.Is(err, db.ErrUsernameTaken) {
		return fmt.Errorf("error seeding demo user: %w", err)
	}

	logger.Log.Info("Demo user seeded successfully")
	return nil
}

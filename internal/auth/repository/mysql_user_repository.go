package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/printops/printserver/internal/database"
	apperrors "github.com/printops/printserver/internal/errors"
	printerDomain "github.com/printops/printserver/internal/printer/domain"
)

// MySQLUserRepository implements user persistence for MySQL.
type MySQLUserRepository struct {
	db *sql.DB
}

// Get retrieves a user by username.
func (m *MySQLUserRepository) Get(
	ctx context.Context,
	username string,
) (*printerDomain.User, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT username, verifier, created_at FROM users WHERE username = ?`

	var user printerDomain.User

	err := querier.QueryRowContext(ctx, query, username).Scan(
		&user.Username,
		&user.Verifier,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, printerDomain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get user")
	}

	return &user, nil
}

// Create inserts a new user.
func (m *MySQLUserRepository) Create(ctx context.Context, user *printerDomain.User) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO users (username, verifier, created_at) VALUES (?, ?, ?)`

	_, err := querier.ExecContext(ctx, query, user.Username, user.Verifier, user.CreatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

// NewMySQLUserRepository creates a new MySQL user repository.
func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{db: db}
}

// Package repository implements data persistence for users and permission grants.
//
// Provides PostgreSQL and MySQL implementations with transaction support via
// database.GetTx(), plus a read-only file store mirroring the legacy deployment
// format (a passwords file and an access-list file).
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/printops/printserver/internal/database"
	apperrors "github.com/printops/printserver/internal/errors"
	printerDomain "github.com/printops/printserver/internal/printer/domain"
)

// PostgreSQLUserRepository implements user persistence for PostgreSQL.
type PostgreSQLUserRepository struct {
	db *sql.DB
}

// Get retrieves a user by username.
func (p *PostgreSQLUserRepository) Get(
	ctx context.Context,
	username string,
) (*printerDomain.User, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT username, verifier, created_at FROM users WHERE username = $1`

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
func (p *PostgreSQLUserRepository) Create(ctx context.Context, user *printerDomain.User) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO users (username, verifier, created_at) VALUES ($1, $2, $3)`

	_, err := querier.ExecContext(ctx, query, user.Username, user.Verifier, user.CreatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

// NewPostgreSQLUserRepository creates a new PostgreSQL user repository.
func NewPostgreSQLUserRepository(db *sql.DB) *PostgreSQLUserRepository {
	return &PostgreSQLUserRepository{db: db}
}

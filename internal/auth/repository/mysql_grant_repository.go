package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/printops/printserver/internal/database"
	apperrors "github.com/printops/printserver/internal/errors"
	printerDomain "github.com/printops/printserver/internal/printer/domain"
)

// MySQLGrantRepository implements grant persistence for MySQL.
// The operation set is stored as a JSON column.
type MySQLGrantRepository struct {
	db *sql.DB
}

// Get retrieves the grant on record for a username.
func (m *MySQLGrantRepository) Get(
	ctx context.Context,
	username string,
) (*printerDomain.Grant, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT username, operations, updated_at FROM grants WHERE username = ?`

	var grant printerDomain.Grant
	var operationsJSON []byte

	err := querier.QueryRowContext(ctx, query, username).Scan(
		&grant.Username,
		&operationsJSON,
		&grant.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "grant not found")
		}
		return nil, apperrors.Wrap(err, "failed to get grant")
	}

	if err := json.Unmarshal(operationsJSON, &grant.Operations); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode grant operations")
	}

	return &grant, nil
}

// Upsert replaces the grant set for a username.
func (m *MySQLGrantRepository) Upsert(ctx context.Context, grant *printerDomain.Grant) error {
	querier := database.GetTx(ctx, m.db)

	operationsJSON, err := json.Marshal(grant.Operations)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode grant operations")
	}

	query := `INSERT INTO grants (username, operations, updated_at)
			  VALUES (?, ?, ?)
			  ON DUPLICATE KEY UPDATE operations = VALUES(operations), updated_at = VALUES(updated_at)`

	_, err = querier.ExecContext(ctx, query, grant.Username, operationsJSON, grant.UpdatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert grant")
	}
	return nil
}

// NewMySQLGrantRepository creates a new MySQL grant repository.
func NewMySQLGrantRepository(db *sql.DB) *MySQLGrantRepository {
	return &MySQLGrantRepository{db: db}
}

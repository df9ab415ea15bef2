package audit

import (
	"context"
	"database/sql"

	"github.com/printops/printserver/internal/database"
	apperrors "github.com/printops/printserver/internal/errors"
)

// PostgreSQLRecorder persists audit records to PostgreSQL.
type PostgreSQLRecorder struct {
	db *sql.DB
}

// Record inserts the record into audit_logs.
func (p *PostgreSQLRecorder) Record(ctx context.Context, record *Record) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO audit_logs (id, request_id, username, operation, outcome, reason, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := querier.ExecContext(ctx, query,
		record.ID,
		record.RequestID,
		record.Username,
		string(record.Operation),
		string(record.Outcome),
		record.Reason,
		record.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to insert audit record")
	}
	return nil
}

// NewPostgreSQLRecorder creates a new PostgreSQL audit recorder.
func NewPostgreSQLRecorder(db *sql.DB) *PostgreSQLRecorder {
	return &PostgreSQLRecorder{db: db}
}

// MySQLRecorder persists audit records to MySQL.
type MySQLRecorder struct {
	db *sql.DB
}

// Record inserts the record into audit_logs.
func (m *MySQLRecorder) Record(ctx context.Context, record *Record) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO audit_logs (id, request_id, username, operation, outcome, reason, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(ctx, query,
		record.ID.String(),
		record.RequestID,
		record.Username,
		string(record.Operation),
		string(record.Outcome),
		record.Reason,
		record.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to insert audit record")
	}
	return nil
}

// NewMySQLRecorder creates a new MySQL audit recorder.
func NewMySQLRecorder(db *sql.DB) *MySQLRecorder {
	return &MySQLRecorder{db: db}
}

// Package audit records the terminal outcome of every privileged request.
// Each request produces exactly one record, whether it completed, was denied,
// or failed on an internal error. Records carry the failure cause for
// operators even when the caller was shown only a generic denial.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/printops/printserver/internal/errors"
	printerDomain "github.com/printops/printserver/internal/printer/domain"
)

// Outcome classifies the terminal state of a privileged request.
type Outcome string

const (
	// OutcomeCompleted means the gate passed and the backend call returned.
	OutcomeCompleted Outcome = "completed"

	// OutcomeCredentialDenied means the credential check rejected the caller:
	// wrong secret or unknown username (the record does not distinguish).
	OutcomeCredentialDenied Outcome = "credential_denied"

	// OutcomePermissionDenied means credentials were valid but the operation
	// is not in the caller's grant set.
	OutcomePermissionDenied Outcome = "permission_denied"

	// OutcomeHashingError means the stored verifier could not be processed.
	// The caller was shown a credential denial.
	OutcomeHashingError Outcome = "hashing_error"

	// OutcomeCredentialError means the credential store stayed unreachable
	// after retries. The caller was shown a credential denial.
	OutcomeCredentialError Outcome = "credential_error"

	// OutcomeAccessError means the permission store was unreachable. The
	// caller was shown a permission denial.
	OutcomeAccessError Outcome = "access_error"

	// OutcomeBackendError means the gate passed but the backend call failed.
	OutcomeBackendError Outcome = "backend_error"
)

// Level returns the slog severity an outcome is reported at: denials warn,
// internal failures error, success informs.
func (o Outcome) Level() slog.Level {
	switch o {
	case OutcomeCompleted:
		return slog.LevelInfo
	case OutcomeCredentialDenied, OutcomePermissionDenied, OutcomeHashingError:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// Record is one audit entry. Reason carries the operator-facing cause; it must
// never contain the caller's secret.
type Record struct {
	ID        uuid.UUID
	RequestID string
	Username  string
	Operation printerDomain.Operation
	Outcome   Outcome
	Reason    string
	CreatedAt time.Time
}

// NewRecord builds a Record with a fresh UUIDv7 and the current time.
func NewRecord(
	requestID, username string,
	operation printerDomain.Operation,
	outcome Outcome,
	reason string,
) (*Record, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to generate audit record id")
	}

	return &Record{
		ID:        id,
		RequestID: requestID,
		Username:  username,
		Operation: operation,
		Outcome:   outcome,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Recorder persists audit records. Implementations must not mutate the record.
type Recorder interface {
	Record(ctx context.Context, record *Record) error
}

// LogRecorder writes audit records to the structured log at the outcome's
// severity. It never fails, so it is safe as the sole recorder.
type LogRecorder struct {
	logger *slog.Logger
}

// NewLogRecorder creates a LogRecorder on the given logger.
func NewLogRecorder(logger *slog.Logger) *LogRecorder {
	return &LogRecorder{logger: logger}
}

// Record logs the record.
func (l *LogRecorder) Record(ctx context.Context, record *Record) error {
	l.logger.LogAttrs(ctx, record.Outcome.Level(), "audit",
		slog.String("audit_id", record.ID.String()),
		slog.String("request_id", record.RequestID),
		slog.String("username", record.Username),
		slog.String("operation", string(record.Operation)),
		slog.String("outcome", string(record.Outcome)),
		slog.String("reason", record.Reason),
	)
	return nil
}

// MultiRecorder fans a record out to every recorder, returning the first
// error after all have been attempted. A failing database recorder therefore
// never suppresses the log entry.
type MultiRecorder struct {
	recorders []Recorder
}

// NewMultiRecorder creates a MultiRecorder over the given recorders.
func NewMultiRecorder(recorders ...Recorder) *MultiRecorder {
	return &MultiRecorder{recorders: recorders}
}

// Record dispatches to every recorder.
func (m *MultiRecorder) Record(ctx context.Context, record *Record) error {
	var firstErr error
	for _, recorder := range m.recorders {
		if err := recorder.Record(ctx, record); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Package gate implements the dispatch pipeline every privileged request goes
// through: credential verification, then permission authorization, then a
// single forward to the printer backend. One pipeline serves every operation;
// per-operation behavior is confined to the backend call the transport layer
// supplies.
package gate

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/printops/printserver/internal/audit"
	authUsecase "github.com/printops/printserver/internal/auth/usecase"
	apperrors "github.com/printops/printserver/internal/errors"
	"github.com/printops/printserver/internal/metrics"
	printerDomain "github.com/printops/printserver/internal/printer/domain"
)

// Request is one privileged call as received from the transport. Secret is
// consumed by the credential check and never reaches the backend call.
type Request struct {
	Operation printerDomain.Operation
	Username  string
	Secret    string
	RequestID string
}

// BackendCall performs the already-authorized backend operation. The gate
// invokes it at most once, and only after both checks have passed.
type BackendCall func(ctx context.Context) (string, error)

// Dispatcher runs the gate pipeline. Callers only ever see
// ErrInvalidCredentials, ErrNotAuthorized, or a backend error; the precise
// failure cause goes to the audit trail instead.
type Dispatcher struct {
	credentials authUsecase.CredentialUseCase
	access      authUsecase.AccessUseCase
	recorder    audit.Recorder
	metrics     metrics.BusinessMetrics
	logger      *slog.Logger
}

// NewDispatcher creates a Dispatcher with the provided dependencies.
func NewDispatcher(
	credentials authUsecase.CredentialUseCase,
	access authUsecase.AccessUseCase,
	recorder audit.Recorder,
	m metrics.BusinessMetrics,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		credentials: credentials,
		access:      access,
		recorder:    recorder,
		metrics:     m,
		logger:      logger,
	}
}

// Dispatch runs the pipeline for one request. The ordering is fixed: a
// credential failure terminates the request before the permission store is
// consulted, and the backend call runs only after both checks pass. Every
// path through Dispatch produces exactly one audit record.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request, call BackendCall) (string, error) {
	start := time.Now()

	if err := d.credentials.Verify(ctx, req.Username, req.Secret); err != nil {
		outcome := credentialOutcome(err)
		d.record(ctx, req, outcome, err.Error())
		d.observe(ctx, req.Operation, start, "denied")
		return "", printerDomain.ErrInvalidCredentials
	}

	if err := d.access.Authorize(ctx, req.Username, req.Operation); err != nil {
		outcome := audit.OutcomePermissionDenied
		if errors.Is(err, printerDomain.ErrAccessCheck) {
			outcome = audit.OutcomeAccessError
		}
		d.record(ctx, req, outcome, err.Error())
		d.observe(ctx, req.Operation, start, "denied")
		return "", printerDomain.ErrNotAuthorized
	}

	result, err := call(ctx)
	if err != nil {
		d.record(ctx, req, audit.OutcomeBackendError, err.Error())
		d.observe(ctx, req.Operation, start, "error")
		if !errors.Is(err, printerDomain.ErrBackend) {
			err = apperrors.Wrap(printerDomain.ErrBackend, err.Error())
		}
		return "", err
	}

	d.record(ctx, req, audit.OutcomeCompleted, "")
	d.observe(ctx, req.Operation, start, "success")
	return result, nil
}

// credentialOutcome classifies a credential-check failure for the audit
// trail. The caller-facing error is ErrInvalidCredentials regardless.
func credentialOutcome(err error) audit.Outcome {
	switch {
	case errors.Is(err, printerDomain.ErrHashing):
		return audit.OutcomeHashingError
	case errors.Is(err, apperrors.ErrUnavailable):
		return audit.OutcomeCredentialError
	default:
		return audit.OutcomeCredentialDenied
	}
}

// record writes the single audit entry for a terminal state. An audit failure
// is an operator problem, not the caller's: it is logged and the request
// outcome stands.
func (d *Dispatcher) record(
	ctx context.Context,
	req Request,
	outcome audit.Outcome,
	reason string,
) {
	record, err := audit.NewRecord(req.RequestID, req.Username, req.Operation, outcome, reason)
	if err != nil {
		d.logger.ErrorContext(ctx, "failed to build audit record", "error", err)
		return
	}
	if err := d.recorder.Record(ctx, record); err != nil {
		d.logger.ErrorContext(ctx, "failed to persist audit record",
			"error", err, "audit_id", record.ID.String())
	}
}

func (d *Dispatcher) observe(
	ctx context.Context,
	operation printerDomain.Operation,
	start time.Time,
	status string,
) {
	d.metrics.RecordOperation(ctx, "printer", string(operation), status)
	d.metrics.RecordDuration(ctx, "printer", string(operation), time.Since(start), status)
}

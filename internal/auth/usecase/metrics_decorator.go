package usecase

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/printops/printserver/internal/errors"
	"github.com/printops/printserver/internal/metrics"
	printerDomain "github.com/printops/printserver/internal/printer/domain"
)

// statusFor maps a gate-check result to a metrics status label. Clean denials
// are "denied"; store outages and hashing failures are "error".
func statusFor(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, apperrors.ErrUnavailable), errors.Is(err, printerDomain.ErrHashing):
		return "error"
	default:
		return "denied"
	}
}

// credentialUseCaseWithMetrics decorates CredentialUseCase with metrics instrumentation.
type credentialUseCaseWithMetrics struct {
	next    CredentialUseCase
	metrics metrics.BusinessMetrics
}

// NewCredentialUseCaseWithMetrics wraps a CredentialUseCase with metrics recording.
func NewCredentialUseCaseWithMetrics(
	useCase CredentialUseCase,
	m metrics.BusinessMetrics,
) CredentialUseCase {
	return &credentialUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Verify records metrics for credential verifications.
func (c *credentialUseCaseWithMetrics) Verify(ctx context.Context, username, secret string) error {
	start := time.Now()
	err := c.next.Verify(ctx, username, secret)

	status := statusFor(err)
	c.metrics.RecordOperation(ctx, "gate", "verify_credentials", status)
	c.metrics.RecordDuration(ctx, "gate", "verify_credentials", time.Since(start), status)

	return err
}

// accessUseCaseWithMetrics decorates AccessUseCase with metrics instrumentation.
type accessUseCaseWithMetrics struct {
	next    AccessUseCase
	metrics metrics.BusinessMetrics
}

// NewAccessUseCaseWithMetrics wraps an AccessUseCase with metrics recording.
func NewAccessUseCaseWithMetrics(useCase AccessUseCase, m metrics.BusinessMetrics) AccessUseCase {
	return &accessUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Authorize records metrics for authorization decisions.
func (a *accessUseCaseWithMetrics) Authorize(
	ctx context.Context,
	username string,
	operation printerDomain.Operation,
) error {
	start := time.Now()
	err := a.next.Authorize(ctx, username, operation)

	status := statusFor(err)
	a.metrics.RecordOperation(ctx, "gate", "authorize", status)
	a.metrics.RecordDuration(ctx, "gate", "authorize", time.Since(start), status)

	return err
}

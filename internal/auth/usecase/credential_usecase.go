package usecase

import (
	"context"
	"errors"
	"time"

	authService "github.com/printops/printserver/internal/auth/service"
	apperrors "github.com/printops/printserver/internal/errors"
	printerDomain "github.com/printops/printserver/internal/printer/domain"
)

// credentialUseCase implements CredentialUseCase against a UserRepository and
// a SecretVerifier.
type credentialUseCase struct {
	userRepo      UserRepository
	verifier      authService.SecretVerifier
	retryAttempts int
	retryInterval time.Duration
}

// Verify checks a claimed (username, secret) pair.
//
// Security notes:
//   - An unknown username burns a verification against a decoy verifier and
//     returns the same ErrInvalidCredentials as a wrong secret, so neither the
//     error value nor the latency profile reveals whether the user exists.
//   - A corrupt stored verifier still denies; the hashing failure is reported
//     through the error chain for the audit trail, never to the caller.
//   - Transient store failures are retried; persistent ones deny with
//     ErrCredentialCheck in the chain so operators can tell outage from
//     wrong secret.
func (u *credentialUseCase) Verify(ctx context.Context, username, secret string) error {
	user, err := u.getUserWithRetry(ctx, username)
	if err != nil {
		if errors.Is(err, printerDomain.ErrUserNotFound) {
			// Same work as the known-user path.
			_, _ = u.verifier.VerifySecret(secret, u.verifier.DecoyVerifier())
			return printerDomain.ErrInvalidCredentials
		}
		return apperrors.Wrap(printerDomain.ErrCredentialCheck, err.Error())
	}

	ok, err := u.verifier.VerifySecret(secret, user.Verifier)
	if err != nil {
		// Wraps ErrHashing; the gate denies and audits the cause.
		return err
	}
	if !ok {
		return printerDomain.ErrInvalidCredentials
	}

	return nil
}

// getUserWithRetry retries transient store failures. Not-found is definitive
// and never retried.
func (u *credentialUseCase) getUserWithRetry(
	ctx context.Context,
	username string,
) (*printerDomain.User, error) {
	attempts := u.retryAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(u.retryInterval):
			}
		}

		user, err := u.userRepo.Get(ctx, username)
		if err == nil {
			return user, nil
		}
		if errors.Is(err, printerDomain.ErrUserNotFound) {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}

// NewCredentialUseCase creates a CredentialUseCase with the provided
// dependencies. retryAttempts and retryInterval bound the handling of
// transient credential-store failures.
func NewCredentialUseCase(
	userRepo UserRepository,
	verifier authService.SecretVerifier,
	retryAttempts int,
	retryInterval time.Duration,
) CredentialUseCase {
	return &credentialUseCase{
		userRepo:      userRepo,
		verifier:      verifier,
		retryAttempts: retryAttempts,
		retryInterval: retryInterval,
	}
}

// Package usecase implements the credential-verification and access-decision
// logic that gates every remote operation.
package usecase

import (
	"context"

	printerDomain "github.com/printops/printserver/internal/printer/domain"
)

// UserRepository is the durable username → stored-verifier mapping. Read on
// every authentication attempt, written only by out-of-band provisioning.
type UserRepository interface {
	// Get returns the user or printerDomain.ErrUserNotFound.
	Get(ctx context.Context, username string) (*printerDomain.User, error)

	// Create inserts a new user with a hashed verifier.
	Create(ctx context.Context, user *printerDomain.User) error
}

// GrantRepository is the durable username → operation-set mapping. Read on
// every authorized call; absence of a row means default-deny.
type GrantRepository interface {
	// Get returns the grant on record or errors.ErrNotFound.
	Get(ctx context.Context, username string) (*printerDomain.Grant, error)

	// Upsert replaces the grant set for a username.
	Upsert(ctx context.Context, grant *printerDomain.Grant) error
}

// CredentialUseCase decides whether a claimed (username, secret) pair is valid.
type CredentialUseCase interface {
	// Verify returns nil when the secret matches the stored verifier for the
	// username. Denials are printerDomain.ErrInvalidCredentials; a corrupt
	// stored entry additionally wraps printerDomain.ErrHashing, and a store
	// outage (after retries) wraps printerDomain.ErrCredentialCheck. Unknown
	// usernames take the same codepath and cost as a wrong secret.
	Verify(ctx context.Context, username, secret string) error
}

// AccessUseCase decides whether an authenticated user may invoke an operation.
type AccessUseCase interface {
	// Authorize returns nil iff the operation is in the grant set on record
	// for the username. Clean denials are printerDomain.ErrNotAuthorized;
	// a store outage wraps printerDomain.ErrAccessCheck. Default-deny: any
	// other condition resolves to denial.
	Authorize(ctx context.Context, username string, operation printerDomain.Operation) error
}

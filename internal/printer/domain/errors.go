package domain

import (
	"github.com/printops/printserver/internal/errors"
)

// Gate and provisioning errors.
var (
	// ErrInvalidCredentials is the caller-visible authentication denial. It is
	// returned for wrong secrets, unknown users, and corrupt verifier entries
	// alike so the failure cause is not observable from outside.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")

	// ErrNotAuthorized is the caller-visible authorization denial. It is never
	// reachable without first passing the credential check.
	ErrNotAuthorized = errors.Wrap(errors.ErrForbidden, "not authorized")

	// ErrUserNotFound indicates no user with the given username is provisioned.
	// Internal only; the gate folds it into ErrInvalidCredentials.
	ErrUserNotFound = errors.Wrap(errors.ErrNotFound, "user not found")

	// ErrHashing indicates the verifier transformation itself could not be
	// computed (corrupt stored entry, unsupported parameters). Operator-facing;
	// callers only ever see ErrInvalidCredentials.
	ErrHashing = errors.New("verifier computation failed")

	// ErrAccessCheck indicates the permission store was unreachable. The caller
	// sees a plain denial; the audit trail records the outage distinctly.
	ErrAccessCheck = errors.Wrap(errors.ErrUnavailable, "permission store unreachable")

	// ErrCredentialCheck indicates the credential store stayed unreachable
	// after the configured retries. Denial to the caller, outage to the audit
	// trail.
	ErrCredentialCheck = errors.Wrap(errors.ErrUnavailable, "credential store unreachable")

	// ErrUnknownOperation indicates an operation name outside the closed set.
	ErrUnknownOperation = errors.Wrap(errors.ErrInvalidInput, "unknown operation")

	// ErrBackend wraps failures bubbled from the printer backend after a
	// successful gate pass.
	ErrBackend = errors.Wrap(errors.ErrUpstream, "printer backend error")
)

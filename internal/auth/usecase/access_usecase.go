package usecase

import (
	"context"
	"errors"

	apperrors "github.com/printops/printserver/internal/errors"
	printerDomain "github.com/printops/printserver/internal/printer/domain"
)

// accessUseCase implements AccessUseCase against a GrantRepository.
type accessUseCase struct {
	grantRepo GrantRepository
}

// Authorize applies default-deny policy: the operation must be a member of the
// grant set currently on record for the username. For a fixed store snapshot
// the decision is a pure function of (username, operation).
func (a *accessUseCase) Authorize(
	ctx context.Context,
	username string,
	operation printerDomain.Operation,
) error {
	grant, err := a.grantRepo.Get(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// No grant record at all: plain denial.
			return printerDomain.ErrNotAuthorized
		}
		return apperrors.Wrap(printerDomain.ErrAccessCheck, err.Error())
	}

	if !grant.Allows(operation) {
		return printerDomain.ErrNotAuthorized
	}

	return nil
}

// NewAccessUseCase creates an AccessUseCase with the provided grant repository.
func NewAccessUseCase(grantRepo GrantRepository) AccessUseCase {
	return &accessUseCase{grantRepo: grantRepo}
}

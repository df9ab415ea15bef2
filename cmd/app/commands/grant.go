package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	authUsecase "github.com/printops/printserver/internal/auth/usecase"
	"github.com/printops/printserver/internal/database"
	apperrors "github.com/printops/printserver/internal/errors"
	printerDomain "github.com/printops/printserver/internal/printer/domain"
)

// RunGrant adds operations to a user's grant set. The read-modify-write runs
// in a transaction so concurrent provisioning never loses a grant.
func RunGrant(
	ctx context.Context,
	grantRepo authUsecase.GrantRepository,
	txManager database.TxManager,
	logger *slog.Logger,
	username, operationsStr string,
) error {
	operations, err := parseOperations(operationsStr)
	if err != nil {
		return err
	}

	err = txManager.WithTx(ctx, func(ctx context.Context) error {
		grant, err := grantRepo.Get(ctx, username)
		if err != nil {
			if !apperrors.Is(err, apperrors.ErrNotFound) {
				return err
			}
			grant = &printerDomain.Grant{Username: username}
		}

		changed := false
		for _, op := range operations {
			if grant.Add(op) {
				changed = true
			}
		}
		if !changed {
			return nil
		}

		grant.UpdatedAt = time.Now().UTC()
		return grantRepo.Upsert(ctx, grant)
	})
	if err != nil {
		return fmt.Errorf("failed to grant operations: %w", err)
	}

	logger.Info("operations granted",
		slog.String("username", username),
		slog.Any("operations", operations),
	)
	return nil
}

// RunRevoke removes operations from a user's grant set. Revoking an operation
// the user never had is a no-op, and the resulting grant set may be empty:
// absence already means denial.
func RunRevoke(
	ctx context.Context,
	grantRepo authUsecase.GrantRepository,
	txManager database.TxManager,
	logger *slog.Logger,
	username, operationsStr string,
) error {
	operations, err := parseOperations(operationsStr)
	if err != nil {
		return err
	}

	err = txManager.WithTx(ctx, func(ctx context.Context) error {
		grant, err := grantRepo.Get(ctx, username)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrNotFound) {
				// Nothing to revoke.
				return nil
			}
			return err
		}

		changed := false
		for _, op := range operations {
			if grant.Remove(op) {
				changed = true
			}
		}
		if !changed {
			return nil
		}

		grant.UpdatedAt = time.Now().UTC()
		return grantRepo.Upsert(ctx, grant)
	})
	if err != nil {
		return fmt.Errorf("failed to revoke operations: %w", err)
	}

	logger.Info("operations revoked",
		slog.String("username", username),
		slog.Any("operations", operations),
	)
	return nil
}

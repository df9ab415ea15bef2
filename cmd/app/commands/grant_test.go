package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/printops/printserver/internal/errors"
	printerDomain "github.com/printops/printserver/internal/printer/domain"
)

type mockGrantRepository struct {
	mock.Mock
}

func (m *mockGrantRepository) Get(ctx context.Context, username string) (*printerDomain.Grant, error) {
	args := m.Called(ctx, username)
	if grant := args.Get(0); grant != nil {
		return grant.(*printerDomain.Grant), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGrantRepository) Upsert(ctx context.Context, grant *printerDomain.Grant) error {
	args := m.Called(ctx, grant)
	return args.Error(0)
}

// passthroughTxManager runs the function without a real transaction.
type passthroughTxManager struct{}

func (passthroughTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func TestRunGrant(t *testing.T) {
	ctx := context.Background()

	t.Run("new-grant", func(t *testing.T) {
		repo := &mockGrantRepository{}
		repo.On("Get", mock.Anything, "alice").
			Return(nil, apperrors.Wrap(apperrors.ErrNotFound, "grant not found"))
		repo.On("Upsert", mock.Anything, mock.MatchedBy(func(grant *printerDomain.Grant) bool {
			return grant.Username == "alice" &&
				grant.Allows(printerDomain.OperationPrint) &&
				grant.Allows(printerDomain.OperationQueue) &&
				!grant.Allows(printerDomain.OperationRestart)
		})).Return(nil)

		err := RunGrant(ctx, repo, passthroughTxManager{}, discardLogger(), "alice", "print,queue")
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("extends-existing-grant", func(t *testing.T) {
		repo := &mockGrantRepository{}
		repo.On("Get", mock.Anything, "alice").Return(&printerDomain.Grant{
			Username:   "alice",
			Operations: []printerDomain.Operation{printerDomain.OperationPrint},
		}, nil)
		repo.On("Upsert", mock.Anything, mock.MatchedBy(func(grant *printerDomain.Grant) bool {
			return grant.Allows(printerDomain.OperationPrint) &&
				grant.Allows(printerDomain.OperationStatus)
		})).Return(nil)

		err := RunGrant(ctx, repo, passthroughTxManager{}, discardLogger(), "alice", "status")
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("no-change-skips-write", func(t *testing.T) {
		repo := &mockGrantRepository{}
		repo.On("Get", mock.Anything, "alice").Return(&printerDomain.Grant{
			Username:   "alice",
			Operations: []printerDomain.Operation{printerDomain.OperationPrint},
		}, nil)

		err := RunGrant(ctx, repo, passthroughTxManager{}, discardLogger(), "alice", "print")
		require.NoError(t, err)
		repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("invalid-operation", func(t *testing.T) {
		err := RunGrant(ctx, &mockGrantRepository{}, passthroughTxManager{}, discardLogger(),
			"alice", "print,reboot")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reboot")
	})

	t.Run("store-error", func(t *testing.T) {
		repo := &mockGrantRepository{}
		repo.On("Get", mock.Anything, "alice").Return(nil, assert.AnError)

		err := RunGrant(ctx, repo, passthroughTxManager{}, discardLogger(), "alice", "print")
		require.Error(t, err)
	})
}

func TestRunRevoke(t *testing.T) {
	ctx := context.Background()

	t.Run("removes-operations", func(t *testing.T) {
		repo := &mockGrantRepository{}
		repo.On("Get", mock.Anything, "alice").Return(&printerDomain.Grant{
			Username: "alice",
			Operations: []printerDomain.Operation{
				printerDomain.OperationPrint,
				printerDomain.OperationRestart,
			},
		}, nil)
		repo.On("Upsert", mock.Anything, mock.MatchedBy(func(grant *printerDomain.Grant) bool {
			return grant.Allows(printerDomain.OperationPrint) &&
				!grant.Allows(printerDomain.OperationRestart)
		})).Return(nil)

		err := RunRevoke(ctx, repo, passthroughTxManager{}, discardLogger(), "alice", "restart")
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("no-grant-on-record", func(t *testing.T) {
		repo := &mockGrantRepository{}
		repo.On("Get", mock.Anything, "ghost").
			Return(nil, apperrors.Wrap(apperrors.ErrNotFound, "grant not found"))

		err := RunRevoke(ctx, repo, passthroughTxManager{}, discardLogger(), "ghost", "print")
		require.NoError(t, err)
		repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("not-granted-is-noop", func(t *testing.T) {
		repo := &mockGrantRepository{}
		repo.On("Get", mock.Anything, "alice").Return(&printerDomain.Grant{
			Username:   "alice",
			Operations: []printerDomain.Operation{printerDomain.OperationPrint},
		}, nil)

		err := RunRevoke(ctx, repo, passthroughTxManager{}, discardLogger(), "alice", "restart")
		require.NoError(t, err)
		repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})
}

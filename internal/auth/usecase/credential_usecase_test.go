package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	apperrors "github.com/printops/printserver/internal/errors"
	printerDomain "github.com/printops/printserver/internal/printer/domain"
)

// mockUserRepository is a mock implementation of UserRepository for testing.
type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Get(ctx context.Context, username string) (*printerDomain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*printerDomain.User), args.Error(1)
}

func (m *mockUserRepository) Create(ctx context.Context, user *printerDomain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// mockSecretVerifier is a mock implementation of service.SecretVerifier for testing.
type mockSecretVerifier struct {
	mock.Mock
}

func (m *mockSecretVerifier) HashSecret(plainSecret string) (string, error) {
	args := m.Called(plainSecret)
	return args.String(0), args.Error(1)
}

func (m *mockSecretVerifier) VerifySecret(plainSecret, verifier string) (bool, error) {
	args := m.Called(plainSecret, verifier)
	return args.Bool(0), args.Error(1)
}

func (m *mockSecretVerifier) DecoyVerifier() string {
	args := m.Called()
	return args.String(0)
}

func TestCredentialUseCase_Verify(t *testing.T) {
	ctx := context.Background()

	storedVerifier := "$argon2id$v=19$m=65536,t=3,p=4$stored" //nolint:gosec // test fixture
	decoyVerifier := "$argon2id$v=19$m=65536,t=3,p=4$decoy"   //nolint:gosec // test fixture
	user := &printerDomain.User{Username: "alice", Verifier: storedVerifier}

	t.Run("Success_ValidSecret", func(t *testing.T) {
		userRepo := &mockUserRepository{}
		verifier := &mockSecretVerifier{}

		userRepo.On("Get", ctx, "alice").Return(user, nil).Once()
		verifier.On("VerifySecret", "s3cret", storedVerifier).Return(true, nil).Once()

		uc := NewCredentialUseCase(userRepo, verifier, 3, time.Millisecond)
		err := uc.Verify(ctx, "alice", "s3cret")

		assert.NoError(t, err)
		userRepo.AssertExpectations(t)
		verifier.AssertExpectations(t)
	})

	t.Run("Denied_WrongSecret", func(t *testing.T) {
		userRepo := &mockUserRepository{}
		verifier := &mockSecretVerifier{}

		userRepo.On("Get", ctx, "alice").Return(user, nil).Once()
		verifier.On("VerifySecret", "wrong", storedVerifier).Return(false, nil).Once()

		uc := NewCredentialUseCase(userRepo, verifier, 3, time.Millisecond)
		err := uc.Verify(ctx, "alice", "wrong")

		assert.ErrorIs(t, err, printerDomain.ErrInvalidCredentials)
	})

	t.Run("Denied_UnknownUser_BurnsDecoyComparison", func(t *testing.T) {
		userRepo := &mockUserRepository{}
		verifier := &mockSecretVerifier{}

		userRepo.On("Get", ctx, "eve").Return(nil, printerDomain.ErrUserNotFound).Once()
		verifier.On("DecoyVerifier").Return(decoyVerifier).Once()
		verifier.On("VerifySecret", "whatever", decoyVerifier).Return(false, nil).Once()

		uc := NewCredentialUseCase(userRepo, verifier, 3, time.Millisecond)
		err := uc.Verify(ctx, "eve", "whatever")

		// Same error as a wrong secret: the codepath never leaks existence.
		assert.ErrorIs(t, err, printerDomain.ErrInvalidCredentials)
		verifier.AssertExpectations(t)
	})

	t.Run("Denied_CorruptVerifier_ReportsHashing", func(t *testing.T) {
		userRepo := &mockUserRepository{}
		verifier := &mockSecretVerifier{}

		hashErr := apperrors.Wrap(printerDomain.ErrHashing, "malformed encoded hash")
		userRepo.On("Get", ctx, "alice").Return(user, nil).Once()
		verifier.On("VerifySecret", "s3cret", storedVerifier).Return(false, hashErr).Once()

		uc := NewCredentialUseCase(userRepo, verifier, 3, time.Millisecond)
		err := uc.Verify(ctx, "alice", "s3cret")

		assert.ErrorIs(t, err, printerDomain.ErrHashing)
	})

	t.Run("TransientStoreFailure_RetriesThenSucceeds", func(t *testing.T) {
		userRepo := &mockUserRepository{}
		verifier := &mockSecretVerifier{}

		userRepo.On("Get", ctx, "alice").Return(nil, assert.AnError).Twice()
		userRepo.On("Get", ctx, "alice").Return(user, nil).Once()
		verifier.On("VerifySecret", "s3cret", storedVerifier).Return(true, nil).Once()

		uc := NewCredentialUseCase(userRepo, verifier, 3, time.Millisecond)
		err := uc.Verify(ctx, "alice", "s3cret")

		assert.NoError(t, err)
		userRepo.AssertExpectations(t)
	})

	t.Run("PersistentStoreFailure_ReportsCredentialCheck", func(t *testing.T) {
		userRepo := &mockUserRepository{}
		verifier := &mockSecretVerifier{}

		userRepo.On("Get", ctx, "alice").Return(nil, assert.AnError).Times(3)

		uc := NewCredentialUseCase(userRepo, verifier, 3, time.Millisecond)
		err := uc.Verify(ctx, "alice", "s3cret")

		assert.ErrorIs(t, err, printerDomain.ErrCredentialCheck)
		assert.ErrorIs(t, err, apperrors.ErrUnavailable)
		userRepo.AssertExpectations(t)
	})

	t.Run("NotFoundIsNeverRetried", func(t *testing.T) {
		userRepo := &mockUserRepository{}
		verifier := &mockSecretVerifier{}

		userRepo.On("Get", ctx, "eve").Return(nil, printerDomain.ErrUserNotFound).Once()
		verifier.On("DecoyVerifier").Return(decoyVerifier).Once()
		verifier.On("VerifySecret", "x", decoyVerifier).Return(false, nil).Once()

		uc := NewCredentialUseCase(userRepo, verifier, 5, time.Millisecond)
		err := uc.Verify(ctx, "eve", "x")

		assert.ErrorIs(t, err, printerDomain.ErrInvalidCredentials)
		userRepo.AssertNumberOfCalls(t, "Get", 1)
	})

	t.Run("RepeatedDenials_NoStateMutation", func(t *testing.T) {
		userRepo := &mockUserRepository{}
		verifier := &mockSecretVerifier{}

		userRepo.On("Get", ctx, "bob").Return(user, nil).Times(5)
		verifier.On("VerifySecret", "wrong", storedVerifier).Return(false, nil).Times(5)

		uc := NewCredentialUseCase(userRepo, verifier, 3, time.Millisecond)
		for i := 0; i < 5; i++ {
			err := uc.Verify(ctx, "bob", "wrong")
			assert.ErrorIs(t, err, printerDomain.ErrInvalidCredentials)
		}

		// No lockout, no writes: the repository only ever saw reads.
		userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

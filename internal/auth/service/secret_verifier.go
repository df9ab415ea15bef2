package service

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/allisson/go-pwdhash"

	apperrors "github.com/printops/printserver/internal/errors"
	printerDomain "github.com/printops/printserver/internal/printer/domain"
)

// secretVerifier implements SecretVerifier using Argon2id.
type secretVerifier struct {
	hasher *pwdhash.PasswordHasher
	decoy  string
}

// HashSecret hashes a plain text secret using Argon2id.
func (s *secretVerifier) HashSecret(plainSecret string) (string, error) {
	verifier, err := s.hasher.Hash([]byte(plainSecret))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash secret")
	}
	return verifier, nil
}

// VerifySecret performs a constant-time comparison between a plain secret and
// a stored verifier. A comparison that cannot be computed wraps ErrHashing.
func (s *secretVerifier) VerifySecret(plainSecret, verifier string) (bool, error) {
	ok, err := s.hasher.Verify([]byte(plainSecret), verifier)
	if err != nil {
		return false, apperrors.Wrap(printerDomain.ErrHashing, err.Error())
	}
	return ok, nil
}

// DecoyVerifier returns the verifier of a random secret generated at
// construction. No caller-supplied secret can ever match it.
func (s *secretVerifier) DecoyVerifier() string {
	return s.decoy
}

// NewSecretVerifier creates a SecretVerifier using Argon2id with the Moderate
// policy, a balance between security and per-call verification cost.
func NewSecretVerifier() (SecretVerifier, error) {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create password hasher")
	}

	// 32 random bytes nobody knows; hashing them yields the decoy verifier.
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to generate decoy secret")
	}

	decoy, err := hasher.Hash([]byte(base64.URLEncoding.EncodeToString(randomBytes)))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to hash decoy secret")
	}

	return &secretVerifier{
		hasher: hasher,
		decoy:  decoy,
	}, nil
}

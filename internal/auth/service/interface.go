// Package service provides the credential-verification service.
//
// Secrets are never stored or reconstructed; the service hashes them with
// Argon2id and compares verifiers in constant time.
package service

// SecretVerifier defines hashing and verification of user secrets.
// Implementations must use a salted one-way transform and constant-time
// comparison to resist timing attacks.
type SecretVerifier interface {
	// HashSecret produces a stored verifier for a plain secret. Used by the
	// out-of-band provisioning path, never by the gate.
	HashSecret(plainSecret string) (verifier string, err error)

	// VerifySecret recomputes the transform of plainSecret with the salt and
	// parameters recorded in verifier and compares in constant time. A wrong
	// secret is (false, nil); an error means the transform itself could not
	// run (corrupt verifier, unsupported parameters) and always accompanies
	// a false result.
	VerifySecret(plainSecret, verifier string) (bool, error)

	// DecoyVerifier returns a well-formed verifier of an unguessable secret.
	// The gate burns a verification against it when a username is unknown so
	// that path is indistinguishable from a wrong secret.
	DecoyVerifier() string
}

package application

import (
	"context"
	"time"
)

// Ports consumed by the services. Concrete implementations live in
// pkg/helpers (hashing, signing) and pkg/mailer (notification); tests
// substitute fakes.

// PasswordHasher performs one-way password hashing and constant-time
// verification.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(plain, hash string) bool
}

// TokenSigner issues signed access tokens and generates/hashes the opaque
// secrets used for refresh and verification tokens.
type TokenSigner interface {
	IssueAccessToken(userID string, roles []string) (token string, expiresAt time.Time, err error)
	NewOpaqueSecret() (string, error)
	HashSecret(secret string) string
}

// Notifier delivers the raw verification secret out of band.
type Notifier interface {
	SendVerificationEmail(ctx context.Context, email, rawSecret string) error
}

package entity

import (
	"time"
)

// User is the aggregate root for the identity domain
// Passwords and token secrets are stored hashed; raw secrets never persist.
//
// In a real-world app, prefer value objects for Email, etc.
type User struct {
	ID                string
	Email             string
	PasswordHash      string
	FirstName         string
	LastName          string
	CreatedAt         time.Time
	Verified          bool
	Roles             []string
	VerificationToken *VerificationToken
	RefreshTokens     []RefreshToken
}

// VerificationToken proves control of the registered email address.
// Present only while verification is pending.
type VerificationToken struct {
	Hash      string
	CreatedAt time.Time
	ExpireAt  time.Time
}

func (t *VerificationToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpireAt)
}

// RefreshToken is one active device session. The raw secret is handed to the
// caller exactly once at issuance; only its hash lives here.
type RefreshToken struct {
	ID        string
	Hash      string
	CreatedAt time.Time
	ExpireAt  time.Time
	DeviceIP  string
}

func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpireAt)
}

// RefreshTokenByHash returns the session entry matching the hashed secret,
// or nil when no entry matches.
func (u *User) RefreshTokenByHash(hash string) *RefreshToken {
	for i := range u.RefreshTokens {
		if u.RefreshTokens[i].Hash == hash {
			return &u.RefreshTokens[i]
		}
	}
	return nil
}

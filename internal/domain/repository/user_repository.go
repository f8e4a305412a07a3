package repository

import (
	"context"
	"errors"
	"time"

	"github.com/marketbay/user-service/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no user (or token entry) matches the lookup.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned by Create when the email is already taken.
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserRepository defines the interface for user-related database operations.
//
// Mutations are targeted rather than whole-aggregate overwrites so that
// concurrent callers (multiple devices, concurrent role grants) cannot lose
// each other's updates: each method maps to a single atomic statement on one
// row or one sub-collection entry.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByVerificationTokenHash(ctx context.Context, hash string) (*entity.User, error)
	GetByRefreshTokenHash(ctx context.Context, hash string) (*entity.User, error)
	CountUsers(ctx context.Context) (int64, error)

	// SetVerificationToken overwrites the pending verification token.
	SetVerificationToken(ctx context.Context, userID string, t entity.VerificationToken) error
	// MarkVerified flips verified to true and clears the verification token.
	MarkVerified(ctx context.Context, userID string) error

	// AddRole grants a role if absent. Returns false with nil error when the
	// user already held the role (no row written).
	AddRole(ctx context.Context, userID string, role string) (bool, error)

	// AppendRefreshToken records a new device session.
	AppendRefreshToken(ctx context.Context, userID string, t entity.RefreshToken) error
	// RotateRefreshToken swaps the secret hash of one session entry,
	// conditional on the old hash still being current. Returns ErrNotFound
	// when the entry is gone or was rotated concurrently.
	RotateRefreshToken(ctx context.Context, tokenID, oldHash, newHash string, createdAt, expireAt time.Time) error
	// DeleteRefreshTokenByHash removes one session. Returns ErrNotFound when
	// no entry matches.
	DeleteRefreshTokenByHash(ctx context.Context, hash string) error
}

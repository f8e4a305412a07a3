package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/marketbay/user-service/internal/domain/entity"
	repo "github.com/marketbay/user-service/internal/domain/repository"
	"github.com/marketbay/user-service/pkg/helpers"
)

// AuthService owns the session lifecycle: registration, email verification,
// credential login, refresh-token rotation and per-device logout. All durable
// state lives in the repository; the service itself is stateless.
type AuthService struct {
	Repo         repo.UserRepository
	Hasher       PasswordHasher
	Tokens       TokenSigner
	Notifier     Notifier
	Redis        *redis.Client
	Logger       *logrus.Logger
	ES           *elasticsearch.Client
	ESUsersIndex string

	VerificationTTL time.Duration
	RefreshTTL      time.Duration
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

func sessionKey(userID string) string {
	return "user:session:" + userID
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func NewAuthService(r repo.UserRepository, hasher PasswordHasher, tokens TokenSigner, notifier Notifier, rdb *redis.Client, logger *logrus.Logger, es *elasticsearch.Client, esUsersIndex string, verificationTTL, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		Repo:            r,
		Hasher:          hasher,
		Tokens:          tokens,
		Notifier:        notifier,
		Redis:           rdb,
		Logger:          logger,
		ES:              es,
		ESUsersIndex:    esUsersIndex,
		VerificationTTL: verificationTTL,
		RefreshTTL:      refreshTTL,
	}
}

// Register creates an unverified account and queues the verification email.
// The very first account in the store receives the full role set.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) error {
	email := normalizeEmail(in.Email)

	if existing, err := s.Repo.GetByEmail(ctx, email); err != nil && !errors.Is(err, repo.ErrNotFound) {
		return err
	} else if existing != nil {
		return ErrDuplicateEmail
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return err
	}

	rawSecret, err := s.Tokens.NewOpaqueSecret()
	if err != nil {
		return err
	}

	now := time.Now()
	count, err := s.Repo.CountUsers(ctx)
	if err != nil {
		return err
	}

	u := &entity.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		CreatedAt:    now,
		Verified:     false,
		Roles:        entity.DefaultRoles(count == 0),
		VerificationToken: &entity.VerificationToken{
			Hash:      s.Tokens.HashSecret(rawSecret),
			CreatedAt: now,
			ExpireAt:  now.Add(s.VerificationTTL),
		},
	}

	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return ErrDuplicateEmail
		}
		return err
	}

	if err := s.Notifier.SendVerificationEmail(ctx, email, rawSecret); err != nil {
		// The account exists; delivery can be retried via the resend endpoint.
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("verification email enqueue failed")
		}
	}

	s.indexUser(ctx, u)
	return nil
}

// Login verifies credentials and opens a new device session. Unknown email
// and wrong password both map to ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password, clientIP string) (TokenPair, error) {
	u, err := s.Repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, err
	}
	if !s.Hasher.Compare(password, u.PasswordHash) {
		return TokenPair{}, ErrInvalidCredentials
	}
	if !u.Verified {
		return TokenPair{}, ErrNotVerified
	}

	access, aexp, err := s.Tokens.IssueAccessToken(u.ID, u.Roles)
	if err != nil {
		return TokenPair{}, err
	}

	rawSecret, err := s.Tokens.NewOpaqueSecret()
	if err != nil {
		return TokenPair{}, err
	}
	now := time.Now()
	rt := entity.RefreshToken{
		ID:        uuid.NewString(),
		Hash:      s.Tokens.HashSecret(rawSecret),
		CreatedAt: now,
		ExpireAt:  now.Add(s.RefreshTTL),
		DeviceIP:  clientIP,
	}
	if err := s.Repo.AppendRefreshToken(ctx, u.ID, rt); err != nil {
		return TokenPair{}, err
	}

	s.cacheSession(ctx, u)

	return TokenPair{
		AccessToken:        access,
		AccessTokenExpiry:  aexp,
		RefreshToken:       rawSecret,
		RefreshTokenExpiry: rt.ExpireAt,
	}, nil
}

// RequestEmailVerification reissues the verification token. Unknown emails
// return silently so the endpoint does not reveal account existence.
func (s *AuthService) RequestEmailVerification(ctx context.Context, email string) error {
	u, err := s.Repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil
		}
		return err
	}

	rawSecret, err := s.Tokens.NewOpaqueSecret()
	if err != nil {
		return err
	}
	now := time.Now()
	t := entity.VerificationToken{
		Hash:      s.Tokens.HashSecret(rawSecret),
		CreatedAt: now,
		ExpireAt:  now.Add(s.VerificationTTL),
	}
	if err := s.Repo.SetVerificationToken(ctx, u.ID, t); err != nil {
		return err
	}
	return s.Notifier.SendVerificationEmail(ctx, u.Email, rawSecret)
}

// VerifyEmail consumes a raw verification secret. Verification flips exactly
// once; the pending token is cleared on success.
func (s *AuthService) VerifyEmail(ctx context.Context, rawToken string) error {
	hash := s.Tokens.HashSecret(rawToken)
	u, err := s.Repo.GetByVerificationTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrInvalidVerificationToken
		}
		return err
	}
	if u.VerificationToken == nil {
		return ErrInvalidVerificationToken
	}
	if u.VerificationToken.Expired(time.Now()) {
		return ErrVerificationTokenExpired
	}
	if err := s.Repo.MarkVerified(ctx, u.ID); err != nil {
		return err
	}
	u.Verified = true
	u.VerificationToken = nil
	s.indexUser(ctx, u)
	return nil
}

// Refresh rotates one device session: the matched entry keeps its identity
// and device binding but its secret is replaced, so the old secret becomes
// permanently unusable. Other devices' sessions are untouched.
func (s *AuthService) Refresh(ctx context.Context, rawRefreshToken, clientIP string) (TokenPair, error) {
	oldHash := s.Tokens.HashSecret(rawRefreshToken)
	u, err := s.Repo.GetByRefreshTokenHash(ctx, oldHash)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return TokenPair{}, ErrInvalidRefreshToken
		}
		return TokenPair{}, err
	}

	stored := u.RefreshTokenByHash(oldHash)
	if stored == nil || stored.Expired(time.Now()) {
		return TokenPair{}, ErrExpiredRefreshToken
	}

	access, aexp, err := s.Tokens.IssueAccessToken(u.ID, u.Roles)
	if err != nil {
		return TokenPair{}, err
	}
	rawSecret, err := s.Tokens.NewOpaqueSecret()
	if err != nil {
		return TokenPair{}, err
	}

	now := time.Now()
	rexp := now.Add(s.RefreshTTL)
	if err := s.Repo.RotateRefreshToken(ctx, stored.ID, oldHash, s.Tokens.HashSecret(rawSecret), now, rexp); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			// Entry vanished or was rotated concurrently since the read.
			return TokenPair{}, ErrExpiredRefreshToken
		}
		return TokenPair{}, err
	}

	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "device_ip": clientIP}).Debug("refresh token rotated")
	}

	return TokenPair{
		AccessToken:        access,
		AccessTokenExpiry:  aexp,
		RefreshToken:       rawSecret,
		RefreshTokenExpiry: rexp,
	}, nil
}

// Logout revokes the single session bound to the presented secret. Unknown
// secrets return silently, which makes the operation idempotent.
func (s *AuthService) Logout(ctx context.Context, rawRefreshToken string) error {
	hash := s.Tokens.HashSecret(rawRefreshToken)
	u, err := s.Repo.GetByRefreshTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil
		}
		return err
	}
	if err := s.Repo.DeleteRefreshTokenByHash(ctx, hash); err != nil && !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	if len(u.RefreshTokens) <= 1 {
		// Last device session closed; drop the cached snapshot.
		s.dropSessionCache(ctx, u.ID)
	}
	return nil
}

type sessionSnapshot struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	LoggedIn  bool      `json:"logged_in"`
	CreatedAt time.Time `json:"created_at"`
}

// cacheSession keeps a non-authoritative snapshot of the logged-in user in
// Redis for dashboards; session validity itself is decided by the store.
func (s *AuthService) cacheSession(ctx context.Context, u *entity.User) {
	if s.Redis == nil {
		return
	}
	key := sessionKey(u.ID)
	snap := sessionSnapshot{
		UserID:    u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		LoggedIn:  true,
		CreatedAt: time.Now().UTC(),
	}
	if err := helpers.RedisSetJSON(ctx, s.Redis, key, snap, 24*time.Hour); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("key", key).Warn("session cache write failed")
	}
}

func (s *AuthService) dropSessionCache(ctx context.Context, userID string) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, sessionKey(userID)); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("session cache delete failed")
	}
}

package application

import (
	"context"
	"sync"
	"time"

	"github.com/marketbay/user-service/internal/domain/entity"
	"github.com/marketbay/user-service/internal/domain/repository"
)

// memRepo is an in-memory UserRepository with the same targeted-mutation
// semantics as the Postgres implementation, plus a write counter so tests
// can assert that no-op grants do not touch storage.
type memRepo struct {
	mu     sync.Mutex
	users  map[string]*entity.User
	writes int
}

func newMemRepo() *memRepo {
	return &memRepo{users: map[string]*entity.User{}}
}

func cloneUser(u *entity.User) *entity.User {
	c := *u
	c.Roles = append([]string(nil), u.Roles...)
	if u.VerificationToken != nil {
		vt := *u.VerificationToken
		c.VerificationToken = &vt
	}
	c.RefreshTokens = append([]entity.RefreshToken(nil), u.RefreshTokens...)
	return &c
}

func (r *memRepo) writeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}

func (r *memRepo) Create(ctx context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	r.users[u.ID] = cloneUser(u)
	r.writes++
	return nil
}

func (r *memRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, repository.ErrNotFound
}

func (r *memRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memRepo) GetByVerificationTokenHash(ctx context.Context, hash string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.VerificationToken != nil && u.VerificationToken.Hash == hash {
			return cloneUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memRepo) GetByRefreshTokenHash(ctx context.Context, hash string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.RefreshTokenByHash(hash) != nil {
			return cloneUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memRepo) CountUsers(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func (r *memRepo) SetVerificationToken(ctx context.Context, userID string, t entity.VerificationToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	vt := t
	u.VerificationToken = &vt
	r.writes++
	return nil
}

func (r *memRepo) MarkVerified(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.Verified = true
	u.VerificationToken = nil
	r.writes++
	return nil
}

func (r *memRepo) AddRole(ctx context.Context, userID string, role string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return false, nil
	}
	if !u.AddRole(role) {
		return false, nil
	}
	r.writes++
	return true, nil
}

func (r *memRepo) AppendRefreshToken(ctx context.Context, userID string, t entity.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.RefreshTokens = append(u.RefreshTokens, t)
	r.writes++
	return nil
}

func (r *memRepo) RotateRefreshToken(ctx context.Context, tokenID, oldHash, newHash string, createdAt, expireAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		for i := range u.RefreshTokens {
			t := &u.RefreshTokens[i]
			if t.ID == tokenID && t.Hash == oldHash {
				t.Hash = newHash
				t.CreatedAt = createdAt
				t.ExpireAt = expireAt
				r.writes++
				return nil
			}
		}
	}
	return repository.ErrNotFound
}

func (r *memRepo) DeleteRefreshTokenByHash(ctx context.Context, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		for i := range u.RefreshTokens {
			if u.RefreshTokens[i].Hash == hash {
				u.RefreshTokens = append(u.RefreshTokens[:i], u.RefreshTokens[i+1:]...)
				r.writes++
				return nil
			}
		}
	}
	return repository.ErrNotFound
}

// expireVerificationToken backdates the pending token for expiry tests.
func (r *memRepo) expireVerificationToken(userEmail string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == userEmail && u.VerificationToken != nil {
			u.VerificationToken.ExpireAt = time.Now().Add(-time.Minute)
		}
	}
}

// expireRefreshTokens backdates every session for expiry tests.
func (r *memRepo) expireRefreshTokens(userEmail string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == userEmail {
			for i := range u.RefreshTokens {
				u.RefreshTokens[i].ExpireAt = time.Now().Add(-time.Minute)
			}
		}
	}
}

// fakeNotifier records the raw secrets handed to it so tests can complete
// the verification flow.
type fakeNotifier struct {
	mu      sync.Mutex
	sent    []string // raw secrets in send order
	sentTo  []string
	failure error
}

func (n *fakeNotifier) SendVerificationEmail(ctx context.Context, email, rawSecret string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failure != nil {
		return n.failure
	}
	n.sent = append(n.sent, rawSecret)
	n.sentTo = append(n.sentTo, email)
	return nil
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

func (n *fakeNotifier) lastSecret() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return ""
	}
	return n.sent[len(n.sent)-1]
}

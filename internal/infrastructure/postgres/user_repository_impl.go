package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marketbay/user-service/internal/domain/entity"
	"github.com/marketbay/user-service/internal/domain/repository"
)

// UserRepository persists the user aggregate across two tables: users and
// user_refresh_tokens. Keeping one row per device session is what makes
// rotation and revocation single-row atomic statements.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, email, password_hash, first_name, last_name, verified, roles,
	verification_token_hash, verification_token_created_at, verification_token_expire_at, created_at`

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	var vtHash *string
	var vtCreated, vtExpire *time.Time
	if t := u.VerificationToken; t != nil {
		vtHash, vtCreated, vtExpire = &t.Hash, &t.CreatedAt, &t.ExpireAt
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, first_name, last_name, verified, roles,
			verification_token_hash, verification_token_created_at, verification_token_expire_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Verified, u.Roles,
		vtHash, vtCreated, vtExpire, u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return repository.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepository) GetByVerificationTokenHash(ctx context.Context, hash string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE verification_token_hash = $1`, hash)
}

func (r *UserRepository) GetByRefreshTokenHash(ctx context.Context, hash string) (*entity.User, error) {
	return r.getOne(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE id = (SELECT user_id FROM user_refresh_tokens WHERE token_hash = $1)
	`, hash)
}

func (r *UserRepository) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&n)
	return n, err
}

func (r *UserRepository) SetVerificationToken(ctx context.Context, userID string, t entity.VerificationToken) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET verification_token_hash = $2, verification_token_created_at = $3, verification_token_expire_at = $4
		WHERE id = $1
	`, userID, t.Hash, t.CreatedAt, t.ExpireAt)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) MarkVerified(ctx context.Context, userID string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET verified = TRUE,
			verification_token_hash = NULL,
			verification_token_created_at = NULL,
			verification_token_expire_at = NULL
		WHERE id = $1
	`, userID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) AddRole(ctx context.Context, userID string, role string) (bool, error) {
	// Guarded append keeps the grant idempotent under concurrent callers.
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET roles = array_append(roles, $2)
		WHERE id = $1 AND NOT ($2 = ANY(roles))
	`, userID, role)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

func (r *UserRepository) AppendRefreshToken(ctx context.Context, userID string, t entity.RefreshToken) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_refresh_tokens (id, user_id, token_hash, created_at, expire_at, device_ip)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, t.ID, userID, t.Hash, t.CreatedAt, t.ExpireAt, t.DeviceIP)
	return err
}

func (r *UserRepository) RotateRefreshToken(ctx context.Context, tokenID, oldHash, newHash string, createdAt, expireAt time.Time) error {
	// Conditioning on the old hash makes rotation a compare-and-swap: when
	// two rotations of the same entry race, exactly one wins.
	res, err := r.pool.Exec(ctx, `
		UPDATE user_refresh_tokens
		SET token_hash = $3, created_at = $4, expire_at = $5
		WHERE id = $1 AND token_hash = $2
	`, tokenID, oldHash, newHash, createdAt, expireAt)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) DeleteRefreshTokenByHash(ctx context.Context, hash string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM user_refresh_tokens WHERE token_hash = $1`, hash)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*entity.User, error) {
	u := &entity.User{}
	var vtHash *string
	var vtCreated, vtExpire *time.Time

	row := r.pool.QueryRow(ctx, query, arg)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.Verified, &u.Roles, &vtHash, &vtCreated, &vtExpire, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if vtHash != nil {
		u.VerificationToken = &entity.VerificationToken{Hash: *vtHash, CreatedAt: *vtCreated, ExpireAt: *vtExpire}
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, token_hash, created_at, expire_at, device_ip
		FROM user_refresh_tokens
		WHERE user_id = $1
		ORDER BY created_at
	`, u.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var t entity.RefreshToken
		if err := rows.Scan(&t.ID, &t.Hash, &t.CreatedAt, &t.ExpireAt, &t.DeviceIP); err != nil {
			return nil, err
		}
		u.RefreshTokens = append(u.RefreshTokens, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return u, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)

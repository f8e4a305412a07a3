package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketbay/user-service/internal/domain/entity"
)

func seedUser(t *testing.T, repo *memRepo, id string, roles ...string) {
	t.Helper()
	err := repo.Create(context.Background(), &entity.User{
		ID:           id,
		Email:        id + "@example.com",
		PasswordHash: "irrelevant",
		CreatedAt:    time.Now(),
		Verified:     true,
		Roles:        roles,
	})
	require.NoError(t, err)
}

func TestApplyForSeller(t *testing.T) {
	repo := newMemRepo()
	svc := NewUserService(repo, nil, nil, "")
	ctx := context.Background()
	seedUser(t, repo, "u1", entity.RoleBuyer)

	require.NoError(t, svc.ApplyForSeller(ctx, "u1"))
	u, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, u.HasRole(entity.RoleSeller))
	assert.True(t, u.HasRole(entity.RoleBuyer))
}

func TestApplyForSellerUnknownUser(t *testing.T) {
	svc := NewUserService(newMemRepo(), nil, nil, "")
	err := svc.ApplyForSeller(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestApplyForSellerIdempotentWithoutWrite(t *testing.T) {
	repo := newMemRepo()
	svc := NewUserService(repo, nil, nil, "")
	ctx := context.Background()
	seedUser(t, repo, "u1", entity.RoleBuyer, entity.RoleSeller)

	before := repo.writeCount()
	require.NoError(t, svc.ApplyForSeller(ctx, "u1"))
	assert.Equal(t, before, repo.writeCount(), "grant of a held role must not write")

	u, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{entity.RoleBuyer, entity.RoleSeller}, u.Roles, "no duplicate role entries")
}

func TestPromoteToAdmin(t *testing.T) {
	repo := newMemRepo()
	svc := NewUserService(repo, nil, nil, "")
	ctx := context.Background()
	seedUser(t, repo, "root", entity.RoleAdmin, entity.RoleBuyer)
	seedUser(t, repo, "target", entity.RoleBuyer)

	require.NoError(t, svc.PromoteToAdmin(ctx, "target", "root"))
	u, err := repo.GetByID(ctx, "target")
	require.NoError(t, err)
	assert.True(t, u.HasRole(entity.RoleAdmin))
}

func TestPromoteToAdminRequiresAdminRequester(t *testing.T) {
	repo := newMemRepo()
	svc := NewUserService(repo, nil, nil, "")
	ctx := context.Background()
	seedUser(t, repo, "plain", entity.RoleBuyer, entity.RoleSeller)
	seedUser(t, repo, "target", entity.RoleBuyer)

	err := svc.PromoteToAdmin(ctx, "target", "plain")
	assert.ErrorIs(t, err, ErrUnauthorized)

	err = svc.PromoteToAdmin(ctx, "target", "nobody")
	assert.ErrorIs(t, err, ErrUnauthorized)

	u, getErr := repo.GetByID(ctx, "target")
	require.NoError(t, getErr)
	assert.False(t, u.HasRole(entity.RoleAdmin))
}

func TestPromoteToAdminUnknownTarget(t *testing.T) {
	repo := newMemRepo()
	svc := NewUserService(repo, nil, nil, "")
	seedUser(t, repo, "root", entity.RoleAdmin)

	err := svc.PromoteToAdmin(context.Background(), "missing", "root")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestPromoteToAdminIdempotentWithoutWrite(t *testing.T) {
	repo := newMemRepo()
	svc := NewUserService(repo, nil, nil, "")
	ctx := context.Background()
	seedUser(t, repo, "root", entity.RoleAdmin)
	seedUser(t, repo, "target", entity.RoleAdmin, entity.RoleBuyer)

	before := repo.writeCount()
	require.NoError(t, svc.PromoteToAdmin(ctx, "target", "root"))
	assert.Equal(t, before, repo.writeCount())
}

func TestGetProfile(t *testing.T) {
	repo := newMemRepo()
	svc := NewUserService(repo, nil, nil, "")
	seedUser(t, repo, "u1", entity.RoleBuyer)

	u, err := svc.GetProfile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1@example.com", u.Email)

	_, err = svc.GetProfile(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

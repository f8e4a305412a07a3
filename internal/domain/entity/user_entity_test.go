package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultRoles(t *testing.T) {
	assert.ElementsMatch(t, []string{RoleAdmin, RoleSeller, RoleBuyer}, DefaultRoles(true))
	assert.Equal(t, []string{RoleBuyer}, DefaultRoles(false))
}

func TestAddRoleIdempotent(t *testing.T) {
	u := &User{Roles: []string{RoleBuyer}}

	assert.True(t, u.AddRole(RoleSeller))
	assert.False(t, u.AddRole(RoleSeller))
	assert.Equal(t, []string{RoleBuyer, RoleSeller}, u.Roles)

	assert.True(t, u.HasRole(RoleSeller))
	assert.False(t, u.HasRole(RoleAdmin))
}

func TestRoleSetCollapsesDuplicates(t *testing.T) {
	u := &User{Roles: []string{RoleBuyer, RoleBuyer, RoleSeller}}
	assert.Equal(t, 2, u.RoleSet().Cardinality())
}

func TestRefreshTokenByHash(t *testing.T) {
	u := &User{RefreshTokens: []RefreshToken{
		{ID: "a", Hash: "hash-a"},
		{ID: "b", Hash: "hash-b"},
	}}

	got := u.RefreshTokenByHash("hash-b")
	if assert.NotNil(t, got) {
		assert.Equal(t, "b", got.ID)
	}
	assert.Nil(t, u.RefreshTokenByHash("hash-c"))
}

func TestTokenExpiry(t *testing.T) {
	now := time.Now()
	live := RefreshToken{ExpireAt: now.Add(time.Hour)}
	stale := RefreshToken{ExpireAt: now.Add(-time.Hour)}
	boundary := VerificationToken{ExpireAt: now}

	assert.False(t, live.Expired(now))
	assert.True(t, stale.Expired(now))
	// expiry is inclusive: a token is dead the instant it expires
	assert.True(t, boundary.Expired(now))
}

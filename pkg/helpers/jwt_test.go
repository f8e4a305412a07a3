package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	m := NewJWTManager("secret", 5*time.Minute)

	token, exp, err := m.IssueAccessToken("user-1", []string{"buyer", "seller"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), exp, 5*time.Second)

	claims, err := m.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, []string{"buyer", "seller"}, claims.Roles)
}

func TestParseAccessTokenRejectsWrongKey(t *testing.T) {
	m := NewJWTManager("secret-a", time.Minute)
	other := NewJWTManager("secret-b", time.Minute)

	token, _, err := m.IssueAccessToken("user-1", nil)
	require.NoError(t, err)

	_, err = other.ParseAccessToken(token)
	assert.Error(t, err)
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	m := NewJWTManager("secret", -time.Minute)

	token, _, err := m.IssueAccessToken("user-1", nil)
	require.NoError(t, err)

	_, err = m.ParseAccessToken(token)
	assert.Error(t, err)
}

func TestNewOpaqueSecret(t *testing.T) {
	m := NewJWTManager("secret", time.Minute)

	a, err := m.NewOpaqueSecret()
	require.NoError(t, err)
	b, err := m.NewOpaqueSecret()
	require.NoError(t, err)

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestHashSecret(t *testing.T) {
	m := NewJWTManager("secret", time.Minute)

	assert.Equal(t, m.HashSecret("s1"), m.HashSecret("s1"))
	assert.NotEqual(t, m.HashSecret("s1"), m.HashSecret("s2"))
	assert.Len(t, m.HashSecret("s1"), 64) // sha256 hex
}

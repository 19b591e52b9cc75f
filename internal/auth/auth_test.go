package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_VerifyRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	ok, err := VerifyPassword(hash, "correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword(hash, "wrong password")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPassword_RejectsEmpty(t *testing.T) {
	_, err := HashPassword("")
	assert.Error(t, err)
}

func TestHashPassword_RejectsOversized(t *testing.T) {
	_, err := HashPassword(strings.Repeat("a", maxPasswordLength+1))
	assert.Error(t, err)
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	ok, err := VerifyPassword("not-a-hash", "password")
	require.NoError(t, err)
	assert.False(t, ok)
}

func testKeyHex() string {
	return strings.Repeat("ab", 32)
}

func TestTokenService_AccessTokenRoundTrip(t *testing.T) {
	svc, err := NewTokenService(testKeyHex(), 15*time.Minute, 30*24*time.Hour)
	require.NoError(t, err)

	user := &domain.User{
		Email: "reader@example.com",
		Role:  domain.RoleCustomer,
	}
	user.ID = "user-abc123"

	token, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, "v4.local."))

	claims, err := svc.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-abc123", claims.UserID)
	assert.Equal(t, "reader@example.com", claims.Email)
	assert.Equal(t, domain.RoleCustomer, claims.Role)
	assert.False(t, claims.IsAdmin())
}

func TestTokenService_AdminClaims(t *testing.T) {
	svc, err := NewTokenService(testKeyHex(), 15*time.Minute, 30*24*time.Hour)
	require.NoError(t, err)

	admin := &domain.User{Email: "admin@example.com", Role: domain.RoleAdmin}
	admin.ID = "user-admin"

	token, err := svc.GenerateAccessToken(admin)
	require.NoError(t, err)

	claims, err := svc.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin())
}

func TestTokenService_ExpiredToken(t *testing.T) {
	svc, err := NewTokenService(testKeyHex(), -time.Minute, 30*24*time.Hour)
	require.NoError(t, err)

	user := &domain.User{Email: "reader@example.com", Role: domain.RoleCustomer}
	user.ID = "user-abc123"

	token, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(token)
	assert.Error(t, err)
}

func TestTokenService_WrongKey(t *testing.T) {
	svc1, err := NewTokenService(testKeyHex(), 15*time.Minute, time.Hour)
	require.NoError(t, err)
	svc2, err := NewTokenService(strings.Repeat("cd", 32), 15*time.Minute, time.Hour)
	require.NoError(t, err)

	user := &domain.User{Email: "reader@example.com", Role: domain.RoleCustomer}
	user.ID = "user-abc123"

	token, err := svc1.GenerateAccessToken(user)
	require.NoError(t, err)

	_, err = svc2.VerifyAccessToken(token)
	assert.Error(t, err)
}

func TestNewTokenService_BadKey(t *testing.T) {
	_, err := NewTokenService("too-short", time.Minute, time.Hour)
	assert.Error(t, err)

	_, err = NewTokenService(strings.Repeat("zz", 32), time.Minute, time.Hour)
	assert.Error(t, err)
}

func TestRefreshToken(t *testing.T) {
	svc, err := NewTokenService(testKeyHex(), time.Minute, time.Hour)
	require.NoError(t, err)

	token, err := svc.GenerateRefreshToken()
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	other, err := svc.GenerateRefreshToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)

	assert.Equal(t, HashRefreshToken(token), HashRefreshToken(token))
	assert.NotEqual(t, HashRefreshToken(token), HashRefreshToken(other))
}

func TestLoadOrGenerateKey(t *testing.T) {
	dir := t.TempDir()

	key, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Len(t, key, keyLength)

	// Second load returns the same key.
	again, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Equal(t, key, again)
}

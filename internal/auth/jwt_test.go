package auth

import (
	"testing"
	"time"

	"github.com/odessarp/dashboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTManager() *JWTManager {
	return NewJWTManager("test-secret-key-that-is-long-enough", 24*time.Hour)
}

func TestGenerateAndValidateToken(t *testing.T) {
	mgr := newTestJWTManager()
	p := domain.Principal{DiscordID: "123456789012345678", Email: "neo@example.com", Username: "neo", Avatar: "https://cdn/a.png"}

	token, err := mgr.GenerateToken(p)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := mgr.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, p, claims.Principal())
	assert.Equal(t, issuer, claims.Issuer)
}

func TestEmptyPrincipalRejected(t *testing.T) {
	_, err := newTestJWTManager().GenerateToken(domain.Principal{})
	assert.Error(t, err)
}

func TestInvalidSecretRejected(t *testing.T) {
	mgr1 := NewJWTManager("secret-1", 24*time.Hour)
	mgr2 := NewJWTManager("secret-2", 24*time.Hour)

	token, err := mgr1.GenerateToken(domain.Principal{DiscordID: "1"})
	require.NoError(t, err)

	_, err = mgr2.ValidateToken(token)
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	mgr := NewJWTManager("secret", 1*time.Millisecond)

	token, err := mgr.GenerateToken(domain.Principal{DiscordID: "1"})
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	_, err = mgr.ValidateToken(token)
	assert.Error(t, err)
}

func TestMalformedTokenRejected(t *testing.T) {
	_, err := newTestJWTManager().ValidateToken("not.a.jwt")
	assert.Error(t, err)
}

package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func parseToken(t *testing.T, tokenString, secret string) (*Claims, error) {
	t.Helper()
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	return claims, err
}

func TestGenerateToken_RoundTrip(t *testing.T) {
	tokenString, err := GenerateToken(42, "nova", "nova@example.com", "producer", testSecret, "portal-unk", time.Hour)
	require.NoError(t, err)

	claims, err := parseToken(t, tokenString, testSecret)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.Equal(t, "nova", claims.Username)
	assert.Equal(t, "nova@example.com", claims.Email)
	assert.Equal(t, "producer", claims.Role)
	assert.Equal(t, "portal-unk", claims.Issuer)
}

func TestGenerateToken_WrongSecretFails(t *testing.T) {
	tokenString, err := GenerateToken(42, "nova", "nova@example.com", "dj", testSecret, "portal-unk", time.Hour)
	require.NoError(t, err)

	_, err = parseToken(t, tokenString, "another-secret")
	assert.Error(t, err)
}

func TestGenerateToken_ExpiredTokenFails(t *testing.T) {
	tokenString, err := GenerateToken(42, "nova", "nova@example.com", "dj", testSecret, "portal-unk", -time.Minute)
	require.NoError(t, err)

	_, err = parseToken(t, tokenString, testSecret)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestJWTTokenVerifier_Verify(t *testing.T) {
	v := NewJWTTokenVerifier("test-secret", "platform")

	tokenString := signToken(t, "test-secret", jwt.MapClaims{
		"sub":      "acct-1",
		"username": "punter01",
		"iss":      "platform",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})

	claims, err := v.Verify(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "acct-1", claims.AccountID)
	assert.Equal(t, "punter01", claims.Username)
}

func TestJWTTokenVerifier_Verify_WrongSecret(t *testing.T) {
	v := NewJWTTokenVerifier("test-secret", "")

	tokenString := signToken(t, "other-secret", jwt.MapClaims{
		"sub": "acct-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	claims, err := v.Verify(tokenString)
	assert.Nil(t, claims)
	assert.Error(t, err)
}

func TestJWTTokenVerifier_Verify_Expired(t *testing.T) {
	v := NewJWTTokenVerifier("test-secret", "")

	tokenString := signToken(t, "test-secret", jwt.MapClaims{
		"sub": "acct-1",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})

	claims, err := v.Verify(tokenString)
	assert.Nil(t, claims)
	assert.Error(t, err)
}

func TestJWTTokenVerifier_Verify_WrongIssuer(t *testing.T) {
	v := NewJWTTokenVerifier("test-secret", "platform")

	tokenString := signToken(t, "test-secret", jwt.MapClaims{
		"sub": "acct-1",
		"iss": "somewhere-else",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	claims, err := v.Verify(tokenString)
	assert.Nil(t, claims)
	assert.Error(t, err)
}

func TestJWTTokenVerifier_Verify_MissingSubject(t *testing.T) {
	v := NewJWTTokenVerifier("test-secret", "")

	tokenString := signToken(t, "test-secret", jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	claims, err := v.Verify(tokenString)
	assert.Nil(t, claims)
	assert.Error(t, err)
}

package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)

	token, err := m.GenerateToken("3f1c5e1e-8a55-4c8e-9a51-7d7b1f9c2a10", "asha", "asha@example.com")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "3f1c5e1e-8a55-4c8e-9a51-7d7b1f9c2a10", claims.UserID)
	assert.Equal(t, "asha@example.com", claims.Email)
	assert.Equal(t, time.Hour, m.GetTokenDuration())
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)

	other, err := NewJWTManager("other-secret", time.Hour).GenerateToken("u1", "", "")
	require.NoError(t, err)
	_, err = m.ValidateToken(other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := NewJWTManager("secret", -time.Minute).GenerateToken("u1", "", "")
	require.NoError(t, err)
	_, err = m.ValidateToken(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = m.ValidateToken(noUser)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

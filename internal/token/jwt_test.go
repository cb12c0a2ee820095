package token

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imagify/imagify-server/internal/model"
)

func TestJWT_RoundTrip(t *testing.T) {
	manager := NewJWT("secret", 15*time.Minute)
	userID := uuid.New()

	tokenString, err := manager.GenerateAccessToken(userID, "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	claims, err := manager.ParseAccessToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
}

func TestJWT_Expired(t *testing.T) {
	manager := NewJWT("secret", -time.Minute)

	tokenString, err := manager.GenerateAccessToken(uuid.New(), "alice@example.com")
	require.NoError(t, err)

	_, err = manager.ParseAccessToken(tokenString)
	assert.ErrorIs(t, err, model.ErrTokenExpired)
}

func TestJWT_WrongSecret(t *testing.T) {
	manager := NewJWT("secret", 15*time.Minute)
	other := NewJWT("other", 15*time.Minute)

	tokenString, err := manager.GenerateAccessToken(uuid.New(), "alice@example.com")
	require.NoError(t, err)

	_, err = other.ParseAccessToken(tokenString)
	assert.ErrorIs(t, err, model.ErrTokenInvalid)
}

func TestJWT_Garbage(t *testing.T) {
	manager := NewJWT("secret", 15*time.Minute)

	_, err := manager.ParseAccessToken("not-a-token")
	assert.ErrorIs(t, err, model.ErrTokenInvalid)
}

func TestNewRefreshToken_Unique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		value := NewRefreshToken()
		require.NotEmpty(t, value)
		assert.False(t, seen[value])
		seen[value] = true
	}
}

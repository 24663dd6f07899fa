package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHMACService_AccessAndRefresh(t *testing.T) {
	svc := NewHMACService("access-secret", "refresh-secret", time.Minute, time.Hour)
	id := uuid.New()

	access, err := svc.GenerateAccessToken(id, "rita@example.com", "Rita")
	require.NoError(t, err)
	claims, err := svc.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "Rita", claims.Name)
	assert.False(t, svc.IsRefreshToken(claims))

	refresh, err := svc.GenerateRefreshToken(id)
	require.NoError(t, err)
	claims, err = svc.ValidateToken(refresh)
	require.NoError(t, err)
	assert.True(t, svc.IsRefreshToken(claims))
}

func TestHMACService_Expired(t *testing.T) {
	svc := NewHMACService("a", "r", time.Minute, time.Hour)
	past := time.Now().Add(-2 * time.Hour)
	svc.now = func() time.Time { return past }

	tok, err := svc.GenerateAccessToken(uuid.New(), "x@example.com", "")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)

	_, err = svc.ValidateToken("garbage")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestHMACService_SecretsAreNotInterchangeable(t *testing.T) {
	svc := NewHMACService("access-secret", "refresh-secret", time.Minute, time.Hour)
	other := NewHMACService("refresh-secret", "access-secret", time.Minute, time.Hour)

	tok, err := other.GenerateAccessToken(uuid.New(), "x@example.com", "")
	require.NoError(t, err)
	_, err = svc.ValidateToken(tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestHMACService_MissingSecret(t *testing.T) {
	svc := NewHMACService("", "refresh-secret", time.Minute, time.Hour)
	_, err := svc.GenerateAccessToken(uuid.New(), "x@example.com", "")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = svc.GenerateRefreshToken(uuid.New())
	assert.NoError(t, err)
}

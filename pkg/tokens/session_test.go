package tokens

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-session-secret")

func TestNewSession_RoundTrip(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	token, claims, err := NewSession(userID, "vendor", time.Hour, secret)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsed, err := SessionClaimsFromToken(token, secret)
	require.NoError(t, err)

	assert.Equal(t, userID.String(), parsed.Subject)
	assert.Equal(t, "vendor", parsed.Role)
	assert.Equal(t, claims.ID, parsed.ID)
	assert.NotEmpty(t, parsed.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), parsed.ExpiresAt.Time, 2*time.Second)
}

func TestSessionClaimsFromToken_WrongSecret(t *testing.T) {
	t.Parallel()

	token, _, err := NewSession(uuid.New(), "user", time.Hour, secret)
	require.NoError(t, err)

	_, err = SessionClaimsFromToken(token, []byte("other"))
	require.Error(t, err)
}

func TestSessionClaimsFromToken_Expired(t *testing.T) {
	t.Parallel()

	token, _, err := NewSession(uuid.New(), "user", -time.Minute, secret)
	require.NoError(t, err)

	_, err = SessionClaimsFromToken(token, secret)
	require.Error(t, err)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestSessionClaimsFromToken_Garbage(t *testing.T) {
	t.Parallel()

	_, err := SessionClaimsFromToken("not-a-jwt", secret)
	require.Error(t, err)
}

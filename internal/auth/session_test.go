package auth

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartleave/leave-composer/internal/model"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, subject string, role string, expiry time.Duration) string {
	t.Helper()
	claims := sessionClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestVerify(t *testing.T) {
	verifier := NewVerifier(testSecret)

	t.Run("valid token", func(t *testing.T) {
		token := signToken(t, testSecret, "7", "TEAM_MEMBER", time.Hour)
		sess, err := verifier.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, int64(7), sess.UserID)
		assert.Equal(t, model.RoleTeamMember, sess.Role)
		assert.Equal(t, token, sess.Token)
	})

	t.Run("legacy role alias is normalised", func(t *testing.T) {
		sess, err := verifier.Verify(signToken(t, testSecret, "7", "TEAM_LEADER", time.Hour))
		require.NoError(t, err)
		assert.Equal(t, model.RoleTeamLead, sess.Role)
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := verifier.Verify(signToken(t, "other-secret", "7", "TEAM_MEMBER", time.Hour))
		assert.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("expired token", func(t *testing.T) {
		_, err := verifier.Verify(signToken(t, testSecret, "7", "TEAM_MEMBER", -time.Hour))
		assert.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("non numeric subject", func(t *testing.T) {
		_, err := verifier.Verify(signToken(t, testSecret, "alice", "TEAM_MEMBER", time.Hour))
		assert.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := verifier.Verify(signToken(t, testSecret, "7", "SUPERUSER", time.Hour))
		assert.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := verifier.Verify("not-a-token")
		assert.ErrorIs(t, err, ErrNoSession)
	})
}

func TestFromRequest(t *testing.T) {
	verifier := NewVerifier(testSecret)

	newRequest := func(t *testing.T, authorization string) *http.Request {
		req, err := http.NewRequest(http.MethodGet, "http://localhost/users/leave-balance/7", nil)
		require.NoError(t, err)
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}
		return req
	}

	t.Run("own resource", func(t *testing.T) {
		token := signToken(t, testSecret, "7", "TEAM_MEMBER", time.Hour)
		sess, err := verifier.FromRequest(newRequest(t, "Bearer "+token), 7)
		require.NoError(t, err)
		assert.Equal(t, int64(7), sess.UserID)
	})

	t.Run("someone else's resource", func(t *testing.T) {
		token := signToken(t, testSecret, "7", "TEAM_MEMBER", time.Hour)
		_, err := verifier.FromRequest(newRequest(t, "Bearer "+token), 8)
		assert.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("manager can act on a report", func(t *testing.T) {
		token := signToken(t, testSecret, "2", "HR_MANAGER", time.Hour)
		sess, err := verifier.FromRequest(newRequest(t, "Bearer "+token), 7)
		require.NoError(t, err)
		assert.Equal(t, int64(2), sess.UserID)
	})

	t.Run("missing header", func(t *testing.T) {
		_, err := verifier.FromRequest(newRequest(t, ""), 7)
		assert.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("not a bearer scheme", func(t *testing.T) {
		_, err := verifier.FromRequest(newRequest(t, "Basic abc"), 7)
		assert.ErrorIs(t, err, ErrNoSession)
	})
}

func TestSessionValid(t *testing.T) {
	assert.False(t, Session{}.Valid())
	assert.False(t, Session{UserID: 7}.Valid())
	assert.False(t, Session{Token: "t"}.Valid())
	assert.True(t, Session{UserID: 7, Token: "t"}.Valid())
}

package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exam-planner/backend/internal/models"
)

func mintToken(t *testing.T, role models.UserRole, subject string, expiresAt *time.Time) string {
	t.Helper()
	claims := &models.JWTClaims{
		UserID: subject,
		Role:   role,
	}
	claims.Subject = subject
	if expiresAt != nil {
		claims.ExpiresAt = jwt.NewNumericDate(*expiresAt)
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestResolveValidToken(t *testing.T) {
	now := time.Now().UTC()
	exp := now.Add(time.Hour)
	raw := mintToken(t, models.RoleCoordinator, "user-1", &exp)

	sess, err := Resolve(raw, now)
	require.NoError(t, err)
	assert.Equal(t, "user-1", sess.SubjectID)
	assert.Equal(t, models.RoleCoordinator, sess.Role)
	assert.WithinDuration(t, exp, sess.ExpiresAt, time.Second)
	assert.True(t, sess.Valid(now))
}

func TestResolveExpiredToken(t *testing.T) {
	now := time.Now().UTC()
	exp := now.Add(-time.Second)
	raw := mintToken(t, models.RoleGroupLeader, "user-1", &exp)

	_, err := Resolve(raw, now)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestResolveMissingExpiry(t *testing.T) {
	raw := mintToken(t, models.RoleSecretary, "user-1", nil)

	_, err := Resolve(raw, time.Now().UTC())
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestResolveUnknownRole(t *testing.T) {
	now := time.Now().UTC()
	exp := now.Add(time.Hour)
	raw := mintToken(t, models.UserRole("STUDENT"), "user-1", &exp)

	_, err := Resolve(raw, now)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestResolveMissingSubject(t *testing.T) {
	now := time.Now().UTC()
	exp := now.Add(time.Hour)
	raw := mintToken(t, models.RoleAdmin, "", &exp)

	_, err := Resolve(raw, now)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestResolveMalformedToken(t *testing.T) {
	for _, raw := range []string{"", "not-a-token", "a.b", "a.b.c"} {
		_, err := Resolve(raw, time.Now().UTC())
		assert.ErrorIs(t, err, ErrInvalidSession)
	}
}

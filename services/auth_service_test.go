package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuth(t *testing.T) *authService {
	t.Helper()
	hash, err := HashPassword("kicker")
	require.NoError(t, err)
	return NewAuthService(hash, "test-secret").(*authService)
}

func TestLoginIssuesOrganizerToken(t *testing.T) {
	auth := newTestAuth(t)

	token, expiresAt, err := auth.Login(context.Background(), "kicker")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(TokenTTL), expiresAt, time.Minute)

	claims, err := auth.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, RoleOrganizer, claims["role"])
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	auth := newTestAuth(t)
	_, _, err := auth.Login(context.Background(), "foosball")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestParseTokenRejects(t *testing.T) {
	auth := newTestAuth(t)

	_, err := auth.ParseToken("not-a-token")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	other := NewAuthService("", "another-secret").(*authService)
	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": RoleOrganizer,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString(other.jwtSecret)
	require.NoError(t, err)
	_, err = auth.ParseToken(foreign)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	auth.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	expired, _, err := auth.Login(context.Background(), "kicker")
	require.NoError(t, err)
	_, err = auth.ParseToken(expired)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	viewer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": "viewer",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString(auth.jwtSecret)
	require.NoError(t, err)
	_, err = auth.ParseToken(viewer)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

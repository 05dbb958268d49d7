package auth_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stationwatch/stationwatch/internal/auth"
)

func newJWTService() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SigningKey: "test-signing-key-not-for-production",
		Issuer:     "https://api.test.local",
		Audience:   "stationwatch-api",
	})
}

func TestGenerateAndValidateAdminToken(t *testing.T) {
	svc := newJWTService()

	token, expiresAt, err := svc.GenerateAdminToken("ops@example.org")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(auth.TokenExpiry), expiresAt, 5*time.Second)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ops@example.org", claims.Subject)
	assert.Equal(t, auth.RoleAdmin, claims.Role)
}

func TestValidateTokenWrongKey(t *testing.T) {
	token, _, err := newJWTService().GenerateAdminToken("ops@example.org")
	require.NoError(t, err)

	other := auth.NewJWTService(auth.JWTConfig{
		SigningKey: "a-different-key",
		Issuer:     "https://api.test.local",
		Audience:   "stationwatch-api",
	})

	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestValidateTokenWrongAudience(t *testing.T) {
	token, _, err := newJWTService().GenerateAdminToken("ops@example.org")
	require.NoError(t, err)

	other := auth.NewJWTService(auth.JWTConfig{
		SigningKey: "test-signing-key-not-for-production",
		Issuer:     "https://api.test.local",
		Audience:   "some-other-api",
	})

	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestValidateGarbageToken(t *testing.T) {
	_, err := newJWTService().ValidateToken("not.a.jwt")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestService_IssueAdminToken(t *testing.T) {
	svc := auth.NewService(auth.ServiceConfig{
		JWT:      newJWTService(),
		AdminKey: "super-secret-admin-key",
		Logger:   zerolog.Nop(),
	})

	token, _, err := svc.IssueAdminToken("super-secret-admin-key", "ops@example.org")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, claims.Role)
}

func TestService_IssueAdminTokenBadKey(t *testing.T) {
	svc := auth.NewService(auth.ServiceConfig{
		JWT:      newJWTService(),
		AdminKey: "super-secret-admin-key",
		Logger:   zerolog.Nop(),
	})

	_, _, err := svc.IssueAdminToken("wrong-key", "ops@example.org")
	assert.ErrorIs(t, err, auth.ErrBadCredentials)
}

func TestService_IssueAdminTokenEmptyConfiguredKey(t *testing.T) {
	svc := auth.NewService(auth.ServiceConfig{
		JWT:    newJWTService(),
		Logger: zerolog.Nop(),
	})

	// An unset admin key disables issuance rather than allowing anything.
	_, _, err := svc.IssueAdminToken("", "ops@example.org")
	assert.ErrorIs(t, err, auth.ErrBadCredentials)
}

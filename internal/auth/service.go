package auth

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// ErrBadCredentials is returned when the presented API key does not match.
var ErrBadCredentials = errors.New("bad credentials")

// ServiceConfig holds configuration for the auth service.
type ServiceConfig struct {
	JWT *JWTService

	// AdminKey is the shared secret exchanged for admin tokens.
	AdminKey string

	Logger zerolog.Logger
}

// Service exchanges the admin API key for short-lived bearer tokens and
// validates tokens on incoming requests.
type Service struct {
	jwt      *JWTService
	adminKey []byte
	logger   zerolog.Logger
}

// NewService creates a new auth service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		jwt:      cfg.JWT,
		adminKey: []byte(cfg.AdminKey),
		logger:   cfg.Logger,
	}
}

// IssueAdminToken validates the API key and returns a signed admin token.
func (s *Service) IssueAdminToken(apiKey, subject string) (string, time.Time, error) {
	if len(s.adminKey) == 0 ||
		subtle.ConstantTimeCompare([]byte(apiKey), s.adminKey) != 1 {
		s.logger.Warn().Str("subject", subject).Msg("admin token request with bad credentials")
		return "", time.Time{}, ErrBadCredentials
	}

	token, expiresAt, err := s.jwt.GenerateAdminToken(subject)
	if err != nil {
		return "", time.Time{}, err
	}

	s.logger.Info().Str("subject", subject).Time("expires_at", expiresAt).Msg("admin token issued")
	return token, expiresAt, nil
}

// ValidateToken validates a bearer token and returns its claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	return s.jwt.ValidateToken(tokenString)
}

// Package session resolves the claims carried by a self-contained access
// token without contacting the auth backend. Signature verification is the
// JWT middleware's job; Resolve serves consumers that only need the locally
// trusted role and expiry, such as audit tagging and tooling.
package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/exam-planner/backend/internal/models"
	appErrors "github.com/exam-planner/backend/pkg/errors"
)

// Session is the immutable identity derived from a decoded token.
type Session struct {
	SubjectID string
	Role      models.UserRole
	ExpiresAt time.Time
}

// ErrInvalidSession marks every resolution failure: absent, undecodable,
// incomplete or expired tokens all collapse into it so callers can redirect
// to re-authentication uniformly.
var ErrInvalidSession = appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired session")

// Resolve decodes the raw token and returns the session it describes. It
// never panics on malformed input.
func Resolve(rawToken string, now time.Time) (*Session, error) {
	if rawToken == "" {
		return nil, ErrInvalidSession
	}

	parser := jwt.NewParser()
	claims := &models.JWTClaims{}
	if _, _, err := parser.ParseUnverified(rawToken, claims); err != nil {
		return nil, ErrInvalidSession
	}

	if claims.Role == "" || !models.KnownRole(claims.Role) {
		return nil, ErrInvalidSession
	}
	if claims.ExpiresAt == nil {
		return nil, ErrInvalidSession
	}
	if now.After(claims.ExpiresAt.Time) {
		return nil, ErrInvalidSession
	}

	subject := claims.UserID
	if subject == "" {
		subject = claims.Subject
	}
	if subject == "" {
		return nil, ErrInvalidSession
	}

	return &Session{
		SubjectID: subject,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Valid reports whether the session is still usable at the given instant.
func (s *Session) Valid(now time.Time) bool {
	if s == nil {
		return false
	}
	return now.Before(s.ExpiresAt)
}

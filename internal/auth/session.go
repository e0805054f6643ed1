package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session is the authenticated identity attached to a request context.
type Session struct {
	UserID    uuid.UUID
	Email     string
	Role      string
	TokenID   string
	ExpiresAt time.Time
}

type sessionKey struct{}

// ErrNoSession is returned when the context carries no authenticated session.
var ErrNoSession = errors.New("no authenticated session")

// SessionFromClaims converts validated access token claims into a Session.
func SessionFromClaims(claims *Claims) (*Session, error) {
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, errors.New("invalid user_id claim")
	}
	session := &Session{
		UserID:  userID,
		Email:   claims.Email,
		Role:    claims.Role,
		TokenID: claims.ID,
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext returns the session stored by WithSession.
func SessionFromContext(ctx context.Context) (*Session, error) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	if !ok || s == nil {
		return nil, ErrNoSession
	}
	return s, nil
}

// TTL returns the remaining lifetime of the session's access token.
func (s *Session) TTL(now time.Time) time.Duration {
	if s.ExpiresAt.IsZero() {
		return AccessTokenExpiry
	}
	if ttl := s.ExpiresAt.Sub(now); ttl > 0 {
		return ttl
	}
	return 0
}

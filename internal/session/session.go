// Package session keeps the server-side record of which user, if any, is
// logged in on a browser session. Sessions are keyed by an opaque token
// carried in a cookie.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/bpmonitor/capstone/internal/models"
)

// ErrNotFound is returned by a Store when the token is unknown or expired.
var ErrNotFound = errors.New("session not found")

// Session is the state held for one browser session.
type Session struct {
	// Token is the opaque identifier stored in the session cookie.
	Token string `json:"token"`
	// User is the authenticated user snapshot; nil means anonymous.
	User *models.User `json:"user,omitempty"`
	// CreatedAt is when the session was first issued.
	CreatedAt time.Time `json:"createdAt"`
	// ExpiresAt is when the session stops being valid.
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Store persists sessions by token.
type Store interface {
	// Get returns the session for token or ErrNotFound.
	Get(ctx context.Context, token string) (*Session, error)
	// Save creates or replaces the session.
	Save(ctx context.Context, s *Session) error
	// Delete removes the session. Deleting a missing session is not an error.
	Delete(ctx context.Context, token string) error
	// CleanupExpired removes expired sessions and reports how many were removed.
	CleanupExpired(ctx context.Context) (int, error)
}

func clone(s *Session) *Session {
	c := *s
	if s.User != nil {
		u := *s.User
		u.Emails = append([]string(nil), s.User.Emails...)
		u.Phones = append([]string(nil), s.User.Phones...)
		u.PCP = append([]string(nil), s.User.PCP...)
		c.User = &u
	}
	return &c
}

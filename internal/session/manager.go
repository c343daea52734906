package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bpmonitor/capstone/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ctxKey struct{}

// DefaultCookieName is used when Options.CookieName is empty.
const DefaultCookieName = "capstone.sid"

// Options configures a Manager.
type Options struct {
	// CookieName is the name of the session cookie.
	CookieName string
	// TTL is how long a session stays valid after it was last written.
	TTL time.Duration
	// Secure marks the cookie as HTTPS-only.
	Secure bool
}

// Manager issues session cookies and is the only writer of session state.
type Manager struct {
	store Store
	opts  Options
	log   *zap.Logger
	now   func() time.Time
}

// NewManager creates a Manager over store.
func NewManager(store Store, opts Options, log *zap.Logger) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = DefaultCookieName
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{store: store, opts: opts, log: log, now: time.Now}
}

// Middleware attaches the request's session to its context. A request
// without a valid session cookie gets a fresh anonymous session.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var s *Session
		if c, err := r.Cookie(m.opts.CookieName); err == nil && c.Value != "" {
			s, err = m.store.Get(ctx, c.Value)
			if err != nil && !errors.Is(err, ErrNotFound) {
				m.log.Error("failed to load session", zap.Error(err))
				http.Error(w, "session unavailable", http.StatusInternalServerError)
				return
			}
		}

		if s == nil {
			var err error
			s, err = m.issue(ctx)
			if err != nil {
				m.log.Error("failed to create session", zap.Error(err))
				http.Error(w, "session unavailable", http.StatusInternalServerError)
				return
			}
			m.setCookie(w, s)
		}

		next.ServeHTTP(w, r.WithContext(NewContext(ctx, s)))
	})
}

func (m *Manager) issue(ctx context.Context) (*Session, error) {
	now := m.now()
	s := &Session{
		Token:     uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(m.opts.TTL),
	}
	if err := m.store.Save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (m *Manager) setCookie(w http.ResponseWriter, s *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    s.Token,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SetUser records user as the session's current user and persists it.
// A nil user makes the session anonymous again. The session's lifetime is
// extended and the cookie is re-sent on w so the browser keeps it as long
// as the store does. w may be nil when there is no response to write.
func (m *Manager) SetUser(ctx context.Context, w http.ResponseWriter, s *Session, user *models.User) error {
	s.User = user
	s.ExpiresAt = m.now().Add(m.opts.TTL)
	if err := m.store.Save(ctx, s); err != nil {
		return err
	}
	if w != nil {
		m.setCookie(w, s)
	}
	return nil
}

// Clear logs the session's user out.
func (m *Manager) Clear(ctx context.Context, w http.ResponseWriter, s *Session) error {
	return m.SetUser(ctx, w, s, nil)
}

// FromContext returns the session attached by Middleware, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

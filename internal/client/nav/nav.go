// Package nav decides which front-end page a navigation may reach given
// the session state, and performs that check against the API.
package nav

import (
	"context"
	"strings"
	"sync"

	"github.com/bpmonitor/capstone/internal/models"
)

// Page is a navigable view of the front end.
type Page int

const (
	Welcome Page = iota
	Login
	Register
	Home
	Profile
)

var pagePaths = map[Page]string{
	Welcome:  "/welcome",
	Login:    "/login",
	Register: "/register",
	Home:     "/home",
	Profile:  "/profile/",
}

// Path returns the canonical route of the page.
func (p Page) Path() string {
	return pagePaths[p]
}

func (p Page) String() string {
	return strings.Trim(p.Path(), "/")
}

// Gate describes the session requirement of a page.
type Gate int

const (
	// Open pages need no session check.
	Open Gate = iota
	// LoginRequired pages need a session user.
	LoginRequired
	// AnonymousOnly pages are refused once a user is logged in.
	AnonymousOnly
)

// Gate returns the session requirement of p.
func (p Page) Gate() Gate {
	switch p {
	case Home, Profile:
		return LoginRequired
	case Welcome:
		return AnonymousOnly
	default:
		return Open
	}
}

// Resolve maps a route path to its page. Unknown paths resolve to Welcome
// with ok set to false, meaning the caller should redirect there.
func Resolve(path string) (page Page, ok bool) {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	trimmed := strings.TrimSuffix(path, "/")
	for p, route := range pagePaths {
		if trimmed == strings.TrimSuffix(route, "/") {
			return p, true
		}
	}
	return Welcome, false
}

// Decision is the outcome of guarding one navigation.
type Decision struct {
	// Allow reports whether the navigation may complete.
	Allow bool
	// Redirect is where to go instead when Allow is false.
	Redirect Page
}

// Guard decides whether page may be shown when a session user is (or is
// not) present. It has no side effects.
func Guard(page Page, loggedIn bool) Decision {
	switch page.Gate() {
	case LoginRequired:
		if !loggedIn {
			return Decision{Redirect: Welcome}
		}
	case AnonymousOnly:
		if loggedIn {
			return Decision{Redirect: Home}
		}
	}
	return Decision{Allow: true}
}

// SessionSource reports the user logged in on the current session.
type SessionSource interface {
	LoggedIn(ctx context.Context) (*models.User, error)
}

// CurrentUser caches the logged-in user on the client side. It is written
// when a login is confirmed and read by the view controllers.
type CurrentUser struct {
	mu   sync.RWMutex
	user *models.User
}

// Set replaces the cached user. nil clears it.
func (c *CurrentUser) Set(u *models.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = u
}

// Get returns the cached user or nil.
func (c *CurrentUser) Get() *models.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user
}

// Result is where a navigation ended up.
type Result struct {
	// Page is the page finally shown.
	Page Page
	// Redirected is true when Page differs from the requested one.
	Redirected bool
}

// Navigator runs the asynchronous session check that guards navigation.
type Navigator struct {
	Session SessionSource
	Current *CurrentUser
}

// Navigate resolves path and, for gated pages, waits for the session check
// before deciding. Open pages do not touch the network. An error from the
// session check aborts the navigation.
func (n *Navigator) Navigate(ctx context.Context, path string) (Result, error) {
	page, ok := Resolve(path)
	if !ok {
		return n.follow(ctx, Welcome, true)
	}
	return n.follow(ctx, page, false)
}

func (n *Navigator) follow(ctx context.Context, page Page, redirected bool) (Result, error) {
	if page.Gate() == Open {
		return Result{Page: page, Redirected: redirected}, nil
	}

	user, err := n.Session.LoggedIn(ctx)
	if err != nil {
		return Result{}, err
	}
	if user != nil && page.Gate() == LoginRequired && n.Current != nil {
		n.Current.Set(user)
	}

	// A redirect target always passes the guard for the same session state.
	if d := Guard(page, user != nil); !d.Allow {
		return Result{Page: d.Redirect, Redirected: true}, nil
	}
	return Result{Page: page, Redirected: redirected}, nil
}

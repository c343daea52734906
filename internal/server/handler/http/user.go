package http

import (
	"context"
	"net/http"

	"github.com/bpmonitor/capstone/internal/models"
	"github.com/bpmonitor/capstone/internal/session"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// UserService defines the user operations required by UserHandler.
// Lookups that find nothing return a nil user and a nil error.
type UserService interface {
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindUserByCredentials(ctx context.Context, username, password string) (*models.User, error)
	FindAllUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, id string, patch models.UserPatch) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// SessionWriter records the authenticated user on the caller's session.
type SessionWriter interface {
	SetUser(ctx context.Context, w http.ResponseWriter, s *session.Session, user *models.User) error
	Clear(ctx context.Context, w http.ResponseWriter, s *session.Session) error
}

// UserHandler serves /api/assignment.
type UserHandler struct {
	UserService UserService
	Sessions    SessionWriter
	Logger      *zap.Logger
}

// remember stores user on the request's own session. A session write
// failure is logged but does not fail a request whose storage call succeeded.
func (h *UserHandler) remember(w http.ResponseWriter, r *http.Request, user *models.User) {
	s := session.FromContext(r.Context())
	if s == nil || h.Sessions == nil {
		return
	}
	if err := h.Sessions.SetUser(r.Context(), w, s, user); err != nil && h.Logger != nil {
		h.Logger.Error("failed to save session", zap.Error(err))
	}
}

// Register handles POST /user.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var user models.User
	if !decodeJSON(w, r, &user) {
		return
	}

	created, err := h.UserService.CreateUser(r.Context(), user)
	if err != nil {
		storageFailure(w, h.Logger, "create user", err)
		return
	}

	h.remember(w, r, created)
	writeJSON(w, created)
}

// FindUserByID handles GET /user/{id}.
func (h *UserHandler) FindUserByID(w http.ResponseWriter, r *http.Request) {
	user, err := h.UserService.FindUserByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		storageFailure(w, h.Logger, "find user", err)
		return
	}
	writeJSON(w, user)
}

// FindUsers handles GET /user. With username and password it is a login,
// with username alone a lookup, and without either a listing.
func (h *UserHandler) FindUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	username, password := q.Get("username"), q.Get("password")

	switch {
	case username != "" && password != "":
		h.findUserByCredentials(w, r, username, password)
	case username != "":
		user, err := h.UserService.FindUserByUsername(r.Context(), username)
		if err != nil {
			storageFailure(w, h.Logger, "find user by username", err)
			return
		}
		writeJSON(w, user)
	default:
		users, err := h.UserService.FindAllUsers(r.Context())
		if err != nil {
			storageFailure(w, h.Logger, "find all users", err)
			return
		}
		writeJSON(w, users)
	}
}

func (h *UserHandler) findUserByCredentials(w http.ResponseWriter, r *http.Request, username, password string) {
	user, err := h.UserService.FindUserByCredentials(r.Context(), username, password)
	if err != nil {
		storageFailure(w, h.Logger, "find user by credentials", err)
		return
	}

	// A failed login leaves the session anonymous.
	h.remember(w, r, user)
	writeJSON(w, user)
}

// UpdateUser handles PUT /user/{id}. Only fields present in the body change.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var patch models.UserPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	user, err := h.UserService.UpdateUser(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		storageFailure(w, h.Logger, "update user", err)
		return
	}

	h.remember(w, r, user)
	writeJSON(w, user)
}

// DeleteUser handles DELETE /user/{id}.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.UserService.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		storageFailure(w, h.Logger, "delete user", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Logout handles POST /logout.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if s := session.FromContext(r.Context()); s != nil && h.Sessions != nil {
		if err := h.Sessions.Clear(r.Context(), w, s); err != nil {
			if h.Logger != nil {
				h.Logger.Error("failed to clear session", zap.Error(err))
			}
			http.Error(w, "session unavailable", http.StatusInternalServerError)
			return
		}
	}
	writeJSON(w, nil)
}

// LoggedIn handles GET /loggedin and returns the session user or null.
func (h *UserHandler) LoggedIn(w http.ResponseWriter, r *http.Request) {
	var user *models.User
	if s := session.FromContext(r.Context()); s != nil {
		user = s.User
	}
	writeJSON(w, user)
}

// Package service provides the user and blood-pressure business services,
// delegating persistence to repository interfaces.
package service

import (
	"context"

	"github.com/bpmonitor/capstone/internal/models"
)

// UserRepository defines the persistence operations
// required by the user service.
type UserRepository interface {
	// CreateUser inserts a new user and returns the stored document with its generated ID.
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	// FindUserByID returns nil, nil when no user has the ID.
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	// FindUserByUsername returns nil, nil when no user has the username.
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	// FindUserByCredentials returns nil, nil when username and password do not both match.
	FindUserByCredentials(ctx context.Context, username, password string) (*models.User, error)
	// FindAllUsers lists every user.
	FindAllUsers(ctx context.Context) ([]models.User, error)
	// UpdateUser upserts the patch and returns the resulting document.
	UpdateUser(ctx context.Context, id string, patch models.UserPatch) (*models.User, error)
	// DeleteUser removes the user; deleting a missing user is not an error.
	DeleteUser(ctx context.Context, id string) error
}

// UserService implements user operations by delegating
// to a UserRepository.
type UserService struct {
	// repo performs the data-layer operations.
	repo UserRepository
}

// NewUserService constructs a new UserService using the provided repository.
func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

// CreateUser registers a new user.
func (s *UserService) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	return s.repo.CreateUser(ctx, user)
}

// FindUserByID looks a user up by ID.
func (s *UserService) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.repo.FindUserByID(ctx, id)
}

// FindUserByUsername looks a user up by username.
func (s *UserService) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.repo.FindUserByUsername(ctx, username)
}

// FindUserByCredentials returns the user matching username and password exactly.
// No match is reported as a nil user, not as an error.
func (s *UserService) FindUserByCredentials(ctx context.Context, username, password string) (*models.User, error) {
	return s.repo.FindUserByCredentials(ctx, username, password)
}

// FindAllUsers lists every user.
func (s *UserService) FindAllUsers(ctx context.Context) ([]models.User, error) {
	return s.repo.FindAllUsers(ctx)
}

// UpdateUser applies patch to the user, creating it if absent.
func (s *UserService) UpdateUser(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	return s.repo.UpdateUser(ctx, id, patch)
}

// DeleteUser removes the user with the given ID.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	return s.repo.DeleteUser(ctx, id)
}

package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
	domainerrors "github.com/bookhavenapp/bookhaven-server/internal/errors"
	"github.com/bookhavenapp/bookhaven-server/internal/store"
)

// UserService handles account profile and admin user management.
type UserService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(s *store.Store, logger *slog.Logger) *UserService {
	return &UserService{store: s, logger: logger}
}

// UpdateProfileRequest contains the fields a user may change on their own
// account.
type UpdateProfileRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=1,max=100"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
}

// UpdateRoleRequest contains an admin role change.
type UpdateRoleRequest struct {
	Role domain.Role `json:"role" validate:"required,oneof=admin customer"`
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.store.GetUser(ctx, userID)
}

// UpdateProfile applies a user's changes to their own account.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*domain.User, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Email != nil {
		user.Email = *req.Email
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		if domainerrors.Is(err, store.ErrEmailExists) {
			return nil, domainerrors.AlreadyExists("email already in use")
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	return user, nil
}

// ListUsers returns all accounts for the admin view.
func (s *UserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.store.ListUsers(ctx)
}

// UpdateRole changes a user's role. The root user's role cannot be changed.
func (s *UserService) UpdateRole(ctx context.Context, userID string, req UpdateRoleRequest) (*domain.User, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsRoot {
		return nil, domainerrors.Forbidden("the root user's role cannot be changed")
	}

	user.Role = req.Role
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("user role updated", "user_id", userID, "role", req.Role)
	}

	return user, nil
}

// DeleteUser removes an account along with its sessions. The root user
// cannot be deleted.
func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsRoot {
		return domainerrors.Forbidden("the root user cannot be deleted")
	}

	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("user deleted", "user_id", userID)
	}

	return nil
}

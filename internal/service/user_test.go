package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
	domainerrors "github.com/bookhavenapp/bookhaven-server/internal/errors"
)

func TestUserService_UpdateProfile(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()

	user := env.registerCustomer(t, "reader@example.com")
	ctx := context.Background()

	username := "bookworm"
	updated, err := env.users.UpdateProfile(ctx, user.ID, UpdateProfileRequest{Username: &username})
	require.NoError(t, err)
	assert.Equal(t, "bookworm", updated.Username)
	assert.Equal(t, "reader@example.com", updated.Email)
}

func TestUserService_UpdateProfile_EmailTaken(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()

	user := env.registerCustomer(t, "reader@example.com")
	env.registerCustomer(t, "taken@example.com")
	ctx := context.Background()

	email := "taken@example.com"
	_, err := env.users.UpdateProfile(ctx, user.ID, UpdateProfileRequest{Email: &email})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.True(t, domainerrors.As(err, &domainErr))
	assert.Equal(t, domainerrors.CodeAlreadyExists, domainErr.Code)
}

func TestUserService_UpdateRole(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()

	user := env.registerCustomer(t, "reader@example.com")
	ctx := context.Background()

	updated, err := env.users.UpdateRole(ctx, user.ID, UpdateRoleRequest{Role: domain.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, updated.Role)
	assert.True(t, updated.IsAdmin())
}

func TestUserService_RootIsProtected(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()
	env.setupInstance(t)

	ctx := context.Background()
	setup, err := env.auth.Setup(ctx, SetupRequest{
		Email:    "admin@example.com",
		Password: "SecurePassword123!",
		Username: "admin",
	})
	require.NoError(t, err)

	_, err = env.users.UpdateRole(ctx, setup.User.ID, UpdateRoleRequest{Role: domain.RoleCustomer})
	require.Error(t, err)

	err = env.users.DeleteUser(ctx, setup.User.ID)
	require.Error(t, err)
}

func TestUserService_DeleteUser_RemovesSessions(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()

	env.registerCustomer(t, "reader@example.com")
	ctx := context.Background()

	login, err := env.auth.Login(ctx, LoginRequest{
		Email:    "reader@example.com",
		Password: "CustomerPass123!",
	})
	require.NoError(t, err)

	require.NoError(t, env.users.DeleteUser(ctx, login.User.ID))

	sessions, err := env.sessions.ListUserSessions(ctx, login.User.ID)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	_, err = env.users.GetUser(ctx, login.User.ID)
	require.Error(t, err)
}

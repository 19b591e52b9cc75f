package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhavenapp/bookhaven-server/internal/cart"
	"github.com/bookhavenapp/bookhaven-server/internal/domain"
	domainerrors "github.com/bookhavenapp/bookhaven-server/internal/errors"
)

func TestAuthService_Setup(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()
	env.setupInstance(t)

	ctx := context.Background()

	resp, err := env.auth.Setup(ctx, SetupRequest{
		Email:    "admin@example.com",
		Password: "SecurePassword123!",
		Username: "admin",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.User)

	assert.True(t, resp.User.IsRoot)
	assert.Equal(t, domain.RoleAdmin, resp.User.Role)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)

	required, err := env.instance.IsSetupRequired(ctx)
	require.NoError(t, err)
	assert.False(t, required)
}

func TestAuthService_Setup_OnlyOnce(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()
	env.setupInstance(t)

	ctx := context.Background()

	_, err := env.auth.Setup(ctx, SetupRequest{
		Email:    "admin@example.com",
		Password: "SecurePassword123!",
		Username: "admin",
	})
	require.NoError(t, err)

	_, err = env.auth.Setup(ctx, SetupRequest{
		Email:    "second@example.com",
		Password: "SecurePassword123!",
		Username: "second",
	})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.True(t, domainerrors.As(err, &domainErr))
	assert.Equal(t, domainerrors.CodeAlreadyConfigured, domainErr.Code)
}

func TestAuthService_Register(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()

	resp, err := env.auth.Register(context.Background(), RegisterRequest{
		Email:    "reader@example.com",
		Password: "CustomerPass123!",
		Username: "reader",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.RoleCustomer, resp.User.Role)
	assert.False(t, resp.User.IsRoot)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestAuthService_Register_Closed(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()

	env.auth.authConfig.OpenRegistration = false

	_, err := env.auth.Register(context.Background(), RegisterRequest{
		Email:    "reader@example.com",
		Password: "CustomerPass123!",
		Username: "reader",
	})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.True(t, domainerrors.As(err, &domainErr))
	assert.Equal(t, domainerrors.CodeForbidden, domainErr.Code)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()

	env.registerCustomer(t, "reader@example.com")

	_, err := env.auth.Register(context.Background(), RegisterRequest{
		Email:    "READER@example.com", // email index is case-insensitive
		Password: "CustomerPass123!",
		Username: "other",
	})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.True(t, domainerrors.As(err, &domainErr))
	assert.Equal(t, domainerrors.CodeAlreadyExists, domainErr.Code)
}

func TestAuthService_Register_MergesGuestCart(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()

	_, bookID1, _ := env.seedCatalog(t)

	ctx := context.Background()

	// Shop as a guest, then create an account mid-session.
	_, err := env.carts.AddItem(ctx, cart.Guest(), bookID1, 2)
	require.NoError(t, err)

	resp, err := env.auth.Register(ctx, RegisterRequest{
		Email:    "reader@example.com",
		Password: "CustomerPass123!",
		Username: "reader",
	})
	require.NoError(t, err)

	view, err := env.carts.Get(ctx, cart.ForUser(resp.User.ID))
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, bookID1, view.Lines[0].BookID)
	assert.Equal(t, 2, view.Lines[0].Quantity)

	guestView, err := env.carts.Get(ctx, cart.Guest())
	require.NoError(t, err)
	assert.Empty(t, guestView.Lines)
}

func TestAuthService_Login(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()

	user := env.registerCustomer(t, "reader@example.com")

	resp, err := env.auth.Login(context.Background(), LoginRequest{
		Email:    "reader@example.com",
		Password: "CustomerPass123!",
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, resp.User.ID)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.SessionID)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()

	env.registerCustomer(t, "reader@example.com")

	for _, attempt := range []LoginRequest{
		{Email: "reader@example.com", Password: "wrong-password"},
		{Email: "nobody@example.com", Password: "CustomerPass123!"},
	} {
		_, err := env.auth.Login(context.Background(), attempt)
		require.Error(t, err)

		// Unknown email and wrong password must be indistinguishable.
		var domainErr *domainerrors.Error
		require.True(t, domainerrors.As(err, &domainErr))
		assert.Equal(t, domainerrors.CodeInvalidCredentials, domainErr.Code)
		assert.Equal(t, "invalid email or password", domainErr.Message)
	}
}

func TestAuthService_Login_MergesGuestCart(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()

	_, bookID1, _ := env.seedCatalog(t)
	user := env.registerCustomer(t, "reader@example.com")

	ctx := context.Background()

	// Shop as a guest, then log in.
	_, err := env.carts.AddItem(ctx, cart.Guest(), bookID1, 2)
	require.NoError(t, err)

	_, err = env.auth.Login(ctx, LoginRequest{
		Email:    "reader@example.com",
		Password: "CustomerPass123!",
	})
	require.NoError(t, err)

	view, err := env.carts.Get(ctx, cart.ForUser(user.ID))
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, bookID1, view.Lines[0].BookID)
	assert.Equal(t, 2, view.Lines[0].Quantity)

	guestView, err := env.carts.Get(ctx, cart.Guest())
	require.NoError(t, err)
	assert.Empty(t, guestView.Lines)
}

func TestAuthService_RefreshTokens_Rotation(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()

	env.registerCustomer(t, "reader@example.com")

	ctx := context.Background()
	login, err := env.auth.Login(ctx, LoginRequest{
		Email:    "reader@example.com",
		Password: "CustomerPass123!",
	})
	require.NoError(t, err)

	refreshed, err := env.auth.RefreshTokens(ctx, RefreshRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.Equal(t, login.SessionID, refreshed.SessionID)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The old refresh token is dead after rotation.
	_, err = env.auth.RefreshTokens(ctx, RefreshRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
}

func TestAuthService_Logout(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()

	env.registerCustomer(t, "reader@example.com")

	ctx := context.Background()
	login, err := env.auth.Login(ctx, LoginRequest{
		Email:    "reader@example.com",
		Password: "CustomerPass123!",
	})
	require.NoError(t, err)

	require.NoError(t, env.auth.Logout(ctx, login.SessionID))

	_, err = env.auth.RefreshTokens(ctx, RefreshRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
}

func TestAuthService_VerifyAccessToken(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()

	registered := env.registerCustomer(t, "reader@example.com")

	ctx := context.Background()
	login, err := env.auth.Login(ctx, LoginRequest{
		Email:    "reader@example.com",
		Password: "CustomerPass123!",
	})
	require.NoError(t, err)

	user, claims, err := env.auth.VerifyAccessToken(ctx, login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Equal(t, registered.ID, claims.UserID)

	_, _, err = env.auth.VerifyAccessToken(ctx, "not-a-token")
	require.Error(t, err)
}

package service

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bookhavenapp/bookhaven-server/internal/auth"
	"github.com/bookhavenapp/bookhaven-server/internal/config"
	"github.com/bookhavenapp/bookhaven-server/internal/domain"
	"github.com/bookhavenapp/bookhaven-server/internal/store"
)

// testEnv bundles the services wired against a temporary database.
type testEnv struct {
	store     *store.Store
	auth      *AuthService
	sessions  *SessionService
	instance  *InstanceService
	carts     *CartService
	books     *BookService
	authors   *AuthorService
	addresses *AddressService
	orders    *OrderService
	users     *UserService
}

// setupServices creates the full service stack on temporary storage.
// The search index is left nil; indexing degrades to a no-op.
func setupServices(t *testing.T) (*testEnv, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "bookhaven-service-test-*")
	require.NoError(t, err)

	s, err := store.New(filepath.Join(tmpDir, "test.db"), nil, store.Options{})
	require.NoError(t, err)

	authKey, err := auth.LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)

	authCfg := config.AuthConfig{
		AccessTokenKey:       authKey,
		AccessTokenDuration:  15 * time.Minute,
		RefreshTokenDuration: 30 * 24 * time.Hour,
		OpenRegistration:     true,
	}

	tokenService, err := auth.NewTokenService(
		hex.EncodeToString(authKey),
		authCfg.AccessTokenDuration,
		authCfg.RefreshTokenDuration,
	)
	require.NoError(t, err)

	env := &testEnv{store: s}
	env.sessions = NewSessionService(s, tokenService, nil)
	env.instance = NewInstanceService(s, nil)
	env.carts = NewCartService(s.Carts(), s, nil)
	env.auth = NewAuthService(s, tokenService, env.sessions, env.instance, env.carts, authCfg, nil)
	env.books = NewBookService(s, nil, nil)
	env.authors = NewAuthorService(s, nil, nil)
	env.addresses = NewAddressService(s, nil)
	env.orders = NewOrderService(s, env.carts, env.addresses, nil)
	env.users = NewUserService(s, nil)

	cleanup := func() {
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return env, cleanup
}

// setupInstance creates the instance record so auth flows can run.
func (e *testEnv) setupInstance(t *testing.T) {
	t.Helper()
	_, err := e.instance.EnsureInstance(context.Background(), "Test Store", "test")
	require.NoError(t, err)
}

// seedCatalog creates an author and two priced books, returning their IDs.
func (e *testEnv) seedCatalog(t *testing.T) (authorID, bookID1, bookID2 string) {
	t.Helper()
	ctx := context.Background()

	author, err := e.authors.CreateAuthor(ctx, CreateAuthorRequest{
		FirstName: "Ursula",
		LastName:  "Le Guin",
	})
	require.NoError(t, err)

	book1, err := e.books.CreateBook(ctx, CreateBookRequest{
		Title:         "A Wizard of Earthsea",
		Price:         "10.00",
		StockQuantity: 10,
		AuthorIDs:     []string{author.ID},
	})
	require.NoError(t, err)

	book2, err := e.books.CreateBook(ctx, CreateBookRequest{
		Title:         "The Dispossessed",
		Price:         "20.00",
		StockQuantity: 5,
		AuthorIDs:     []string{author.ID},
	})
	require.NoError(t, err)

	return author.ID, book1.ID, book2.ID
}

// registerCustomer registers a customer account and returns it.
func (e *testEnv) registerCustomer(t *testing.T, email string) *domain.User {
	t.Helper()
	ctx := context.Background()

	resp, err := e.auth.Register(ctx, RegisterRequest{
		Email:    email,
		Password: "CustomerPass123!",
		Username: "customer",
	})
	require.NoError(t, err)
	return resp.User
}

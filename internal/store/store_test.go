package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
	"github.com/bookhavenapp/bookhaven-server/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) (*store.Store, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "store-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	s, err := store.New(dbPath, nil, store.Options{})
	require.NoError(t, err)

	cleanup := func() {
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return s, cleanup
}

func newTestUser(id, email string) *domain.User {
	user := &domain.User{
		Username: "reader",
		Email:    email,
		Role:     domain.RoleCustomer,
	}
	user.ID = id
	user.InitTimestamps()
	return user
}

func newTestBook(id, title, price string, stock int) *domain.Book {
	book := &domain.Book{
		Title:         title,
		Price:         domain.NewMoney(decimal.RequireFromString(price)),
		StockQuantity: stock,
	}
	book.ID = id
	book.InitTimestamps()
	return book
}

func TestUsers_CreateAndGet(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	user := newTestUser("user-1", "reader@example.com")
	require.NoError(t, s.Users.Create(ctx, user.ID, user))

	got, err := s.Users.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", got.Email)

	_, err = s.Users.Get(ctx, "user-404")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsers_EmailIndexIsCaseInsensitive(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	user := newTestUser("user-1", "Reader@Example.COM")
	require.NoError(t, s.Users.Create(ctx, user.ID, user))

	got, err := s.Users.GetByIndex(ctx, "email", "reader@example.com")
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.ID)

	// A second user with the same email (different case) conflicts.
	dupe := newTestUser("user-2", "READER@example.com")
	err = s.Users.Create(ctx, dupe.ID, dupe)
	assert.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestUsers_UpdateMovesEmailIndex(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	user := newTestUser("user-1", "old@example.com")
	require.NoError(t, s.Users.Create(ctx, user.ID, user))

	user.Email = "new@example.com"
	require.NoError(t, s.Users.Update(ctx, user.ID, user))

	_, err := s.Users.GetByIndex(ctx, "email", "old@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)

	got, err := s.Users.GetByIndex(ctx, "email", "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.ID)

	// The freed email is reusable.
	other := newTestUser("user-2", "old@example.com")
	assert.NoError(t, s.Users.Create(ctx, other.ID, other))
}

func TestUsers_DeleteIsIdempotent(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	user := newTestUser("user-1", "reader@example.com")
	require.NoError(t, s.Users.Create(ctx, user.ID, user))

	require.NoError(t, s.Users.Delete(ctx, "user-1"))
	require.NoError(t, s.Users.Delete(ctx, "user-1"))

	_, err := s.Users.Get(ctx, "user-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsers_List(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	for _, id := range []string{"user-1", "user-2", "user-3"} {
		user := newTestUser(id, id+"@example.com")
		require.NoError(t, s.Users.Create(ctx, id, user))
	}

	count := 0
	for user, err := range s.Users.List(ctx) {
		require.NoError(t, err)
		require.NotNil(t, user)
		count++
	}
	assert.Equal(t, 3, count)

	total, err := s.Users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

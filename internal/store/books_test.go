package store_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/bookhavenapp/bookhaven-server/internal/errors"
	"github.com/bookhavenapp/bookhaven-server/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListBooks_Pagination(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		id := fmt.Sprintf("book-%02d", i)
		book := newTestBook(id, "Title "+id, "9.99", 10)
		require.NoError(t, s.Books.Create(ctx, id, book))
	}

	page1, err := s.ListBooks(ctx, store.PaginationParams{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page1.Items, 2)
	assert.True(t, page1.HasMore)
	require.NotEmpty(t, page1.NextCursor)

	page2, err := s.ListBooks(ctx, store.PaginationParams{Limit: 2, Cursor: page1.NextCursor})
	require.NoError(t, err)
	require.Len(t, page2.Items, 2)
	assert.NotEqual(t, page1.Items[0].ID, page2.Items[0].ID)

	page3, err := s.ListBooks(ctx, store.PaginationParams{Limit: 2, Cursor: page2.NextCursor})
	require.NoError(t, err)
	require.Len(t, page3.Items, 1)
	assert.False(t, page3.HasMore)
	assert.Empty(t, page3.NextCursor)
}

func TestListBooks_BadCursor(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := s.ListBooks(context.Background(), store.PaginationParams{Cursor: "!!!not-base64!!!"})
	assert.Error(t, err)
}

func TestDecrementStock(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	book := newTestBook("book-1", "Dune", "12.50", 3)
	require.NoError(t, s.Books.Create(ctx, book.ID, book))

	require.NoError(t, s.DecrementStock(ctx, "book-1", 2))

	got, err := s.Books.Get(ctx, "book-1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.StockQuantity)

	// More than remains fails and leaves stock untouched.
	err = s.DecrementStock(ctx, "book-1", 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrOutOfStock))

	got, err = s.Books.Get(ctx, "book-1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.StockQuantity)
}

func TestDecrementStock_MissingBook(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	err := s.DecrementStock(context.Background(), "book-404", 1)
	assert.ErrorIs(t, err, store.ErrBookNotFound)
}

func TestDecrementStock_InvalidQuantity(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	book := newTestBook("book-1", "Dune", "12.50", 3)
	require.NoError(t, s.Books.Create(ctx, book.ID, book))

	assert.Error(t, s.DecrementStock(ctx, "book-1", 0))
	assert.Error(t, s.DecrementStock(ctx, "book-1", -1))
}

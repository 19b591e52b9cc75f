package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/bookhavenapp/bookhaven-server/internal/errors"
	"github.com/bookhavenapp/bookhaven-server/internal/store"
)

func TestBookService_CreateAndGet(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()

	ctx := context.Background()
	author, err := env.authors.CreateAuthor(ctx, CreateAuthorRequest{LastName: "Herbert", FirstName: "Frank"})
	require.NoError(t, err)

	book, err := env.books.CreateBook(ctx, CreateBookRequest{
		Title:         "Dune",
		Price:         "12.50",
		StockQuantity: 5,
		AuthorIDs:     []string{author.ID},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, book.ID)
	assert.Equal(t, "$12.50", book.Price.String())

	got, err := env.books.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Title)
}

func TestBookService_CreateBook_Validation(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()

	ctx := context.Background()
	author, err := env.authors.CreateAuthor(ctx, CreateAuthorRequest{LastName: "Herbert"})
	require.NoError(t, err)

	// Missing title.
	_, err = env.books.CreateBook(ctx, CreateBookRequest{
		Price:     "12.50",
		AuthorIDs: []string{author.ID},
	})
	require.Error(t, err)

	// Unparseable price.
	_, err = env.books.CreateBook(ctx, CreateBookRequest{
		Title:     "Dune",
		Price:     "twelve",
		AuthorIDs: []string{author.ID},
	})
	require.Error(t, err)

	// Unknown author.
	_, err = env.books.CreateBook(ctx, CreateBookRequest{
		Title:     "Dune",
		Price:     "12.50",
		AuthorIDs: []string{"author_missing"},
	})
	require.Error(t, err)
	var domainErr *domainerrors.Error
	require.True(t, domainerrors.As(err, &domainErr))
	assert.Equal(t, domainerrors.CodeNotFound, domainErr.Code)
}

func TestBookService_UpdateBook_Partial(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()

	_, bookID1, _ := env.seedCatalog(t)
	ctx := context.Background()

	stock := 42
	updated, err := env.books.UpdateBook(ctx, bookID1, UpdateBookRequest{StockQuantity: &stock})
	require.NoError(t, err)

	assert.Equal(t, 42, updated.StockQuantity)
	assert.Equal(t, "A Wizard of Earthsea", updated.Title) // untouched
	assert.Equal(t, "$10.00", updated.Price.String())
}

func TestBookService_ListBooks_Pagination(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()

	ctx := context.Background()
	author, err := env.authors.CreateAuthor(ctx, CreateAuthorRequest{LastName: "Prolific"})
	require.NoError(t, err)

	for i := range 5 {
		_, err := env.books.CreateBook(ctx, CreateBookRequest{
			Title:     string(rune('A'+i)) + " Title",
			Price:     "5.00",
			AuthorIDs: []string{author.ID},
		})
		require.NoError(t, err)
	}

	page, err := env.books.ListBooks(ctx, store.PaginationParams{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)
	require.True(t, page.HasMore)

	rest, err := env.books.ListBooks(ctx, store.PaginationParams{Limit: 3, Cursor: page.NextCursor})
	require.NoError(t, err)
	assert.Len(t, rest.Items, 2)
	assert.False(t, rest.HasMore)
}

func TestBookService_ListBooksByAuthor(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()

	authorID, bookID1, bookID2 := env.seedCatalog(t)
	ctx := context.Background()

	other, err := env.authors.CreateAuthor(ctx, CreateAuthorRequest{LastName: "Someone Else"})
	require.NoError(t, err)
	_, err = env.books.CreateBook(ctx, CreateBookRequest{
		Title:     "Unrelated",
		Price:     "9.99",
		AuthorIDs: []string{other.ID},
	})
	require.NoError(t, err)

	books, err := env.books.ListBooksByAuthor(ctx, authorID)
	require.NoError(t, err)
	require.Len(t, books, 2)

	ids := []string{books[0].ID, books[1].ID}
	assert.ElementsMatch(t, []string{bookID1, bookID2}, ids)
}

func TestAuthorService_DuplicateName(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()

	ctx := context.Background()
	_, err := env.authors.CreateAuthor(ctx, CreateAuthorRequest{FirstName: "Frank", LastName: "Herbert"})
	require.NoError(t, err)

	_, err = env.authors.CreateAuthor(ctx, CreateAuthorRequest{FirstName: "frank", LastName: "HERBERT"})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.True(t, domainerrors.As(err, &domainErr))
	assert.Equal(t, domainerrors.CodeAlreadyExists, domainErr.Code)
}

func TestAuthorService_DeleteWithBooks(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()

	authorID, bookID1, bookID2 := env.seedCatalog(t)
	ctx := context.Background()

	err := env.authors.DeleteAuthor(ctx, authorID)
	require.Error(t, err)

	require.NoError(t, env.books.DeleteBook(ctx, bookID1))
	require.NoError(t, env.books.DeleteBook(ctx, bookID2))
	require.NoError(t, env.authors.DeleteAuthor(ctx, authorID))
}

func TestAuthorService_GetByName(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()

	ctx := context.Background()
	created, err := env.authors.CreateAuthor(ctx, CreateAuthorRequest{FirstName: "Ursula", LastName: "Le Guin"})
	require.NoError(t, err)

	found, err := env.authors.GetAuthorByName(ctx, "  ursula   le guin ")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
	domainerrors "github.com/bookhavenapp/bookhaven-server/internal/errors"
	"github.com/bookhavenapp/bookhaven-server/internal/id"
	"github.com/bookhavenapp/bookhaven-server/internal/search"
	"github.com/bookhavenapp/bookhaven-server/internal/store"
)

// BookService orchestrates catalog book operations and keeps the search
// index in step with the store.
type BookService struct {
	store  *store.Store
	index  *search.Index
	logger *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(s *store.Store, index *search.Index, logger *slog.Logger) *BookService {
	return &BookService{
		store:  s,
		index:  index,
		logger: logger,
	}
}

// CreateBookRequest contains the data for a new catalog book.
type CreateBookRequest struct {
	Title           string     `json:"title" validate:"required,max=500"`
	Price           string     `json:"price" validate:"required"`
	StockQuantity   int        `json:"stock_quantity" validate:"gte=0"`
	Description     string     `json:"description,omitempty" validate:"max=10000"`
	ImageURL        string     `json:"img_url,omitempty"`
	FileURL         string     `json:"file_url,omitempty"`
	PublicationDate *time.Time `json:"publication_date,omitempty"`
	Recommended     bool       `json:"recommended,omitempty"`
	AuthorIDs       []string   `json:"author_ids" validate:"required,min=1"`
}

// UpdateBookRequest contains partial updates for a book. Nil fields are left
// unchanged.
type UpdateBookRequest struct {
	Title           *string    `json:"title,omitempty" validate:"omitempty,max=500"`
	Price           *string    `json:"price,omitempty"`
	StockQuantity   *int       `json:"stock_quantity,omitempty" validate:"omitempty,gte=0"`
	Description     *string    `json:"description,omitempty" validate:"omitempty,max=10000"`
	ImageURL        *string    `json:"img_url,omitempty"`
	FileURL         *string    `json:"file_url,omitempty"`
	PublicationDate *time.Time `json:"publication_date,omitempty"`
	Recommended     *bool      `json:"recommended,omitempty"`
	AuthorIDs       []string   `json:"author_ids,omitempty"`
}

// CreateBook adds a book to the catalog and indexes it for search.
func (s *BookService) CreateBook(ctx context.Context, req CreateBookRequest) (*domain.Book, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	price, err := domain.MoneyFromString(req.Price)
	if err != nil {
		return nil, domainerrors.Validationf("price must be a decimal amount like %q", "12.99")
	}

	for _, authorID := range req.AuthorIDs {
		if _, err := s.store.Authors.Get(ctx, authorID); err != nil {
			if domainerrors.Is(err, store.ErrNotFound) {
				return nil, store.ErrAuthorNotFound.WithDetails(map[string]string{"author_id": authorID})
			}
			return nil, fmt.Errorf("get author: %w", err)
		}
	}

	bookID, err := id.Generate("book")
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}

	book := &domain.Book{
		Tracked:         domain.Tracked{ID: bookID},
		Title:           req.Title,
		Price:           price,
		StockQuantity:   req.StockQuantity,
		Description:     req.Description,
		ImageURL:        req.ImageURL,
		FileURL:         req.FileURL,
		PublicationDate: req.PublicationDate,
		Recommended:     req.Recommended,
		AuthorIDs:       req.AuthorIDs,
	}
	book.InitTimestamps()

	if err := s.store.Books.Create(ctx, bookID, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	s.indexBook(ctx, book)

	if s.logger != nil {
		s.logger.Info("book created", "book_id", bookID, "title", book.Title)
	}

	return book, nil
}

// GetBook retrieves a single book by ID.
func (s *BookService) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	book, err := s.store.Books.Get(ctx, bookID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, store.ErrBookNotFound
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

// ListBooks returns a page of the catalog.
func (s *BookService) ListBooks(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[domain.Book], error) {
	params.Validate()
	return s.store.ListBooks(ctx, params)
}

// ListRecommendedBooks returns books flagged for the storefront's
// recommendation shelf.
func (s *BookService) ListRecommendedBooks(ctx context.Context) ([]*domain.Book, error) {
	var books []*domain.Book
	for book, err := range s.store.Books.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list books: %w", err)
		}
		if book.Recommended {
			books = append(books, book)
		}
	}
	return books, nil
}

// ListBooksByAuthor returns the books crediting the given author.
func (s *BookService) ListBooksByAuthor(ctx context.Context, authorID string) ([]*domain.Book, error) {
	if _, err := s.store.Authors.Get(ctx, authorID); err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, store.ErrAuthorNotFound
		}
		return nil, fmt.Errorf("get author: %w", err)
	}

	var books []*domain.Book
	for book, err := range s.store.Books.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list books: %w", err)
		}
		for _, aid := range book.AuthorIDs {
			if aid == authorID {
				books = append(books, book)
				break
			}
		}
	}
	return books, nil
}

// UpdateBook applies a partial update and re-indexes the book.
func (s *BookService) UpdateBook(ctx context.Context, bookID string, req UpdateBookRequest) (*domain.Book, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.Price != nil {
		price, err := domain.MoneyFromString(*req.Price)
		if err != nil {
			return nil, domainerrors.Validationf("price must be a decimal amount like %q", "12.99")
		}
		book.Price = price
	}
	if req.StockQuantity != nil {
		book.StockQuantity = *req.StockQuantity
	}
	if req.Description != nil {
		book.Description = *req.Description
	}
	if req.ImageURL != nil {
		book.ImageURL = *req.ImageURL
	}
	if req.FileURL != nil {
		book.FileURL = *req.FileURL
	}
	if req.PublicationDate != nil {
		book.PublicationDate = req.PublicationDate
	}
	if req.Recommended != nil {
		book.Recommended = *req.Recommended
	}
	if req.AuthorIDs != nil {
		for _, authorID := range req.AuthorIDs {
			if _, err := s.store.Authors.Get(ctx, authorID); err != nil {
				if domainerrors.Is(err, store.ErrNotFound) {
					return nil, store.ErrAuthorNotFound.WithDetails(map[string]string{"author_id": authorID})
				}
				return nil, fmt.Errorf("get author: %w", err)
			}
		}
		book.AuthorIDs = req.AuthorIDs
	}
	book.Touch()

	if err := s.store.Books.Update(ctx, bookID, book); err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, store.ErrBookNotFound
		}
		return nil, fmt.Errorf("update book: %w", err)
	}

	s.indexBook(ctx, book)

	return book, nil
}

// DeleteBook removes a book from the catalog and the search index.
// Cart lines and order history keep their snapshots.
func (s *BookService) DeleteBook(ctx context.Context, bookID string) error {
	if err := s.store.Books.Delete(ctx, bookID); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	if s.index != nil {
		if err := s.index.DeleteDocument(bookID); err != nil && s.logger != nil {
			s.logger.Warn("failed to remove book from search index", "book_id", bookID, "error", err)
		}
	}

	if s.logger != nil {
		s.logger.Info("book deleted", "book_id", bookID)
	}

	return nil
}

// indexBook updates the book's search document. Index failures are logged,
// not surfaced; the catalog stays authoritative.
func (s *BookService) indexBook(ctx context.Context, book *domain.Book) {
	if s.index == nil {
		return
	}
	doc := search.BookDocument(book, s.primaryAuthorName(ctx, book))
	if err := s.index.IndexDocument(doc); err != nil && s.logger != nil {
		s.logger.Warn("failed to index book", "book_id", book.ID, "error", err)
	}
}

// primaryAuthorName resolves the first credited author's display name.
func (s *BookService) primaryAuthorName(ctx context.Context, book *domain.Book) string {
	if len(book.AuthorIDs) == 0 {
		return ""
	}
	author, err := s.store.Authors.Get(ctx, book.AuthorIDs[0])
	if err != nil {
		return ""
	}
	return author.Name()
}

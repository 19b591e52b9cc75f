package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
	domainerrors "github.com/bookhavenapp/bookhaven-server/internal/errors"
	"github.com/bookhavenapp/bookhaven-server/internal/id"
	"github.com/bookhavenapp/bookhaven-server/internal/search"
	"github.com/bookhavenapp/bookhaven-server/internal/store"
)

// AuthorService manages catalog authors.
type AuthorService struct {
	store  *store.Store
	index  *search.Index
	logger *slog.Logger
}

// NewAuthorService creates a new author service.
func NewAuthorService(s *store.Store, index *search.Index, logger *slog.Logger) *AuthorService {
	return &AuthorService{
		store:  s,
		index:  index,
		logger: logger,
	}
}

// CreateAuthorRequest contains the data for a new author.
type CreateAuthorRequest struct {
	FirstName string `json:"first_name" validate:"max=200"`
	LastName  string `json:"last_name" validate:"required,max=200"`
	Bio       string `json:"bio,omitempty" validate:"max=10000"`
}

// UpdateAuthorRequest contains partial updates for an author.
type UpdateAuthorRequest struct {
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,max=200"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,max=200"`
	Bio       *string `json:"bio,omitempty" validate:"omitempty,max=10000"`
}

// CreateAuthor adds an author. Author names are unique (case-insensitive);
// a duplicate name means the author already exists.
func (s *AuthorService) CreateAuthor(ctx context.Context, req CreateAuthorRequest) (*domain.Author, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	authorID, err := id.Generate("author")
	if err != nil {
		return nil, fmt.Errorf("generate author ID: %w", err)
	}

	author := &domain.Author{
		Tracked:   domain.Tracked{ID: authorID},
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
	}
	author.InitTimestamps()

	if err := s.store.Authors.Create(ctx, authorID, author); err != nil {
		if domainerrors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("an author with that name already exists")
		}
		return nil, fmt.Errorf("create author: %w", err)
	}

	s.indexAuthor(ctx, author)

	if s.logger != nil {
		s.logger.Info("author created", "author_id", authorID, "name", author.Name())
	}

	return author, nil
}

// GetAuthor retrieves an author by ID.
func (s *AuthorService) GetAuthor(ctx context.Context, authorID string) (*domain.Author, error) {
	author, err := s.store.Authors.Get(ctx, authorID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, store.ErrAuthorNotFound
		}
		return nil, fmt.Errorf("get author: %w", err)
	}
	return author, nil
}

// GetAuthorByName looks an author up by display name (case-insensitive).
// Seeding and imports use this to avoid duplicating authors.
func (s *AuthorService) GetAuthorByName(ctx context.Context, name string) (*domain.Author, error) {
	author, err := s.store.Authors.GetByIndex(ctx, "name", name)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, store.ErrAuthorNotFound
		}
		return nil, fmt.Errorf("get author by name: %w", err)
	}
	return author, nil
}

// ListAuthors returns all authors in the catalog.
func (s *AuthorService) ListAuthors(ctx context.Context) ([]*domain.Author, error) {
	var authors []*domain.Author
	for author, err := range s.store.Authors.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list authors: %w", err)
		}
		authors = append(authors, author)
	}
	return authors, nil
}

// UpdateAuthor applies a partial update and re-indexes the author.
func (s *AuthorService) UpdateAuthor(ctx context.Context, authorID string, req UpdateAuthorRequest) (*domain.Author, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	author, err := s.GetAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		author.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		author.LastName = *req.LastName
	}
	if req.Bio != nil {
		author.Bio = *req.Bio
	}
	author.Touch()

	if err := s.store.Authors.Update(ctx, authorID, author); err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, store.ErrAuthorNotFound
		}
		if domainerrors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("an author with that name already exists")
		}
		return nil, fmt.Errorf("update author: %w", err)
	}

	s.indexAuthor(ctx, author)

	return author, nil
}

// DeleteAuthor removes an author. Books still crediting the author are
// rejected; reassign or delete them first.
func (s *AuthorService) DeleteAuthor(ctx context.Context, authorID string) error {
	for book, err := range s.store.Books.List(ctx) {
		if err != nil {
			return fmt.Errorf("list books: %w", err)
		}
		for _, aid := range book.AuthorIDs {
			if aid == authorID {
				return domainerrors.Conflict("author still has books in the catalog")
			}
		}
	}

	if err := s.store.Authors.Delete(ctx, authorID); err != nil {
		return fmt.Errorf("delete author: %w", err)
	}

	if s.index != nil {
		if err := s.index.DeleteDocument(authorID); err != nil && s.logger != nil {
			s.logger.Warn("failed to remove author from search index", "author_id", authorID, "error", err)
		}
	}

	return nil
}

// indexAuthor updates the author's search document with their book count.
func (s *AuthorService) indexAuthor(ctx context.Context, author *domain.Author) {
	if s.index == nil {
		return
	}

	bookCount := 0
	for book, err := range s.store.Books.List(ctx) {
		if err != nil {
			break
		}
		for _, aid := range book.AuthorIDs {
			if aid == author.ID {
				bookCount++
				break
			}
		}
	}

	doc := search.AuthorDocument(author, bookCount)
	if err := s.index.IndexDocument(doc); err != nil && s.logger != nil {
		s.logger.Warn("failed to index author", "author_id", author.ID, "error", err)
	}
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
	"github.com/bookhavenapp/bookhaven-server/internal/search"
	"github.com/bookhavenapp/bookhaven-server/internal/store"
)

// SearchService runs catalog searches and keeps the index rebuildable from
// the store, which stays the source of truth.
type SearchService struct {
	store  *store.Store
	index  *search.Index
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(s *store.Store, index *search.Index, logger *slog.Logger) *SearchService {
	return &SearchService{
		store:  s,
		index:  index,
		logger: logger,
	}
}

// Search executes a catalog search.
func (s *SearchService) Search(ctx context.Context, params search.Params) (*search.Result, error) {
	return s.index.Search(ctx, params)
}

// RebuildFromStore drops the index and re-indexes every book and author.
// Run at startup when the index mapping changed, or on demand by an admin.
func (s *SearchService) RebuildFromStore(ctx context.Context) error {
	start := time.Now()

	if err := s.index.Rebuild(); err != nil {
		return fmt.Errorf("reset index: %w", err)
	}

	authorNames := make(map[string]string)
	bookCounts := make(map[string]int)

	var authors []*domain.Author
	for author, err := range s.store.Authors.List(ctx) {
		if err != nil {
			return fmt.Errorf("list authors: %w", err)
		}
		authorNames[author.ID] = author.Name()
		authors = append(authors, author)
	}

	var docs []*search.Document
	for book, err := range s.store.Books.List(ctx) {
		if err != nil {
			return fmt.Errorf("list books: %w", err)
		}

		name := ""
		if len(book.AuthorIDs) > 0 {
			name = authorNames[book.AuthorIDs[0]]
		}
		for _, aid := range book.AuthorIDs {
			bookCounts[aid]++
		}

		docs = append(docs, search.BookDocument(book, name))
	}

	for _, author := range authors {
		docs = append(docs, search.AuthorDocument(author, bookCounts[author.ID]))
	}

	if err := s.index.IndexDocuments(docs); err != nil {
		return fmt.Errorf("index documents: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("search index rebuilt",
			"documents", len(docs),
			"duration", time.Since(start).Round(time.Millisecond),
		)
	}

	return nil
}

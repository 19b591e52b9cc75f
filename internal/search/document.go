// Package search provides full-text catalog search using Bleve: books and
// authors in one index with fuzzy matching and price/year filtering.
package search

import (
	"github.com/bookhavenapp/bookhaven-server/internal/domain"
)

// DocType discriminates document kinds in the unified index.
type DocType string

// Document types for the search index.
const (
	DocTypeBook   DocType = "book"
	DocTypeAuthor DocType = "author"
)

// Document is the unified document structure for the Bleve index.
// Author names are denormalized into book documents so a single query covers
// "books by this author" without a join against the store.
type Document struct {
	ID   string  `json:"id"`
	Type DocType `json:"type"`

	// Primary searchable text: book title or author name.
	Name string `json:"name"`

	// Book-specific fields.
	Description string  `json:"description,omitempty"`
	Author      string  `json:"author,omitempty"`
	Price       float64 `json:"price,omitempty"` // indexed for range filtering only
	PublishYear int     `json:"publish_year,omitempty"`
	InStock     bool    `json:"in_stock"`

	// Author-specific fields.
	Bio       string `json:"bio,omitempty"`
	BookCount int    `json:"book_count,omitempty"`

	// Unix millis, for recency sorting.
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// ToMap converts the document to a map with lowercase field names so they
// line up with the index mapping (Bleve would otherwise use the capitalized
// Go field names).
func (d *Document) ToMap() map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"type":       string(d.Type),
		"name":       d.Name,
		"in_stock":   d.InStock,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}

	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.Author != "" {
		m["author"] = d.Author
	}
	if d.Price > 0 {
		m["price"] = d.Price
	}
	if d.PublishYear > 0 {
		m["publish_year"] = d.PublishYear
	}
	if d.Bio != "" {
		m["bio"] = d.Bio
	}
	if d.BookCount > 0 {
		m["book_count"] = d.BookCount
	}

	return m
}

// BookDocument converts a domain Book to a search document. The author
// display name is passed in by the caller; search must not depend on store.
func BookDocument(book *domain.Book, authorName string) *Document {
	doc := &Document{
		ID:          book.ID,
		Type:        DocTypeBook,
		Name:        book.Title,
		Description: book.Description,
		Author:      authorName,
		Price:       book.Price.Amount.InexactFloat64(),
		InStock:     book.InStock(1),
		CreatedAt:   book.CreatedAt.UnixMilli(),
		UpdatedAt:   book.UpdatedAt.UnixMilli(),
	}

	if book.PublicationDate != nil {
		doc.PublishYear = book.PublicationDate.Year()
	}

	return doc
}

// AuthorDocument converts a domain Author to a search document.
func AuthorDocument(author *domain.Author, bookCount int) *Document {
	return &Document{
		ID:        author.ID,
		Type:      DocTypeAuthor,
		Name:      author.Name(),
		Bio:       author.Bio,
		BookCount: bookCount,
		CreatedAt: author.CreatedAt.UnixMilli(),
		UpdatedAt: author.UpdatedAt.UnixMilli(),
	}
}

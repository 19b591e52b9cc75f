package api

import (
	"context"
	"net/http"
	"time"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
	"github.com/bookhavenapp/bookhaven-server/internal/service"
	"github.com/bookhavenapp/bookhaven-server/internal/store"
	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns a page of the catalog, ordered by ID",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "listRecommendedBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/recommended",
		Summary:     "List recommended books",
		Description: "Returns the staff-picked books shown on the storefront home page",
		Tags:        []string{"Books"},
	}, s.handleListRecommendedBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "Returns a single book by ID",
		Tags:        []string{"Books"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "createBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/books",
		Summary:     "Create book",
		Description: "Adds a book to the catalog (admin only)",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPatch,
		Path:        "/api/v1/books/{id}",
		Summary:     "Update book",
		Description: "Updates catalog data for a book (admin only). Existing cart lines keep their snapshots.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBook",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{id}",
		Summary:     "Delete book",
		Description: "Removes a book from the catalog (admin only)",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteBook)
}

// === DTOs ===

// ListBooksInput contains pagination parameters for the catalog listing.
type ListBooksInput struct {
	Limit  int    `query:"limit" doc:"Maximum books per page (default 50)"`
	Cursor string `query:"cursor" doc:"Opaque cursor from a previous page"`
}

// BookResponse contains book data in API responses.
type BookResponse struct {
	ID              string     `json:"id" doc:"Book ID"`
	Title           string     `json:"title" doc:"Book title"`
	Price           string     `json:"price" doc:"Unit price as a decimal string"`
	PriceDisplay    string     `json:"price_display" doc:"Formatted price with currency symbol"`
	Currency        string     `json:"currency" doc:"ISO currency code"`
	StockQuantity   int        `json:"stock_quantity" doc:"Units in stock"`
	Description     string     `json:"description,omitempty" doc:"Book description"`
	ImageURL        string     `json:"img_url,omitempty" doc:"Cover image URL"`
	FileURL         string     `json:"file_url,omitempty" doc:"Sample/download URL"`
	PublicationDate *time.Time `json:"publication_date,omitempty" doc:"Publication date"`
	Recommended     bool       `json:"recommended" doc:"Staff pick"`
	AuthorIDs       []string   `json:"author_ids" doc:"Author IDs"`
	CreatedAt       time.Time  `json:"created_at" doc:"Creation time"`
	UpdatedAt       time.Time  `json:"updated_at" doc:"Last update time"`
}

// ListBooksResponse contains a page of books.
type ListBooksResponse struct {
	Books      []BookResponse `json:"books" doc:"Books in this page"`
	NextCursor string         `json:"next_cursor,omitempty" doc:"Cursor for the next page"`
	HasMore    bool           `json:"has_more" doc:"Whether another page exists"`
}

// ListBooksOutput wraps the book page for Huma.
type ListBooksOutput struct {
	Body ListBooksResponse
}

// BooksOutput wraps a flat book list for Huma.
type BooksOutput struct {
	Body struct {
		Books []BookResponse `json:"books" doc:"Books"`
	}
}

// BookOutput wraps a single book for Huma.
type BookOutput struct {
	Body BookResponse
}

// GetBookInput contains parameters for fetching a book.
type GetBookInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// CreateBookRequest is the request body for creating a book.
type CreateBookRequest struct {
	Title           string     `json:"title" validate:"required,max=500" doc:"Book title"`
	Price           string     `json:"price" validate:"required" doc:"Unit price as a decimal string, e.g. \"12.99\""`
	StockQuantity   int        `json:"stock_quantity" validate:"gte=0" doc:"Units in stock"`
	Description     string     `json:"description,omitempty" validate:"max=10000" doc:"Book description"`
	ImageURL        string     `json:"img_url,omitempty" doc:"Cover image URL"`
	FileURL         string     `json:"file_url,omitempty" doc:"Sample/download URL"`
	PublicationDate *time.Time `json:"publication_date,omitempty" doc:"Publication date"`
	Recommended     bool       `json:"recommended,omitempty" doc:"Staff pick"`
	AuthorIDs       []string   `json:"author_ids" validate:"required,min=1" doc:"Author IDs"`
}

// CreateBookInput wraps the create book request for Huma.
type CreateBookInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateBookRequest
}

// UpdateBookRequest is the request body for a partial book update.
type UpdateBookRequest struct {
	Title           *string    `json:"title,omitempty" validate:"omitempty,max=500" doc:"Book title"`
	Price           *string    `json:"price,omitempty" doc:"Unit price as a decimal string"`
	StockQuantity   *int       `json:"stock_quantity,omitempty" validate:"omitempty,gte=0" doc:"Units in stock"`
	Description     *string    `json:"description,omitempty" validate:"omitempty,max=10000" doc:"Book description"`
	ImageURL        *string    `json:"img_url,omitempty" doc:"Cover image URL"`
	FileURL         *string    `json:"file_url,omitempty" doc:"Sample/download URL"`
	PublicationDate *time.Time `json:"publication_date,omitempty" doc:"Publication date"`
	Recommended     *bool      `json:"recommended,omitempty" doc:"Staff pick"`
	AuthorIDs       []string   `json:"author_ids,omitempty" doc:"Author IDs"`
}

// UpdateBookInput wraps the update book request for Huma.
type UpdateBookInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
	Body          UpdateBookRequest
}

// DeleteBookInput contains parameters for deleting a book.
type DeleteBookInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*ListBooksOutput, error) {
	params := store.PaginationParams{
		Limit:  input.Limit,
		Cursor: input.Cursor,
	}

	page, err := s.services.Book.ListBooks(ctx, params)
	if err != nil {
		return nil, err
	}

	resp := make([]BookResponse, len(page.Items))
	for i := range page.Items {
		resp[i] = mapBookResponse(&page.Items[i])
	}

	return &ListBooksOutput{
		Body: ListBooksResponse{
			Books:      resp,
			NextCursor: page.NextCursor,
			HasMore:    page.HasMore,
		},
	}, nil
}

func (s *Server) handleListRecommendedBooks(ctx context.Context, _ *struct{}) (*BooksOutput, error) {
	books, err := s.services.Book.ListRecommendedBooks(ctx)
	if err != nil {
		return nil, err
	}

	out := &BooksOutput{}
	out.Body.Books = mapBookResponses(books)
	return out, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *GetBookInput) (*BookOutput, error) {
	book, err := s.services.Book.GetBook(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBookResponse(book)}, nil
}

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	book, err := s.services.Book.CreateBook(ctx, service.CreateBookRequest{
		Title:           input.Body.Title,
		Price:           input.Body.Price,
		StockQuantity:   input.Body.StockQuantity,
		Description:     input.Body.Description,
		ImageURL:        input.Body.ImageURL,
		FileURL:         input.Body.FileURL,
		PublicationDate: input.Body.PublicationDate,
		Recommended:     input.Body.Recommended,
		AuthorIDs:       input.Body.AuthorIDs,
	})
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBookResponse(book)}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	book, err := s.services.Book.UpdateBook(ctx, input.ID, service.UpdateBookRequest{
		Title:           input.Body.Title,
		Price:           input.Body.Price,
		StockQuantity:   input.Body.StockQuantity,
		Description:     input.Body.Description,
		ImageURL:        input.Body.ImageURL,
		FileURL:         input.Body.FileURL,
		PublicationDate: input.Body.PublicationDate,
		Recommended:     input.Body.Recommended,
		AuthorIDs:       input.Body.AuthorIDs,
	})
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBookResponse(book)}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *DeleteBookInput) (*MessageOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	if err := s.services.Book.DeleteBook(ctx, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Book deleted"}}, nil
}

// === Helpers ===

func mapBookResponse(book *domain.Book) BookResponse {
	return BookResponse{
		ID:              book.ID,
		Title:           book.Title,
		Price:           book.Price.Amount.StringFixed(2),
		PriceDisplay:    book.Price.String(),
		Currency:        book.Price.Currency,
		StockQuantity:   book.StockQuantity,
		Description:     book.Description,
		ImageURL:        book.ImageURL,
		FileURL:         book.FileURL,
		PublicationDate: book.PublicationDate,
		Recommended:     book.Recommended,
		AuthorIDs:       book.AuthorIDs,
		CreatedAt:       book.CreatedAt,
		UpdatedAt:       book.UpdatedAt,
	}
}

func mapBookResponses(books []*domain.Book) []BookResponse {
	resp := make([]BookResponse, len(books))
	for i, b := range books {
		resp[i] = mapBookResponse(b)
	}
	return resp
}

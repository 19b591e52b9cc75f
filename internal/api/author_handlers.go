package api

import (
	"context"
	"net/http"
	"time"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
	"github.com/bookhavenapp/bookhaven-server/internal/service"
	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerAuthorRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listAuthors",
		Method:      http.MethodGet,
		Path:        "/api/v1/authors",
		Summary:     "List authors",
		Description: "Returns all authors in the catalog",
		Tags:        []string{"Authors"},
	}, s.handleListAuthors)

	huma.Register(s.api, huma.Operation{
		OperationID: "getAuthor",
		Method:      http.MethodGet,
		Path:        "/api/v1/authors/{id}",
		Summary:     "Get author",
		Description: "Returns a single author by ID",
		Tags:        []string{"Authors"},
	}, s.handleGetAuthor)

	huma.Register(s.api, huma.Operation{
		OperationID: "getAuthorBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/authors/{id}/books",
		Summary:     "Get author books",
		Description: "Returns the books credited to an author",
		Tags:        []string{"Authors"},
	}, s.handleGetAuthorBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "createAuthor",
		Method:      http.MethodPost,
		Path:        "/api/v1/authors",
		Summary:     "Create author",
		Description: "Adds an author to the catalog (admin only). Author names are unique.",
		Tags:        []string{"Authors"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateAuthor)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateAuthor",
		Method:      http.MethodPatch,
		Path:        "/api/v1/authors/{id}",
		Summary:     "Update author",
		Description: "Updates an author (admin only)",
		Tags:        []string{"Authors"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateAuthor)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteAuthor",
		Method:      http.MethodDelete,
		Path:        "/api/v1/authors/{id}",
		Summary:     "Delete author",
		Description: "Removes an author (admin only). Fails while books still credit them.",
		Tags:        []string{"Authors"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteAuthor)
}

// === DTOs ===

// AuthorResponse contains author data in API responses.
type AuthorResponse struct {
	ID        string    `json:"id" doc:"Author ID"`
	FirstName string    `json:"first_name,omitempty" doc:"First name"`
	LastName  string    `json:"last_name" doc:"Last name"`
	Name      string    `json:"name" doc:"Display name"`
	Bio       string    `json:"bio,omitempty" doc:"Biography"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

// ListAuthorsResponse contains all authors.
type ListAuthorsResponse struct {
	Authors []AuthorResponse `json:"authors" doc:"Authors"`
}

// ListAuthorsOutput wraps the author list for Huma.
type ListAuthorsOutput struct {
	Body ListAuthorsResponse
}

// AuthorOutput wraps a single author for Huma.
type AuthorOutput struct {
	Body AuthorResponse
}

// GetAuthorInput contains parameters for fetching an author.
type GetAuthorInput struct {
	ID string `path:"id" doc:"Author ID"`
}

// CreateAuthorRequest is the request body for creating an author.
type CreateAuthorRequest struct {
	FirstName string `json:"first_name,omitempty" validate:"max=200" doc:"First name"`
	LastName  string `json:"last_name" validate:"required,max=200" doc:"Last name"`
	Bio       string `json:"bio,omitempty" validate:"max=10000" doc:"Biography"`
}

// CreateAuthorInput wraps the create author request for Huma.
type CreateAuthorInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateAuthorRequest
}

// UpdateAuthorRequest is the request body for a partial author update.
type UpdateAuthorRequest struct {
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,max=200" doc:"First name"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,max=200" doc:"Last name"`
	Bio       *string `json:"bio,omitempty" validate:"omitempty,max=10000" doc:"Biography"`
}

// UpdateAuthorInput wraps the update author request for Huma.
type UpdateAuthorInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Author ID"`
	Body          UpdateAuthorRequest
}

// DeleteAuthorInput contains parameters for deleting an author.
type DeleteAuthorInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Author ID"`
}

// === Handlers ===

func (s *Server) handleListAuthors(ctx context.Context, _ *struct{}) (*ListAuthorsOutput, error) {
	authors, err := s.services.Author.ListAuthors(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]AuthorResponse, len(authors))
	for i, a := range authors {
		resp[i] = mapAuthorResponse(a)
	}

	return &ListAuthorsOutput{Body: ListAuthorsResponse{Authors: resp}}, nil
}

func (s *Server) handleGetAuthor(ctx context.Context, input *GetAuthorInput) (*AuthorOutput, error) {
	author, err := s.services.Author.GetAuthor(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &AuthorOutput{Body: mapAuthorResponse(author)}, nil
}

func (s *Server) handleGetAuthorBooks(ctx context.Context, input *GetAuthorInput) (*BooksOutput, error) {
	books, err := s.services.Book.ListBooksByAuthor(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	out := &BooksOutput{}
	out.Body.Books = mapBookResponses(books)
	return out, nil
}

func (s *Server) handleCreateAuthor(ctx context.Context, input *CreateAuthorInput) (*AuthorOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	author, err := s.services.Author.CreateAuthor(ctx, service.CreateAuthorRequest{
		FirstName: input.Body.FirstName,
		LastName:  input.Body.LastName,
		Bio:       input.Body.Bio,
	})
	if err != nil {
		return nil, err
	}

	return &AuthorOutput{Body: mapAuthorResponse(author)}, nil
}

func (s *Server) handleUpdateAuthor(ctx context.Context, input *UpdateAuthorInput) (*AuthorOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	author, err := s.services.Author.UpdateAuthor(ctx, input.ID, service.UpdateAuthorRequest{
		FirstName: input.Body.FirstName,
		LastName:  input.Body.LastName,
		Bio:       input.Body.Bio,
	})
	if err != nil {
		return nil, err
	}

	return &AuthorOutput{Body: mapAuthorResponse(author)}, nil
}

func (s *Server) handleDeleteAuthor(ctx context.Context, input *DeleteAuthorInput) (*MessageOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	if err := s.services.Author.DeleteAuthor(ctx, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Author deleted"}}, nil
}

// === Helpers ===

func mapAuthorResponse(author *domain.Author) AuthorResponse {
	return AuthorResponse{
		ID:        author.ID,
		FirstName: author.FirstName,
		LastName:  author.LastName,
		Name:      author.Name(),
		Bio:       author.Bio,
		CreatedAt: author.CreatedAt,
		UpdatedAt: author.UpdatedAt,
	}
}

package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/bookhavenapp/bookhaven-server/internal/search"
	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "search",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search catalog",
		Description: "Full-text search across books and authors with filters and facets",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// SearchInput contains search query parameters.
type SearchInput struct {
	Query       string  `query:"q" doc:"Search text"`
	Types       string  `query:"types" doc:"Comma-separated document types to include (book, author)"`
	MinPrice    float64 `query:"min_price" doc:"Minimum book price"`
	MaxPrice    float64 `query:"max_price" doc:"Maximum book price (0 = unbounded)"`
	MinYear     int     `query:"min_year" doc:"Minimum publication year"`
	MaxYear     int     `query:"max_year" doc:"Maximum publication year (0 = unbounded)"`
	InStockOnly bool    `query:"in_stock" doc:"Only books with stock remaining"`
	Limit       int     `query:"limit" doc:"Maximum hits to return (default 20)"`
	Offset      int     `query:"offset" doc:"Hits to skip"`
	SortBy      string  `query:"sort" doc:"Sort field: relevance, title, author, recent, price"`
	SortOrder   string  `query:"order" doc:"Sort order: asc or desc"`
}

// SearchOutput wraps search results for Huma.
type SearchOutput struct {
	Body search.Result
}

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	params := search.DefaultParams()
	params.Query = input.Query
	params.MinPrice = input.MinPrice
	params.MaxPrice = input.MaxPrice
	params.MinYear = input.MinYear
	params.MaxYear = input.MaxYear
	params.InStockOnly = input.InStockOnly

	if input.Types != "" {
		params.Types = splitCSV(input.Types)
	}
	if input.Limit > 0 {
		params.Limit = input.Limit
	}
	if input.Offset > 0 {
		params.Offset = input.Offset
	}
	if input.SortBy != "" {
		params.SortBy = input.SortBy
	}
	if input.SortOrder != "" {
		params.SortOrder = input.SortOrder
	}

	result, err := s.services.Search.Search(ctx, params)
	if err != nil {
		return nil, err
	}

	return &SearchOutput{Body: *result}, nil
}

// splitCSV splits a comma-separated query value, dropping empty entries.
func splitCSV(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

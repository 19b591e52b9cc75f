package api

import (
	"context"
	"net/http"

	"github.com/bookhavenapp/bookhaven-server/internal/cart"
	"github.com/bookhavenapp/bookhaven-server/internal/service"
	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerCartRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCart",
		Method:      http.MethodGet,
		Path:        "/api/v1/cart",
		Summary:     "Get cart",
		Description: "Returns the cart for the caller. A bearer token selects the user's cart; anonymous requests (or X-Cart-Scope: guest) address the guest cart.",
		Tags:        []string{"Cart"},
	}, s.handleGetCart)

	huma.Register(s.api, huma.Operation{
		OperationID: "addCartItem",
		Method:      http.MethodPost,
		Path:        "/api/v1/cart/items",
		Summary:     "Add item to cart",
		Description: "Adds a book to the cart, snapshotting its current price. Adding a book already in the cart increments its quantity.",
		Tags:        []string{"Cart"},
	}, s.handleAddCartItem)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeCartItem",
		Method:      http.MethodDelete,
		Path:        "/api/v1/cart/items/{bookId}",
		Summary:     "Remove item from cart",
		Description: "Removes a line entirely, regardless of quantity",
		Tags:        []string{"Cart"},
	}, s.handleRemoveCartItem)

	huma.Register(s.api, huma.Operation{
		OperationID: "decreaseCartItem",
		Method:      http.MethodPost,
		Path:        "/api/v1/cart/items/{bookId}/decrease",
		Summary:     "Decrease item quantity",
		Description: "Decrements a line's quantity, removing the line when it reaches zero",
		Tags:        []string{"Cart"},
	}, s.handleDecreaseCartItem)

	huma.Register(s.api, huma.Operation{
		OperationID: "clearCart",
		Method:      http.MethodDelete,
		Path:        "/api/v1/cart",
		Summary:     "Clear cart",
		Description: "Empties the cart and deletes its persisted record",
		Tags:        []string{"Cart"},
	}, s.handleClearCart)
}

// === DTOs ===

// CartScopeInput carries the headers that select which cart a request addresses.
type CartScopeInput struct {
	Authorization string `header:"Authorization"`
	XCartScope    string `header:"X-Cart-Scope" doc:"Set to \"guest\" to address the guest cart even when authenticated"`
}

// CartLineResponse is one line of a cart in API responses.
type CartLineResponse struct {
	BookID       string `json:"book_id" doc:"Book ID"`
	Title        string `json:"title,omitempty" doc:"Title snapshot from add time"`
	AuthorName   string `json:"author_name,omitempty" doc:"Author snapshot from add time"`
	ImageURL     string `json:"img_url,omitempty" doc:"Cover snapshot from add time"`
	UnitPrice    string `json:"unit_price" doc:"Price snapshot as a decimal string"`
	PriceDisplay string `json:"price_display" doc:"Formatted price snapshot"`
	Quantity     int    `json:"quantity" doc:"Units of this book"`
	LineTotal    string `json:"line_total" doc:"Unit price times quantity"`
}

// CartResponse contains the cart with server-computed totals.
type CartResponse struct {
	Lines        []CartLineResponse `json:"lines" doc:"Cart lines"`
	TotalItems   int                `json:"total_items" doc:"Total units across all lines"`
	TotalPrice   string             `json:"total_price" doc:"Cart total as a decimal string"`
	TotalDisplay string             `json:"total_display" doc:"Formatted cart total"`
	Currency     string             `json:"currency" doc:"ISO currency code"`
}

// CartOutput wraps the cart response for Huma.
type CartOutput struct {
	Body CartResponse
}

// AddCartItemRequest is the request body for adding a book to the cart.
type AddCartItemRequest struct {
	BookID   string `json:"book_id" validate:"required" doc:"Book to add"`
	Quantity int    `json:"quantity,omitempty" validate:"omitempty,gte=1" doc:"Units to add (default 1)"`
}

// AddCartItemInput wraps the add item request for Huma.
type AddCartItemInput struct {
	CartScopeInput
	Body AddCartItemRequest
}

// CartItemInput addresses a single line for removal or decrement.
type CartItemInput struct {
	CartScopeInput
	BookID string `path:"bookId" doc:"Book ID"`
}

// === Handlers ===

func (s *Server) handleGetCart(ctx context.Context, input *CartScopeInput) (*CartOutput, error) {
	identity, err := s.cartIdentity(ctx, input.Authorization, input.XCartScope)
	if err != nil {
		return nil, err
	}

	view, err := s.services.Cart.Get(ctx, identity)
	if err != nil {
		return nil, err
	}

	return &CartOutput{Body: mapCartResponse(view)}, nil
}

func (s *Server) handleAddCartItem(ctx context.Context, input *AddCartItemInput) (*CartOutput, error) {
	identity, err := s.cartIdentity(ctx, input.Authorization, input.XCartScope)
	if err != nil {
		return nil, err
	}

	quantity := input.Body.Quantity
	if quantity < 1 {
		quantity = 1
	}

	view, err := s.services.Cart.AddItem(ctx, identity, input.Body.BookID, quantity)
	if err != nil {
		return nil, err
	}

	return &CartOutput{Body: mapCartResponse(view)}, nil
}

func (s *Server) handleRemoveCartItem(ctx context.Context, input *CartItemInput) (*CartOutput, error) {
	identity, err := s.cartIdentity(ctx, input.Authorization, input.XCartScope)
	if err != nil {
		return nil, err
	}

	view, err := s.services.Cart.RemoveItem(ctx, identity, input.BookID)
	if err != nil {
		return nil, err
	}

	return &CartOutput{Body: mapCartResponse(view)}, nil
}

func (s *Server) handleDecreaseCartItem(ctx context.Context, input *CartItemInput) (*CartOutput, error) {
	identity, err := s.cartIdentity(ctx, input.Authorization, input.XCartScope)
	if err != nil {
		return nil, err
	}

	view, err := s.services.Cart.DecreaseQuantity(ctx, identity, input.BookID)
	if err != nil {
		return nil, err
	}

	return &CartOutput{Body: mapCartResponse(view)}, nil
}

func (s *Server) handleClearCart(ctx context.Context, input *CartScopeInput) (*CartOutput, error) {
	identity, err := s.cartIdentity(ctx, input.Authorization, input.XCartScope)
	if err != nil {
		return nil, err
	}

	view, err := s.services.Cart.Clear(ctx, identity)
	if err != nil {
		return nil, err
	}

	return &CartOutput{Body: mapCartResponse(view)}, nil
}

// === Helpers ===

func mapCartResponse(view *service.CartView) CartResponse {
	lines := make([]CartLineResponse, len(view.Lines))
	for i, line := range view.Lines {
		lines[i] = mapCartLineResponse(line)
	}

	return CartResponse{
		Lines:        lines,
		TotalItems:   view.TotalItems,
		TotalPrice:   view.TotalPrice.Amount.StringFixed(2),
		TotalDisplay: view.TotalPrice.String(),
		Currency:     view.TotalPrice.Currency,
	}
}

func mapCartLineResponse(line cart.Line) CartLineResponse {
	lineTotal := line.UnitPrice.MulInt(line.Quantity)
	return CartLineResponse{
		BookID:       line.BookID,
		Title:        line.Title,
		AuthorName:   line.AuthorName,
		ImageURL:     line.ImageURL,
		UnitPrice:    line.UnitPrice.Amount.StringFixed(2),
		PriceDisplay: line.UnitPrice.String(),
		Quantity:     line.Quantity,
		LineTotal:    lineTotal.Amount.StringFixed(2),
	}
}

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
	"github.com/bookhavenapp/bookhaven-server/internal/service"
	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerOrderRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "checkout",
		Method:      http.MethodPost,
		Path:        "/api/v1/orders",
		Summary:     "Place order",
		Description: "Places an order from the user's cart: verifies stock, snapshots prices, decrements inventory and clears the cart",
		Tags:        []string{"Orders"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCheckout)

	huma.Register(s.api, huma.Operation{
		OperationID: "listOrders",
		Method:      http.MethodGet,
		Path:        "/api/v1/orders",
		Summary:     "List orders",
		Description: "Returns the authenticated user's order history",
		Tags:        []string{"Orders"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListOrders)

	huma.Register(s.api, huma.Operation{
		OperationID: "getOrder",
		Method:      http.MethodGet,
		Path:        "/api/v1/orders/{id}",
		Summary:     "Get order",
		Description: "Returns one of the authenticated user's orders",
		Tags:        []string{"Orders"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetOrder)

	huma.Register(s.api, huma.Operation{
		OperationID: "confirmOrder",
		Method:      http.MethodPost,
		Path:        "/api/v1/orders/{id}/confirm",
		Summary:     "Confirm order",
		Description: "Completes the simulated payment step for a pending order",
		Tags:        []string{"Orders"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleConfirmOrder)

	huma.Register(s.api, huma.Operation{
		OperationID: "cancelOrder",
		Method:      http.MethodPost,
		Path:        "/api/v1/orders/{id}/cancel",
		Summary:     "Cancel order",
		Description: "Cancels a pending order and restocks its items",
		Tags:        []string{"Orders"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCancelOrder)
}

// === DTOs ===

// CheckoutRequest is the request body for placing an order.
type CheckoutRequest struct {
	AddressID string `json:"address_id" validate:"required" doc:"Delivery address ID"`
}

// CheckoutInput wraps the checkout request for Huma.
type CheckoutInput struct {
	Authorization string `header:"Authorization"`
	Body          CheckoutRequest
}

// OrderItemResponse is one line of an order with its purchase-time snapshots.
type OrderItemResponse struct {
	BookID          string `json:"book_id" doc:"Book ID"`
	Title           string `json:"title" doc:"Title at purchase time"`
	AuthorName      string `json:"author_name,omitempty" doc:"Author at purchase time"`
	PriceAtPurchase string `json:"price_at_purchase" doc:"Unit price at purchase time"`
	Quantity        int    `json:"quantity" doc:"Units ordered"`
}

// OrderResponse contains order data in API responses.
type OrderResponse struct {
	ID           string              `json:"id" doc:"Order ID"`
	Reference    string              `json:"reference" doc:"Customer-facing order number"`
	Status       string              `json:"status" doc:"Order status: pending, confirmed or cancelled"`
	TotalAmount  string              `json:"total_amount" doc:"Order total as a decimal string"`
	TotalDisplay string              `json:"total_display" doc:"Formatted order total"`
	Currency     string              `json:"currency" doc:"ISO currency code"`
	TotalItems   int                 `json:"total_items" doc:"Total units across all items"`
	Items        []OrderItemResponse `json:"items" doc:"Order lines"`
	AddressID    string              `json:"address_id,omitempty" doc:"Delivery address ID"`
	PlacedAt     time.Time           `json:"placed_at" doc:"When the order was placed"`
}

// OrderOutput wraps a single order for Huma.
type OrderOutput struct {
	Body OrderResponse
}

// ListOrdersResponse contains the user's order history.
type ListOrdersResponse struct {
	Orders []OrderResponse `json:"orders" doc:"Orders, most recent first"`
}

// ListOrdersOutput wraps the order list for Huma.
type ListOrdersOutput struct {
	Body ListOrdersResponse
}

// OrderIDInput addresses a single order by ID.
type OrderIDInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Order ID"`
}

// === Handlers ===

func (s *Server) handleCheckout(ctx context.Context, input *CheckoutInput) (*OrderOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	order, err := s.services.Order.Checkout(ctx, userID, service.CheckoutRequest{
		AddressID: input.Body.AddressID,
	})
	if err != nil {
		return nil, err
	}

	return &OrderOutput{Body: mapOrderResponse(order)}, nil
}

func (s *Server) handleListOrders(ctx context.Context, input *ProfileInput) (*ListOrdersOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	orders, err := s.services.Order.ListOrders(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]OrderResponse, len(orders))
	for i, o := range orders {
		resp[i] = mapOrderResponse(o)
	}

	return &ListOrdersOutput{Body: ListOrdersResponse{Orders: resp}}, nil
}

func (s *Server) handleGetOrder(ctx context.Context, input *OrderIDInput) (*OrderOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	order, err := s.services.Order.GetOrder(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &OrderOutput{Body: mapOrderResponse(order)}, nil
}

func (s *Server) handleConfirmOrder(ctx context.Context, input *OrderIDInput) (*OrderOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	order, err := s.services.Order.ConfirmOrder(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &OrderOutput{Body: mapOrderResponse(order)}, nil
}

func (s *Server) handleCancelOrder(ctx context.Context, input *OrderIDInput) (*OrderOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	order, err := s.services.Order.CancelOrder(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &OrderOutput{Body: mapOrderResponse(order)}, nil
}

// === Helpers ===

func mapOrderResponse(order *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemResponse{
			BookID:          item.BookID,
			Title:           item.Title,
			AuthorName:      item.AuthorName,
			PriceAtPurchase: item.PriceAtPurchase.Amount.StringFixed(2),
			Quantity:        item.Quantity,
		}
	}

	return OrderResponse{
		ID:           order.ID,
		Reference:    order.Reference,
		Status:       string(order.Status),
		TotalAmount:  order.TotalAmount.Amount.StringFixed(2),
		TotalDisplay: order.TotalAmount.String(),
		Currency:     order.TotalAmount.Currency,
		TotalItems:   order.TotalItems(),
		Items:        items,
		AddressID:    order.AddressID,
		PlacedAt:     order.PlacedAt,
	}
}

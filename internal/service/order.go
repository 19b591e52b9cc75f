package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bookhavenapp/bookhaven-server/internal/cart"
	"github.com/bookhavenapp/bookhaven-server/internal/domain"
	domainerrors "github.com/bookhavenapp/bookhaven-server/internal/errors"
	"github.com/bookhavenapp/bookhaven-server/internal/id"
	"github.com/bookhavenapp/bookhaven-server/internal/store"
)

// OrderService turns carts into orders. Prices come from the cart's
// snapshots, never re-fetched from the catalog, so the shopper pays what
// they saw.
type OrderService struct {
	store       *store.Store
	cartService *CartService
	addresses   *AddressService
	logger      *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(s *store.Store, cartService *CartService, addresses *AddressService, logger *slog.Logger) *OrderService {
	return &OrderService{
		store:       s,
		cartService: cartService,
		addresses:   addresses,
		logger:      logger,
	}
}

// CheckoutRequest contains the data needed to place an order.
type CheckoutRequest struct {
	AddressID string `json:"address_id" validate:"required"`
}

// Checkout places an order from the user's cart: verify stock for every
// line, decrement it, snapshot the lines into order items, and clear the
// cart. Stock is checked up front so a failure partway through the cart is
// unlikely, but the decrement itself is the authoritative guard.
func (s *OrderService) Checkout(ctx context.Context, userID string, req CheckoutRequest) (*domain.Order, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	view, err := s.cartService.Get(ctx, cart.ForUser(userID))
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(view.Lines) == 0 {
		return nil, domainerrors.Validation("cart is empty")
	}

	if _, err := s.addresses.GetAddress(ctx, userID, req.AddressID); err != nil {
		return nil, err
	}

	// Pre-check before any decrement; an out-of-stock line rejects the whole
	// order rather than shipping a partial one.
	for _, line := range view.Lines {
		book, err := s.store.Books.Get(ctx, line.BookID)
		if err != nil {
			if domainerrors.Is(err, store.ErrNotFound) {
				return nil, domainerrors.Validationf("%q is no longer available", line.Title)
			}
			return nil, fmt.Errorf("get book: %w", err)
		}
		if !book.InStock(line.Quantity) {
			return nil, domainerrors.OutOfStock(
				fmt.Sprintf("%q has %d in stock, cart wants %d", book.Title, book.StockQuantity, line.Quantity))
		}
	}

	for _, line := range view.Lines {
		if err := s.store.DecrementStock(ctx, line.BookID, line.Quantity); err != nil {
			return nil, err
		}
	}

	orderID, err := id.Generate("order")
	if err != nil {
		return nil, fmt.Errorf("generate order ID: %w", err)
	}

	items := make([]domain.OrderItem, 0, len(view.Lines))
	for _, line := range view.Lines {
		items = append(items, domain.OrderItem{
			BookID:          line.BookID,
			Title:           line.Title,
			AuthorName:      line.AuthorName,
			PriceAtPurchase: line.UnitPrice,
			Quantity:        line.Quantity,
		})
	}

	order := &domain.Order{
		Tracked:     domain.Tracked{ID: orderID},
		UserID:      userID,
		Reference:   uuid.NewString(),
		Status:      domain.OrderStatusPending,
		TotalAmount: cart.TotalPrice(view.Lines),
		Items:       items,
		AddressID:   req.AddressID,
		PlacedAt:    time.Now(),
	}
	order.InitTimestamps()

	if err := s.store.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if _, err := s.cartService.Clear(ctx, cart.ForUser(userID)); err != nil {
		// The order stands; an orphaned cart record is the lesser problem.
		if s.logger != nil {
			s.logger.Warn("failed to clear cart after checkout", "user_id", userID, "order_id", orderID, "error", err)
		}
	}

	if s.logger != nil {
		s.logger.Info("order placed",
			"order_id", orderID,
			"user_id", userID,
			"reference", order.Reference,
			"items", order.TotalItems(),
			"total", order.TotalAmount.String(),
		)
	}

	return order, nil
}

// GetOrder retrieves one of the user's orders. Other users' orders come
// back as not found.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, store.ErrOrderNotFound
	}
	return order, nil
}

// ListOrders returns the user's order history, most recent first.
func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]*domain.Order, error) {
	return s.store.ListOrdersByUser(ctx, userID)
}

// ConfirmOrder moves a pending order to confirmed, standing in for the
// payment step.
func (s *OrderService) ConfirmOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.OrderStatusPending {
		return nil, domainerrors.Conflict(fmt.Sprintf("order is %s, not pending", order.Status))
	}

	order.Status = domain.OrderStatusConfirmed
	order.Touch()
	if err := s.store.UpdateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}
	return order, nil
}

// CancelOrder cancels a pending order and restocks its items.
func (s *OrderService) CancelOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.OrderStatusPending {
		return nil, domainerrors.Conflict(fmt.Sprintf("order is %s, not pending", order.Status))
	}

	for _, item := range order.Items {
		if err := s.store.IncrementStock(ctx, item.BookID, item.Quantity); err != nil {
			// Book may have been deleted since; the cancellation still holds.
			if s.logger != nil {
				s.logger.Warn("failed to restock cancelled item", "book_id", item.BookID, "error", err)
			}
		}
	}

	order.Status = domain.OrderStatusCancelled
	order.Touch()
	if err := s.store.UpdateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("order cancelled", "order_id", orderID, "user_id", userID)
	}

	return order, nil
}

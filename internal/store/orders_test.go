package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/bookhavenapp/bookhaven-server/internal/cart"
	"github.com/bookhavenapp/bookhaven-server/internal/domain"
	"github.com/bookhavenapp/bookhaven-server/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(id, userID string, placedAt time.Time) *domain.Order {
	order := &domain.Order{
		UserID:      userID,
		Reference:   "ref-" + id,
		Status:      domain.OrderStatusPending,
		TotalAmount: domain.NewMoney(decimal.RequireFromString("25.00")),
		Items: []domain.OrderItem{
			{BookID: "book-1", Title: "Dune", PriceAtPurchase: domain.NewMoney(decimal.RequireFromString("12.50")), Quantity: 2},
		},
		PlacedAt: placedAt,
	}
	order.ID = id
	order.InitTimestamps()
	return order
}

func TestOrders_CreateAndGet(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	order := newTestOrder("order-1", "user-1", time.Now())
	require.NoError(t, s.CreateOrder(ctx, order))

	got, err := s.GetOrder(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, got.Status)
	assert.Equal(t, 2, got.TotalItems())

	_, err = s.GetOrder(ctx, "order-404")
	assert.ErrorIs(t, err, store.ErrOrderNotFound)

	// Duplicate IDs are rejected.
	assert.ErrorIs(t, s.CreateOrder(ctx, order), store.ErrAlreadyExists)
}

func TestOrders_UpdateStatus(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	order := newTestOrder("order-1", "user-1", time.Now())
	require.NoError(t, s.CreateOrder(ctx, order))

	order.Status = domain.OrderStatusConfirmed
	require.NoError(t, s.UpdateOrder(ctx, order))

	got, err := s.GetOrder(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusConfirmed, got.Status)
}

func TestOrders_ListByUserMostRecentFirst(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, s.CreateOrder(ctx, newTestOrder("order-1", "user-1", now.Add(-2*time.Hour))))
	require.NoError(t, s.CreateOrder(ctx, newTestOrder("order-2", "user-1", now)))
	require.NoError(t, s.CreateOrder(ctx, newTestOrder("order-3", "user-2", now)))

	orders, err := s.ListOrdersByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "order-2", orders[0].ID)
	assert.Equal(t, "order-1", orders[1].ID)
}

func TestCartStorage_RoundTrip(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	carts := s.Carts()

	// Absent record loads empty.
	lines, err := carts.Load(ctx, cart.GuestKey)
	require.NoError(t, err)
	assert.Empty(t, lines)

	saved := []cart.Line{
		{BookID: "book-1", Title: "Dune", UnitPrice: domain.NewMoney(decimal.RequireFromString("12.50")), Quantity: 2},
	}
	require.NoError(t, carts.Save(ctx, cart.GuestKey, saved))

	lines, err = carts.Load(ctx, cart.GuestKey)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "Dune", lines[0].Title)
	assert.True(t, lines[0].UnitPrice.Amount.Equal(decimal.RequireFromString("12.50")))

	require.NoError(t, carts.Delete(ctx, cart.GuestKey))
	require.NoError(t, carts.Delete(ctx, cart.GuestKey))

	lines, err = carts.Load(ctx, cart.GuestKey)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestCartStorage_BacksCartStore(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	cs := cart.NewStore(ctx, s.Carts(), testCartLogger())
	cs.AddItem(ctx, cart.Snapshot{
		BookID:    "book-1",
		Title:     "Dune",
		UnitPrice: domain.NewMoney(decimal.RequireFromString("10.00")),
	}, 2)
	require.NoError(t, cs.Login(ctx, "user-1"))

	// A fresh cart store over the same database sees the user's cart.
	cs2 := cart.NewStore(ctx, s.Carts(), testCartLogger())
	require.NoError(t, cs2.Login(ctx, "user-1"))
	require.Len(t, cs2.Lines(), 1)
	assert.Equal(t, 2, cs2.Lines()[0].Quantity)
}

func TestInstance_Lifecycle(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	_, err := s.GetInstance(ctx)
	assert.ErrorIs(t, err, store.ErrInstanceNotFound)

	instance, err := s.CreateInstance(ctx, "BookHaven", "1.0.0")
	require.NoError(t, err)
	assert.NotEmpty(t, instance.ID)
	assert.False(t, instance.HasRootUser)

	_, err = s.CreateInstance(ctx, "BookHaven", "1.0.0")
	assert.ErrorIs(t, err, store.ErrInstanceExists)

	instance.HasRootUser = true
	require.NoError(t, s.UpdateInstance(ctx, instance))

	got, err := s.GetInstance(ctx)
	require.NoError(t, err)
	assert.True(t, got.HasRootUser)
}

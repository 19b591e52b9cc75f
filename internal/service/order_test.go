package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhavenapp/bookhaven-server/internal/cart"
	"github.com/bookhavenapp/bookhaven-server/internal/domain"
	domainerrors "github.com/bookhavenapp/bookhaven-server/internal/errors"
)

// checkoutFixture registers a customer with an address and a stocked cart.
func checkoutFixture(t *testing.T, env *testEnv) (userID, addressID, bookID1, bookID2 string) {
	t.Helper()
	ctx := context.Background()

	_, bookID1, bookID2 = env.seedCatalog(t)
	user := env.registerCustomer(t, "buyer@example.com")

	addr, err := env.addresses.CreateAddress(ctx, user.ID, AddressRequest{
		Label:         "Home",
		RecipientName: "Buyer",
		PhoneNumber:   "0812345678",
		AddressLine1:  "1 Example Road",
		District:      "Central",
		SubDistrict:   "Inner",
		Province:      "Metropolis",
		PostalCode:    "10100",
	})
	require.NoError(t, err)

	return user.ID, addr.ID, bookID1, bookID2
}

func TestOrderService_Checkout(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()

	userID, addressID, bookID1, bookID2 := checkoutFixture(t, env)
	ctx := context.Background()

	_, err := env.carts.AddItem(ctx, cart.ForUser(userID), bookID1, 3)
	require.NoError(t, err)
	_, err = env.carts.AddItem(ctx, cart.ForUser(userID), bookID2, 1)
	require.NoError(t, err)

	order, err := env.orders.Checkout(ctx, userID, CheckoutRequest{AddressID: addressID})
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.NotEmpty(t, order.Reference)
	assert.Equal(t, 4, order.TotalItems())
	assert.Equal(t, "$50.00", order.TotalAmount.String())

	// Items carry purchase-time snapshots.
	require.Len(t, order.Items, 2)
	assert.Equal(t, "A Wizard of Earthsea", order.Items[0].Title)
	assert.Equal(t, "$10.00", order.Items[0].PriceAtPurchase.String())

	// Stock went down.
	book1, err := env.books.GetBook(ctx, bookID1)
	require.NoError(t, err)
	assert.Equal(t, 7, book1.StockQuantity)

	// The cart is gone.
	view, err := env.carts.Get(ctx, cart.ForUser(userID))
	require.NoError(t, err)
	assert.Empty(t, view.Lines)

	// And the order shows up in history.
	orders, err := env.orders.ListOrders(ctx, userID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)
}

func TestOrderService_Checkout_EmptyCart(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()

	userID, addressID, _, _ := checkoutFixture(t, env)

	_, err := env.orders.Checkout(context.Background(), userID, CheckoutRequest{AddressID: addressID})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.True(t, domainerrors.As(err, &domainErr))
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
}

func TestOrderService_Checkout_OutOfStock(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()

	userID, addressID, _, bookID2 := checkoutFixture(t, env)
	ctx := context.Background()

	// Book 2 has 5 in stock; want 6.
	_, err := env.carts.AddItem(ctx, cart.ForUser(userID), bookID2, 6)
	require.NoError(t, err)

	_, err = env.orders.Checkout(ctx, userID, CheckoutRequest{AddressID: addressID})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.True(t, domainerrors.As(err, &domainErr))
	assert.Equal(t, domainerrors.CodeOutOfStock, domainErr.Code)

	// Nothing was decremented and the cart survives for the shopper to fix.
	book2, err := env.books.GetBook(ctx, bookID2)
	require.NoError(t, err)
	assert.Equal(t, 5, book2.StockQuantity)

	view, err := env.carts.Get(ctx, cart.ForUser(userID))
	require.NoError(t, err)
	assert.Len(t, view.Lines, 1)
}

func TestOrderService_Checkout_AddressMustBelongToUser(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()

	userID, _, bookID1, _ := checkoutFixture(t, env)
	other := env.registerCustomer(t, "other@example.com")
	ctx := context.Background()

	otherAddr, err := env.addresses.CreateAddress(ctx, other.ID, AddressRequest{
		Label:         "Office",
		RecipientName: "Other",
		PhoneNumber:   "0898765432",
		AddressLine1:  "2 Example Road",
		District:      "Central",
		SubDistrict:   "Inner",
		Province:      "Metropolis",
		PostalCode:    "10200",
	})
	require.NoError(t, err)

	_, err = env.carts.AddItem(ctx, cart.ForUser(userID), bookID1, 1)
	require.NoError(t, err)

	_, err = env.orders.Checkout(ctx, userID, CheckoutRequest{AddressID: otherAddr.ID})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.True(t, domainerrors.As(err, &domainErr))
	assert.Equal(t, domainerrors.CodeNotFound, domainErr.Code)
}

func TestOrderService_GetOrder_Ownership(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()

	userID, addressID, bookID1, _ := checkoutFixture(t, env)
	other := env.registerCustomer(t, "other@example.com")
	ctx := context.Background()

	_, err := env.carts.AddItem(ctx, cart.ForUser(userID), bookID1, 1)
	require.NoError(t, err)
	order, err := env.orders.Checkout(ctx, userID, CheckoutRequest{AddressID: addressID})
	require.NoError(t, err)

	_, err = env.orders.GetOrder(ctx, other.ID, order.ID)
	require.Error(t, err)

	got, err := env.orders.GetOrder(ctx, userID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.Reference, got.Reference)
}

func TestOrderService_ConfirmAndCancel(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()

	userID, addressID, bookID1, _ := checkoutFixture(t, env)
	ctx := context.Background()

	_, err := env.carts.AddItem(ctx, cart.ForUser(userID), bookID1, 2)
	require.NoError(t, err)
	order, err := env.orders.Checkout(ctx, userID, CheckoutRequest{AddressID: addressID})
	require.NoError(t, err)

	cancelled, err := env.orders.CancelOrder(ctx, userID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, cancelled.Status)

	// Cancellation put the copies back.
	book1, err := env.books.GetBook(ctx, bookID1)
	require.NoError(t, err)
	assert.Equal(t, 10, book1.StockQuantity)

	// A cancelled order can be neither confirmed nor re-cancelled.
	_, err = env.orders.ConfirmOrder(ctx, userID, order.ID)
	require.Error(t, err)
	_, err = env.orders.CancelOrder(ctx, userID, order.ID)
	require.Error(t, err)
}

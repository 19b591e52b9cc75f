package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (ts *testServer) createAddress(t *testing.T, token string) string {
	t.Helper()

	resp := ts.api.Post("/api/v1/addresses", bearer(token), map[string]any{
		"label":          "Home",
		"recipient_name": "Reader One",
		"phone_number":   "555-0100",
		"address_line1":  "1 Harbor Road",
		"district":       "Old Town",
		"sub_district":   "Harborside",
		"province":       "Coastal",
		"postal_code":    "10110",
	})
	require.Equal(t, http.StatusOK, resp.Code, "Create address failed: %s", resp.Body.String())

	var envelope testEnvelope[AddressResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Data.ID
}

func TestCheckout_PlacesOrderAndClearsCart(t *testing.T) {
	ts := setupTestServer(t)
	adminToken := ts.setupAdmin(t)
	bookID := ts.seedBook(t, adminToken, "A Wizard of Earthsea", "10.00", 10)

	auth := ts.registerCustomer(t, "reader@example.com")
	addressID := ts.createAddress(t, auth.AccessToken)

	resp := ts.api.Post("/api/v1/cart/items", bearer(auth.AccessToken), map[string]any{
		"book_id":  bookID,
		"quantity": 3,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/orders", bearer(auth.AccessToken), map[string]any{
		"address_id": addressID,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[OrderResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	order := envelope.Data
	assert.Equal(t, "pending", order.Status)
	assert.NotEmpty(t, order.Reference)
	assert.Equal(t, "30.00", order.TotalAmount)
	assert.Equal(t, 3, order.TotalItems)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "10.00", order.Items[0].PriceAtPurchase)

	// Stock was decremented and the cart emptied.
	bookResp := ts.api.Get("/api/v1/books/" + bookID)
	require.Equal(t, http.StatusOK, bookResp.Code)
	var bookEnvelope testEnvelope[BookResponse]
	require.NoError(t, json.Unmarshal(bookResp.Body.Bytes(), &bookEnvelope))
	assert.Equal(t, 7, bookEnvelope.Data.StockQuantity)

	cart := ts.getCart(t, bearer(auth.AccessToken))
	assert.Empty(t, cart.Lines)
}

func TestCheckout_EmptyCart(t *testing.T) {
	ts := setupTestServer(t)
	ts.setupAdmin(t)
	auth := ts.registerCustomer(t, "reader@example.com")
	addressID := ts.createAddress(t, auth.AccessToken)

	resp := ts.api.Post("/api/v1/orders", bearer(auth.AccessToken), map[string]any{
		"address_id": addressID,
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCheckout_OutOfStock(t *testing.T) {
	ts := setupTestServer(t)
	adminToken := ts.setupAdmin(t)
	bookID := ts.seedBook(t, adminToken, "The Dispossessed", "20.00", 2)

	auth := ts.registerCustomer(t, "reader@example.com")
	addressID := ts.createAddress(t, auth.AccessToken)

	resp := ts.api.Post("/api/v1/cart/items", bearer(auth.AccessToken), map[string]any{
		"book_id":  bookID,
		"quantity": 3,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/orders", bearer(auth.AccessToken), map[string]any{
		"address_id": addressID,
	})
	assert.Equal(t, http.StatusConflict, resp.Code)

	var envelope testErrorEnvelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "OUT_OF_STOCK", envelope.Code)

	// Nothing happened: the cart and stock are untouched.
	cart := ts.getCart(t, bearer(auth.AccessToken))
	assert.Equal(t, 3, cart.TotalItems)
}

func TestOrder_ConfirmAndCancel(t *testing.T) {
	ts := setupTestServer(t)
	adminToken := ts.setupAdmin(t)
	bookID := ts.seedBook(t, adminToken, "A Wizard of Earthsea", "10.00", 10)

	auth := ts.registerCustomer(t, "reader@example.com")
	addressID := ts.createAddress(t, auth.AccessToken)

	placeOrder := func() string {
		resp := ts.api.Post("/api/v1/cart/items", bearer(auth.AccessToken), map[string]any{
			"book_id": bookID,
		})
		require.Equal(t, http.StatusOK, resp.Code)

		resp = ts.api.Post("/api/v1/orders", bearer(auth.AccessToken), map[string]any{
			"address_id": addressID,
		})
		require.Equal(t, http.StatusOK, resp.Code)

		var envelope testEnvelope[OrderResponse]
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
		return envelope.Data.ID
	}

	confirmed := placeOrder()
	resp := ts.api.Post("/api/v1/orders/"+confirmed+"/confirm", bearer(auth.AccessToken))
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[OrderResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "confirmed", envelope.Data.Status)

	// A confirmed order cannot be cancelled.
	resp = ts.api.Post("/api/v1/orders/"+confirmed+"/cancel", bearer(auth.AccessToken))
	assert.Equal(t, http.StatusConflict, resp.Code)

	// Cancelling a pending order restocks its items.
	cancelled := placeOrder()
	resp = ts.api.Post("/api/v1/orders/"+cancelled+"/cancel", bearer(auth.AccessToken))
	require.Equal(t, http.StatusOK, resp.Code)

	bookResp := ts.api.Get("/api/v1/books/" + bookID)
	require.Equal(t, http.StatusOK, bookResp.Code)
	var bookEnvelope testEnvelope[BookResponse]
	require.NoError(t, json.Unmarshal(bookResp.Body.Bytes(), &bookEnvelope))
	assert.Equal(t, 9, bookEnvelope.Data.StockQuantity)
}

func TestOrder_OwnershipEnforced(t *testing.T) {
	ts := setupTestServer(t)
	adminToken := ts.setupAdmin(t)
	bookID := ts.seedBook(t, adminToken, "A Wizard of Earthsea", "10.00", 10)

	auth := ts.registerCustomer(t, "reader@example.com")
	addressID := ts.createAddress(t, auth.AccessToken)

	resp := ts.api.Post("/api/v1/cart/items", bearer(auth.AccessToken), map[string]any{
		"book_id": bookID,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/orders", bearer(auth.AccessToken), map[string]any{
		"address_id": addressID,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[OrderResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	other := ts.registerCustomer(t, "other@example.com")
	getResp := ts.api.Get("/api/v1/orders/"+envelope.Data.ID, bearer(other.AccessToken))
	assert.Equal(t, http.StatusNotFound, getResp.Code)
}

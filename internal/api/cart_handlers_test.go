package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (ts *testServer) getCart(t *testing.T, headers ...string) CartResponse {
	t.Helper()

	args := make([]any, len(headers))
	for i, h := range headers {
		args[i] = h
	}

	resp := ts.api.Get("/api/v1/cart", args...)
	require.Equal(t, http.StatusOK, resp.Code, "Get cart failed: %s", resp.Body.String())

	var envelope testEnvelope[CartResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Data
}

func TestCart_GuestAddAndGet(t *testing.T) {
	ts := setupTestServer(t)
	adminToken := ts.setupAdmin(t)
	bookID := ts.seedBook(t, adminToken, "A Wizard of Earthsea", "10.00", 10)

	resp := ts.api.Post("/api/v1/cart/items", map[string]any{
		"book_id":  bookID,
		"quantity": 2,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[CartResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	require.Len(t, envelope.Data.Lines, 1)
	assert.Equal(t, bookID, envelope.Data.Lines[0].BookID)
	assert.Equal(t, "A Wizard of Earthsea", envelope.Data.Lines[0].Title)
	assert.Equal(t, 2, envelope.Data.Lines[0].Quantity)
	assert.Equal(t, "10.00", envelope.Data.Lines[0].UnitPrice)
	assert.Equal(t, "20.00", envelope.Data.TotalPrice)
	assert.Equal(t, "$20.00", envelope.Data.TotalDisplay)
	assert.Equal(t, 2, envelope.Data.TotalItems)

	// The guest cart survives across requests.
	cart := ts.getCart(t)
	assert.Equal(t, 2, cart.TotalItems)
}

func TestCart_UnknownBook(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/cart/items", map[string]any{
		"book_id": "book_missing",
	})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestCart_SnapshotSurvivesPriceChange(t *testing.T) {
	ts := setupTestServer(t)
	adminToken := ts.setupAdmin(t)
	bookID := ts.seedBook(t, adminToken, "A Wizard of Earthsea", "10.00", 10)

	resp := ts.api.Post("/api/v1/cart/items", map[string]any{"book_id": bookID})
	require.Equal(t, http.StatusOK, resp.Code)

	// Catalog price changes after the line was added.
	patch := ts.api.Patch("/api/v1/books/"+bookID, bearer(adminToken), map[string]any{
		"price": "99.99",
	})
	require.Equal(t, http.StatusOK, patch.Code, patch.Body.String())

	cart := ts.getCart(t)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, "10.00", cart.Lines[0].UnitPrice, "cart keeps the add-time price snapshot")
}

func TestCart_RemoveAndDecrease(t *testing.T) {
	ts := setupTestServer(t)
	adminToken := ts.setupAdmin(t)
	bookID := ts.seedBook(t, adminToken, "A Wizard of Earthsea", "10.00", 10)

	resp := ts.api.Post("/api/v1/cart/items", map[string]any{
		"book_id":  bookID,
		"quantity": 3,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/cart/items/" + bookID + "/decrease")
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[CartResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Lines, 1)
	assert.Equal(t, 2, envelope.Data.Lines[0].Quantity)

	resp = ts.api.Delete("/api/v1/cart/items/" + bookID)
	require.Equal(t, http.StatusOK, resp.Code)

	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Empty(t, envelope.Data.Lines)
	assert.Equal(t, 0, envelope.Data.TotalItems)
}

func TestCart_ClearDeletesRecord(t *testing.T) {
	ts := setupTestServer(t)
	adminToken := ts.setupAdmin(t)
	bookID := ts.seedBook(t, adminToken, "A Wizard of Earthsea", "10.00", 10)

	resp := ts.api.Post("/api/v1/cart/items", map[string]any{"book_id": bookID})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Delete("/api/v1/cart")
	require.Equal(t, http.StatusOK, resp.Code)

	cart := ts.getCart(t)
	assert.Empty(t, cart.Lines)
	assert.Equal(t, "0.00", cart.TotalPrice)
}

func TestCart_LoginMergesGuestCart(t *testing.T) {
	ts := setupTestServer(t)
	adminToken := ts.setupAdmin(t)
	book1 := ts.seedBook(t, adminToken, "A Wizard of Earthsea", "10.00", 10)

	book2Resp := ts.api.Post("/api/v1/books", bearer(adminToken), map[string]any{
		"title":          "The Dispossessed",
		"price":          "20.00",
		"stock_quantity": 5,
		"author_ids":     []string{ts.firstAuthorID(t)},
	})
	require.Equal(t, http.StatusOK, book2Resp.Code)
	var book2Envelope testEnvelope[BookResponse]
	require.NoError(t, json.Unmarshal(book2Resp.Body.Bytes(), &book2Envelope))
	book2 := book2Envelope.Data.ID

	// A registered customer put one unit of book1 in their cart earlier.
	auth := ts.registerCustomer(t, "reader@example.com")
	resp := ts.api.Post("/api/v1/cart/items", bearer(auth.AccessToken), map[string]any{
		"book_id": book1,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	// Browsing anonymously, the same person adds 2x book1 and 1x book2.
	resp = ts.api.Post("/api/v1/cart/items", map[string]any{
		"book_id":  book1,
		"quantity": 2,
	})
	require.Equal(t, http.StatusOK, resp.Code)
	resp = ts.api.Post("/api/v1/cart/items", map[string]any{"book_id": book2})
	require.Equal(t, http.StatusOK, resp.Code)

	// Logging in merges the guest cart into the user cart.
	loginResp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "reader@example.com",
		"password": "CustomerPass123!",
	})
	require.Equal(t, http.StatusOK, loginResp.Code)
	var loginEnvelope testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(loginResp.Body.Bytes(), &loginEnvelope))

	cart := ts.getCart(t, bearer(loginEnvelope.Data.AccessToken))
	assert.Equal(t, 4, cart.TotalItems)
	assert.Equal(t, "50.00", cart.TotalPrice)
	assert.Equal(t, "$50.00", cart.TotalDisplay)

	// The guest cart is gone after the merge.
	guestCart := ts.getCart(t)
	assert.Empty(t, guestCart.Lines)
}

// firstAuthorID returns the ID of the first author in the catalog.
func (ts *testServer) firstAuthorID(t *testing.T) string {
	t.Helper()

	resp := ts.api.Get("/api/v1/authors")
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[ListAuthorsResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Data.Authors)
	return envelope.Data.Authors[0].ID
}

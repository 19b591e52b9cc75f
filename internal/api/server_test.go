package api

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/bookhavenapp/bookhaven-server/internal/auth"
	"github.com/bookhavenapp/bookhaven-server/internal/backup"
	"github.com/bookhavenapp/bookhaven-server/internal/config"
	"github.com/bookhavenapp/bookhaven-server/internal/service"
	"github.com/bookhavenapp/bookhaven-server/internal/store"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"
)

// testEnvelope mirrors the response envelope for decoding in tests.
type testEnvelope[T any] struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error,omitempty"`
}

// testErrorEnvelope mirrors the structured error envelope.
type testErrorEnvelope struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// testServer bundles the server with a humatest client.
type testServer struct {
	*Server
	api humatest.TestAPI
}

// setupTestServer creates a test server with all dependencies on a temp store.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	tmpDir := t.TempDir()

	// Discard logs in tests.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := store.New(tmpDir, logger, store.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	authKey, err := auth.LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)

	cfg := &config.Config{
		Server: config.ServerConfig{
			Name: "Test Store",
		},
		Auth: config.AuthConfig{
			AccessTokenKey:       authKey,
			AccessTokenDuration:  15 * time.Minute,
			RefreshTokenDuration: 7 * 24 * time.Hour,
			OpenRegistration:     true,
		},
	}

	tokenService, err := auth.NewTokenService(
		hex.EncodeToString(authKey),
		cfg.Auth.AccessTokenDuration,
		cfg.Auth.RefreshTokenDuration,
	)
	require.NoError(t, err)

	// Wire services. Search is left out; the search index is nil in these tests.
	instanceService := service.NewInstanceService(st, logger)
	sessionService := service.NewSessionService(st, tokenService, logger)
	cartService := service.NewCartService(st.Carts(), st, logger)
	authService := service.NewAuthService(st, tokenService, sessionService, instanceService, cartService, cfg.Auth, logger)
	userService := service.NewUserService(st, logger)
	bookService := service.NewBookService(st, nil, logger)
	authorService := service.NewAuthorService(st, nil, logger)
	addressService := service.NewAddressService(st, logger)
	orderService := service.NewOrderService(st, cartService, addressService, logger)
	backupService := backup.NewService(st, t.TempDir(), cfg.Server.Name, "test", logger)

	services := &Services{
		Instance: instanceService,
		Auth:     authService,
		Session:  sessionService,
		User:     userService,
		Cart:     cartService,
		Book:     bookService,
		Author:   authorService,
		Address:  addressService,
		Order:    orderService,
		Backup:   backupService,
	}

	server := NewServer(cfg, st, services, nil, logger)

	_, err = instanceService.EnsureInstance(context.Background(), "Test Store", "test")
	require.NoError(t, err)

	return &testServer{
		Server: server,
		api:    humatest.Wrap(t, server.api),
	}
}

// setupAdmin runs initial setup and returns the admin's access token.
func (ts *testServer) setupAdmin(t *testing.T) string {
	t.Helper()

	resp := ts.api.Post("/api/v1/auth/setup", map[string]any{
		"email":    "admin@example.com",
		"password": "AdminPassword123!",
		"username": "admin",
	})
	require.Equal(t, http.StatusOK, resp.Code, "Setup failed: %s", resp.Body.String())

	var envelope testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Data.AccessToken
}

// registerCustomer registers a customer account and returns the auth response.
func (ts *testServer) registerCustomer(t *testing.T, email string) AuthResponse {
	t.Helper()

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":    email,
		"password": "CustomerPass123!",
		"username": "customer",
	})
	require.Equal(t, http.StatusOK, resp.Code, "Register failed: %s", resp.Body.String())

	var envelope testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Data
}

// bearer formats a token as an Authorization header value for humatest calls.
func bearer(token string) string {
	return "Authorization: Bearer " + token
}

// seedBook creates an author and a book, returning the book ID.
func (ts *testServer) seedBook(t *testing.T, adminToken, title, price string, stock int) string {
	t.Helper()

	authorResp := ts.api.Post("/api/v1/authors", bearer(adminToken), map[string]any{
		"first_name": "Ursula",
		"last_name":  "Le Guin",
	})

	var authorID string
	switch authorResp.Code {
	case http.StatusOK, http.StatusCreated:
		var envelope testEnvelope[AuthorResponse]
		require.NoError(t, json.Unmarshal(authorResp.Body.Bytes(), &envelope))
		authorID = envelope.Data.ID
	case http.StatusConflict:
		// Author already seeded by an earlier call in this test.
		listResp := ts.api.Get("/api/v1/authors")
		require.Equal(t, http.StatusOK, listResp.Code)
		var envelope testEnvelope[ListAuthorsResponse]
		require.NoError(t, json.Unmarshal(listResp.Body.Bytes(), &envelope))
		require.NotEmpty(t, envelope.Data.Authors)
		authorID = envelope.Data.Authors[0].ID
	default:
		t.Fatalf("unexpected author create status %d: %s", authorResp.Code, authorResp.Body.String())
	}

	bookResp := ts.api.Post("/api/v1/books", bearer(adminToken), map[string]any{
		"title":          title,
		"price":          price,
		"stock_quantity": stock,
		"author_ids":     []string{authorID},
	})
	require.Equal(t, http.StatusOK, bookResp.Code, "Create book failed: %s", bookResp.Body.String())

	var envelope testEnvelope[BookResponse]
	require.NoError(t, json.Unmarshal(bookResp.Body.Bytes(), &envelope))
	return envelope.Data.ID
}

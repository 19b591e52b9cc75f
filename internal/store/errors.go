package store

import "github.com/bookhavenapp/bookhaven-server/internal/errors"

// Sentinel errors shared across the store. These carry domain error codes so
// the API layer can map them straight to HTTP statuses.
var (
	ErrNotFound      = errors.NotFound("resource not found")
	ErrAlreadyExists = errors.AlreadyExists("resource already exists")

	ErrUserNotFound = errors.NotFound("user not found")
	ErrUserExists   = errors.AlreadyExists("user already exists")
	ErrEmailExists  = errors.AlreadyExists("email already in use")

	ErrSessionNotFound = errors.NotFound("session not found")
	ErrSessionExpired  = errors.TokenExpired("session expired")

	ErrBookNotFound    = errors.NotFound("book not found")
	ErrAuthorNotFound  = errors.NotFound("author not found")
	ErrAddressNotFound = errors.NotFound("address not found")
	ErrOrderNotFound   = errors.NotFound("order not found")

	ErrInstanceNotFound = errors.NotFound("instance not configured")
	ErrInstanceExists   = errors.AlreadyConfigured("instance already configured")
)

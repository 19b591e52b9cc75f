package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
	"github.com/bookhavenapp/bookhaven-server/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(id, userID, tokenHash string) *domain.Session {
	now := time.Now()
	return &domain.Session{
		ID:               id,
		UserID:           userID,
		RefreshTokenHash: tokenHash,
		ExpiresAt:        now.Add(24 * time.Hour),
		CreatedAt:        now,
		LastSeenAt:       now,
	}
}

func TestSessions_CreateAndGet(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	session := newTestSession("session-1", "user-1", "hash-abc")
	require.NoError(t, s.CreateSession(ctx, session))

	got, err := s.GetSession(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)

	_, err = s.GetSession(ctx, "session-404")
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}

func TestSessions_GetByRefreshToken(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	session := newTestSession("session-1", "user-1", "hash-abc")
	require.NoError(t, s.CreateSession(ctx, session))

	got, err := s.GetSessionByRefreshToken(ctx, "hash-abc")
	require.NoError(t, err)
	assert.Equal(t, "session-1", got.ID)

	_, err = s.GetSessionByRefreshToken(ctx, "hash-unknown")
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}

func TestSessions_ExpiredSession(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	session := newTestSession("session-1", "user-1", "hash-abc")
	session.ExpiresAt = time.Now().Add(-time.Hour)
	require.NoError(t, s.CreateSession(ctx, session))

	_, err := s.GetSession(ctx, "session-1")
	assert.ErrorIs(t, err, store.ErrSessionExpired)
}

func TestSessions_UpdateRotatesTokenIndex(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	session := newTestSession("session-1", "user-1", "hash-old")
	require.NoError(t, s.CreateSession(ctx, session))

	session.RefreshTokenHash = "hash-new"
	require.NoError(t, s.UpdateSession(ctx, session))

	_, err := s.GetSessionByRefreshToken(ctx, "hash-old")
	assert.ErrorIs(t, err, store.ErrSessionNotFound)

	got, err := s.GetSessionByRefreshToken(ctx, "hash-new")
	require.NoError(t, err)
	assert.Equal(t, "session-1", got.ID)
}

func TestSessions_DeleteAndList(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, s.CreateSession(ctx, newTestSession("session-1", "user-1", "hash-1")))
	require.NoError(t, s.CreateSession(ctx, newTestSession("session-2", "user-1", "hash-2")))
	require.NoError(t, s.CreateSession(ctx, newTestSession("session-3", "user-2", "hash-3")))

	sessions, err := s.ListSessionsByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, sessions, 2)

	require.NoError(t, s.DeleteSession(ctx, "session-1"))
	// Deleting again is fine.
	require.NoError(t, s.DeleteSession(ctx, "session-1"))

	sessions, err = s.ListSessionsByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, sessions, 1)

	_, err = s.GetSessionByRefreshToken(ctx, "hash-1")
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}

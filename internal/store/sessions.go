package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"strings"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
	"github.com/dgraph-io/badger/v4"
)

const (
	sessionPrefix        = "session:"
	sessionByUserPrefix  = "idx:sessions:user:"  // for listing a user's sessions
	sessionByTokenPrefix = "idx:sessions:token:" // for refresh token lookups
)

// CreateSession creates a new user session.
func (s *Store) CreateSession(_ context.Context, session *domain.Session) error {
	key := []byte(sessionPrefix + session.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check session exists: %w", err)
	}
	if exists {
		return ErrAlreadyExists
	}

	tokenKey := []byte(sessionByTokenPrefix + session.RefreshTokenHash)
	userIndexKey := []byte(sessionByUserPrefix + session.UserID + ":" + session.ID)

	return s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return err
		}
		if err := txn.Set(tokenKey, []byte(session.ID)); err != nil {
			return err
		}
		return txn.Set(userIndexKey, []byte{})
	})
}

// GetSession retrieves a session by ID. Expired sessions come back as
// ErrSessionExpired rather than a session the caller must re-check.
func (s *Store) GetSession(_ context.Context, id string) (*domain.Session, error) {
	key := []byte(sessionPrefix + id)

	var session domain.Session
	if err := s.get(key, &session); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	if session.IsExpired() {
		return nil, ErrSessionExpired
	}

	return &session, nil
}

// GetSessionByRefreshToken retrieves a session by its refresh token hash,
// used during the token refresh flow.
func (s *Store) GetSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.Session, error) {
	tokenKey := []byte(sessionByTokenPrefix + tokenHash)

	var sessionID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(tokenKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrSessionNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			sessionID = string(val)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return s.GetSession(ctx, sessionID)
}

// UpdateSession persists changes to a session, moving the token index when
// the refresh token rotated.
func (s *Store) UpdateSession(_ context.Context, session *domain.Session) error {
	key := []byte(sessionPrefix + session.ID)

	var old domain.Session
	if err := s.get(key, &old); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("get session: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return err
		}

		if old.RefreshTokenHash != session.RefreshTokenHash {
			if err := txn.Delete([]byte(sessionByTokenPrefix + old.RefreshTokenHash)); err != nil {
				return err
			}
			if err := txn.Set([]byte(sessionByTokenPrefix+session.RefreshTokenHash), []byte(session.ID)); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteSession removes a session and its indexes. Idempotent.
func (s *Store) DeleteSession(_ context.Context, id string) error {
	key := []byte(sessionPrefix + id)

	var session domain.Session
	if err := s.get(key, &session); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return fmt.Errorf("get session: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(key); err != nil {
			return err
		}
		if err := txn.Delete([]byte(sessionByTokenPrefix + session.RefreshTokenHash)); err != nil {
			return err
		}
		return txn.Delete([]byte(sessionByUserPrefix + session.UserID + ":" + session.ID))
	})
}

// DeleteExpiredSessions removes every session past its expiry, returning the
// number deleted. Meant for a periodic cleanup job.
func (s *Store) DeleteExpiredSessions(ctx context.Context) (int, error) {
	var expired []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(sessionPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(sessionPrefix)); it.ValidForPrefix([]byte(sessionPrefix)); it.Next() {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			var session domain.Session
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &session)
			})
			if err != nil {
				continue // skip undecodable records
			}
			if session.IsExpired() {
				expired = append(expired, session.ID)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, id := range expired {
		if err := s.DeleteSession(ctx, id); err != nil {
			return 0, fmt.Errorf("delete session %s: %w", id, err)
		}
	}

	return len(expired), nil
}

// ListSessionsByUser returns all sessions for a user, expired ones included
// so they can be shown and revoked.
func (s *Store) ListSessionsByUser(ctx context.Context, userID string) ([]*domain.Session, error) {
	prefix := sessionByUserPrefix + userID + ":"

	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			key := string(it.Item().Key())
			ids = append(ids, strings.TrimPrefix(key, prefix))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sessions := make([]*domain.Session, 0, len(ids))
	for _, id := range ids {
		var session domain.Session
		if err := s.get([]byte(sessionPrefix+id), &session); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			return nil, fmt.Errorf("get session %s: %w", id, err)
		}
		sessions = append(sessions, &session)
	}

	return sessions, nil
}

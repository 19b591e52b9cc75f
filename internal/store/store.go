// Package store persists the storefront's data in a Badger key-value
// database: users, sessions, catalog, addresses, orders and cart records.
package store

import (
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
	"github.com/dgraph-io/badger/v4"
)

// Options configures store behavior.
type Options struct {
	// SyncWrites forces every write to fsync. Slower, but an unclean shutdown
	// can't lose acknowledged writes.
	SyncWrites bool
}

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	// Generic entities with secondary indexes.
	Users   *Entity[domain.User]
	Books   *Entity[domain.Book]
	Authors *Entity[domain.Author]
}

// New opens the Badger database at path.
func New(path string, logger *slog.Logger, opts Options) (*Store, error) {
	badgerOpts := badger.DefaultOptions(path)
	badgerOpts.Logger = nil // Badger's own logging is too chatty
	badgerOpts.SyncWrites = opts.SyncWrites
	badgerOpts.CompactL0OnClose = true

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	store := &Store{
		db:     db,
		logger: logger,
	}

	store.initUsers()
	store.initBooks()
	store.initAuthors()

	if logger != nil {
		logger.Info("database opened", "path", path, "sync_writes", opts.SyncWrites)
	}

	return store, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("closing database connection")
	}
	return s.db.Close()
}

// initUsers sets up the Users entity with a case-insensitive email index
// for login lookups.
func (s *Store) initUsers() {
	s.Users = NewEntity[domain.User](s, "user:").
		WithIndexTransform("email",
			func(u *domain.User) []string {
				return []string{normalizeEmail(u.Email)}
			},
			normalizeEmail,
		)
}

// initBooks sets up the Books entity. Book lookups beyond the primary key go
// through the search index, so no secondary indexes here.
func (s *Store) initBooks() {
	s.Books = NewEntity[domain.Book](s, "book:")
}

// initAuthors sets up the Authors entity with a case-insensitive name index
// so imports and seeding can dedupe authors.
func (s *Store) initAuthors() {
	s.Authors = NewEntity[domain.Author](s, "author:").
		WithIndexTransform("name",
			func(a *domain.Author) []string {
				return []string{normalizeName(a.Name())}
			},
			normalizeName,
		)
}

// normalizeEmail lowercases and trims an email for consistent index lookups.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// normalizeName lowercases and collapses whitespace for name index lookups.
func normalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// Helper methods shared by the per-entity files.

// get retrieves a JSON value by key.
func (s *Store) get(key []byte, dest any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
}

// set stores a JSON value by key.
func (s *Store) set(key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// delete removes a key from the database.
func (s *Store) delete(key []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// exists checks whether a key exists.
func (s *Store) exists(key []byte) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

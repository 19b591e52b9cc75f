package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/bookhavenapp/bookhaven-server/internal/cart"
	"github.com/dgraph-io/badger/v4"
)

// CartStorage adapts the store to cart.Storage, persisting cart records under
// the cart package's own keys ("cart:guest", "cart:user:<id>").
type CartStorage struct {
	store *Store
}

// Carts returns the cart.Storage backed by this store.
func (s *Store) Carts() *CartStorage {
	return &CartStorage{store: s}
}

// Save writes a cart record.
func (c *CartStorage) Save(ctx context.Context, key string, lines []cart.Line) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := cart.EncodeLines(lines)
	if err != nil {
		return fmt.Errorf("encode cart record: %w", err)
	}

	return c.store.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// Load reads a cart record. An absent key or malformed record loads as an
// empty cart; only a failing database read is an error.
func (c *CartStorage) Load(ctx context.Context, key string) ([]cart.Line, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	err := c.store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			data = append([]byte(nil), val...)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart record: %w", err)
	}

	return cart.DecodeLines(data), nil
}

// Delete removes a cart record. Idempotent.
func (c *CartStorage) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return c.store.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

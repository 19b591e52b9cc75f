package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
	"github.com/dgraph-io/badger/v4"
)

const (
	orderPrefix       = "order:"
	orderByUserPrefix = "idx:orders:user:" // composite key <userID>:<orderID>
)

// CreateOrder stores a placed order.
func (s *Store) CreateOrder(_ context.Context, order *domain.Order) error {
	key := []byte(orderPrefix + order.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check order exists: %w", err)
	}
	if exists {
		return ErrAlreadyExists
	}

	userIndexKey := []byte(orderByUserPrefix + order.UserID + ":" + order.ID)

	return s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(order)
		if err != nil {
			return fmt.Errorf("marshal order: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return err
		}
		return txn.Set(userIndexKey, []byte{})
	})
}

// GetOrder retrieves an order by ID.
func (s *Store) GetOrder(_ context.Context, id string) (*domain.Order, error) {
	var order domain.Order
	if err := s.get([]byte(orderPrefix+id), &order); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &order, nil
}

// UpdateOrder persists changes to an existing order (status transitions).
func (s *Store) UpdateOrder(_ context.Context, order *domain.Order) error {
	key := []byte(orderPrefix + order.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check order exists: %w", err)
	}
	if !exists {
		return ErrOrderNotFound
	}

	return s.set(key, order)
}

// ListOrdersByUser returns a user's orders, most recent first.
func (s *Store) ListOrdersByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	prefix := orderByUserPrefix + userID + ":"

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
			ids = append(ids, strings.TrimPrefix(string(it.Item().Key()), prefix))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	orders := make([]*domain.Order, 0, len(ids))
	for _, id := range ids {
		var order domain.Order
		if err := s.get([]byte(orderPrefix+id), &order); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			return nil, fmt.Errorf("get order %s: %w", id, err)
		}
		orders = append(orders, &order)
	}

	sort.Slice(orders, func(i, j int) bool {
		return orders[i].PlacedAt.After(orders[j].PlacedAt)
	})

	return orders, nil
}

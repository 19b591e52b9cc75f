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
	addressPrefix       = "address:"
	addressByUserPrefix = "idx:addresses:user:" // composite key <userID>:<addressID>
)

// CreateAddress stores a new shipping address for a user.
func (s *Store) CreateAddress(_ context.Context, addr *domain.Address) error {
	key := []byte(addressPrefix + addr.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check address exists: %w", err)
	}
	if exists {
		return ErrAlreadyExists
	}

	userIndexKey := []byte(addressByUserPrefix + addr.UserID + ":" + addr.ID)

	return s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(addr)
		if err != nil {
			return fmt.Errorf("marshal address: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return err
		}
		return txn.Set(userIndexKey, []byte{})
	})
}

// GetAddress retrieves an address by ID.
func (s *Store) GetAddress(_ context.Context, id string) (*domain.Address, error) {
	var addr domain.Address
	if err := s.get([]byte(addressPrefix+id), &addr); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("get address: %w", err)
	}
	return &addr, nil
}

// UpdateAddress persists changes to an existing address.
func (s *Store) UpdateAddress(_ context.Context, addr *domain.Address) error {
	key := []byte(addressPrefix + addr.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check address exists: %w", err)
	}
	if !exists {
		return ErrAddressNotFound
	}

	return s.set(key, addr)
}

// DeleteAddress removes an address and its user index. Idempotent.
func (s *Store) DeleteAddress(_ context.Context, id string) error {
	key := []byte(addressPrefix + id)

	var addr domain.Address
	if err := s.get(key, &addr); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return fmt.Errorf("get address: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(key); err != nil {
			return err
		}
		return txn.Delete([]byte(addressByUserPrefix + addr.UserID + ":" + addr.ID))
	})
}

// ListAddressesByUser returns a user's addresses, default first then oldest
// first, matching the order the storefront displays them in.
func (s *Store) ListAddressesByUser(ctx context.Context, userID string) ([]*domain.Address, error) {
	prefix := addressByUserPrefix + userID + ":"

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

	addresses := make([]*domain.Address, 0, len(ids))
	for _, id := range ids {
		var addr domain.Address
		if err := s.get([]byte(addressPrefix+id), &addr); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			return nil, fmt.Errorf("get address %s: %w", id, err)
		}
		addresses = append(addresses, &addr)
	}

	sort.SliceStable(addresses, func(i, j int) bool {
		if addresses[i].IsDefault != addresses[j].IsDefault {
			return addresses[i].IsDefault
		}
		return addresses[i].CreatedAt.Before(addresses[j].CreatedAt)
	})

	return addresses, nil
}

// SetDefaultAddress marks one of a user's addresses as the default and clears
// the flag on the rest, in a single transaction.
func (s *Store) SetDefaultAddress(ctx context.Context, userID, addressID string) error {
	addresses, err := s.ListAddressesByUser(ctx, userID)
	if err != nil {
		return err
	}

	found := false
	for _, addr := range addresses {
		if addr.ID == addressID {
			found = true
			break
		}
	}
	if !found {
		return ErrAddressNotFound
	}

	return s.db.Update(func(txn *badger.Txn) error {
		for _, addr := range addresses {
			wantDefault := addr.ID == addressID
			if addr.IsDefault == wantDefault {
				continue
			}
			addr.IsDefault = wantDefault
			addr.Touch()

			data, err := json.Marshal(addr)
			if err != nil {
				return fmt.Errorf("marshal address: %w", err)
			}
			if err := txn.Set([]byte(addressPrefix+addr.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// CountAddressesByUser returns how many addresses a user has saved.
func (s *Store) CountAddressesByUser(ctx context.Context, userID string) (int, error) {
	prefix := addressByUserPrefix + userID + ":"

	count := 0
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
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}

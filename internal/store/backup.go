package store

import (
	"context"
	"fmt"
	"iter"

	"github.com/dgraph-io/badger/v4"
)

// Snapshot calls fn for every key/value pair in the database inside a single
// read transaction. Index keys are included, so a restored snapshot needs no
// index rebuild.
func (s *Store) Snapshot(ctx context.Context, fn func(key string, value []byte) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			item := it.Item()
			key := string(item.Key())
			err := item.Value(func(val []byte) error {
				return fn(key, val)
			})
			if err != nil {
				return fmt.Errorf("snapshot key %s: %w", key, err)
			}
		}
		return nil
	})
}

// ImportSnapshot replaces the database contents with the given key/value
// pairs. Existing data is dropped first; a failed import leaves the store in
// a partial state, so callers should only import into a store they can throw
// away on error.
func (s *Store) ImportSnapshot(ctx context.Context, pairs iter.Seq2[string, []byte]) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.db.DropAll(); err != nil {
		return fmt.Errorf("drop existing data: %w", err)
	}

	batch := s.db.NewWriteBatch()
	defer batch.Cancel()

	for key, value := range pairs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := batch.Set([]byte(key), value); err != nil {
			return fmt.Errorf("write key %s: %w", key, err)
		}
	}

	return batch.Flush()
}

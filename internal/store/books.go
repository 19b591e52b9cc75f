package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"strings"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
	apperr "github.com/bookhavenapp/bookhaven-server/internal/errors"
	"github.com/dgraph-io/badger/v4"
)

const bookPrefix = "book:"

// ListBooks returns a page of books ordered by ID.
func (s *Store) ListBooks(ctx context.Context, params PaginationParams) (*PaginatedResult[domain.Book], error) {
	params.Validate()

	startKey, err := DecodeCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if startKey == "" {
		startKey = bookPrefix
	}

	result := &PaginatedResult[domain.Book]{Items: make([]domain.Book, 0, params.Limit)}

	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(bookPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		lastKey := ""
		for it.Seek([]byte(startKey)); it.ValidForPrefix([]byte(bookPrefix)); it.Next() {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			key := string(it.Item().Key())
			if strings.HasPrefix(key[len(bookPrefix):], "idx:") {
				continue
			}
			// The cursor points at the last key of the previous page.
			if key == startKey && params.Cursor != "" {
				continue
			}

			if len(result.Items) >= params.Limit {
				result.HasMore = true
				result.NextCursor = EncodeCursor(lastKey)
				return nil
			}

			var book domain.Book
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &book)
			})
			if err != nil {
				return fmt.Errorf("unmarshal book: %w", err)
			}

			result.Items = append(result.Items, book)
			lastKey = key
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// DecrementStock atomically reduces a book's stock by qty.
// Returns an out-of-stock error when fewer than qty copies remain, leaving
// the record untouched.
func (s *Store) DecrementStock(ctx context.Context, bookID string, qty int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if qty < 1 {
		return apperr.Validationf("quantity must be positive, got %d", qty)
	}

	key := []byte(bookPrefix + bookID)

	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrBookNotFound
		}
		if err != nil {
			return fmt.Errorf("get book: %w", err)
		}

		var book domain.Book
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &book)
		}); err != nil {
			return fmt.Errorf("unmarshal book: %w", err)
		}

		if book.StockQuantity < qty {
			return apperr.OutOfStock(fmt.Sprintf("insufficient stock for %q: %d requested, %d available", book.Title, qty, book.StockQuantity))
		}

		book.StockQuantity -= qty
		book.Touch()

		data, err := json.Marshal(&book)
		if err != nil {
			return fmt.Errorf("marshal book: %w", err)
		}
		return txn.Set(key, data)
	})
}

// IncrementStock atomically raises a book's stock by qty, used when a
// pending order is cancelled.
func (s *Store) IncrementStock(ctx context.Context, bookID string, qty int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if qty < 1 {
		return apperr.Validationf("quantity must be positive, got %d", qty)
	}

	key := []byte(bookPrefix + bookID)

	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrBookNotFound
		}
		if err != nil {
			return fmt.Errorf("get book: %w", err)
		}

		var book domain.Book
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &book)
		}); err != nil {
			return fmt.Errorf("unmarshal book: %w", err)
		}

		book.StockQuantity += qty
		book.Touch()

		data, err := json.Marshal(&book)
		if err != nil {
			return fmt.Errorf("marshal book: %w", err)
		}
		return txn.Set(key, data)
	})
}

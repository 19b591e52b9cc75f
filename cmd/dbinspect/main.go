// Package main provides a read-only inspection tool for the BookHaven database.
//
// It prints record counts per entity and a few sample records, which is useful
// when debugging store issues without spinning up the full server.
//
// Usage:
//
//	DATA_PATH=~/bookhaven go run ./cmd/dbinspect
package main

import (
	"encoding/json/v2"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/bookhavenapp/bookhaven-server/internal/cart"
	"github.com/bookhavenapp/bookhaven-server/internal/domain"
)

func main() {
	base := os.Getenv("DATA_PATH")
	if base == "" {
		base = os.ExpandEnv("$HOME/bookhaven")
	}
	dbPath := filepath.Join(base, "db")

	opts := badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	prefixes := []string{"user:", "book:", "author:", "address:", "order:", "session:", "cart:"}
	counts := make(map[string]int)

	err = db.View(func(txn *badger.Txn) error {
		for _, prefix := range prefixes {
			iterOpts := badger.DefaultIteratorOptions
			iterOpts.Prefix = []byte(prefix)
			iterOpts.PrefetchValues = false
			it := txn.NewIterator(iterOpts)

			for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
				key := string(it.Item().Key())
				// Skip secondary index keys like "user:idx:email:..."
				if strings.Contains(strings.TrimPrefix(key, prefix), "idx:") {
					continue
				}
				counts[prefix]++
			}
			it.Close()
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to scan database: %v", err)
	}

	for _, prefix := range prefixes {
		fmt.Printf("%-10s %d\n", strings.TrimSuffix(prefix, ":"), counts[prefix])
	}
	fmt.Println()

	// Show cart contents: snapshot lines are the most common thing to check.
	err = db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = []byte("cart:")
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		for it.Seek([]byte("cart:")); it.ValidForPrefix([]byte("cart:")); it.Next() {
			item := it.Item()
			key := string(item.Key())

			var lines []cart.Line
			err := item.Value(func(val []byte) error {
				lines = cart.DecodeLines(val)
				return nil
			})
			if err != nil {
				fmt.Printf("%s: <unreadable: %v>\n", key, err)
				continue
			}

			fmt.Printf("%s: %d line(s), %d item(s)\n", key, len(lines), cart.TotalItems(lines))
			for _, line := range lines {
				fmt.Printf("  %s x%d @ %s\n", line.Title, line.Quantity, line.UnitPrice.String())
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to read carts: %v", err)
	}

	// Show books with stock issues.
	fmt.Println()
	err = db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = []byte("book:")
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		for it.Seek([]byte("book:")); it.ValidForPrefix([]byte("book:")); it.Next() {
			item := it.Item()
			key := string(item.Key())
			if strings.Contains(strings.TrimPrefix(key, "book:"), "idx:") {
				continue
			}

			var book domain.Book
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &book)
			})
			if err != nil {
				continue
			}

			if book.StockQuantity == 0 {
				fmt.Printf("out of stock: %s (%s)\n", book.Title, book.ID)
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to read books: %v", err)
	}
}

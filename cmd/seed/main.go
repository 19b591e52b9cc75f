// Package main provides a tool to seed the database with a demo catalog.
//
// It creates a handful of authors and books so the storefront has something
// to browse during development. Safe to run against an existing database;
// duplicate authors are skipped.
//
// Usage:
//
//	DATA_PATH=~/bookhaven go run ./cmd/seed
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	domainerrors "github.com/bookhavenapp/bookhaven-server/internal/errors"
	"github.com/bookhavenapp/bookhaven-server/internal/service"
	"github.com/bookhavenapp/bookhaven-server/internal/store"
)

var dataPath = flag.String("data-path", "", "Data directory (defaults to $DATA_PATH or ~/bookhaven)")

type seedBook struct {
	title       string
	price       string
	stock       int
	description string
	recommended bool
}

type seedAuthor struct {
	firstName string
	lastName  string
	bio       string
	books     []seedBook
}

var catalog = []seedAuthor{
	{
		firstName: "Ursula", lastName: "Le Guin",
		bio: "American author of speculative fiction.",
		books: []seedBook{
			{title: "A Wizard of Earthsea", price: "9.99", stock: 40, recommended: true,
				description: "A young mage learns the true cost of power."},
			{title: "The Dispossessed", price: "12.50", stock: 25,
				description: "An ambiguous utopia across two worlds."},
		},
	},
	{
		firstName: "Octavia", lastName: "Butler",
		bio: "Pioneering science fiction writer.",
		books: []seedBook{
			{title: "Kindred", price: "11.00", stock: 30, recommended: true},
			{title: "Parable of the Sower", price: "10.25", stock: 18},
		},
	},
	{
		firstName: "Italo", lastName: "Calvino",
		books: []seedBook{
			{title: "Invisible Cities", price: "8.75", stock: 22,
				description: "Marco Polo describes cities to Kublai Khan."},
		},
	},
}

func main() {
	flag.Parse()

	base := *dataPath
	if base == "" {
		base = os.Getenv("DATA_PATH")
	}
	if base == "" {
		base = os.ExpandEnv("$HOME/bookhaven")
	}

	dbPath := filepath.Join(base, "db")
	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.New(dbPath, nil, store.Options{})
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	// Index is nil here; the server rebuilds the search index from the
	// catalog on next startup.
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	authors := service.NewAuthorService(s, nil, quiet)
	books := service.NewBookService(s, nil, quiet)

	created := 0
	for _, sa := range catalog {
		author, err := authors.CreateAuthor(ctx, service.CreateAuthorRequest{
			FirstName: sa.firstName,
			LastName:  sa.lastName,
			Bio:       sa.bio,
		})
		if err != nil {
			var domainErr *domainerrors.Error
			if domainerrors.As(err, &domainErr) && domainErr.Code == domainerrors.CodeAlreadyExists {
				fmt.Printf("Author %s %s already exists, skipping\n", sa.firstName, sa.lastName)
				continue
			}
			log.Fatalf("Failed to create author %s %s: %v", sa.firstName, sa.lastName, err)
		}

		for _, sb := range sa.books {
			book, err := books.CreateBook(ctx, service.CreateBookRequest{
				Title:         sb.title,
				Price:         sb.price,
				StockQuantity: sb.stock,
				Description:   sb.description,
				Recommended:   sb.recommended,
				AuthorIDs:     []string{author.ID},
			})
			if err != nil {
				log.Fatalf("Failed to create book %q: %v", sb.title, err)
			}
			created++
			fmt.Printf("Created %q (%s) by %s\n", book.Title, book.Price.String(), author.Name())
		}
	}

	fmt.Printf("Done: %d books created\n", created)
}

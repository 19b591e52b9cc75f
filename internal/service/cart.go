package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bookhavenapp/bookhaven-server/internal/cart"
	"github.com/bookhavenapp/bookhaven-server/internal/domain"
	domainerrors "github.com/bookhavenapp/bookhaven-server/internal/errors"
	"github.com/bookhavenapp/bookhaven-server/internal/store"
)

// CartService manages shopping carts keyed by identity: one guest cart plus
// one cart per registered user. Catalog data is snapshotted into the cart at
// add time, so lines keep the price and title the shopper saw even if the
// catalog changes afterwards.
type CartService struct {
	mu      sync.Mutex
	storage cart.Storage
	store   *store.Store
	logger  *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(storage cart.Storage, s *store.Store, logger *slog.Logger) *CartService {
	return &CartService{
		storage: storage,
		store:   s,
		logger:  logger,
	}
}

// CartView is the cart as presented to clients, with totals computed
// server-side.
type CartView struct {
	Lines      []cart.Line  `json:"lines"`
	TotalItems int          `json:"total_items"`
	TotalPrice domain.Money `json:"total_price"`
}

func newCartView(lines []cart.Line) *CartView {
	if lines == nil {
		lines = []cart.Line{}
	}
	return &CartView{
		Lines:      lines,
		TotalItems: cart.TotalItems(lines),
		TotalPrice: cart.TotalPrice(lines),
	}
}

// Get returns the cart for the given identity. A missing or unreadable
// record comes back as an empty cart.
func (s *CartService) Get(ctx context.Context, identity cart.Identity) (*CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.load(ctx, identity)
	if err != nil {
		return nil, err
	}
	return newCartView(lines), nil
}

// AddItem adds a book to the cart, snapshotting its catalog data into the
// line. Adding a book already in the cart increments its quantity instead of
// creating a second line. Quantities below one are treated as one.
func (s *CartService) AddItem(ctx context.Context, identity cart.Identity, bookID string, quantity int) (*CartView, error) {
	if bookID == "" {
		return nil, domainerrors.Validation("book_id is required")
	}

	snapshot, err := s.snapshotBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.load(ctx, identity)
	if err != nil {
		return nil, err
	}

	return s.save(ctx, identity, cart.AddLine(lines, *snapshot, quantity))
}

// RemoveItem removes a book's line entirely, whatever its quantity.
// Removing a book that is not in the cart is a no-op.
func (s *CartService) RemoveItem(ctx context.Context, identity cart.Identity, bookID string) (*CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.load(ctx, identity)
	if err != nil {
		return nil, err
	}

	lines, _ = cart.RemoveLine(lines, bookID)
	return s.save(ctx, identity, lines)
}

// DecreaseQuantity lowers a book's quantity by one, removing the line when it
// would drop below one. Unknown books are a no-op.
func (s *CartService) DecreaseQuantity(ctx context.Context, identity cart.Identity, bookID string) (*CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.load(ctx, identity)
	if err != nil {
		return nil, err
	}

	lines, _ = cart.DecreaseLine(lines, bookID)
	return s.save(ctx, identity, lines)
}

// Clear empties the cart and deletes its persisted record.
func (s *CartService) Clear(ctx context.Context, identity cart.Identity) (*CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Delete(ctx, identity.StorageKey()); err != nil {
		return nil, fmt.Errorf("delete cart record: %w", err)
	}
	return newCartView(nil), nil
}

// MergeOnLogin folds the guest cart into the user's cart. Quantities for
// books present in both add together; for conflicting price snapshots the
// user cart's snapshot wins. The merged cart is saved under the user's key
// before the guest record is deleted, so a crash in between leaves a state
// from which re-running the merge is harmless.
func (s *CartService) MergeOnLogin(ctx context.Context, userID string) (*CartView, error) {
	if userID == "" {
		return nil, domainerrors.Validation("user ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	guestLines, err := s.load(ctx, cart.Guest())
	if err != nil {
		return nil, err
	}
	userLines, err := s.load(ctx, cart.ForUser(userID))
	if err != nil {
		return nil, err
	}

	merged := cart.Merge(userLines, guestLines)

	if err := s.storage.Save(ctx, cart.UserKey(userID), merged); err != nil {
		return nil, fmt.Errorf("save merged cart: %w", err)
	}

	// Delete after the merged save so an interrupted merge can re-run.
	if err := s.storage.Delete(ctx, cart.GuestKey); err != nil {
		if s.logger != nil {
			s.logger.Warn("failed to delete guest cart after merge", "error", err)
		}
	}

	return newCartView(merged), nil
}

// load reads a cart's lines, degrading storage failures to an empty cart so
// a broken record never blocks the storefront.
func (s *CartService) load(ctx context.Context, identity cart.Identity) ([]cart.Line, error) {
	lines, err := s.storage.Load(ctx, identity.StorageKey())
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("failed to load cart, starting empty", "key", identity.StorageKey(), "error", err)
		}
		return nil, nil
	}
	return lines, nil
}

func (s *CartService) save(ctx context.Context, identity cart.Identity, lines []cart.Line) (*CartView, error) {
	if err := s.storage.Save(ctx, identity.StorageKey(), lines); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return newCartView(lines), nil
}

// snapshotBook copies the catalog fields a cart line needs.
func (s *CartService) snapshotBook(ctx context.Context, bookID string) (*cart.Snapshot, error) {
	book, err := s.store.Books.Get(ctx, bookID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, store.ErrBookNotFound
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	return &cart.Snapshot{
		BookID:     book.ID,
		Title:      book.Title,
		AuthorName: s.authorName(ctx, book),
		ImageURL:   book.ImageURL,
		UnitPrice:  book.Price,
	}, nil
}

// authorName resolves the display name of the book's first author. Missing
// authors degrade to an empty name; the cart does not need one.
func (s *CartService) authorName(ctx context.Context, book *domain.Book) string {
	if len(book.AuthorIDs) == 0 {
		return ""
	}
	author, err := s.store.Authors.Get(ctx, book.AuthorIDs[0])
	if err != nil {
		return ""
	}
	return author.Name()
}

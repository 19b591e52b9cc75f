package cart

import (
	"context"
	"sync"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
	"github.com/bookhavenapp/bookhaven-server/internal/errors"
	"github.com/bookhavenapp/bookhaven-server/internal/logger"
)

// Store holds one active cart and drives its lifecycle: guest by default,
// merged into a user's cart on login, back to guest on logout. Every mutation
// persists through the Storage before subscribers are notified. All methods
// are safe for concurrent use; mutations apply in a single total order.
type Store struct {
	mu          sync.Mutex
	storage     Storage
	log         *logger.Logger
	identity    Identity
	lines       []Line
	subscribers []func()
}

// NewStore opens a guest cart, restoring any persisted guest record.
// A storage read failure degrades to an empty cart; persistence is advisory
// and never blocks shopping.
func NewStore(ctx context.Context, storage Storage, log *logger.Logger) *Store {
	s := &Store{
		storage:  storage,
		log:      log,
		identity: Guest(),
	}
	s.lines = s.load(ctx, GuestKey)
	return s
}

// Identity returns whose cart is currently active.
func (s *Store) Identity() Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// Lines returns a copy of the current cart lines in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := make([]Line, len(s.lines))
	copy(lines, s.lines)
	return lines
}

// TotalItems returns the sum of quantities across all lines.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return TotalItems(s.lines)
}

// TotalPrice returns the sum of unit price times quantity across all lines,
// computed with decimal precision.
func (s *Store) TotalPrice() domain.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	return TotalPrice(s.lines)
}

// Subscribe registers a callback invoked after every committed cart change,
// including identity transitions. Callbacks run synchronously under the
// store's write order, so they must not call back into the store.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// AddItem adds a book to the cart. If a line for the book already exists its
// quantity increases; otherwise a new line is appended with the given catalog
// snapshot. Quantities below one are treated as one.
func (s *Store) AddItem(ctx context.Context, snap Snapshot, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = AddLine(s.lines, snap, quantity)
	s.commit(ctx)
}

// RemoveItem deletes the line for a book regardless of its quantity.
// Removing a book that is not in the cart is a no-op.
func (s *Store) RemoveItem(ctx context.Context, bookID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, changed := RemoveLine(s.lines, bookID)
	if !changed {
		return
	}
	s.lines = lines
	s.commit(ctx)
}

// DecreaseQuantity lowers a line's quantity by one, removing the line when it
// reaches zero. Decreasing a book that is not in the cart is a no-op.
func (s *Store) DecreaseQuantity(ctx context.Context, bookID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, changed := DecreaseLine(s.lines, bookID)
	if !changed {
		return
	}
	s.lines = lines
	s.commit(ctx)
}

// Clear empties the cart and deletes its persisted record.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	if err := s.storage.Delete(ctx, s.identity.StorageKey()); err != nil {
		s.log.WithError(err).Warn("failed to delete cart record", "key", s.identity.StorageKey())
	}
	s.notify()
}

// Login merges the active guest cart into the user's persisted cart and makes
// the merged cart active under the user's identity.
//
// The merge starts from the user's prior lines: guest quantities add into
// matching lines (the user's price snapshot wins), and guest lines for books
// the user had not saved append in order. The merged cart is persisted under
// the user's key before the guest record is deleted, so a crash in between
// leaves both records and the next login simply re-merges.
func (s *Store) Login(ctx context.Context, userID string) error {
	if userID == "" {
		return errors.Validation("user ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.identity.IsGuest() {
		return errors.Conflict("a user cart is already active")
	}

	guestLines := s.load(ctx, GuestKey)
	userLines := s.load(ctx, UserKey(userID))
	merged := Merge(userLines, guestLines)

	if err := s.storage.Save(ctx, UserKey(userID), merged); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to persist merged cart")
	}
	if err := s.storage.Delete(ctx, GuestKey); err != nil {
		// The merged cart is already durable; a stale guest record only means
		// the next login merges it again, which is idempotent for the user.
		s.log.WithError(err).Warn("failed to delete guest cart record")
	}

	s.identity = ForUser(userID)
	s.lines = merged
	s.notify()
	return nil
}

// Logout switches back to the guest identity. The user's persisted cart is
// kept untouched for their next session; the in-memory cart becomes whatever
// guest record exists, normally empty.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.identity.IsGuest() {
		return
	}

	s.identity = Guest()
	s.lines = s.load(ctx, GuestKey)
	s.notify()
}

// commit persists the current lines under the active identity and notifies
// subscribers. Callers hold s.mu.
func (s *Store) commit(ctx context.Context) {
	if err := s.storage.Save(ctx, s.identity.StorageKey(), s.lines); err != nil {
		s.log.WithError(err).Warn("failed to persist cart", "key", s.identity.StorageKey())
	}
	s.notify()
}

// notify runs subscriber callbacks. Callers hold s.mu.
func (s *Store) notify() {
	for _, fn := range s.subscribers {
		fn()
	}
}

// load reads a persisted cart, degrading to empty on storage failure.
func (s *Store) load(ctx context.Context, key string) []Line {
	lines, err := s.storage.Load(ctx, key)
	if err != nil {
		s.log.WithError(err).Warn("failed to load cart record", "key", key)
		return nil
	}
	return lines
}

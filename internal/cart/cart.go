// Package cart implements the shopping cart state machine: per-identity
// persisted carts, guest-to-user merge on login, and snapshot pricing.
package cart

import (
	"encoding/json/v2"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
	"github.com/shopspring/decimal"
)

// RecordVersion tags persisted cart records so the shape can migrate later.
const RecordVersion = 1

// Line is one entry in a cart: a distinct catalog book and the quantity selected.
// Title, author, image and price are display snapshots copied at add time; they
// are not re-fetched when the catalog changes.
type Line struct {
	BookID     string       `json:"book_id"`
	Title      string       `json:"title,omitempty"`
	AuthorName string       `json:"author_name,omitempty"`
	ImageURL   string       `json:"img_url,omitempty"`
	UnitPrice  domain.Money `json:"unit_price"`
	Quantity   int          `json:"quantity"`
}

// Snapshot carries the catalog fields copied into a line item when a book is
// added. The cart never holds a live link back to the catalog.
type Snapshot struct {
	BookID     string
	Title      string
	AuthorName string
	ImageURL   string
	UnitPrice  domain.Money
}

// record is the persisted cart shape.
type record struct {
	Version int    `json:"version"`
	Lines   []Line `json:"lines"`
}

// EncodeLines marshals cart lines into the versioned persisted record.
func EncodeLines(lines []Line) ([]byte, error) {
	return json.Marshal(record{Version: RecordVersion, Lines: lines})
}

// DecodeLines unmarshals a persisted record back into cart lines.
// Malformed data decodes to an empty cart rather than an error: a corrupt
// record must never block the shopping flow.
func DecodeLines(data []byte) []Line {
	if len(data) == 0 {
		return nil
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil
	}

	// Drop lines that make no sense (zero or negative quantities, missing IDs)
	// so a hand-edited or partially written record degrades gracefully.
	lines := make([]Line, 0, len(rec.Lines))
	for _, line := range rec.Lines {
		if line.BookID == "" || line.Quantity < 1 {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return nil
	}
	return lines
}

// AddLine adds a book to a set of cart lines. An existing line for the book
// has its quantity increased and keeps its display snapshot; otherwise a new
// line is appended from the snapshot. Quantities below one are treated as one.
// The input slice is edited in place.
func AddLine(lines []Line, snap Snapshot, quantity int) []Line {
	if quantity < 1 {
		quantity = 1
	}

	for i := range lines {
		if lines[i].BookID == snap.BookID {
			lines[i].Quantity += quantity
			return lines
		}
	}
	return append(lines, Line{
		BookID:     snap.BookID,
		Title:      snap.Title,
		AuthorName: snap.AuthorName,
		ImageURL:   snap.ImageURL,
		UnitPrice:  snap.UnitPrice,
		Quantity:   quantity,
	})
}

// RemoveLine deletes the line for a book regardless of its quantity. The
// second return reports whether the book was in the cart. The input slice is
// edited in place.
func RemoveLine(lines []Line, bookID string) ([]Line, bool) {
	for i := range lines {
		if lines[i].BookID == bookID {
			return append(lines[:i], lines[i+1:]...), true
		}
	}
	return lines, false
}

// DecreaseLine lowers a line's quantity by one, removing the line when it
// would drop below one. The second return reports whether the book was in the
// cart. The input slice is edited in place.
func DecreaseLine(lines []Line, bookID string) ([]Line, bool) {
	for i := range lines {
		if lines[i].BookID != bookID {
			continue
		}
		if lines[i].Quantity <= 1 {
			return append(lines[:i], lines[i+1:]...), true
		}
		lines[i].Quantity--
		return lines, true
	}
	return lines, false
}

// Merge combines a guest cart into a user's prior cart.
// The user's lines come first and keep their price snapshots; guest quantities
// add into matching lines, and unmatched guest lines append in order.
// Neither input is mutated.
func Merge(userLines, guestLines []Line) []Line {
	merged := make([]Line, len(userLines))
	copy(merged, userLines)

	for _, guestLine := range guestLines {
		found := false
		for i := range merged {
			if merged[i].BookID == guestLine.BookID {
				merged[i].Quantity += guestLine.Quantity
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, guestLine)
		}
	}

	return merged
}

// TotalPrice sums unit price times quantity across lines with decimal
// precision.
func TotalPrice(lines []Line) domain.Money {
	total := domain.NewMoney(decimal.Zero)
	for _, line := range lines {
		total.Amount = total.Amount.Add(line.UnitPrice.Amount.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// TotalItems sums quantities across lines.
func TotalItems(lines []Line) int {
	total := 0
	for _, line := range lines {
		total += line.Quantity
	}
	return total
}

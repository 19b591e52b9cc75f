package domain

import "time"

// Book represents a catalog item available in the storefront.
type Book struct {
	Tracked
	Title           string     `json:"title"`
	Price           Money      `json:"price"`
	StockQuantity   int        `json:"stock_quantity"`
	PublicationDate *time.Time `json:"publication_date,omitempty"`
	ImageURL        string     `json:"img_url,omitempty"`
	FileURL         string     `json:"file_url,omitempty"`
	Description     string     `json:"description,omitempty"`
	Recommended     bool       `json:"recommended"`

	// AuthorIDs links to Author entities (many-to-many in the catalog).
	AuthorIDs []string `json:"author_ids"`
}

// InStock reports whether at least the requested quantity is available.
func (b *Book) InStock(quantity int) bool {
	return b.StockQuantity >= quantity
}

// Author represents a book author.
type Author struct {
	Tracked
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio,omitempty"`
}

// Name returns the author's display name.
func (a *Author) Name() string {
	switch {
	case a.FirstName == "":
		return a.LastName
	case a.LastName == "":
		return a.FirstName
	default:
		return a.FirstName + " " + a.LastName
	}
}

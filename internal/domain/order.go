package domain

import "time"

// OrderStatus tracks an order through the (simulated) fulfillment flow.
type OrderStatus string

const (
	// OrderStatusPending means the order was placed and awaits confirmation.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusConfirmed means the simulated payment step completed.
	OrderStatusConfirmed OrderStatus = "confirmed"
	// OrderStatusCancelled means the order was cancelled before confirmation.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order is a placed order with price-at-purchase snapshots.
type Order struct {
	Tracked
	UserID string `json:"user_id"`
	// Reference is the customer-facing order number shown on the confirmation page.
	Reference   string      `json:"reference"`
	Status      OrderStatus `json:"status"`
	TotalAmount Money       `json:"total_amount"`
	Items       []OrderItem `json:"items"`
	AddressID   string      `json:"address_id,omitempty"`
	PlacedAt    time.Time   `json:"placed_at"`
}

// OrderItem is a single line of an order.
// Title, author and price are snapshots taken at purchase time; later catalog
// edits do not rewrite order history.
type OrderItem struct {
	BookID          string `json:"book_id"`
	Title           string `json:"title"`
	AuthorName      string `json:"author_name,omitempty"`
	PriceAtPurchase Money  `json:"price_at_purchase"`
	Quantity        int    `json:"quantity"`
}

// TotalItems returns the number of physical items in the order.
func (o *Order) TotalItems() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

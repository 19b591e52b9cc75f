package backup

import "time"

// FormatVersion is the backup format version. Increment major on breaking changes.
const FormatVersion = "1.0"

// Manifest describes backup contents and metadata.
type Manifest struct {
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"created_at"`

	// Server identity
	ServerName    string `json:"server_name,omitempty"`
	ServerVersion string `json:"server_version,omitempty"`

	// Content summary
	Counts RecordCounts `json:"counts"`

	// Checksum is the hex SHA-256 over every key/value pair, for integrity
	// verification on restore.
	Checksum string `json:"checksum"`
}

// RecordCounts tracks primary record counts for validation and reporting.
// Index keys are backed up too but not counted here.
type RecordCounts struct {
	Users     int `json:"users"`
	Books     int `json:"books"`
	Authors   int `json:"authors"`
	Addresses int `json:"addresses"`
	Orders    int `json:"orders"`
	Sessions  int `json:"sessions"`
	Carts     int `json:"carts"`
}

// Total sums all primary record counts.
func (c RecordCounts) Total() int {
	return c.Users + c.Books + c.Authors + c.Addresses + c.Orders + c.Sessions + c.Carts
}

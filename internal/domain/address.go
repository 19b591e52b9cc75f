package domain

// MaxAddressesPerUser caps the size of a user's address book.
const MaxAddressesPerUser = 3

// Address is a delivery address in a user's address book.
type Address struct {
	Tracked
	UserID        string `json:"user_id"`
	Label         string `json:"label"` // e.g. "Home", "Office"
	RecipientName string `json:"recipient_name"`
	PhoneNumber   string `json:"phone_number"`
	AddressLine1  string `json:"address_line1"`
	AddressLine2  string `json:"address_line2,omitempty"`
	District      string `json:"district"`
	SubDistrict   string `json:"sub_district"`
	Province      string `json:"province"`
	PostalCode    string `json:"postal_code"`
	IsDefault     bool   `json:"is_default"`
}

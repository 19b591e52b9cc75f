package cart

// GuestKey is the storage key for the anonymous cart.
const GuestKey = "cart:guest"

// UserKey returns the storage key for a user's cart.
func UserKey(userID string) string {
	return "cart:user:" + userID
}

// Identity names whose cart a Store is operating on. The zero value is the
// guest identity.
type Identity struct {
	userID string
}

// Guest returns the anonymous identity.
func Guest() Identity {
	return Identity{}
}

// ForUser returns the identity of an authenticated user.
func ForUser(userID string) Identity {
	return Identity{userID: userID}
}

// IsGuest reports whether the identity is anonymous.
func (i Identity) IsGuest() bool {
	return i.userID == ""
}

// UserID returns the authenticated user's ID, or "" for a guest.
func (i Identity) UserID() string {
	return i.userID
}

// StorageKey returns the persistence key the identity's cart lives under.
func (i Identity) StorageKey() string {
	if i.IsGuest() {
		return GuestKey
	}
	return UserKey(i.userID)
}

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
	"github.com/bookhavenapp/bookhaven-server/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAddress(id, userID, label string, isDefault bool) *domain.Address {
	addr := &domain.Address{
		UserID:        userID,
		Label:         label,
		RecipientName: "A. Reader",
		PhoneNumber:   "0812345678",
		AddressLine1:  "1 Book Street",
		Province:      "Bangkok",
		PostalCode:    "10110",
		IsDefault:     isDefault,
	}
	addr.ID = id
	addr.InitTimestamps()
	return addr
}

func TestAddresses_CRUD(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	addr := newTestAddress("addr-1", "user-1", "Home", true)
	require.NoError(t, s.CreateAddress(ctx, addr))

	got, err := s.GetAddress(ctx, "addr-1")
	require.NoError(t, err)
	assert.Equal(t, "Home", got.Label)

	got.Label = "Office"
	require.NoError(t, s.UpdateAddress(ctx, got))

	got, err = s.GetAddress(ctx, "addr-1")
	require.NoError(t, err)
	assert.Equal(t, "Office", got.Label)

	require.NoError(t, s.DeleteAddress(ctx, "addr-1"))
	require.NoError(t, s.DeleteAddress(ctx, "addr-1"))

	_, err = s.GetAddress(ctx, "addr-1")
	assert.ErrorIs(t, err, store.ErrAddressNotFound)
}

func TestAddresses_ListOrder(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	first := newTestAddress("addr-1", "user-1", "Home", false)
	first.CreatedAt = time.Now().Add(-2 * time.Hour)
	second := newTestAddress("addr-2", "user-1", "Office", true)
	second.CreatedAt = time.Now().Add(-time.Hour)
	third := newTestAddress("addr-3", "user-1", "Parents", false)

	require.NoError(t, s.CreateAddress(ctx, first))
	require.NoError(t, s.CreateAddress(ctx, second))
	require.NoError(t, s.CreateAddress(ctx, third))
	require.NoError(t, s.CreateAddress(ctx, newTestAddress("addr-9", "user-2", "Elsewhere", true)))

	addresses, err := s.ListAddressesByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, addresses, 3)

	// Default first, then oldest first.
	assert.Equal(t, "addr-2", addresses[0].ID)
	assert.Equal(t, "addr-1", addresses[1].ID)
	assert.Equal(t, "addr-3", addresses[2].ID)
}

func TestAddresses_SetDefault(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, s.CreateAddress(ctx, newTestAddress("addr-1", "user-1", "Home", true)))
	require.NoError(t, s.CreateAddress(ctx, newTestAddress("addr-2", "user-1", "Office", false)))

	require.NoError(t, s.SetDefaultAddress(ctx, "user-1", "addr-2"))

	addresses, err := s.ListAddressesByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, addresses, 2)
	assert.Equal(t, "addr-2", addresses[0].ID)
	assert.True(t, addresses[0].IsDefault)
	assert.False(t, addresses[1].IsDefault)

	err = s.SetDefaultAddress(ctx, "user-1", "addr-404")
	assert.ErrorIs(t, err, store.ErrAddressNotFound)
}

func TestAddresses_Count(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	count, err := s.CountAddressesByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, s.CreateAddress(ctx, newTestAddress("addr-1", "user-1", "Home", true)))
	require.NoError(t, s.CreateAddress(ctx, newTestAddress("addr-2", "user-1", "Office", false)))

	count, err = s.CountAddressesByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
	domainerrors "github.com/bookhavenapp/bookhaven-server/internal/errors"
	"github.com/bookhavenapp/bookhaven-server/internal/id"
	"github.com/bookhavenapp/bookhaven-server/internal/store"
)

// AddressService manages a user's delivery address book. Each user can keep
// up to domain.MaxAddressesPerUser addresses, with exactly one default while
// any exist.
type AddressService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewAddressService creates a new address service.
func NewAddressService(s *store.Store, logger *slog.Logger) *AddressService {
	return &AddressService{store: s, logger: logger}
}

// AddressRequest contains the data for creating or replacing an address.
type AddressRequest struct {
	Label         string `json:"label" validate:"required,max=100"`
	RecipientName string `json:"recipient_name" validate:"required,max=200"`
	PhoneNumber   string `json:"phone_number" validate:"required,max=30"`
	AddressLine1  string `json:"address_line1" validate:"required,max=500"`
	AddressLine2  string `json:"address_line2,omitempty" validate:"max=500"`
	District      string `json:"district" validate:"required,max=200"`
	SubDistrict   string `json:"sub_district" validate:"required,max=200"`
	Province      string `json:"province" validate:"required,max=200"`
	PostalCode    string `json:"postal_code" validate:"required,max=20"`
	IsDefault     bool   `json:"is_default,omitempty"`
}

// CreateAddress adds an address to the user's address book. The first
// address automatically becomes the default.
func (s *AddressService) CreateAddress(ctx context.Context, userID string, req AddressRequest) (*domain.Address, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	count, err := s.store.CountAddressesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count addresses: %w", err)
	}
	if count >= domain.MaxAddressesPerUser {
		return nil, domainerrors.Validationf("address book is full (max %d addresses)", domain.MaxAddressesPerUser)
	}

	addressID, err := id.Generate("address")
	if err != nil {
		return nil, fmt.Errorf("generate address ID: %w", err)
	}

	addr := &domain.Address{
		Tracked:       domain.Tracked{ID: addressID},
		UserID:        userID,
		Label:         req.Label,
		RecipientName: req.RecipientName,
		PhoneNumber:   req.PhoneNumber,
		AddressLine1:  req.AddressLine1,
		AddressLine2:  req.AddressLine2,
		District:      req.District,
		SubDistrict:   req.SubDistrict,
		Province:      req.Province,
		PostalCode:    req.PostalCode,
		IsDefault:     req.IsDefault || count == 0,
	}
	addr.InitTimestamps()

	if err := s.store.CreateAddress(ctx, addr); err != nil {
		return nil, fmt.Errorf("create address: %w", err)
	}

	if addr.IsDefault {
		if err := s.store.SetDefaultAddress(ctx, userID, addressID); err != nil {
			return nil, fmt.Errorf("set default address: %w", err)
		}
	}

	return addr, nil
}

// GetAddress retrieves one of the user's addresses. Other users' addresses
// come back as not found.
func (s *AddressService) GetAddress(ctx context.Context, userID, addressID string) (*domain.Address, error) {
	addr, err := s.store.GetAddress(ctx, addressID)
	if err != nil {
		return nil, err
	}
	if addr.UserID != userID {
		return nil, store.ErrAddressNotFound
	}
	return addr, nil
}

// ListAddresses returns the user's address book, default address first.
func (s *AddressService) ListAddresses(ctx context.Context, userID string) ([]*domain.Address, error) {
	return s.store.ListAddressesByUser(ctx, userID)
}

// UpdateAddress replaces an address's fields.
func (s *AddressService) UpdateAddress(ctx context.Context, userID, addressID string, req AddressRequest) (*domain.Address, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	addr, err := s.GetAddress(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}

	addr.Label = req.Label
	addr.RecipientName = req.RecipientName
	addr.PhoneNumber = req.PhoneNumber
	addr.AddressLine1 = req.AddressLine1
	addr.AddressLine2 = req.AddressLine2
	addr.District = req.District
	addr.SubDistrict = req.SubDistrict
	addr.Province = req.Province
	addr.PostalCode = req.PostalCode
	addr.Touch()

	if err := s.store.UpdateAddress(ctx, addr); err != nil {
		return nil, fmt.Errorf("update address: %w", err)
	}

	if req.IsDefault && !addr.IsDefault {
		if err := s.store.SetDefaultAddress(ctx, userID, addressID); err != nil {
			return nil, fmt.Errorf("set default address: %w", err)
		}
		addr.IsDefault = true
	}

	return addr, nil
}

// SetDefaultAddress marks one of the user's addresses as the default,
// clearing the flag on the others.
func (s *AddressService) SetDefaultAddress(ctx context.Context, userID, addressID string) error {
	if _, err := s.GetAddress(ctx, userID, addressID); err != nil {
		return err
	}
	return s.store.SetDefaultAddress(ctx, userID, addressID)
}

// DeleteAddress removes an address. Deleting the default promotes the oldest
// remaining address to default.
func (s *AddressService) DeleteAddress(ctx context.Context, userID, addressID string) error {
	addr, err := s.GetAddress(ctx, userID, addressID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteAddress(ctx, addressID); err != nil {
		return fmt.Errorf("delete address: %w", err)
	}

	if addr.IsDefault {
		remaining, err := s.store.ListAddressesByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("list addresses: %w", err)
		}
		if len(remaining) > 0 {
			oldest := remaining[0]
			for _, a := range remaining[1:] {
				if a.CreatedAt.Before(oldest.CreatedAt) {
					oldest = a
				}
			}
			if err := s.store.SetDefaultAddress(ctx, userID, oldest.ID); err != nil {
				return fmt.Errorf("promote default address: %w", err)
			}
		}
	}

	return nil
}

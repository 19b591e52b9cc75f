package api

import (
	"context"
	"net/http"
	"time"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
	"github.com/bookhavenapp/bookhaven-server/internal/service"
	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerAddressRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listAddresses",
		Method:      http.MethodGet,
		Path:        "/api/v1/addresses",
		Summary:     "List addresses",
		Description: "Returns the authenticated user's address book, default first",
		Tags:        []string{"Addresses"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListAddresses)

	huma.Register(s.api, huma.Operation{
		OperationID: "createAddress",
		Method:      http.MethodPost,
		Path:        "/api/v1/addresses",
		Summary:     "Create address",
		Description: "Adds a delivery address. The first address becomes the default.",
		Tags:        []string{"Addresses"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateAddress)

	huma.Register(s.api, huma.Operation{
		OperationID: "getAddress",
		Method:      http.MethodGet,
		Path:        "/api/v1/addresses/{id}",
		Summary:     "Get address",
		Description: "Returns one of the authenticated user's addresses",
		Tags:        []string{"Addresses"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetAddress)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateAddress",
		Method:      http.MethodPut,
		Path:        "/api/v1/addresses/{id}",
		Summary:     "Update address",
		Description: "Replaces an address with the submitted fields",
		Tags:        []string{"Addresses"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateAddress)

	huma.Register(s.api, huma.Operation{
		OperationID: "setDefaultAddress",
		Method:      http.MethodPost,
		Path:        "/api/v1/addresses/{id}/default",
		Summary:     "Set default address",
		Description: "Marks an address as the default for checkout",
		Tags:        []string{"Addresses"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSetDefaultAddress)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteAddress",
		Method:      http.MethodDelete,
		Path:        "/api/v1/addresses/{id}",
		Summary:     "Delete address",
		Description: "Removes an address. Deleting the default promotes the oldest remaining address.",
		Tags:        []string{"Addresses"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteAddress)
}

// === DTOs ===

// AddressResponse contains address data in API responses.
type AddressResponse struct {
	ID            string    `json:"id" doc:"Address ID"`
	Label         string    `json:"label" doc:"Short label, e.g. Home"`
	RecipientName string    `json:"recipient_name" doc:"Recipient full name"`
	PhoneNumber   string    `json:"phone_number" doc:"Contact phone"`
	AddressLine1  string    `json:"address_line1" doc:"Street address"`
	AddressLine2  string    `json:"address_line2,omitempty" doc:"Apartment, suite, etc."`
	District      string    `json:"district" doc:"District"`
	SubDistrict   string    `json:"sub_district" doc:"Sub-district"`
	Province      string    `json:"province" doc:"Province or state"`
	PostalCode    string    `json:"postal_code" doc:"Postal code"`
	IsDefault     bool      `json:"is_default" doc:"Default checkout address"`
	CreatedAt     time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt     time.Time `json:"updated_at" doc:"Last update time"`
}

// ListAddressesResponse contains the user's address book.
type ListAddressesResponse struct {
	Addresses []AddressResponse `json:"addresses" doc:"Addresses, default first"`
}

// ListAddressesOutput wraps the address list for Huma.
type ListAddressesOutput struct {
	Body ListAddressesResponse
}

// AddressOutput wraps a single address for Huma.
type AddressOutput struct {
	Body AddressResponse
}

// AddressRequest is the request body for creating or replacing an address.
type AddressRequest struct {
	Label         string `json:"label" validate:"required,max=100" doc:"Short label, e.g. Home"`
	RecipientName string `json:"recipient_name" validate:"required,max=200" doc:"Recipient full name"`
	PhoneNumber   string `json:"phone_number" validate:"required,max=30" doc:"Contact phone"`
	AddressLine1  string `json:"address_line1" validate:"required,max=500" doc:"Street address"`
	AddressLine2  string `json:"address_line2,omitempty" validate:"max=500" doc:"Apartment, suite, etc."`
	District      string `json:"district" validate:"required,max=200" doc:"District"`
	SubDistrict   string `json:"sub_district" validate:"required,max=200" doc:"Sub-district"`
	Province      string `json:"province" validate:"required,max=200" doc:"Province or state"`
	PostalCode    string `json:"postal_code" validate:"required,max=20" doc:"Postal code"`
	IsDefault     bool   `json:"is_default,omitempty" doc:"Make this the default address"`
}

// CreateAddressInput wraps the create address request for Huma.
type CreateAddressInput struct {
	Authorization string `header:"Authorization"`
	Body          AddressRequest
}

// AddressIDInput addresses a single address by ID.
type AddressIDInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Address ID"`
}

// UpdateAddressInput wraps the replace address request for Huma.
type UpdateAddressInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Address ID"`
	Body          AddressRequest
}

// === Handlers ===

func (s *Server) handleListAddresses(ctx context.Context, input *ProfileInput) (*ListAddressesOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	addresses, err := s.services.Address.ListAddresses(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]AddressResponse, len(addresses))
	for i, a := range addresses {
		resp[i] = mapAddressResponse(a)
	}

	return &ListAddressesOutput{Body: ListAddressesResponse{Addresses: resp}}, nil
}

func (s *Server) handleCreateAddress(ctx context.Context, input *CreateAddressInput) (*AddressOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	address, err := s.services.Address.CreateAddress(ctx, userID, mapAddressRequest(input.Body))
	if err != nil {
		return nil, err
	}

	return &AddressOutput{Body: mapAddressResponse(address)}, nil
}

func (s *Server) handleGetAddress(ctx context.Context, input *AddressIDInput) (*AddressOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	address, err := s.services.Address.GetAddress(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &AddressOutput{Body: mapAddressResponse(address)}, nil
}

func (s *Server) handleUpdateAddress(ctx context.Context, input *UpdateAddressInput) (*AddressOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	address, err := s.services.Address.UpdateAddress(ctx, userID, input.ID, mapAddressRequest(input.Body))
	if err != nil {
		return nil, err
	}

	return &AddressOutput{Body: mapAddressResponse(address)}, nil
}

func (s *Server) handleSetDefaultAddress(ctx context.Context, input *AddressIDInput) (*AddressOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Address.SetDefaultAddress(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	address, err := s.services.Address.GetAddress(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &AddressOutput{Body: mapAddressResponse(address)}, nil
}

func (s *Server) handleDeleteAddress(ctx context.Context, input *AddressIDInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Address.DeleteAddress(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Address deleted"}}, nil
}

// === Helpers ===

func mapAddressRequest(req AddressRequest) service.AddressRequest {
	return service.AddressRequest{
		Label:         req.Label,
		RecipientName: req.RecipientName,
		PhoneNumber:   req.PhoneNumber,
		AddressLine1:  req.AddressLine1,
		AddressLine2:  req.AddressLine2,
		District:      req.District,
		SubDistrict:   req.SubDistrict,
		Province:      req.Province,
		PostalCode:    req.PostalCode,
		IsDefault:     req.IsDefault,
	}
}

func mapAddressResponse(address *domain.Address) AddressResponse {
	return AddressResponse{
		ID:            address.ID,
		Label:         address.Label,
		RecipientName: address.RecipientName,
		PhoneNumber:   address.PhoneNumber,
		AddressLine1:  address.AddressLine1,
		AddressLine2:  address.AddressLine2,
		District:      address.District,
		SubDistrict:   address.SubDistrict,
		Province:      address.Province,
		PostalCode:    address.PostalCode,
		IsDefault:     address.IsDefault,
		CreatedAt:     address.CreatedAt,
		UpdatedAt:     address.UpdatedAt,
	}
}

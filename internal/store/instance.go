package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
	"github.com/bookhavenapp/bookhaven-server/internal/id"
	"github.com/dgraph-io/badger/v4"
)

// instanceKey is the singleton key for the deployment record.
var instanceKey = []byte("instance:config")

// GetInstance retrieves the singleton instance configuration.
// Returns ErrInstanceNotFound if setup has not run yet.
func (s *Store) GetInstance(_ context.Context) (*domain.Instance, error) {
	var instance domain.Instance

	if err := s.get(instanceKey, &instance); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrInstanceNotFound
		}
		return nil, fmt.Errorf("get instance: %w", err)
	}

	return &instance, nil
}

// CreateInstance creates the singleton instance configuration.
// Returns ErrInstanceExists if one already exists.
func (s *Store) CreateInstance(_ context.Context, name, version string) (*domain.Instance, error) {
	exists, err := s.exists(instanceKey)
	if err != nil {
		return nil, fmt.Errorf("check instance existence: %w", err)
	}
	if exists {
		return nil, ErrInstanceExists
	}

	instanceID, err := id.Generate("instance")
	if err != nil {
		return nil, fmt.Errorf("generate instance ID: %w", err)
	}

	now := time.Now()
	instance := &domain.Instance{
		ID:        instanceID,
		Name:      name,
		Version:   version,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.set(instanceKey, instance); err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}

	return instance, nil
}

// UpdateInstance persists changes to the instance configuration.
func (s *Store) UpdateInstance(_ context.Context, instance *domain.Instance) error {
	exists, err := s.exists(instanceKey)
	if err != nil {
		return fmt.Errorf("check instance existence: %w", err)
	}
	if !exists {
		return ErrInstanceNotFound
	}

	instance.UpdatedAt = time.Now()
	return s.set(instanceKey, instance)
}

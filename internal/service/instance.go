package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
	domainerrors "github.com/bookhavenapp/bookhaven-server/internal/errors"
	"github.com/bookhavenapp/bookhaven-server/internal/store"
)

// InstanceService manages the deployment's singleton configuration record
// and its setup state.
type InstanceService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewInstanceService creates a new instance service.
func NewInstanceService(s *store.Store, logger *slog.Logger) *InstanceService {
	return &InstanceService{store: s, logger: logger}
}

// EnsureInstance creates the instance record on first boot.
func (s *InstanceService) EnsureInstance(ctx context.Context, name, version string) (*domain.Instance, error) {
	instance, err := s.store.GetInstance(ctx)
	if err == nil {
		return instance, nil
	}
	if !domainerrors.Is(err, store.ErrInstanceNotFound) {
		return nil, fmt.Errorf("get instance: %w", err)
	}

	instance, err = s.store.CreateInstance(ctx, name, version)
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("instance created", "name", name, "version", version)
	}

	return instance, nil
}

// GetInstance returns the deployment configuration.
func (s *InstanceService) GetInstance(ctx context.Context) (*domain.Instance, error) {
	return s.store.GetInstance(ctx)
}

// IsSetupRequired reports whether the initial root admin still needs to be
// created.
func (s *InstanceService) IsSetupRequired(ctx context.Context) (bool, error) {
	instance, err := s.store.GetInstance(ctx)
	if err != nil {
		if domainerrors.Is(err, store.ErrInstanceNotFound) {
			return true, nil
		}
		return false, fmt.Errorf("get instance: %w", err)
	}
	return !instance.HasRootUser, nil
}

// SetRootUser records that the root admin has been created, completing setup.
func (s *InstanceService) SetRootUser(ctx context.Context) error {
	instance, err := s.store.GetInstance(ctx)
	if err != nil {
		return fmt.Errorf("get instance: %w", err)
	}
	if instance.HasRootUser {
		return domainerrors.AlreadyConfigured("root user already exists")
	}

	instance.HasRootUser = true
	return s.store.UpdateInstance(ctx, instance)
}

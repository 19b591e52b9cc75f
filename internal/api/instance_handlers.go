package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerInstanceRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getInstance",
		Method:      http.MethodGet,
		Path:        "/api/v1/instance",
		Summary:     "Get instance info",
		Description: "Returns storefront deployment info and whether initial setup is still required",
		Tags:        []string{"Instance"},
	}, s.handleGetInstance)
}

// InstanceResponse describes this storefront deployment.
type InstanceResponse struct {
	Name          string    `json:"name" doc:"Storefront name"`
	Version       string    `json:"version" doc:"Server version"`
	SetupRequired bool      `json:"setup_required" doc:"Whether the initial setup call is still needed"`
	CreatedAt     time.Time `json:"created_at,omitzero" doc:"When this deployment was initialized"`
}

// InstanceOutput wraps the instance response for Huma.
type InstanceOutput struct {
	Body InstanceResponse
}

func (s *Server) handleGetInstance(ctx context.Context, _ *struct{}) (*InstanceOutput, error) {
	setupRequired, err := s.services.Instance.IsSetupRequired(ctx)
	if err != nil {
		return nil, err
	}

	resp := InstanceResponse{
		Version:       APIVersion,
		SetupRequired: setupRequired,
	}

	// Before setup the instance record may not exist yet.
	if instance, err := s.services.Instance.GetInstance(ctx); err == nil {
		resp.Name = instance.Name
		resp.Version = instance.Version
		resp.CreatedAt = instance.CreatedAt
	}

	return &InstanceOutput{Body: resp}, nil
}

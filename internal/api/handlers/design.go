package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/RMahshie/fluxloop/internal/analysis"
	"github.com/RMahshie/fluxloop/internal/catalog"
	"github.com/RMahshie/fluxloop/internal/repository"
	"github.com/RMahshie/fluxloop/internal/sensor"
	"github.com/RMahshie/fluxloop/pkg/models"
)

// DesignHandler handles sensor design HTTP requests
type DesignHandler struct {
	repo repository.DesignRepository
	awg  *catalog.AWGTable
}

// NewDesignHandler creates a new design handler
func NewDesignHandler(repo repository.DesignRepository, awg *catalog.AWGTable) *DesignHandler {
	return &DesignHandler{
		repo: repo,
		awg:  awg,
	}
}

// CreateDesign validates and stores a sensor design
func (h *DesignHandler) CreateDesign(ctx context.Context, req *models.CreateDesignRequest) (*models.DesignResponse, error) {
	log.Info().Str("name", req.Body.Name).Msg("Creating design")

	// Reject designs that would fail at evaluation time
	if _, err := req.Body.Design.Resolve(h.awg); err != nil {
		return nil, huma.Error422UnprocessableEntity("Invalid sensor design", err)
	}

	now := time.Now().UTC()
	design := &models.StoredDesign{
		ID:          uuid.New(),
		Name:        req.Body.Name,
		Description: req.Body.Description,
		Design:      req.Body.Design,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.repo.Create(ctx, design); err != nil {
		return nil, huma.Error500InternalServerError("Failed to create design", err)
	}

	log.Info().Str("designID", design.ID.String()).Msg("Design created")
	return &models.DesignResponse{Body: design}, nil
}

// GetDesign returns one stored design
func (h *DesignHandler) GetDesign(ctx context.Context, req *models.GetDesignRequest) (*models.DesignResponse, error) {
	id, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid design ID", err)
	}
	design, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err)
	}
	return &models.DesignResponse{Body: design}, nil
}

// ListDesigns returns a page of stored designs
func (h *DesignHandler) ListDesigns(ctx context.Context, req *models.ListDesignsRequest) (*models.ListDesignsResponse, error) {
	designs, err := h.repo.List(ctx, req.Limit, req.Offset)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list designs", err)
	}
	resp := &models.ListDesignsResponse{}
	resp.Body.Designs = designs
	return resp, nil
}

// DeleteDesign removes a stored design
func (h *DesignHandler) DeleteDesign(ctx context.Context, req *models.DeleteDesignRequest) (*struct{}, error) {
	id, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid design ID", err)
	}
	if err := h.repo.Delete(ctx, id); err != nil {
		return nil, lookupError(err)
	}
	log.Info().Str("designID", id.String()).Msg("Design deleted")
	return nil, nil
}

// Derive computes the physical properties of an inline design
func (h *DesignHandler) Derive(ctx context.Context, req *models.DeriveRequest) (*models.DeriveResponse, error) {
	cfg, err := req.Body.Resolve(h.awg)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity("Invalid sensor design", err)
	}
	derived, err := sensor.Derive(cfg)
	if err != nil {
		return nil, evaluationError("Failed to derive design", err)
	}

	resp := &models.DeriveResponse{}
	resp.Body.Derived = derived
	resp.Body.Warnings = analysis.Warnings(cfg, derived)
	return resp, nil
}

func lookupError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return huma.Error404NotFound("Design not found", err)
	}
	return huma.Error500InternalServerError("Failed to load design", err)
}

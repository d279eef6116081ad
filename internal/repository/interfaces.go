package repository

import (
	"context"
	"errors"

	"github.com/RMahshie/fluxloop/pkg/models"
	"github.com/google/uuid"
)

// ErrNotFound is returned when no design has the requested ID.
var ErrNotFound = errors.New("design not found")

// DesignRepository stores named sensor designs. Designs are inputs; results
// are always recomputed.
type DesignRepository interface {
	Create(ctx context.Context, design *models.StoredDesign) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.StoredDesign, error)
	List(ctx context.Context, limit, offset int) ([]*models.StoredDesign, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/RMahshie/fluxloop/internal/catalog"
	"github.com/RMahshie/fluxloop/pkg/models"
)

// CatalogHandler serves the component catalogs
type CatalogHandler struct {
	awg *catalog.AWGTable
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(awg *catalog.AWGTable) *CatalogHandler {
	return &CatalogHandler{awg: awg}
}

// GetCatalog lists toroids, wires and gauges
func (h *CatalogHandler) GetCatalog(ctx context.Context, _ *struct{}) (*models.CatalogResponse, error) {
	resp := &models.CatalogResponse{}
	for _, k := range catalog.ToroidKeys() {
		spec, err := catalog.GetToroid(k)
		if err != nil {
			return nil, huma.Error500InternalServerError("Toroid catalog is inconsistent", err)
		}
		resp.Body.Toroids = append(resp.Body.Toroids, spec)
	}
	for _, k := range catalog.WireKeys() {
		spec, err := catalog.GetWire(k)
		if err != nil {
			return nil, huma.Error500InternalServerError("Wire catalog is inconsistent", err)
		}
		resp.Body.Wires = append(resp.Body.Wires, spec)
	}
	for _, g := range h.awg.Gauges() {
		entry, err := h.awg.Get(g)
		if err != nil {
			return nil, huma.Error500InternalServerError("AWG table is inconsistent", err)
		}
		resp.Body.Gauges = append(resp.Body.Gauges, entry)
	}
	return resp, nil
}

package models

import (
	"github.com/RMahshie/fluxloop/internal/catalog"
)

// CatalogResponse lists the component catalogs
type CatalogResponse struct {
	Body struct {
		Toroids []catalog.ToroidSpec `json:"toroids" doc:"Ferrite cores"`
		Wires   []catalog.WireSpec   `json:"wires" doc:"Winding conductors"`
		Gauges  []catalog.AWGEntry   `json:"gauges" doc:"AWG diameters"`
	}
}

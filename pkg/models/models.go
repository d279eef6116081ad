package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/RMahshie/fluxloop/internal/sensor"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Body struct {
		Status  string    `json:"status" example:"healthy" doc:"Service health status"`
		Version string    `json:"version" example:"1.0.0" doc:"API version"`
		Time    time.Time `json:"time" doc:"Current server time"`
	}
}

// StoredDesign is a named sensor design kept in the design library
type StoredDesign struct {
	ID          uuid.UUID     `json:"id" doc:"Design unique identifier"`
	Name        string        `json:"name" doc:"Design name"`
	Description string        `json:"description,omitempty" doc:"Free-form notes"`
	Design      sensor.Design `json:"design" doc:"Sensor parameters"`
	CreatedAt   time.Time     `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt   time.Time     `json:"updated_at" doc:"Last update timestamp"`
}

// CreateDesignRequest represents a request to store a sensor design
type CreateDesignRequest struct {
	Body struct {
		Name        string        `json:"name" minLength:"1" maxLength:"255" required:"true" doc:"Design name"`
		Description string        `json:"description,omitempty" maxLength:"2000" doc:"Free-form notes"`
		Design      sensor.Design `json:"design" required:"true" doc:"Sensor parameters"`
	}
}

// DesignResponse returns one stored design
type DesignResponse struct {
	Body *StoredDesign
}

// GetDesignRequest represents a request for one design
type GetDesignRequest struct {
	ID string `path:"id" doc:"Design ID"`
}

// ListDesignsRequest represents a paged design listing
type ListDesignsRequest struct {
	Limit  int `query:"limit" default:"20" minimum:"1" maximum:"100" doc:"Page size"`
	Offset int `query:"offset" default:"0" minimum:"0" doc:"Number of designs to skip"`
}

// ListDesignsResponse returns a page of designs
type ListDesignsResponse struct {
	Body struct {
		Designs []*StoredDesign `json:"designs" doc:"Stored designs, newest first"`
	}
}

// DeleteDesignRequest represents a request to remove a design
type DeleteDesignRequest struct {
	ID string `path:"id" doc:"Design ID"`
}

// DeriveRequest asks for the derived properties of an inline design
type DeriveRequest struct {
	Body sensor.Design
}

// DeriveResponse returns derived sensor properties
type DeriveResponse struct {
	Body struct {
		Derived  sensor.Derived `json:"derived" doc:"Properties computed from the design"`
		Warnings []string       `json:"warnings,omitempty" doc:"Advisory notes such as exceeding a single winding layer"`
	}
}

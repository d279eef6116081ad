package handlers

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog/log"

	"github.com/RMahshie/fluxloop/internal/analysis"
	"github.com/RMahshie/fluxloop/internal/catalog"
	"github.com/RMahshie/fluxloop/internal/measurement"
	"github.com/RMahshie/fluxloop/internal/repository"
	"github.com/RMahshie/fluxloop/internal/sensor"
	"github.com/RMahshie/fluxloop/internal/series"
	"github.com/RMahshie/fluxloop/pkg/units"
)

// unprocessable lists the errors caused by a well-formed request describing
// something that cannot be evaluated. A catalog miss is part of the design
// body, so it is 422 rather than 404, which is kept for design IDs.
var unprocessable = []error{
	sensor.ErrInvalidConfig,
	catalog.ErrUnknownKey,
	catalog.ErrNotFound,
	units.ErrDomain,
	units.ErrUnitMismatch,
	units.ErrUnsupportedUnit,
	measurement.ErrAxisMismatch,
	measurement.ErrCalibrationMismatch,
	measurement.ErrWrongScale,
	measurement.ErrWindow,
	measurement.ErrNoData,
	series.ErrNonMonotonic,
	series.ErrInvalidSample,
}

// evaluationError maps a service error onto an HTTP status
func evaluationError(msg string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return huma.Error404NotFound("Design not found", err)
	case errors.Is(err, analysis.ErrStorage):
		log.Error().Err(err).Msg(msg)
		return huma.Error502BadGateway("Object storage unavailable. Please try again.", err)
	}
	for _, target := range unprocessable {
		if errors.Is(err, target) {
			return huma.Error422UnprocessableEntity(msg, err)
		}
	}
	log.Error().Err(err).Msg(msg)
	return huma.Error500InternalServerError(msg, err)
}

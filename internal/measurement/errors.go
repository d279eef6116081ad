// Package measurement reduces instrument traces to physical curves: shunt and
// amplifier voltages, empirical transfer functions and the noise-equivalent
// magnetic induction. Every function is pure.
package measurement

import (
	"errors"

	"github.com/RMahshie/fluxloop/internal/series"
	"github.com/RMahshie/fluxloop/pkg/units"
)

var (
	// ErrDomain marks an input outside a conversion's validity range.
	ErrDomain = units.ErrDomain
	// ErrNonMonotonic is returned for traces whose frequencies do not
	// strictly increase.
	ErrNonMonotonic = series.ErrNonMonotonic
	// ErrAxisMismatch is returned when traces combined elementwise do not
	// share a frequency axis.
	ErrAxisMismatch = errors.New("frequency axes differ")
	// ErrCalibrationMismatch is returned when a calibration constant
	// disagrees with an independent reference.
	ErrCalibrationMismatch = errors.New("calibration disagrees with reference")
	// ErrWrongScale is returned when a trace has the wrong logarithmic scale
	// for the requested reduction.
	ErrWrongScale = errors.New("wrong trace scale")
	// ErrWindow is returned for smoothing windows the input cannot support.
	ErrWindow = errors.New("invalid smoothing window")
)

package measurement

import (
	"fmt"
	"math"

	"github.com/RMahshie/fluxloop/pkg/units"
)

// CalibrationConstant returns α, the shunt voltage to on-axis field factor of
// a circular driver loop of radius r at distance z, with drive current
// V_shunt/R_shunt:
//
//	α = 2·R_shunt·(z² + r²)^(3/2) / (μ0·r²)
//
// A field B is obtained from a shunt voltage as V_shunt/α.
func CalibrationConstant(shunt, z, r units.Quantity) (units.Quantity, error) {
	if err := shunt.Check("shunt resistance", units.Ohm); err != nil {
		return units.Quantity{}, err
	}
	if err := z.Check("distance", units.Metre); err != nil {
		return units.Quantity{}, err
	}
	if err := r.Check("driver radius", units.Metre); err != nil {
		return units.Quantity{}, err
	}
	if !shunt.Positive() || !r.Positive() || z.Value() < 0 {
		return units.Quantity{}, fmt.Errorf("%w: need R_shunt > 0, r > 0 and z >= 0", ErrDomain)
	}

	d2, err := z.Square().Add(r.Square())
	if err != nil {
		return units.Quantity{}, err
	}
	d, err := d2.Sqrt()
	if err != nil {
		return units.Quantity{}, err
	}
	den := units.VacuumPermeability.Mul(r.Square())
	alpha, err := shunt.Mul(d2).Mul(d).Scale(2).Div(den)
	if err != nil {
		return units.Quantity{}, err
	}
	if err := alpha.Check("calibration constant", units.VoltPerTesla); err != nil {
		return units.Quantity{}, err
	}
	return alpha, nil
}

// DefaultReferenceTolerance is the relative disagreement accepted between
// α and an independent reference.
const DefaultReferenceTolerance = 0.05

// VerifyCalibration compares α against a constant obtained through an
// independently calibrated driver path. The relative difference must not
// exceed tol.
func VerifyCalibration(alpha, reference units.Quantity, tol float64) error {
	if err := alpha.Check("calibration constant", units.VoltPerTesla); err != nil {
		return err
	}
	if err := reference.Check("reference calibration", units.VoltPerTesla); err != nil {
		return err
	}
	if !reference.Positive() || tol < 0 {
		return fmt.Errorf("%w: reference must be positive and tolerance non-negative", ErrDomain)
	}
	rel := math.Abs(alpha.Value()-reference.Value()) / reference.Value()
	if rel > tol {
		return fmt.Errorf("%w: %s vs %s (%.2f%% > %.2f%%)",
			ErrCalibrationMismatch, alpha.Format(units.VoltPerTesla), reference.Format(units.VoltPerTesla), rel*100, tol*100)
	}
	return nil
}

// ReferenceCalibration derives α from a driver of known field per volt, for
// example a Helmholtz coil whose coil constant was measured separately:
// α = 1/(B/V).
func ReferenceCalibration(fieldPerVolt units.Quantity) (units.Quantity, error) {
	if !fieldPerVolt.Positive() {
		return units.Quantity{}, fmt.Errorf("%w: field per volt must be positive", ErrDomain)
	}
	alpha, err := fieldPerVolt.Inv()
	if err != nil {
		return units.Quantity{}, err
	}
	if err := alpha.Check("reference calibration", units.VoltPerTesla); err != nil {
		return units.Quantity{}, err
	}
	return alpha, nil
}

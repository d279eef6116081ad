package measurement

import (
	"fmt"
	"math"

	"github.com/RMahshie/fluxloop/pkg/units"
)

// DefaultImpedance is the system impedance of RF instruments.
var DefaultImpedance = units.New(50, units.Ohm)

// DBmToVpp converts a power reading in dBm into the peak-to-peak voltage of a
// sinusoid across the real impedance z:
//
//	V_pp = sqrt(2·10^((dBm−30)/10)·Z)·2·sqrt(2)
func DBmToVpp(dBm float64, z units.Quantity) (units.Quantity, error) {
	if err := z.Check("impedance", units.Ohm); err != nil {
		return units.Quantity{}, err
	}
	if !z.Positive() {
		return units.Quantity{}, fmt.Errorf("%w: impedance must be positive, got %s", ErrDomain, z)
	}
	if math.IsNaN(dBm) || math.IsInf(dBm, 0) {
		return units.Quantity{}, fmt.Errorf("%w: power reading %g dBm", ErrDomain, dBm)
	}
	p := units.New(math.Pow(10, (dBm-30)/10), units.Watt)
	v, err := p.Mul(z).Scale(2).Sqrt()
	if err != nil {
		return units.Quantity{}, err
	}
	return v.Scale(2 * math.Sqrt2), nil
}

// DBToVoltageRatio converts a voltage gain in dB into a linear ratio.
func DBToVoltageRatio(dB float64) units.Quantity {
	return units.Scalar(math.Pow(10, dB/20))
}

// VoltageRatioToDB converts a positive linear voltage ratio into dB.
func VoltageRatioToDB(r units.Quantity) (float64, error) {
	if err := r.Check("voltage ratio", units.One); err != nil {
		return 0, err
	}
	if !r.Positive() {
		return 0, fmt.Errorf("%w: ratio must be positive, got %g", ErrDomain, r.Value())
	}
	return 20 * math.Log10(r.Value()), nil
}

// VoltsToDBV expresses a positive voltage in dB relative to 1 V.
func VoltsToDBV(v units.Quantity) (float64, error) {
	ratio, err := v.Div(units.New(1, units.Volt))
	if err != nil {
		return 0, err
	}
	return VoltageRatioToDB(ratio)
}

// DBVToVolts converts a level in dBV into volts.
func DBVToVolts(dBV float64) units.Quantity {
	return DBToVoltageRatio(dBV).Mul(units.New(1, units.Volt))
}

package catalog

import (
	"github.com/RMahshie/fluxloop/pkg/units"
)

// ToroidKey names a ferrite ring core from the catalog.
type ToroidKey string

const (
	TN10_6_4_4A11     ToroidKey = "TN10/6/4-4A11"
	TN10_6_4_3E27     ToroidKey = "TN10/6/4-3E27"
	TN13_7_5_5_4A11   ToroidKey = "TN13/7.5/5-4A11"
	TX16_9_6_6_3_4C65 ToroidKey = "TX16/9.6/6.3-4C65"
)

// ToroidKeys lists every catalog toroid.
func ToroidKeys() []ToroidKey {
	return []ToroidKey{TN10_6_4_4A11, TN10_6_4_3E27, TN13_7_5_5_4A11, TX16_9_6_6_3_4C65}
}

// ToroidSpec holds the coated dimensions and magnetic data of a core.
type ToroidSpec struct {
	Key                ToroidKey      `json:"key"`
	OuterDiameter      units.Quantity `json:"outer_diameter"`
	InnerDiameter      units.Quantity `json:"inner_diameter"`
	Height             units.Quantity `json:"height"`
	Chamfer            units.Quantity `json:"chamfer"`
	SpecificInductance units.Quantity `json:"specific_inductance"` // A_l, inductance per turn²
	Permeability       units.Quantity `json:"permeability"`
}

// ParseToroidKey validates a configured core name.
func ParseToroidKey(name string) (ToroidKey, error) {
	for _, k := range ToroidKeys() {
		if string(k) == name {
			return k, nil
		}
	}
	return "", &LookupError{Kind: "toroid", Key: name, Err: ErrUnknownKey}
}

// GetToroid returns the spec for key. Dimensions are the coated maxima and
// minima from the Ferroxcube ring core datasheets; A_l carries the ±25%
// grade tolerance.
func GetToroid(key ToroidKey) (ToroidSpec, error) {
	switch key {
	case TN10_6_4_4A11:
		return ring(key, [4]float64{10.6, 5.2, 4.4, 0.3}, 0.2, 350, 850), nil
	case TN10_6_4_3E27:
		return ring(key, [4]float64{10.6, 5.2, 4.4, 0.3}, 0.2, 2300, 6000), nil
	case TN13_7_5_5_4A11:
		return ring(key, [4]float64{13.5, 6.8, 5.4, 0.4}, 0.3, 420, 850), nil
	case TX16_9_6_6_3_4C65:
		return ring(key, [4]float64{16.6, 8.9, 7.0, 0.5}, 0.3, 70, 125), nil
	}
	return ToroidSpec{}, &LookupError{Kind: "toroid", Key: string(key), Err: ErrUnknownKey}
}

// ring builds a spec from OD, ID, height and chamfer in mm with a common
// dimensional tolerance, A_l in nH and the initial permeability.
func ring(key ToroidKey, dims [4]float64, tol, alNH, mu float64) ToroidSpec {
	mm := func(v float64) units.Quantity { return units.NewWithUncertainty(v, tol, units.Millimetre) }
	return ToroidSpec{
		Key:                key,
		OuterDiameter:      mm(dims[0]),
		InnerDiameter:      mm(dims[1]),
		Height:             mm(dims[2]),
		Chamfer:            units.NewWithUncertainty(dims[3], 0.1, units.Millimetre),
		SpecificInductance: units.NewWithUncertainty(alNH, alNH*0.25, units.Nanohenry),
		Permeability:       units.NewWithUncertainty(mu, mu*0.2, units.One),
	}
}

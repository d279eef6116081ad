package catalog

import (
	"github.com/RMahshie/fluxloop/pkg/units"
)

// WireKey names a conductor material.
type WireKey string

const (
	Copper    WireKey = "Cu"
	Aluminium WireKey = "Al"
)

// WireKeys lists every catalog wire material.
func WireKeys() []WireKey {
	return []WireKey{Copper, Aluminium}
}

// WireSpec holds the material constants of an enamelled wire.
type WireSpec struct {
	Key                   WireKey        `json:"key"`
	Resistivity           units.Quantity `json:"resistivity"`
	ConductorDensity      units.Quantity `json:"conductor_density"`
	InsulationDensity     units.Quantity `json:"insulation_density"`
	InsulatorPermittivity units.Quantity `json:"insulator_permittivity"` // relative
}

// ParseWireKey validates a configured material name.
func ParseWireKey(name string) (WireKey, error) {
	for _, k := range WireKeys() {
		if string(k) == name {
			return k, nil
		}
	}
	return "", &LookupError{Kind: "wire", Key: name, Err: ErrUnknownKey}
}

// GetWire returns the spec for key.
func GetWire(key WireKey) (WireSpec, error) {
	density := func(v float64) units.Quantity { return units.New(v, units.KilogramPerCubicMetre) }

	switch key {
	case Copper:
		return WireSpec{
			Key:                   key,
			Resistivity:           units.NewWithUncertainty(1.68e-8, 0.01e-8, units.OhmMetre),
			ConductorDensity:      density(8960),
			InsulationDensity:     density(1200),
			InsulatorPermittivity: units.NewWithUncertainty(3.5, 0.3, units.One),
		}, nil
	case Aluminium:
		return WireSpec{
			Key:                   key,
			Resistivity:           units.NewWithUncertainty(2.65e-8, 0.02e-8, units.OhmMetre),
			ConductorDensity:      density(2700),
			InsulationDensity:     density(1200),
			InsulatorPermittivity: units.NewWithUncertainty(3.5, 0.3, units.One),
		}, nil
	}
	return WireSpec{}, &LookupError{Kind: "wire", Key: string(key), Err: ErrUnknownKey}
}

package units

import (
	"fmt"
	"strings"
)

// Unit is a named scale of a Dimension. Scale converts a value expressed in
// the unit to SI base units.
type Unit struct {
	Symbol string
	Scale  float64
	Dim    Dimension
}

var (
	dimLength      = dimOf(1, 0, 0, 0, 0)
	dimMass        = dimOf(0, 1, 0, 0, 0)
	dimTime        = dimOf(0, 0, 1, 0, 0)
	dimCurrent     = dimOf(0, 0, 0, 1, 0)
	dimTemperature = dimOf(0, 0, 0, 0, 1)
	dimFrequency   = dimOf(0, 0, -1, 0, 0)
	dimResistance  = dimOf(2, 1, -3, -2, 0)
	dimInductance  = dimOf(2, 1, -2, -2, 0)
	dimCapacitance = dimOf(-2, -1, 4, 2, 0)
	dimFlux        = dimOf(0, 1, -2, -1, 0)
	dimVoltage     = dimOf(2, 1, -3, -1, 0)
)

// Registered units. The set is closed: anything else is reached through
// arithmetic and rendered in base units.
var (
	One = Unit{"", 1, Dimension{}}

	Metre            = Unit{"m", 1, dimLength}
	Millimetre       = Unit{"mm", 1e-3, dimLength}
	Micrometre       = Unit{"µm", 1e-6, dimLength}
	SquareMetre      = Unit{"m²", 1, dimLength.times(2)}
	SquareMillimetre = Unit{"mm²", 1e-6, dimLength.times(2)}

	Kilogram = Unit{"kg", 1, dimMass}
	Gram     = Unit{"g", 1e-3, dimMass}
	Second   = Unit{"s", 1, dimTime}
	Ampere   = Unit{"A", 1, dimCurrent}
	Kelvin   = Unit{"K", 1, dimTemperature}

	Hertz     = Unit{"Hz", 1, dimFrequency}
	Kilohertz = Unit{"kHz", 1e3, dimFrequency}
	Megahertz = Unit{"MHz", 1e6, dimFrequency}

	Ohm      = Unit{"Ω", 1, dimResistance}
	Milliohm = Unit{"mΩ", 1e-3, dimResistance}
	Kiloohm  = Unit{"kΩ", 1e3, dimResistance}
	Megaohm  = Unit{"MΩ", 1e6, dimResistance}

	Henry      = Unit{"H", 1, dimInductance}
	Millihenry = Unit{"mH", 1e-3, dimInductance}
	Microhenry = Unit{"µH", 1e-6, dimInductance}
	Nanohenry  = Unit{"nH", 1e-9, dimInductance}

	Farad     = Unit{"F", 1, dimCapacitance}
	Nanofarad = Unit{"nF", 1e-9, dimCapacitance}
	Picofarad = Unit{"pF", 1e-12, dimCapacitance}

	Tesla      = Unit{"T", 1, dimFlux}
	Nanotesla  = Unit{"nT", 1e-9, dimFlux}
	Picotesla  = Unit{"pT", 1e-12, dimFlux}
	Femtotesla = Unit{"fT", 1e-15, dimFlux}

	Volt      = Unit{"V", 1, dimVoltage}
	Millivolt = Unit{"mV", 1e-3, dimVoltage}
	Microvolt = Unit{"µV", 1e-6, dimVoltage}
	Nanovolt  = Unit{"nV", 1e-9, dimVoltage}

	Watt      = Unit{"W", 1, dimVoltage.add(dimCurrent)}
	Milliwatt = Unit{"mW", 1e-3, dimVoltage.add(dimCurrent)}
	RootHertz = Unit{"√Hz", 1, dimOf(0, 0, -0.5, 0, 0)}

	OhmMetre              = Unit{"Ω·m", 1, dimResistance.add(dimLength)}
	KilogramPerCubicMetre = Unit{"kg/m³", 1, dimMass.sub(dimLength.times(3))}
	JoulePerKelvin        = Unit{"J/K", 1, dimOf(2, 1, -2, 0, -1)}
	HenryPerMetre         = Unit{"H/m", 1, dimInductance.sub(dimLength)}
	VoltPerTesla          = Unit{"V/T", 1, dimVoltage.sub(dimFlux)}
	AmperePerTesla        = Unit{"A/T", 1, dimCurrent.sub(dimFlux)}

	VoltPerRootHertz        = Unit{"V/√Hz", 1, dimOf(2, 1, -2.5, -1, 0)}
	NanovoltPerRootHertz    = Unit{"nV/√Hz", 1e-9, dimOf(2, 1, -2.5, -1, 0)}
	AmperePerRootHertz      = Unit{"A/√Hz", 1, dimOf(0, 0, 0.5, 1, 0)}
	FemtoamperePerRootHertz = Unit{"fA/√Hz", 1e-15, dimOf(0, 0, 0.5, 1, 0)}
	TeslaPerRootHertz       = Unit{"T/√Hz", 1, dimOf(0, 1, -1.5, -1, 0)}
	FemtoteslaPerRootHertz  = Unit{"fT/√Hz", 1e-15, dimOf(0, 1, -1.5, -1, 0)}
)

// canonical maps a dimension to the unit used when rendering quantities.
var canonical = map[Dimension]Unit{}

var registry = map[string]Unit{}

func init() {
	for _, u := range []Unit{
		One, Metre, Millimetre, Micrometre, SquareMetre, SquareMillimetre,
		Kilogram, Gram, Second, Ampere, Kelvin,
		Hertz, Kilohertz, Megahertz,
		Ohm, Milliohm, Kiloohm, Megaohm,
		Henry, Millihenry, Microhenry, Nanohenry,
		Farad, Nanofarad, Picofarad,
		Tesla, Nanotesla, Picotesla, Femtotesla,
		Volt, Millivolt, Microvolt, Nanovolt,
		Watt, Milliwatt, RootHertz,
		OhmMetre, KilogramPerCubicMetre, JoulePerKelvin, HenryPerMetre,
		VoltPerTesla, AmperePerTesla,
		VoltPerRootHertz, NanovoltPerRootHertz, AmperePerRootHertz,
		FemtoamperePerRootHertz, TeslaPerRootHertz, FemtoteslaPerRootHertz,
	} {
		registry[u.Symbol] = u
		if u.Scale == 1 {
			if _, ok := canonical[u.Dim]; !ok {
				canonical[u.Dim] = u
			}
		}
	}
	registry["ohm"] = Ohm
	registry["kohm"] = Kiloohm
	registry["Mohm"] = Megaohm
	registry["uH"] = Microhenry
	registry["um"] = Micrometre
	registry["mm2"] = SquareMillimetre
	registry["m2"] = SquareMetre
	registry["nV/rtHz"] = NanovoltPerRootHertz
	registry["fA/rtHz"] = FemtoamperePerRootHertz
	registry["fT/rtHz"] = FemtoteslaPerRootHertz
}

var prefixes = map[string]float64{
	"f": 1e-15, "p": 1e-12, "n": 1e-9, "µ": 1e-6, "u": 1e-6,
	"m": 1e-3, "k": 1e3, "M": 1e6, "G": 1e9,
}

var prefixable = map[string]Unit{
	"Hz": Hertz, "Ω": Ohm, "ohm": Ohm, "H": Henry, "F": Farad,
	"T": Tesla, "V": Volt, "m": Metre, "g": Gram, "s": Second,
	"A": Ampere, "W": Watt,
}

// ParseUnit resolves a unit symbol such as "nH", "kΩ" or "mm²". Symbols are
// the registered units plus any SI prefix applied to a base unit.
func ParseUnit(symbol string) (Unit, error) {
	s := strings.TrimSpace(symbol)
	if u, ok := registry[s]; ok {
		return u, nil
	}
	for p, scale := range prefixes {
		if !strings.HasPrefix(s, p) {
			continue
		}
		if base, ok := prefixable[strings.TrimPrefix(s, p)]; ok {
			return Unit{Symbol: s, Scale: scale * base.Scale, Dim: base.Dim}, nil
		}
	}
	return Unit{}, fmt.Errorf("%w: %q", ErrUnknownUnit, symbol)
}

// CanonicalUnit returns the registered SI unit for d, if any.
func CanonicalUnit(d Dimension) (Unit, bool) {
	u, ok := canonical[d]
	return u, ok
}

func (u Unit) String() string {
	if u.Symbol == "" && !u.Dim.IsDimensionless() {
		return u.Dim.String()
	}
	return u.Symbol
}

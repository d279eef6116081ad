package sensor

import (
	"fmt"
	"math"

	"github.com/RMahshie/fluxloop/internal/catalog"
	"github.com/RMahshie/fluxloop/pkg/units"
)

// Derived holds the quantities computed from a Config for one analysis.
type Derived struct {
	TurnLength        units.Quantity `json:"turn_length"`
	WireLength        units.Quantity `json:"wire_length"`
	WireMass          units.Quantity `json:"wire_mass"`
	WindingResistance units.Quantity `json:"winding_resistance"` // r_s
	ToroidInductance  units.Quantity `json:"toroid_inductance"`  // A_l·N² of one core
	FluxPerCurrent    units.Quantity `json:"flux_per_current"`   // A_l·N
	InputCapacitance  units.Quantity `json:"input_capacitance"`  // C_in
	ResonantFrequency units.Quantity `json:"resonant_frequency"`
	MaxTurns          units.Quantity `json:"max_turns"` // continuous packing bound per core
	// ExceedsMaxTurns is advisory: layered windings can go past MaxTurns.
	ExceedsMaxTurns bool `json:"exceeds_max_turns"`
}

// Derive computes every derived property of c.
func Derive(c Config) (Derived, error) {
	var d Derived
	var err error

	if d.TurnLength, err = TurnLength(c.Toroid); err != nil {
		return Derived{}, fmt.Errorf("turn length: %w", err)
	}
	if d.WireLength, err = WireLength(c.Margin, c.Toroid, c.Turns, c.ToroidCount); err != nil {
		return Derived{}, fmt.Errorf("wire length: %w", err)
	}
	if d.WindingResistance, err = WindingResistance(d.WireLength, c.Wire.Resistivity, c.Gauge.ConductorDiameter); err != nil {
		return Derived{}, fmt.Errorf("winding resistance: %w", err)
	}
	if d.WireMass, err = WireMass(d.WireLength, c.Wire, c.Gauge); err != nil {
		return Derived{}, fmt.Errorf("wire mass: %w", err)
	}
	d.ToroidInductance = ToroidInductance(c.Toroid.SpecificInductance, c.Turns)
	d.FluxPerCurrent = FluxPerCurrent(c.Toroid.SpecificInductance, c.Turns)
	if d.InputCapacitance, err = c.InputCapacitance(); err != nil {
		return Derived{}, fmt.Errorf("input capacitance: %w", err)
	}
	// the cores sit in series on the loop, so the JFET input sees count·A_l·N²
	stack := c.Toroid.SpecificInductance.Scale(float64(c.ToroidCount))
	if d.ResonantFrequency, err = ResonantFrequency(stack, c.Turns, d.InputCapacitance); err != nil {
		return Derived{}, fmt.Errorf("resonant frequency: %w", err)
	}
	if d.MaxTurns, err = MaxTurnsPerToroid(c.Toroid.InnerDiameter, c.Gauge.TotalDiameter); err != nil {
		return Derived{}, fmt.Errorf("max turns: %w", err)
	}
	d.ExceedsMaxTurns = float64(c.Turns) > math.Floor(d.MaxTurns.Value())
	return d, nil
}

// MaxTurnsPerToroid returns π·ID/d_total, the number of turns that fit side
// by side around the inner circumference. Callers needing a hard limit round
// down.
func MaxTurnsPerToroid(innerDiameter, totalWireDiameter units.Quantity) (units.Quantity, error) {
	if err := innerDiameter.Check("inner diameter", units.Metre); err != nil {
		return units.Quantity{}, err
	}
	if !totalWireDiameter.Positive() {
		return units.Quantity{}, fmt.Errorf("%w: wire diameter must be positive", ErrDomain)
	}
	ratio, err := innerDiameter.Div(totalWireDiameter)
	if err != nil {
		return units.Quantity{}, err
	}
	if err := ratio.Check("turn count", units.One); err != nil {
		return units.Quantity{}, err
	}
	return ratio.Scale(math.Pi), nil
}

// TurnLength returns the wire needed for one turn around a chamfered core:
// 2·[(OD−ID−2c) + (H−2c) + π·c].
func TurnLength(t catalog.ToroidSpec) (units.Quantity, error) {
	twoC := t.Chamfer.Scale(2)
	radial, err := t.OuterDiameter.Sub(t.InnerDiameter)
	if err != nil {
		return units.Quantity{}, err
	}
	if radial, err = radial.Sub(twoC); err != nil {
		return units.Quantity{}, err
	}
	axial, err := t.Height.Sub(twoC)
	if err != nil {
		return units.Quantity{}, err
	}
	sum, err := radial.Add(axial)
	if err != nil {
		return units.Quantity{}, err
	}
	if sum, err = sum.Add(t.Chamfer.Scale(math.Pi)); err != nil {
		return units.Quantity{}, err
	}
	return sum.Scale(2), nil
}

// WireLength returns the total wire for count cores of turns each, with a
// margin multiplier for leads and slack.
func WireLength(margin float64, t catalog.ToroidSpec, turns, count int) (units.Quantity, error) {
	if margin < 1 || math.IsNaN(margin) {
		return units.Quantity{}, fmt.Errorf("%w: margin %g below 1", ErrInvalidConfig, margin)
	}
	if turns < 0 || count < 0 {
		return units.Quantity{}, fmt.Errorf("%w: negative turn or core count", ErrInvalidConfig)
	}
	turn, err := TurnLength(t)
	if err != nil {
		return units.Quantity{}, err
	}
	return turn.Scale(margin * float64(turns) * float64(count)), nil
}

// conductorSection returns π·d²/4.
func conductorSection(d units.Quantity) units.Quantity {
	return d.Square().Scale(math.Pi / 4)
}

// WindingResistance returns ρ·L/A with A taken from the bare conductor
// diameter.
func WindingResistance(length, resistivity, conductorDiameter units.Quantity) (units.Quantity, error) {
	if err := resistivity.Check("resistivity", units.OhmMetre); err != nil {
		return units.Quantity{}, err
	}
	r, err := resistivity.Mul(length).Div(conductorSection(conductorDiameter))
	if err != nil {
		return units.Quantity{}, fmt.Errorf("conductor section: %w", err)
	}
	return r, r.Check("winding resistance", units.Ohm)
}

// WireMass returns the conductor plus insulation mass of length of wire.
func WireMass(length units.Quantity, w catalog.WireSpec, g catalog.AWGEntry) (units.Quantity, error) {
	inner := conductorSection(g.ConductorDiameter)
	outer := conductorSection(g.TotalDiameter)
	insulation, err := outer.Sub(inner)
	if err != nil {
		return units.Quantity{}, err
	}
	if insulation.Value() < 0 {
		return units.Quantity{}, fmt.Errorf("%w: gauge %d total diameter below conductor diameter", ErrInvalidConfig, g.Gauge)
	}
	conductor := inner.Mul(length).Mul(w.ConductorDensity)
	coat := insulation.Mul(length).Mul(w.InsulationDensity)
	m, err := conductor.Add(coat)
	if err != nil {
		return units.Quantity{}, err
	}
	return m, m.Check("wire mass", units.Kilogram)
}

// ToroidInductance returns A_l·N².
func ToroidInductance(specificInductance units.Quantity, turns int) units.Quantity {
	n := float64(turns)
	return specificInductance.Scale(n * n)
}

// FluxPerCurrent returns A_l·N, the flux linked per ampere of loop current.
func FluxPerCurrent(specificInductance units.Quantity, turns int) units.Quantity {
	return specificInductance.Scale(float64(turns))
}

// InputCapacitance returns C_jfet/n for n parallel JFETs.
func InputCapacitance(jfetCapacitance units.Quantity, count int) (units.Quantity, error) {
	if count < 1 {
		return units.Quantity{}, fmt.Errorf("%w: jfet count %d", ErrInvalidConfig, count)
	}
	if err := jfetCapacitance.Check("jfet capacitance", units.Farad); err != nil {
		return units.Quantity{}, err
	}
	return jfetCapacitance.Scale(1 / float64(count)), nil
}

// ResonantFrequency returns 1/(2π·√(A_l·N²·C_in)). Pass count·A_l for a
// stack of cores in series. A non-positive C_in or turn count is a domain
// error.
func ResonantFrequency(specificInductance units.Quantity, turns int, inputCapacitance units.Quantity) (units.Quantity, error) {
	if !inputCapacitance.Positive() {
		return units.Quantity{}, fmt.Errorf("%w: input capacitance must be positive", ErrDomain)
	}
	if turns < 1 || !specificInductance.Positive() {
		return units.Quantity{}, fmt.Errorf("%w: inductance must be positive", ErrDomain)
	}
	lc := ToroidInductance(specificInductance, turns).Mul(inputCapacitance)
	root, err := lc.Sqrt()
	if err != nil {
		return units.Quantity{}, err
	}
	f, err := root.Scale(2 * math.Pi).Inv()
	if err != nil {
		return units.Quantity{}, err
	}
	return f, f.Check("resonant frequency", units.Hertz)
}

// TurnsFromFrequency sizes the winding so that count cores in series resonate
// with n parallel JFETs at F0 = √(f_lo·f_hi). It fails with ErrDomain when no
// whole turn count lands inside [f_lo, f_hi].
func TurnsFromFrequency(fLo, fHi units.Quantity, count int, specificInductance, jfetCapacitance units.Quantity, jfetCount int) (int, error) {
	if err := fLo.Check("f_lo", units.Hertz); err != nil {
		return 0, err
	}
	if err := fHi.Check("f_hi", units.Hertz); err != nil {
		return 0, err
	}
	if !fLo.Positive() || fHi.Value() < fLo.Value() {
		return 0, fmt.Errorf("%w: band [%g, %g] Hz", ErrDomain, fLo.Value(), fHi.Value())
	}
	if count < 1 || !specificInductance.Positive() {
		return 0, fmt.Errorf("%w: core count and A_l must be positive", ErrDomain)
	}
	cin, err := InputCapacitance(jfetCapacitance, jfetCount)
	if err != nil {
		return 0, err
	}
	if !cin.Positive() {
		return 0, fmt.Errorf("%w: input capacitance must be positive", ErrDomain)
	}
	f0, err := fLo.Mul(fHi).Sqrt()
	if err != nil {
		return 0, err
	}

	// N = 1 / (2π·F0·√(count·A_l·C_in))
	lc, err := specificInductance.Scale(float64(count)).Mul(cin).Sqrt()
	if err != nil {
		return 0, err
	}
	n, err := f0.Mul(lc).Scale(2 * math.Pi).Inv()
	if err != nil {
		return 0, err
	}
	if err := n.Check("turns", units.One); err != nil {
		return 0, err
	}

	turns := int(math.Round(n.Value()))
	if turns < 1 {
		turns = 1
	}
	f, err := ResonantFrequency(specificInductance.Scale(float64(count)), turns, cin)
	if err != nil {
		return 0, err
	}
	if f.Value() < fLo.Value() || f.Value() > fHi.Value() {
		return 0, fmt.Errorf("%w: %d turns resonate at %g Hz, outside [%g, %g] Hz",
			ErrDomain, turns, f.Value(), fLo.Value(), fHi.Value())
	}
	return turns, nil
}

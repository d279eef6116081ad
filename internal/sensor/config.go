package sensor

import (
	"github.com/RMahshie/fluxloop/internal/catalog"
	"github.com/RMahshie/fluxloop/pkg/units"
)

// Config is a validated sensor description. It is a value: every derived
// quantity is a pure function of it.
type Config struct {
	Name        string
	Temperature units.Quantity
	Loop        Loop

	Toroid      catalog.ToroidSpec
	ToroidCount int

	Wire   catalog.WireSpec
	Gauge  catalog.AWGEntry
	Turns  int     // per core
	Margin float64 // wire length multiplier

	Amplifier          Amplifier
	BiasResistance     units.Quantity // R_in
	FeedbackResistance units.Quantity // R_cr
}

// Loop is the sensing loop.
type Loop struct {
	Radius         units.Quantity
	Thickness      units.Quantity
	Resistance     units.Quantity // r_b
	SelfInductance units.Quantity // L0
	Surface        units.Quantity // S
}

// Amplifier is the JFET front end.
type Amplifier struct {
	GainDB          float64
	Gain            units.Quantity // linear voltage gain
	JFETCapacitance units.Quantity
	JFETCount       int
	VoltageNoise    units.Quantity // e_ba
	CurrentNoise    units.Quantity // i_ba
}

// InputCapacitance returns C_in, the JFET capacitance divided by the number
// of parallel devices.
func (c Config) InputCapacitance() (units.Quantity, error) {
	return InputCapacitance(c.Amplifier.JFETCapacitance, c.Amplifier.JFETCount)
}

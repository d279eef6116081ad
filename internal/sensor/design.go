package sensor

import (
	"errors"
	"fmt"
	"math"

	"github.com/RMahshie/fluxloop/internal/catalog"
	"github.com/RMahshie/fluxloop/pkg/units"
)

var (
	// ErrInvalidConfig marks a non-physical or malformed design parameter.
	ErrInvalidConfig = errors.New("invalid sensor configuration")
	// ErrDomain marks evaluation outside a function's physical domain.
	ErrDomain = units.ErrDomain
)

// Design is the operator-facing description of a sensor, in the units an
// experimenter types. Resolve validates it into a Config.
type Design struct {
	Name         string          `yaml:"name" json:"name" doc:"Design label"`
	TemperatureK float64         `yaml:"temperature_k" json:"temperature_k" doc:"Ambient temperature in K"`
	Loop         LoopDesign      `yaml:"loop" json:"loop"`
	Toroid       ToroidDesign    `yaml:"toroid" json:"toroid"`
	Winding      WindingDesign   `yaml:"winding" json:"winding"`
	Amplifier    AmplifierDesign `yaml:"amplifier" json:"amplifier"`
	// R_in of the JFET bias network
	BiasResistanceOhm float64 `yaml:"bias_resistance_ohm" json:"bias_resistance_ohm" doc:"Bias circuit input resistance R_in in Ω"`
	// R_cr of the flux feedback path
	FeedbackResistanceOhm float64 `yaml:"feedback_resistance_ohm" json:"feedback_resistance_ohm" doc:"Feedback resistance R_cr in Ω"`
}

// LoopDesign describes the single-turn sensing loop.
type LoopDesign struct {
	RadiusMM         float64 `yaml:"radius_mm" json:"radius_mm" doc:"Loop radius in mm"`
	ThicknessMM      float64 `yaml:"thickness_mm" json:"thickness_mm" doc:"Loop conductor thickness in mm"`
	ResistanceOhm    float64 `yaml:"resistance_ohm" json:"resistance_ohm" doc:"Loop resistance r_b in Ω"`
	SelfInductanceNH float64 `yaml:"self_inductance_nh" json:"self_inductance_nh" doc:"Loop self inductance L0 in nH"`
	SurfaceMM2       float64 `yaml:"surface_mm2" json:"surface_mm2" doc:"Effective loop surface S in mm²"`
}

// ToroidDesign selects the cores threaded on the loop.
type ToroidDesign struct {
	Key   string `yaml:"key" json:"key" doc:"Catalog core name, e.g. TN10/6/4-4A11"`
	Count int    `yaml:"count" json:"count" doc:"Number of cores"`
}

// WindingDesign describes the secondary winding on every core.
type WindingDesign struct {
	Wire   string  `yaml:"wire" json:"wire" doc:"Conductor material: Cu or Al"`
	Gauge  int     `yaml:"gauge" json:"gauge" doc:"AWG gauge"`
	Turns  int     `yaml:"turns" json:"turns" doc:"Turns per core"`
	Margin float64 `yaml:"margin" json:"margin" doc:"Wire length margin factor, at least 1"`
}

// AmplifierDesign describes the JFET front end.
type AmplifierDesign struct {
	GainDB            float64 `yaml:"gain_db" json:"gain_db" doc:"Voltage gain in dB"`
	JFETCapacitancePF float64 `yaml:"jfet_capacitance_pf" json:"jfet_capacitance_pf" doc:"Input capacitance of one JFET in pF"`
	JFETCount         int     `yaml:"jfet_count" json:"jfet_count" doc:"Number of parallel JFETs"`
	VoltageNoiseNV    float64 `yaml:"voltage_noise_nv" json:"voltage_noise_nv" doc:"Input voltage noise density e_ba in nV/√Hz"`
	CurrentNoiseFA    float64 `yaml:"current_noise_fa" json:"current_noise_fa" doc:"Input current noise density i_ba in fA/√Hz"`
}

// ExampleDesign returns the reference sensor used throughout the docs.
func ExampleDesign() Design {
	return Design{
		Name:         "reference loop",
		TemperatureK: 300,
		Loop: LoopDesign{
			RadiusMM:         106,
			ThicknessMM:      2,
			ResistanceOhm:    0.05,
			SelfInductanceNH: 630,
			SurfaceMM2:       11000,
		},
		Toroid:  ToroidDesign{Key: string(catalog.TN10_6_4_4A11), Count: 4},
		Winding: WindingDesign{Wire: string(catalog.Copper), Gauge: 30, Turns: 50, Margin: 1.15},
		Amplifier: AmplifierDesign{
			GainDB:            40,
			JFETCapacitancePF: 20,
			JFETCount:         2,
			VoltageNoiseNV:    0.8,
			CurrentNoiseFA:    10,
		},
		BiasResistanceOhm:     100e3,
		FeedbackResistanceOhm: 1.2e3,
	}
}

// Resolve validates d against the catalogs and returns the immutable Config.
// Unknown catalog keys fail with catalog.ErrUnknownKey and ErrInvalidConfig;
// a gauge missing from awg fails with catalog.ErrNotFound.
func (d Design) Resolve(awg *catalog.AWGTable) (Config, error) {
	checks := []struct {
		name  string
		value float64
	}{
		{"temperature_k", d.TemperatureK},
		{"loop.radius_mm", d.Loop.RadiusMM},
		{"loop.thickness_mm", d.Loop.ThicknessMM},
		{"loop.resistance_ohm", d.Loop.ResistanceOhm},
		{"loop.self_inductance_nh", d.Loop.SelfInductanceNH},
		{"loop.surface_mm2", d.Loop.SurfaceMM2},
		{"amplifier.jfet_capacitance_pf", d.Amplifier.JFETCapacitancePF},
		{"bias_resistance_ohm", d.BiasResistanceOhm},
		{"feedback_resistance_ohm", d.FeedbackResistanceOhm},
	}
	for _, c := range checks {
		if !(c.value > 0) || math.IsInf(c.value, 0) {
			return Config{}, fmt.Errorf("%w: %s must be positive, got %g", ErrInvalidConfig, c.name, c.value)
		}
	}
	for _, c := range []struct {
		name  string
		value float64
	}{
		{"amplifier.voltage_noise_nv", d.Amplifier.VoltageNoiseNV},
		{"amplifier.current_noise_fa", d.Amplifier.CurrentNoiseFA},
	} {
		if c.value < 0 || math.IsNaN(c.value) {
			return Config{}, fmt.Errorf("%w: %s must not be negative, got %g", ErrInvalidConfig, c.name, c.value)
		}
	}
	if d.Toroid.Count < 1 {
		return Config{}, fmt.Errorf("%w: toroid.count must be at least 1, got %d", ErrInvalidConfig, d.Toroid.Count)
	}
	if d.Winding.Turns < 1 {
		return Config{}, fmt.Errorf("%w: winding.turns must be at least 1, got %d", ErrInvalidConfig, d.Winding.Turns)
	}
	if d.Amplifier.JFETCount < 1 {
		return Config{}, fmt.Errorf("%w: amplifier.jfet_count must be at least 1, got %d", ErrInvalidConfig, d.Amplifier.JFETCount)
	}
	if d.Winding.Margin < 1 || math.IsNaN(d.Winding.Margin) {
		return Config{}, fmt.Errorf("%w: winding.margin must be at least 1, got %g", ErrInvalidConfig, d.Winding.Margin)
	}

	toroidKey, err := catalog.ParseToroidKey(d.Toroid.Key)
	if err != nil {
		return Config{}, fmt.Errorf("%w: toroid.key: %w", ErrInvalidConfig, err)
	}
	toroid, err := catalog.GetToroid(toroidKey)
	if err != nil {
		return Config{}, fmt.Errorf("%w: toroid.key: %w", ErrInvalidConfig, err)
	}
	wireKey, err := catalog.ParseWireKey(d.Winding.Wire)
	if err != nil {
		return Config{}, fmt.Errorf("%w: winding.wire: %w", ErrInvalidConfig, err)
	}
	wire, err := catalog.GetWire(wireKey)
	if err != nil {
		return Config{}, fmt.Errorf("%w: winding.wire: %w", ErrInvalidConfig, err)
	}
	gauge, err := awg.Get(d.Winding.Gauge)
	if err != nil {
		return Config{}, fmt.Errorf("winding.gauge: %w", err)
	}

	return Config{
		Name:        d.Name,
		Temperature: units.New(d.TemperatureK, units.Kelvin),
		Loop: Loop{
			Radius:         units.New(d.Loop.RadiusMM, units.Millimetre),
			Thickness:      units.New(d.Loop.ThicknessMM, units.Millimetre),
			Resistance:     units.New(d.Loop.ResistanceOhm, units.Ohm),
			SelfInductance: units.New(d.Loop.SelfInductanceNH, units.Nanohenry),
			Surface:        units.New(d.Loop.SurfaceMM2, units.SquareMillimetre),
		},
		Toroid:      toroid,
		ToroidCount: d.Toroid.Count,
		Wire:        wire,
		Gauge:       gauge,
		Turns:       d.Winding.Turns,
		Margin:      d.Winding.Margin,
		Amplifier: Amplifier{
			GainDB:          d.Amplifier.GainDB,
			Gain:            units.Scalar(math.Pow(10, d.Amplifier.GainDB/20)),
			JFETCapacitance: units.New(d.Amplifier.JFETCapacitancePF, units.Picofarad),
			JFETCount:       d.Amplifier.JFETCount,
			VoltageNoise:    units.New(d.Amplifier.VoltageNoiseNV, units.NanovoltPerRootHertz),
			CurrentNoise:    units.New(d.Amplifier.CurrentNoiseFA, units.FemtoamperePerRootHertz),
		},
		BiasResistance:     units.New(d.BiasResistanceOhm, units.Ohm),
		FeedbackResistance: units.New(d.FeedbackResistanceOhm, units.Ohm),
	}, nil
}

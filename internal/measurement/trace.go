package measurement

import (
	"fmt"
	"math"

	"github.com/RMahshie/fluxloop/internal/series"
	"github.com/RMahshie/fluxloop/pkg/units"
)

// Scale is the logarithmic scale of trace levels.
type Scale string

const (
	ScaleDBm Scale = "dBm" // power referenced to 1 mW
	ScaleDB  Scale = "dB"  // voltage gain
	ScaleDBV Scale = "dBV" // voltage referenced to 1 V
)

// ParseScale validates a scale name.
func ParseScale(s string) (Scale, error) {
	switch Scale(s) {
	case ScaleDBm, ScaleDB, ScaleDBV:
		return Scale(s), nil
	}
	return "", fmt.Errorf("%w: unknown trace scale %q", units.ErrUnknownUnit, s)
}

// Point is one reading of an instrument trace.
type Point struct {
	Frequency float64 `json:"frequency" doc:"Frequency in Hz"`
	Level     float64 `json:"level" doc:"Reading in the trace scale"`
}

// Trace is a raw instrument export.
type Trace struct {
	Name   string  `json:"name"`
	Scale  Scale   `json:"scale" enum:"dBm,dB,dBV"`
	Points []Point `json:"points"`
}

// Len returns the number of readings.
func (t Trace) Len() int { return len(t.Points) }

// Frequencies returns the frequency axis in Hz.
func (t Trace) Frequencies() []float64 {
	out := make([]float64, len(t.Points))
	for i, p := range t.Points {
		out[i] = p.Frequency
	}
	return out
}

// Validate checks that the trace is non-empty with a strictly increasing,
// positive frequency axis and finite readings.
func (t Trace) Validate() error {
	if len(t.Points) == 0 {
		return fmt.Errorf("%w: trace %q is empty", ErrDomain, t.Name)
	}
	if _, err := ParseScale(string(t.Scale)); err != nil {
		return err
	}
	for i, p := range t.Points {
		if math.IsNaN(p.Level) || math.IsInf(p.Level, 0) || !(p.Frequency > 0) {
			return fmt.Errorf("%w: trace %q point %d", series.ErrInvalidSample, t.Name, i)
		}
		if i > 0 && p.Frequency <= t.Points[i-1].Frequency {
			return fmt.Errorf("%w: trace %q point %d (%g Hz)", ErrNonMonotonic, t.Name, i, p.Frequency)
		}
	}
	return nil
}

// Voltage converts a dBm or dBV trace into a voltage series. dBm readings
// become peak-to-peak voltages across z.
func (t Trace) Voltage(z units.Quantity) (*series.FrequencySeries, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	out := series.New(t.Name, units.Volt)
	for _, p := range t.Points {
		var v units.Quantity
		switch t.Scale {
		case ScaleDBm:
			var err error
			if v, err = DBmToVpp(p.Level, z); err != nil {
				return nil, err
			}
		case ScaleDBV:
			v = DBVToVolts(p.Level)
		default:
			return nil, fmt.Errorf("%w: %q is %s, want dBm or dBV", ErrWrongScale, t.Name, t.Scale)
		}
		if err := out.Append(units.New(p.Frequency, units.Hertz), v); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Ratio converts a dB gain trace into a linear voltage ratio series.
func (t Trace) Ratio() (*series.FrequencySeries, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if t.Scale != ScaleDB {
		return nil, fmt.Errorf("%w: %q is %s, want dB", ErrWrongScale, t.Name, t.Scale)
	}
	out := series.New(t.Name, units.One)
	for _, p := range t.Points {
		if err := out.Append(units.New(p.Frequency, units.Hertz), DBToVoltageRatio(p.Level)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

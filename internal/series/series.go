// Package series holds the frequency-indexed curves exchanged between the
// physics model, the measurement reduction and the presentation layers.
package series

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/RMahshie/fluxloop/pkg/units"
)

var (
	// ErrNonMonotonic is returned when frequencies do not strictly increase.
	ErrNonMonotonic = errors.New("frequency axis not strictly increasing")
	// ErrInvalidSample is returned for NaN or infinite samples.
	ErrInvalidSample = errors.New("invalid sample")
)

// Sample is one point of a curve. Value and Uncertainty are in SI units of
// the owning series.
type Sample struct {
	Frequency   float64 `json:"frequency" doc:"Frequency in Hz"`
	Value       float64 `json:"value" doc:"Value in SI units of the series"`
	Uncertainty float64 `json:"uncertainty,omitempty" doc:"Absolute uncertainty"`
}

// FrequencySeries is an ordered curve over strictly increasing frequency.
type FrequencySeries struct {
	Name    string
	Unit    units.Unit
	Samples []Sample
}

// New returns an empty series for quantities of unit u, rendered in its
// canonical SI unit.
func New(name string, u units.Unit) *FrequencySeries {
	if c, ok := units.CanonicalUnit(u.Dim); ok {
		u = c
	} else {
		u = units.Unit{Symbol: u.Dim.String(), Scale: 1, Dim: u.Dim}
	}
	return &FrequencySeries{Name: name, Unit: u}
}

// Len returns the number of samples.
func (s *FrequencySeries) Len() int { return len(s.Samples) }

// Append adds q at frequency f. q must carry the series dimension and f must
// exceed the last frequency.
func (s *FrequencySeries) Append(f units.Quantity, q units.Quantity) error {
	if err := f.Check("frequency", units.Hertz); err != nil {
		return err
	}
	if err := q.Check(s.Name, s.Unit); err != nil {
		return err
	}
	if math.IsNaN(q.Value()) || math.IsInf(q.Value(), 0) {
		return fmt.Errorf("%w: %s at %g Hz", ErrInvalidSample, s.Name, f.Value())
	}
	if n := len(s.Samples); n > 0 && f.Value() <= s.Samples[n-1].Frequency {
		return fmt.Errorf("%w: %g Hz after %g Hz", ErrNonMonotonic, f.Value(), s.Samples[n-1].Frequency)
	}
	s.Samples = append(s.Samples, Sample{Frequency: f.Value(), Value: q.Value(), Uncertainty: q.Uncertainty()})
	return nil
}

// At returns the frequency and value of sample i as quantities.
func (s *FrequencySeries) At(i int) (units.Quantity, units.Quantity) {
	p := s.Samples[i]
	return units.New(p.Frequency, units.Hertz), units.FromSI(p.Value, p.Uncertainty, s.Unit.Dim)
}

// Frequencies returns the frequency axis in Hz.
func (s *FrequencySeries) Frequencies() []float64 {
	out := make([]float64, len(s.Samples))
	for i, p := range s.Samples {
		out[i] = p.Frequency
	}
	return out
}

// Values returns the values expressed in unit u.
func (s *FrequencySeries) Values(u units.Unit) ([]float64, error) {
	if u.Dim != s.Unit.Dim {
		return nil, fmt.Errorf("%w: %s is %s, not %s", units.ErrUnitMismatch, s.Name, s.Unit, u)
	}
	out := make([]float64, len(s.Samples))
	for i, p := range s.Samples {
		out[i] = p.Value / u.Scale
	}
	return out, nil
}

// Validate checks ordering and sample values.
func (s *FrequencySeries) Validate() error {
	for i, p := range s.Samples {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) || math.IsNaN(p.Frequency) {
			return fmt.Errorf("%w: %s sample %d", ErrInvalidSample, s.Name, i)
		}
		if i > 0 && p.Frequency <= s.Samples[i-1].Frequency {
			return fmt.Errorf("%w: %s sample %d (%g Hz)", ErrNonMonotonic, s.Name, i, p.Frequency)
		}
	}
	return nil
}

type seriesJSON struct {
	Name    string   `json:"name"`
	Unit    string   `json:"unit"`
	Samples []Sample `json:"samples"`
}

// MarshalJSON encodes the series with its unit symbol.
func (s FrequencySeries) MarshalJSON() ([]byte, error) {
	samples := s.Samples
	if samples == nil {
		samples = []Sample{}
	}
	return json.Marshal(seriesJSON{Name: s.Name, Unit: s.Unit.String(), Samples: samples})
}

// LogAxis returns n frequencies spaced logarithmically from fmin to fmax.
func LogAxis(fmin, fmax units.Quantity, n int) ([]units.Quantity, error) {
	if err := checkBand(fmin, fmax, n); err != nil {
		return nil, err
	}
	if !fmin.Positive() {
		return nil, fmt.Errorf("%w: logarithmic axis needs fmin > 0", units.ErrDomain)
	}
	lo, hi := math.Log10(fmin.Value()), math.Log10(fmax.Value())
	out := make([]units.Quantity, n)
	for i := range out {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		out[i] = units.New(math.Pow(10, lo+t*(hi-lo)), units.Hertz)
	}
	return out, nil
}

// LinAxis returns n frequencies spaced linearly from fmin to fmax.
func LinAxis(fmin, fmax units.Quantity, n int) ([]units.Quantity, error) {
	if err := checkBand(fmin, fmax, n); err != nil {
		return nil, err
	}
	out := make([]units.Quantity, n)
	step := 0.0
	if n > 1 {
		step = (fmax.Value() - fmin.Value()) / float64(n-1)
	}
	for i := range out {
		out[i] = units.New(fmin.Value()+float64(i)*step, units.Hertz)
	}
	return out, nil
}

func checkBand(fmin, fmax units.Quantity, n int) error {
	if err := fmin.Check("fmin", units.Hertz); err != nil {
		return err
	}
	if err := fmax.Check("fmax", units.Hertz); err != nil {
		return err
	}
	if n < 1 {
		return fmt.Errorf("%w: axis needs at least one point", units.ErrDomain)
	}
	if n > 1 && fmax.Value() <= fmin.Value() {
		return fmt.Errorf("%w: fmax %g Hz not above fmin %g Hz", ErrNonMonotonic, fmax.Value(), fmin.Value())
	}
	return nil
}

// WriteCSV writes the series as frequency, value and uncertainty columns in
// the series unit.
func (s *FrequencySeries) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	unit := s.Unit.String()
	if unit == "" {
		unit = "1"
	}
	if err := cw.Write([]string{"frequency_hz", s.Name + " [" + unit + "]", "uncertainty"}); err != nil {
		return err
	}
	for _, p := range s.Samples {
		row := []string{
			strconv.FormatFloat(p.Frequency, 'g', -1, 64),
			strconv.FormatFloat(p.Value, 'g', -1, 64),
			strconv.FormatFloat(p.Uncertainty, 'g', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

package measurement

import (
	"fmt"
	"math"

	"github.com/RMahshie/fluxloop/internal/series"
	"github.com/RMahshie/fluxloop/pkg/units"
)

// DefaultAxisTolerance is the relative frequency disagreement accepted
// between bins of two traces.
const DefaultAxisTolerance = 1e-6

// CheckAxes reports ErrAxisMismatch unless a and b have the same length and
// every pair of frequencies agrees within the relative tolerance tol.
func CheckAxes(a, b []float64, tol float64) error {
	if len(a) != len(b) {
		return fmt.Errorf("%w: %d vs %d points", ErrAxisMismatch, len(a), len(b))
	}
	for i := range a {
		scale := math.Max(math.Abs(a[i]), math.Abs(b[i]))
		if math.Abs(a[i]-b[i]) > tol*scale {
			return fmt.Errorf("%w: point %d at %g Hz vs %g Hz", ErrAxisMismatch, i, a[i], b[i])
		}
	}
	return nil
}

// TransferFunctionFromTraces computes TF = V_out/V_in·α from the amplifier
// output trace and the driver shunt trace. Both must share a frequency axis.
func TransferFunctionFromTraces(out, in Trace, alpha, z units.Quantity, tol float64) (*series.FrequencySeries, error) {
	if err := alpha.Check("calibration constant", units.VoltPerTesla); err != nil {
		return nil, err
	}
	if err := CheckAxes(out.Frequencies(), in.Frequencies(), tol); err != nil {
		return nil, err
	}
	vout, err := out.Voltage(z)
	if err != nil {
		return nil, fmt.Errorf("output trace: %w", err)
	}
	vin, err := in.Voltage(z)
	if err != nil {
		return nil, fmt.Errorf("input trace: %w", err)
	}

	tf := series.New("TF (measured)", units.VoltPerTesla)
	for i := range vout.Samples {
		f, o := vout.At(i)
		_, v := vin.At(i)
		ratio, err := o.Div(v)
		if err != nil {
			return nil, fmt.Errorf("at %g Hz: %w", f.Value(), err)
		}
		if err := tf.Append(f, ratio.Mul(alpha)); err != nil {
			return nil, err
		}
	}
	return tf, nil
}

// TransferFunctionFromGain computes TF = 10^(gain/20)·α from a network
// analyser gain export measured between the shunt and the amplifier output.
func TransferFunctionFromGain(gain Trace, alpha units.Quantity) (*series.FrequencySeries, error) {
	if err := alpha.Check("calibration constant", units.VoltPerTesla); err != nil {
		return nil, err
	}
	ratio, err := gain.Ratio()
	if err != nil {
		return nil, err
	}
	tf := series.New("TF (measured)", units.VoltPerTesla)
	for i := range ratio.Samples {
		f, r := ratio.At(i)
		if err := tf.Append(f, r.Mul(alpha)); err != nil {
			return nil, err
		}
	}
	return tf, nil
}

// NoiseEquivalentField computes NEMI(f) = V_noise(f)/TF(f)/sqrt(f) in T/√Hz.
// noise holds output voltages and must share tf's axis.
func NoiseEquivalentField(noise, tf *series.FrequencySeries, tol float64) (*series.FrequencySeries, error) {
	if err := units.New(1, noise.Unit).Check("noise", units.Volt); err != nil {
		return nil, err
	}
	if err := units.New(1, tf.Unit).Check("transfer function", units.VoltPerTesla); err != nil {
		return nil, err
	}
	if err := CheckAxes(noise.Frequencies(), tf.Frequencies(), tol); err != nil {
		return nil, err
	}
	out := series.New("NEMI", units.TeslaPerRootHertz)
	for i := range noise.Samples {
		f, v := noise.At(i)
		_, h := tf.At(i)
		b, err := v.Div(h)
		if err != nil {
			return nil, fmt.Errorf("at %g Hz: %w", f.Value(), err)
		}
		rootF, err := f.Sqrt()
		if err != nil {
			return nil, err
		}
		if b, err = b.Div(rootF); err != nil {
			return nil, fmt.Errorf("at %g Hz: %w", f.Value(), err)
		}
		if err := out.Append(f, b.Abs()); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// NoiseEquivalentFieldFromTrace converts a dBm or dBV noise trace before
// calling NoiseEquivalentField.
func NoiseEquivalentFieldFromTrace(noise Trace, tf *series.FrequencySeries, z units.Quantity, tol float64) (*series.FrequencySeries, error) {
	v, err := noise.Voltage(z)
	if err != nil {
		return nil, fmt.Errorf("noise trace: %w", err)
	}
	return NoiseEquivalentField(v, tf, tol)
}

// Package analysis runs a complete sensor evaluation: derived properties,
// model curves and, when traces are supplied, the empirical reduction.
package analysis

import (
	"fmt"

	"github.com/RMahshie/fluxloop/internal/measurement"
	"github.com/RMahshie/fluxloop/internal/model"
	"github.com/RMahshie/fluxloop/internal/plot"
	"github.com/RMahshie/fluxloop/internal/sensor"
	"github.com/RMahshie/fluxloop/internal/series"
	"github.com/RMahshie/fluxloop/pkg/units"
)

// Axis spacing of a sweep.
const (
	SpacingLog = "log"
	SpacingLin = "lin"
)

// Sweep is the frequency range over which model curves are evaluated.
type Sweep struct {
	Start   units.Quantity
	Stop    units.Quantity
	Points  int
	Spacing string
}

// DefaultSweep covers 10 Hz to 10 MHz with 200 logarithmic points.
func DefaultSweep() Sweep {
	return Sweep{
		Start:   units.New(10, units.Hertz),
		Stop:    units.New(10, units.Megahertz),
		Points:  200,
		Spacing: SpacingLog,
	}
}

// Axis returns the sweep frequencies.
func (s Sweep) Axis() ([]units.Quantity, error) {
	switch s.Spacing {
	case "", SpacingLog:
		return model.LogSweep(s.Start, s.Stop, s.Points)
	case SpacingLin:
		return model.LinSweep(s.Start, s.Stop, s.Points)
	}
	return nil, fmt.Errorf("%w: unknown sweep spacing %q", sensor.ErrInvalidConfig, s.Spacing)
}

// Driver is the calibration loop geometry.
type Driver struct {
	ShuntResistance units.Quantity
	Distance        units.Quantity // on-axis distance to the sensor
	Radius          units.Quantity
}

// Smoothing selects the filters applied to empirical curves. Zero values
// disable a filter.
type Smoothing struct {
	HalfWidth int // Savitzky-Golay half width
	Degree    int // Savitzky-Golay polynomial degree
	Window    int // moving average window
}

// Measurements are the instrument traces of a calibration run. Either Gain
// or both Shunt and Output give the transfer function, never a mix; Noise
// additionally gives the NEMI.
type Measurements struct {
	Shunt  *measurement.Trace
	Output *measurement.Trace
	Gain   *measurement.Trace
	Noise  *measurement.Trace

	Driver    Driver
	Impedance units.Quantity // zero means 50 Ω
	// Reference, when set, is an independently obtained calibration
	// constant that α must match within ReferenceTolerance. Nil tolerances
	// take the measurement defaults; zero demands an exact match.
	Reference          *units.Quantity
	ReferenceTolerance *float64
	AxisTolerance      *float64
	Smoothing          Smoothing
}

// Empirical holds the curves reduced from traces.
type Empirical struct {
	Calibration    units.Quantity          `json:"calibration"`
	TF             *series.FrequencySeries `json:"tf,omitempty"`
	TFSmoothed     *series.FrequencySeries `json:"tf_smoothed,omitempty"`
	NEMI           *series.FrequencySeries `json:"nemi,omitempty"`
	NEMISmoothed   *series.FrequencySeries `json:"nemi_smoothed,omitempty"`
	NEMIAveraged   *series.FrequencySeries `json:"nemi_averaged,omitempty"`
	CalibrationRef *units.Quantity         `json:"calibration_reference,omitempty"`
}

// Report is the outcome of one evaluation.
type Report struct {
	Name      string                  `json:"name"`
	Derived   sensor.Derived          `json:"derived"`
	Transfer  model.TransferCurves    `json:"transfer"`
	Noise     model.NoiseCurves       `json:"noise"`
	ModelNEMI *series.FrequencySeries `json:"model_nemi"`
	Empirical *Empirical              `json:"empirical,omitempty"`
	Warnings  []string                `json:"warnings,omitempty"`
}

// Evaluate computes a Report for cfg over sweep. m may be nil.
func Evaluate(cfg sensor.Config, sweep Sweep, m *Measurements) (*Report, error) {
	derived, err := sensor.Derive(cfg)
	if err != nil {
		return nil, err
	}
	chain, err := model.NewChain(cfg, derived)
	if err != nil {
		return nil, err
	}
	axis, err := sweep.Axis()
	if err != nil {
		return nil, err
	}

	r := &Report{Name: cfg.Name, Derived: derived, Warnings: Warnings(cfg, derived)}
	if r.Transfer, err = chain.TransferSweep(axis); err != nil {
		return nil, err
	}
	if r.Noise, err = chain.NoiseSweep(axis); err != nil {
		return nil, err
	}
	if r.ModelNEMI, err = chain.InputReferredNoise(axis); err != nil {
		return nil, err
	}

	if m != nil {
		if r.Empirical, err = Reduce(*m); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Warnings lists advisory findings that do not stop an evaluation.
func Warnings(cfg sensor.Config, d sensor.Derived) []string {
	var out []string
	if d.ExceedsMaxTurns {
		out = append(out, fmt.Sprintf("%d turns exceed the %.1f that fit in one layer", cfg.Turns, d.MaxTurns.Value()))
	}
	return out
}

// Reduce runs the measurement pipeline alone.
func Reduce(m Measurements) (*Empirical, error) {
	alpha, err := measurement.CalibrationConstant(m.Driver.ShuntResistance, m.Driver.Distance, m.Driver.Radius)
	if err != nil {
		return nil, fmt.Errorf("calibration: %w", err)
	}
	e := &Empirical{Calibration: alpha}
	if m.Reference != nil {
		tol := measurement.DefaultReferenceTolerance
		if m.ReferenceTolerance != nil {
			tol = *m.ReferenceTolerance
		}
		if err := measurement.VerifyCalibration(alpha, *m.Reference, tol); err != nil {
			return nil, err
		}
		ref := *m.Reference
		e.CalibrationRef = &ref
	}

	z := m.Impedance
	if z.IsZero() {
		z = measurement.DefaultImpedance
	}
	tol := measurement.DefaultAxisTolerance
	if m.AxisTolerance != nil {
		tol = *m.AxisTolerance
	}

	switch {
	case m.Gain != nil && (m.Shunt != nil || m.Output != nil):
		return nil, fmt.Errorf("%w: a gain trace excludes shunt and output traces", sensor.ErrInvalidConfig)
	case (m.Shunt != nil) != (m.Output != nil):
		return nil, fmt.Errorf("%w: shunt and output traces must be given together", sensor.ErrInvalidConfig)
	case m.Gain != nil:
		e.TF, err = measurement.TransferFunctionFromGain(*m.Gain, alpha)
	case m.Shunt != nil && m.Output != nil:
		e.TF, err = measurement.TransferFunctionFromTraces(*m.Output, *m.Shunt, alpha, z, tol)
	case m.Noise != nil:
		return nil, fmt.Errorf("%w: a noise trace needs a gain trace or shunt and output traces", sensor.ErrInvalidConfig)
	}
	if err != nil {
		return nil, err
	}

	if m.Noise != nil {
		if e.NEMI, err = measurement.NoiseEquivalentFieldFromTrace(*m.Noise, e.TF, z, tol); err != nil {
			return nil, err
		}
	}

	sm := m.Smoothing
	if sm.HalfWidth > 0 {
		if e.TF != nil {
			if e.TFSmoothed, err = measurement.SavitzkyGolay(e.TF, sm.HalfWidth, sm.Degree); err != nil {
				return nil, fmt.Errorf("smooth TF: %w", err)
			}
		}
		if e.NEMI != nil {
			if e.NEMISmoothed, err = measurement.SavitzkyGolay(e.NEMI, sm.HalfWidth, sm.Degree); err != nil {
				return nil, fmt.Errorf("smooth NEMI: %w", err)
			}
		}
	}
	if sm.Window > 0 && e.NEMI != nil {
		if e.NEMIAveraged, err = measurement.MovingAverage(e.NEMI, sm.Window); err != nil {
			return nil, fmt.Errorf("average NEMI: %w", err)
		}
	}
	return e, nil
}

// Curves lists every non-nil curve of r by file-friendly name.
func (r *Report) Curves() map[string]*series.FrequencySeries {
	out := map[string]*series.FrequencySeries{
		"tf":         r.Transfer.TF,
		"tf2":        r.Transfer.TF2,
		"noise_vb1":  r.Noise.Toroid,
		"noise_vb2":  r.Noise.Bias,
		"noise_vb3":  r.Noise.Current,
		"noise_vb4":  r.Noise.Voltage,
		"noise":      r.Noise.Total,
		"nemi_model": r.ModelNEMI,
	}
	if e := r.Empirical; e != nil {
		for name, s := range e.Curves() {
			out[name] = s
		}
	}
	for k, v := range out {
		if v == nil {
			delete(out, k)
		}
	}
	return out
}

// Curves lists every non-nil empirical curve.
func (e *Empirical) Curves() map[string]*series.FrequencySeries {
	out := map[string]*series.FrequencySeries{}
	for name, s := range map[string]*series.FrequencySeries{
		"tf_measured":          e.TF,
		"tf_measured_smoothed": e.TFSmoothed,
		"nemi_measured":        e.NEMI,
		"nemi_smoothed":        e.NEMISmoothed,
		"nemi_averaged":        e.NEMIAveraged,
	} {
		if s != nil {
			out[name] = s
		}
	}
	return out
}

// Figures groups the curves of r into transfer, noise and NEMI charts.
func (r *Report) Figures() []plot.Figure {
	e := r.Empirical
	if e == nil {
		e = &Empirical{}
	}
	return []plot.Figure{
		{
			Title: "Transfer function",
			YName: "TF",
			Unit:  units.VoltPerTesla,
			LogY:  true,
			Curves: []plot.Curve{
				{Label: "TF model", Series: r.Transfer.TF},
				{Label: "TF2 model", Series: r.Transfer.TF2},
				{Label: "TF measured", Series: e.TF},
				{Label: "TF measured, smoothed", Series: e.TFSmoothed},
			},
		},
		{
			Title: "Output noise",
			YName: "Vb",
			Unit:  units.NanovoltPerRootHertz,
			LogY:  true,
			Curves: []plot.Curve{
				{Label: "Vb1 toroid", Series: r.Noise.Toroid},
				{Label: "Vb2 bias", Series: r.Noise.Bias},
				{Label: "Vb3 current", Series: r.Noise.Current},
				{Label: "Vb4 voltage", Series: r.Noise.Voltage},
				{Label: "Vb total", Series: r.Noise.Total},
			},
		},
		nemiFigure(r.ModelNEMI, e),
	}
}

// Figures charts the measured curves of e.
func (e *Empirical) Figures() []plot.Figure {
	return []plot.Figure{
		{
			Title: "Transfer function",
			YName: "TF",
			Unit:  units.VoltPerTesla,
			LogY:  true,
			Curves: []plot.Curve{
				{Label: "TF measured", Series: e.TF},
				{Label: "TF measured, smoothed", Series: e.TFSmoothed},
			},
		},
		nemiFigure(nil, e),
	}
}

func nemiFigure(model *series.FrequencySeries, e *Empirical) plot.Figure {
	return plot.Figure{
		Title: "Noise equivalent magnetic induction",
		YName: "NEMI",
		Unit:  units.FemtoteslaPerRootHertz,
		LogY:  true,
		Curves: []plot.Curve{
			{Label: "NEMI model", Series: model},
			{Label: "NEMI measured", Series: e.NEMI},
			{Label: "NEMI smoothed", Series: e.NEMISmoothed},
			{Label: "NEMI averaged", Series: e.NEMIAveraged},
		},
	}
}

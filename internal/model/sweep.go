package model

import (
	"fmt"

	"github.com/RMahshie/fluxloop/internal/series"
	"github.com/RMahshie/fluxloop/pkg/units"
)

// TransferCurves holds TF and TF2 over a frequency axis.
type TransferCurves struct {
	TF  *series.FrequencySeries `json:"tf"`
	TF2 *series.FrequencySeries `json:"tf2"`
}

// NoiseCurves holds the noise budget over a frequency axis.
type NoiseCurves struct {
	Toroid  *series.FrequencySeries `json:"toroid"`
	Bias    *series.FrequencySeries `json:"bias"`
	Current *series.FrequencySeries `json:"current"`
	Voltage *series.FrequencySeries `json:"voltage"`
	Total   *series.FrequencySeries `json:"total"`
}

// TransferSweep evaluates TF and TF2 at every frequency of axis. A failure at
// any frequency fails the sweep.
func (c *Chain) TransferSweep(axis []units.Quantity) (TransferCurves, error) {
	out := TransferCurves{
		TF:  series.New("TF", units.VoltPerTesla),
		TF2: series.New("TF2", units.VoltPerTesla),
	}
	for _, f := range axis {
		w := Angular(f)
		tf, err := c.TF(w)
		if err != nil {
			return TransferCurves{}, fmt.Errorf("TF at %g Hz: %w", f.Value(), err)
		}
		tf2, err := c.TF2(w)
		if err != nil {
			return TransferCurves{}, fmt.Errorf("TF2 at %g Hz: %w", f.Value(), err)
		}
		if err := out.TF.Append(f, tf); err != nil {
			return TransferCurves{}, err
		}
		if err := out.TF2.Append(f, tf2); err != nil {
			return TransferCurves{}, err
		}
	}
	return out, nil
}

// NoiseSweep evaluates the noise budget at every frequency of axis.
func (c *Chain) NoiseSweep(axis []units.Quantity) (NoiseCurves, error) {
	out := NoiseCurves{
		Toroid:  series.New("Vb1", units.VoltPerRootHertz),
		Bias:    series.New("Vb2", units.VoltPerRootHertz),
		Current: series.New("Vb3", units.VoltPerRootHertz),
		Voltage: series.New("Vb4", units.VoltPerRootHertz),
		Total:   series.New("Vb", units.VoltPerRootHertz),
	}
	for _, f := range axis {
		n, err := c.Noise(f)
		if err != nil {
			return NoiseCurves{}, fmt.Errorf("noise at %g Hz: %w", f.Value(), err)
		}
		pairs := []struct {
			s *series.FrequencySeries
			q units.Quantity
		}{
			{out.Toroid, n.Toroid}, {out.Bias, n.Bias}, {out.Current, n.Current},
			{out.Voltage, n.Voltage}, {out.Total, n.Total},
		}
		for _, p := range pairs {
			if err := p.s.Append(f, p.q); err != nil {
				return NoiseCurves{}, err
			}
		}
	}
	return out, nil
}

// InputReferredNoise returns Vb/TF, the field noise density in T/√Hz.
func (c *Chain) InputReferredNoise(axis []units.Quantity) (*series.FrequencySeries, error) {
	out := series.New("B_n", units.TeslaPerRootHertz)
	for _, f := range axis {
		vb, err := c.Vb(f)
		if err != nil {
			return nil, fmt.Errorf("noise at %g Hz: %w", f.Value(), err)
		}
		tf, err := c.TF(Angular(f))
		if err != nil {
			return nil, fmt.Errorf("TF at %g Hz: %w", f.Value(), err)
		}
		bn, err := vb.Div(tf)
		if err != nil {
			return nil, fmt.Errorf("input referred noise at %g Hz: %w", f.Value(), err)
		}
		if err := out.Append(f, bn); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// LogSweep returns n logarithmically spaced frequencies from fmin to fmax.
func LogSweep(fmin, fmax units.Quantity, n int) ([]units.Quantity, error) {
	return series.LogAxis(fmin, fmax, n)
}

// LinSweep returns n linearly spaced frequencies from fmin to fmax.
func LinSweep(fmin, fmax units.Quantity, n int) ([]units.Quantity, error) {
	return series.LinAxis(fmin, fmax, n)
}

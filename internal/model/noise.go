package model

import (
	"fmt"
	"math"

	"github.com/RMahshie/fluxloop/pkg/units"
)

// Noise is the output voltage noise density budget at one frequency, each
// term in V/√Hz.
type Noise struct {
	Toroid  units.Quantity `json:"toroid"`  // thermal noise of the winding
	Bias    units.Quantity `json:"bias"`    // thermal noise of R_in
	Current units.Quantity `json:"current"` // amplifier current noise
	Voltage units.Quantity `json:"voltage"` // amplifier voltage noise
	Total   units.Quantity `json:"total"`
}

// reactance returns A(f) = 2πf·A_l·N² of a single core.
func (c *Chain) reactance(f units.Quantity) (units.Quantity, error) {
	if err := f.Check("frequency", units.Hertz); err != nil {
		return units.Quantity{}, err
	}
	if !f.Positive() {
		return units.Quantity{}, fmt.Errorf("%w: noise needs f > 0, got %g Hz", ErrDomain, f.Value())
	}
	return c.derived.ToroidInductance.Mul(Angular(f)), nil
}

// thermal returns sqrt(4kT·R).
func (c *Chain) thermal(r units.Quantity) (units.Quantity, error) {
	return units.Boltzmann.Mul(c.cfg.Temperature).Mul(r).Scale(4).Sqrt()
}

// Vb1 is the winding thermal noise e_bt / (1 + A/R_in − (2πf)²·C_in·A_l·N²).
func (c *Chain) Vb1(f units.Quantity) (units.Quantity, error) {
	a, err := c.reactance(f)
	if err != nil {
		return units.Quantity{}, err
	}
	ebt, err := c.thermal(c.rs)
	if err != nil {
		return units.Quantity{}, err
	}
	ratio, err := a.Div(c.cfg.BiasResistance)
	if err != nil {
		return units.Quantity{}, err
	}
	den, err := units.Scalar(1).Add(ratio)
	if err != nil {
		return units.Quantity{}, err
	}
	lc := Angular(f).Square().Mul(c.cin).Mul(c.derived.ToroidInductance)
	if den, err = den.Sub(lc); err != nil {
		return units.Quantity{}, err
	}
	v, err := ebt.Div(den)
	if err != nil {
		return units.Quantity{}, fmt.Errorf("winding noise at %g Hz: %w", f.Value(), err)
	}
	return v.Abs(), nil
}

// Vb2 is the bias resistor thermal noise e_bR / (1 + R_in/A).
func (c *Chain) Vb2(f units.Quantity) (units.Quantity, error) {
	a, err := c.reactance(f)
	if err != nil {
		return units.Quantity{}, err
	}
	ebr, err := c.thermal(c.cfg.BiasResistance)
	if err != nil {
		return units.Quantity{}, err
	}
	ratio, err := c.cfg.BiasResistance.Div(a)
	if err != nil {
		return units.Quantity{}, err
	}
	den, err := units.Scalar(1).Add(ratio)
	if err != nil {
		return units.Quantity{}, err
	}
	v, err := ebr.Div(den)
	if err != nil {
		return units.Quantity{}, err
	}
	return v.Abs(), nil
}

// Vb3 is the amplifier current noise i_ba / (1/R_in + 1/A).
func (c *Chain) Vb3(f units.Quantity) (units.Quantity, error) {
	a, err := c.reactance(f)
	if err != nil {
		return units.Quantity{}, err
	}
	gin, err := c.cfg.BiasResistance.Inv()
	if err != nil {
		return units.Quantity{}, err
	}
	ga, err := a.Inv()
	if err != nil {
		return units.Quantity{}, err
	}
	g, err := gin.Add(ga)
	if err != nil {
		return units.Quantity{}, err
	}
	v, err := c.cfg.Amplifier.CurrentNoise.Div(g)
	if err != nil {
		return units.Quantity{}, err
	}
	return v.Abs(), nil
}

// Vb4 is the amplifier voltage noise e_ba.
func (c *Chain) Vb4(f units.Quantity) (units.Quantity, error) {
	if _, err := c.reactance(f); err != nil {
		return units.Quantity{}, err
	}
	return c.cfg.Amplifier.VoltageNoise.Abs(), nil
}

// Vb is the quadrature sum of Vb1 to Vb4.
func (c *Chain) Vb(f units.Quantity) (units.Quantity, error) {
	n, err := c.Noise(f)
	if err != nil {
		return units.Quantity{}, err
	}
	return n.Total, nil
}

// Noise evaluates every term of the budget at f.
func (c *Chain) Noise(f units.Quantity) (Noise, error) {
	var n Noise
	var err error
	if n.Toroid, err = c.Vb1(f); err != nil {
		return Noise{}, err
	}
	if n.Bias, err = c.Vb2(f); err != nil {
		return Noise{}, err
	}
	if n.Current, err = c.Vb3(f); err != nil {
		return Noise{}, err
	}
	if n.Voltage, err = c.Vb4(f); err != nil {
		return Noise{}, err
	}
	sum := n.Toroid.Square()
	for _, t := range []units.Quantity{n.Bias, n.Current, n.Voltage} {
		if sum, err = sum.Add(t.Square()); err != nil {
			return Noise{}, fmt.Errorf("noise sum: %w", err)
		}
	}
	if n.Total, err = sum.Sqrt(); err != nil {
		return Noise{}, err
	}
	if math.IsNaN(n.Total.Value()) {
		return Noise{}, fmt.Errorf("%w: noise undefined at %g Hz", ErrDomain, f.Value())
	}
	return n, nil
}

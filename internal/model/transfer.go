package model

import (
	"fmt"

	"github.com/RMahshie/fluxloop/pkg/units"
)

// M is the loop current per unit field, S·ω / (r_b + j(L0 + A_l)ω), in A/T.
func (c *Chain) M(w units.Quantity) (units.Quantity, error) {
	if err := checkOmega(w); err != nil {
		return units.Quantity{}, err
	}
	a := c.cfg.Loop.Surface.Mul(w)
	x := c.loopInductance.Mul(w)
	m, err := reduce(a, c.cfg.Loop.Resistance, x)
	if err != nil {
		return units.Quantity{}, fmt.Errorf("loop response at %g rad/s: %w", w.Value(), err)
	}
	return m, nil
}

// H is the forward transimpedance from loop current to amplifier output, in Ω.
//
//	A = −n·A_l·N·G·ω
//	B = 1 + r_s/R_in − n·A_l·N²·C_in·ω²
//	C = (n·A_l·N²/R_in + r_s·C_in)·ω
func (c *Chain) H(w units.Quantity) (units.Quantity, error) {
	if err := checkOmega(w); err != nil {
		return units.Quantity{}, err
	}
	rin := c.cfg.BiasResistance

	a := c.coreFlux.Mul(c.cfg.Amplifier.Gain).Mul(w).Neg()

	lossRatio, err := c.rs.Div(rin)
	if err != nil {
		return units.Quantity{}, err
	}
	lc := c.coreInductance.Mul(c.cin).Mul(w.Square())
	b, err := units.Scalar(1).Add(lossRatio)
	if err != nil {
		return units.Quantity{}, err
	}
	if b, err = b.Sub(lc); err != nil {
		return units.Quantity{}, err
	}

	tau, err := c.coreInductance.Div(rin)
	if err != nil {
		return units.Quantity{}, err
	}
	if tau, err = tau.Add(c.rs.Mul(c.cin)); err != nil {
		return units.Quantity{}, err
	}
	h, err := reduce(a, b, tau.Mul(w))
	if err != nil {
		return units.Quantity{}, fmt.Errorf("transformer response at %g rad/s: %w", w.Value(), err)
	}
	return h, nil
}

// Ycr is the feedback admittance 1/R_cr.
func (c *Chain) Ycr() (units.Quantity, error) {
	return c.cfg.FeedbackResistance.Inv()
}

// LoopGain returns H·Ycr, the dimensionless feedback loop gain.
func (c *Chain) LoopGain(w units.Quantity) (units.Quantity, error) {
	h, err := c.H(w)
	if err != nil {
		return units.Quantity{}, err
	}
	y, err := c.Ycr()
	if err != nil {
		return units.Quantity{}, err
	}
	return h.Mul(y), nil
}

// TF is the closed-loop transfer function |M·H / (1 − H·Ycr)| in V/T.
func (c *Chain) TF(w units.Quantity) (units.Quantity, error) {
	m, err := c.M(w)
	if err != nil {
		return units.Quantity{}, err
	}
	h, err := c.H(w)
	if err != nil {
		return units.Quantity{}, err
	}
	y, err := c.Ycr()
	if err != nil {
		return units.Quantity{}, err
	}
	den, err := units.Scalar(1).Sub(h.Mul(y))
	if err != nil {
		return units.Quantity{}, err
	}
	tf, err := m.Mul(h).Div(den)
	if err != nil {
		return units.Quantity{}, fmt.Errorf("closed loop at %g rad/s: %w", w.Value(), err)
	}
	return tf.Abs(), nil
}

// TF2 is the high loop gain limit S·R_cr·ω / (r_b + j(L0 + A_l)ω) in V/T.
// It equals M·R_cr.
func (c *Chain) TF2(w units.Quantity) (units.Quantity, error) {
	if err := checkOmega(w); err != nil {
		return units.Quantity{}, err
	}
	a := c.cfg.Loop.Surface.Mul(c.cfg.FeedbackResistance).Mul(w)
	tf2, err := reduce(a, c.cfg.Loop.Resistance, c.loopInductance.Mul(w))
	if err != nil {
		return units.Quantity{}, fmt.Errorf("asymptotic response at %g rad/s: %w", w.Value(), err)
	}
	return tf2.Abs(), nil
}

// ResonantOmega returns the angular frequency at which the transformer term
// B vanishes and the loop gain peaks.
func (c *Chain) ResonantOmega() (units.Quantity, error) {
	ratio, err := c.rs.Div(c.cfg.BiasResistance)
	if err != nil {
		return units.Quantity{}, err
	}
	num, err := units.Scalar(1).Add(ratio)
	if err != nil {
		return units.Quantity{}, err
	}
	w2, err := num.Div(c.coreInductance.Mul(c.cin))
	if err != nil {
		return units.Quantity{}, err
	}
	return w2.Sqrt()
}

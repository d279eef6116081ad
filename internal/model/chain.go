// Package model evaluates the analytic transfer function and noise budget of
// a loop sensor read out through toroidal transformers and a JFET amplifier.
//
// Complex intermediate expressions of the form A/(B + jC) are reduced to the
// real quantity A·C/(B² + C²) before further composition.
package model

import (
	"fmt"
	"math"

	"github.com/RMahshie/fluxloop/internal/sensor"
	"github.com/RMahshie/fluxloop/pkg/units"
)

// ErrDomain marks an input outside the model's validity range.
var ErrDomain = units.ErrDomain

// Chain is the signal chain of one sensor configuration. It is immutable and
// safe for concurrent use.
type Chain struct {
	cfg     sensor.Config
	derived sensor.Derived

	loopInductance units.Quantity // L0 + A_l
	coreInductance units.Quantity // n·A_l·N²
	coreFlux       units.Quantity // n·A_l·N
	cin            units.Quantity
	rs             units.Quantity
}

// NewChain validates cfg and d for use by the model.
func NewChain(cfg sensor.Config, d sensor.Derived) (*Chain, error) {
	checks := []struct {
		name string
		q    units.Quantity
	}{
		{"loop resistance", cfg.Loop.Resistance},
		{"bias resistance", cfg.BiasResistance},
		{"feedback resistance", cfg.FeedbackResistance},
		{"input capacitance", d.InputCapacitance},
		{"temperature", cfg.Temperature},
	}
	for _, c := range checks {
		if !c.q.Positive() {
			return nil, fmt.Errorf("%w: %s must be positive, got %s", ErrDomain, c.name, c.q)
		}
	}
	if cfg.Turns < 1 || cfg.ToroidCount < 1 {
		return nil, fmt.Errorf("%w: need at least one turn on at least one core", ErrDomain)
	}
	if d.WindingResistance.Value() < 0 {
		return nil, fmt.Errorf("%w: negative winding resistance", ErrDomain)
	}

	al := cfg.Toroid.SpecificInductance
	loopL, err := cfg.Loop.SelfInductance.Add(al)
	if err != nil {
		return nil, fmt.Errorf("loop inductance: %w", err)
	}
	n := float64(cfg.ToroidCount)
	return &Chain{
		cfg:            cfg,
		derived:        d,
		loopInductance: loopL,
		coreInductance: d.ToroidInductance.Scale(n),
		coreFlux:       d.FluxPerCurrent.Scale(n),
		cin:            d.InputCapacitance,
		rs:             d.WindingResistance,
	}, nil
}

// Config returns the sensor configuration.
func (c *Chain) Config() sensor.Config { return c.cfg }

// Derived returns the derived sensor properties.
func (c *Chain) Derived() sensor.Derived { return c.derived }

// Angular converts a frequency in Hz to rad/s.
func Angular(f units.Quantity) units.Quantity { return f.Scale(2 * math.Pi) }

// reduce returns A·C/(B² + C²).
func reduce(a, b, c units.Quantity) (units.Quantity, error) {
	den, err := b.Square().Add(c.Square())
	if err != nil {
		return units.Quantity{}, err
	}
	return a.Mul(c).Div(den)
}

func checkOmega(w units.Quantity) error {
	if err := w.Check("angular frequency", units.Hertz); err != nil {
		return err
	}
	if w.Value() < 0 {
		return fmt.Errorf("%w: negative angular frequency %g", ErrDomain, w.Value())
	}
	return nil
}

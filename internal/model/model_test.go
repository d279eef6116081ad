package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RMahshie/fluxloop/internal/catalog"
	"github.com/RMahshie/fluxloop/internal/sensor"
	"github.com/RMahshie/fluxloop/internal/series"
	"github.com/RMahshie/fluxloop/pkg/units"
)

func exampleChain(t *testing.T) *Chain {
	t.Helper()
	cfg, err := sensor.ExampleDesign().Resolve(catalog.DefaultAWGTable())
	require.NoError(t, err)
	d, err := sensor.Derive(cfg)
	require.NoError(t, err)
	c, err := NewChain(cfg, d)
	require.NoError(t, err)
	return c
}

func TestTFConvergesToTF2AtHighLoopGain(t *testing.T) {
	c := exampleChain(t)
	w0, err := c.ResonantOmega()
	require.NoError(t, err)

	gain, err := c.LoopGain(w0)
	require.NoError(t, err)
	assert.Greater(t, math.Abs(gain.Value()), 100.0)

	tf, err := c.TF(w0)
	require.NoError(t, err)
	tf2, err := c.TF2(w0)
	require.NoError(t, err)
	assert.InEpsilon(t, tf2.Value(), tf.Value(), 0.01)
	assert.True(t, tf.Is(units.VoltPerTesla))
}

func TestResonantOmegaMatchesDerivedResonance(t *testing.T) {
	cfg, err := sensor.ExampleDesign().Resolve(catalog.DefaultAWGTable())
	require.NoError(t, err)
	d, err := sensor.Derive(cfg)
	require.NoError(t, err)
	c, err := NewChain(cfg, d)
	require.NoError(t, err)

	w0, err := c.ResonantOmega()
	require.NoError(t, err)
	assert.InEpsilon(t, d.ResonantFrequency.Value(), w0.Value()/(2*math.Pi), 1e-3)
}

func TestTFDivergesFromTF2BelowLoopPole(t *testing.T) {
	c := exampleChain(t)
	cfg := c.Config()
	// r_b / (L0 + A_l)
	pole := cfg.Loop.Resistance.Value() / (cfg.Loop.SelfInductance.Value() + cfg.Toroid.SpecificInductance.Value())
	w := units.New(pole/10, units.Hertz)

	tf, err := c.TF(w)
	require.NoError(t, err)
	tf2, err := c.TF2(w)
	require.NoError(t, err)
	assert.Less(t, tf.Value()/tf2.Value(), 0.01)
}

func TestTF2IsMTimesFeedbackResistance(t *testing.T) {
	c := exampleChain(t)
	w := Angular(units.New(10, units.Kilohertz))
	m, err := c.M(w)
	require.NoError(t, err)
	assert.True(t, m.Is(units.AmperePerTesla))
	tf2, err := c.TF2(w)
	require.NoError(t, err)
	assert.InEpsilon(t, m.Value()*1200, tf2.Value(), 1e-12)
}

func TestNewChainRejectsNonPositiveResistance(t *testing.T) {
	cfg, err := sensor.ExampleDesign().Resolve(catalog.DefaultAWGTable())
	require.NoError(t, err)
	d, err := sensor.Derive(cfg)
	require.NoError(t, err)

	for name, mutate := range map[string]func(*sensor.Config){
		"loop":     func(c *sensor.Config) { c.Loop.Resistance = units.New(0, units.Ohm) },
		"bias":     func(c *sensor.Config) { c.BiasResistance = units.New(-1, units.Ohm) },
		"feedback": func(c *sensor.Config) { c.FeedbackResistance = units.New(0, units.Ohm) },
	} {
		t.Run(name, func(t *testing.T) {
			bad := cfg
			mutate(&bad)
			_, err := NewChain(bad, d)
			assert.ErrorIs(t, err, ErrDomain)
		})
	}
}

func TestNoiseAtZeroFrequencyIsDomainError(t *testing.T) {
	c := exampleChain(t)
	_, err := c.Vb(units.New(0, units.Hertz))
	assert.ErrorIs(t, err, ErrDomain)
	_, err = c.Vb4(units.New(-5, units.Hertz))
	assert.ErrorIs(t, err, ErrDomain)
}

func TestNoiseLowFrequencyLimit(t *testing.T) {
	c := exampleChain(t)
	n, err := c.Noise(units.New(1, units.Hertz))
	require.NoError(t, err)

	ebt := math.Sqrt(4 * 1.380649e-23 * 300 * c.Derived().WindingResistance.Value())
	want := math.Hypot(ebt, 0.8e-9)
	assert.InEpsilon(t, want, n.Total.Value(), 1e-3)
	assert.InEpsilon(t, 0.8e-9, n.Voltage.Value(), 1e-12)
	assert.Less(t, n.Bias.Value(), 1e-12)
}

func TestTotalNoiseDominatesEachTerm(t *testing.T) {
	c := exampleChain(t)
	axis, err := series.LogAxis(units.New(10, units.Hertz), units.New(10, units.Megahertz), 61)
	require.NoError(t, err)

	curves, err := c.NoiseSweep(axis)
	require.NoError(t, err)
	require.Equal(t, 61, curves.Total.Len())
	for i, s := range curves.Total.Samples {
		for _, term := range []*series.FrequencySeries{curves.Toroid, curves.Bias, curves.Current, curves.Voltage} {
			assert.GreaterOrEqual(t, s.Value, term.Samples[i].Value, "%s at %g Hz", term.Name, s.Frequency)
		}
	}
}

func TestTransferSweepAndInputReferredNoise(t *testing.T) {
	c := exampleChain(t)
	axis, err := series.LogAxis(units.New(100, units.Hertz), units.New(1, units.Megahertz), 5)
	require.NoError(t, err)

	curves, err := c.TransferSweep(axis)
	require.NoError(t, err)
	assert.Equal(t, 5, curves.TF.Len())
	require.NoError(t, curves.TF2.Validate())

	bn, err := c.InputReferredNoise(axis)
	require.NoError(t, err)
	assert.True(t, bn.Unit.Dim == units.TeslaPerRootHertz.Dim)
	for i, s := range bn.Samples {
		vb, err := c.Vb(axis[i])
		require.NoError(t, err)
		assert.InEpsilon(t, vb.Value()/curves.TF.Samples[i].Value, s.Value, 1e-9)
	}
}

func TestSweepFailsOnBadFrequency(t *testing.T) {
	c := exampleChain(t)
	_, err := c.NoiseSweep([]units.Quantity{units.New(10, units.Hertz), units.New(0, units.Hertz)})
	assert.ErrorIs(t, err, ErrDomain)
}

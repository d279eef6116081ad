package units

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddRequiresSameDimension(t *testing.T) {
	a := NewWithUncertainty(3, 0.3, Millimetre)
	b := NewWithUncertainty(4, 0.4, Millimetre)

	sum, err := a.Add(b)
	require.NoError(t, err)
	v, err := sum.In(Millimetre)
	require.NoError(t, err)
	assert.InDelta(t, 7, v, 1e-12)
	u, err := sum.UncertaintyIn(Millimetre)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, u, 1e-12)

	_, err = a.Add(New(1, Henry))
	assert.ErrorIs(t, err, ErrUnitMismatch)
	_, err = a.Sub(New(1, Second))
	assert.ErrorIs(t, err, ErrUnitMismatch)
}

func TestMulComposesDimensions(t *testing.T) {
	r := NewWithUncertainty(100, 3, Ohm)
	c := NewWithUncertainty(10, 0.4, Picofarad)

	tau := r.Mul(c)
	assert.True(t, tau.Is(Second))
	assert.InDelta(t, 1e-9, tau.Value(), 1e-21)
	// 3% and 4% combine to 5%
	assert.InDelta(t, 0.05, tau.RelativeUncertainty(), 1e-12)

	l := New(350, Nanohenry)
	omega := New(1e6, Hertz)
	z := l.Mul(omega)
	assert.True(t, z.Is(Ohm))
}

func TestZeroOperandContributesNoRelativeUncertainty(t *testing.T) {
	zero := NewWithUncertainty(0, 1, Volt)
	x := NewWithUncertainty(2, 0.2, Ampere)

	p := zero.Mul(x)
	assert.Equal(t, 0.0, p.Value())
	assert.Equal(t, 0.0, p.Uncertainty())

	q, err := x.Div(NewWithUncertainty(4, 0, Second))
	require.NoError(t, err)
	assert.InDelta(t, 0.1, q.RelativeUncertainty(), 1e-12)
}

func TestDivByZeroIsDomainError(t *testing.T) {
	_, err := New(1, Volt).Div(New(0, Ohm))
	assert.ErrorIs(t, err, ErrDomain)

	_, err = New(0, Ohm).Inv()
	assert.ErrorIs(t, err, ErrDomain)
}

func TestConversionIsPureScale(t *testing.T) {
	l := NewWithUncertainty(2500, 25, Nanohenry)
	mh, err := l.In(Millihenry)
	require.NoError(t, err)
	assert.InDelta(t, 0.0025, mh, 1e-15)

	_, err = l.In(Farad)
	assert.ErrorIs(t, err, ErrUnitMismatch)
}

func TestSqrtOfSpectralPower(t *testing.T) {
	// 4kTR for 1 kΩ at 300 K gives about 4.07 nV/√Hz
	fourKT := Boltzmann.Mul(New(300, Kelvin)).Scale(4)
	power := fourKT.Mul(New(1, Kiloohm))
	density, err := power.Sqrt()
	require.NoError(t, err)
	assert.True(t, density.Is(VoltPerRootHertz), "got %s", density.Dim())

	nv, err := density.In(NanovoltPerRootHertz)
	require.NoError(t, err)
	assert.InDelta(t, 4.07, nv, 0.01)

	_, err = New(1, Metre).Sqrt()
	assert.NoError(t, err)
	half, _ := New(1, Metre).Sqrt()
	_, err = half.Sqrt()
	assert.ErrorIs(t, err, ErrUnsupportedUnit)

	_, err = New(-1, One).Sqrt()
	assert.ErrorIs(t, err, ErrDomain)
}

func TestPow(t *testing.T) {
	r := NewWithUncertainty(2, 0.02, Millimetre)
	cube, err := r.Pow(3)
	require.NoError(t, err)
	assert.InDelta(t, 8e-9, cube.Value(), 1e-21)
	assert.InDelta(t, 0.03, cube.RelativeUncertainty(), 1e-12)

	_, err = New(0, Metre).Pow(-2)
	assert.ErrorIs(t, err, ErrDomain)
}

func TestSquareUsesCorrelatedUncertainty(t *testing.T) {
	n := NewWithUncertainty(50, 1, One)
	sq := n.Square()
	assert.InDelta(t, 2500, sq.Value(), 1e-9)
	assert.InDelta(t, 100, sq.Uncertainty(), 1e-9)
}

func TestParseUnit(t *testing.T) {
	tests := []struct {
		symbol string
		want   Unit
		value  float64
	}{
		{"nH", Nanohenry, 1e-9},
		{"kΩ", Kiloohm, 1e3},
		{"kohm", Kiloohm, 1e3},
		{"pF", Picofarad, 1e-12},
		{"mm²", SquareMillimetre, 1e-6},
		{"MHz", Megahertz, 1e6},
		{"GHz", Unit{"GHz", 1e9, Hertz.Dim}, 1e9},
		{"µV", Microvolt, 1e-6},
		{"uV", Unit{"uV", 1e-6, Volt.Dim}, 1e-6},
		{"", One, 1},
	}
	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			u, err := ParseUnit(tt.symbol)
			require.NoError(t, err)
			assert.Equal(t, tt.want.Dim, u.Dim)
			assert.InDelta(t, tt.value, u.Scale, tt.value*1e-12)
		})
	}

	_, err := ParseUnit("furlong")
	assert.ErrorIs(t, err, ErrUnknownUnit)
}

func TestQuantityJSON(t *testing.T) {
	data, err := json.Marshal(NewWithUncertainty(2, 0.5, Ohm))
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":2,"uncertainty":0.5,"unit":"Ω"}`, string(data))

	q := NewWithUncertainty(10, 1, Picofarad)
	var back Quantity
	require.NoError(t, json.Unmarshal([]byte(`{"value":10,"uncertainty":1,"unit":"pF"}`), &back))
	assert.InDelta(t, q.Value(), back.Value(), 1e-24)
	assert.InDelta(t, q.Uncertainty(), back.Uncertainty(), 1e-24)
	assert.True(t, back.Is(Farad))
}

func TestString(t *testing.T) {
	assert.Equal(t, "2 Ω", New(2, Ohm).String())
	assert.Equal(t, "0.5 ± 0.1 H", NewWithUncertainty(0.5, 0.1, Henry).String())
	assert.Equal(t, "10 ± 1 pF", NewWithUncertainty(10, 1, Picofarad).Format(Picofarad))
	assert.False(t, math.IsNaN(New(1, VoltPerTesla).Value()))
}

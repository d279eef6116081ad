package units

import (
	"fmt"
	"strings"
)

// Base identifies one of the SI base quantities carried by a Dimension.
type Base int

const (
	Length Base = iota
	Mass
	Time
	Current
	Temperature
	baseCount
)

var baseSymbols = [baseCount]string{"m", "kg", "s", "A", "K"}

// Dimension holds the exponent of each base quantity in half steps, so that
// spectral densities such as V/√Hz stay representable.
type Dimension [baseCount]int8

// dimOf builds a Dimension from whole or half exponents.
func dimOf(length, mass, time, current, temperature float64) Dimension {
	return Dimension{
		int8(length * 2),
		int8(mass * 2),
		int8(time * 2),
		int8(current * 2),
		int8(temperature * 2),
	}
}

// IsDimensionless reports whether every exponent is zero.
func (d Dimension) IsDimensionless() bool {
	return d == Dimension{}
}

// Exponent returns the exponent of base b.
func (d Dimension) Exponent(b Base) float64 {
	return float64(d[b]) / 2
}

func (d Dimension) add(o Dimension) Dimension {
	var r Dimension
	for i := range d {
		r[i] = d[i] + o[i]
	}
	return r
}

func (d Dimension) sub(o Dimension) Dimension {
	var r Dimension
	for i := range d {
		r[i] = d[i] - o[i]
	}
	return r
}

func (d Dimension) times(n int) Dimension {
	var r Dimension
	for i := range d {
		r[i] = d[i] * int8(n)
	}
	return r
}

// half returns the dimension of the square root, or false when an exponent
// would drop below half steps.
func (d Dimension) half() (Dimension, bool) {
	var r Dimension
	for i := range d {
		if d[i]%2 != 0 {
			return Dimension{}, false
		}
		r[i] = d[i] / 2
	}
	return r, true
}

// String renders the dimension in base units, e.g. "kg m^2 s^-3 A^-1".
func (d Dimension) String() string {
	if d.IsDimensionless() {
		return "1"
	}
	parts := make([]string, 0, baseCount)
	// kg reads better first
	order := []Base{Mass, Length, Time, Current, Temperature}
	for _, b := range order {
		e := d.Exponent(b)
		switch {
		case e == 0:
			continue
		case e == 1:
			parts = append(parts, baseSymbols[b])
		default:
			parts = append(parts, fmt.Sprintf("%s^%g", baseSymbols[b], e))
		}
	}
	return strings.Join(parts, " ")
}

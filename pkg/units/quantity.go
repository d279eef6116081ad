// Package units implements unit-carrying scalar quantities with symmetric
// uncertainty.
//
// A Quantity stores its value in SI base units together with the exponents of
// its dimension. Sums require identical dimensions; products and quotients
// compose dimensions symbolically, so any physically valid combination is
// representable. Uncertainties combine in quadrature for independent errors:
// absolute for sums, relative for products. An operand whose value is exactly
// zero contributes no relative uncertainty; this avoids dividing by zero and is
// not statistically rigorous close to zero.
package units

import (
	"encoding/json"
	"fmt"
	"math"
)

// Quantity is an immutable value with a dimension and an uncertainty.
type Quantity struct {
	value       float64
	uncertainty float64
	dim         Dimension
}

// New returns v expressed in unit u, without uncertainty.
func New(v float64, u Unit) Quantity {
	return Quantity{value: v * u.Scale, dim: u.Dim}
}

// NewWithUncertainty returns v ± unc, both expressed in unit u.
func NewWithUncertainty(v, unc float64, u Unit) Quantity {
	return Quantity{
		value:       v * u.Scale,
		uncertainty: math.Abs(unc * u.Scale),
		dim:         u.Dim,
	}
}

// Scalar returns a dimensionless quantity.
func Scalar(v float64) Quantity {
	return Quantity{value: v}
}

// FromSI builds a quantity directly from SI values and a dimension.
func FromSI(v, unc float64, d Dimension) Quantity {
	return Quantity{value: v, uncertainty: math.Abs(unc), dim: d}
}

// Value returns the value in SI base units.
func (q Quantity) Value() float64 { return q.value }

// Uncertainty returns the absolute uncertainty in SI base units.
func (q Quantity) Uncertainty() float64 { return q.uncertainty }

// Dim returns the dimension.
func (q Quantity) Dim() Dimension { return q.dim }

// RelativeUncertainty returns u/|v|, or 0 for a zero value.
func (q Quantity) RelativeUncertainty() float64 {
	if q.value == 0 {
		return 0
	}
	return q.uncertainty / math.Abs(q.value)
}

// WithUncertainty returns a copy with the absolute SI uncertainty replaced.
func (q Quantity) WithUncertainty(unc float64) Quantity {
	q.uncertainty = math.Abs(unc)
	return q
}

// In returns the value expressed in unit u.
func (q Quantity) In(u Unit) (float64, error) {
	if q.dim != u.Dim {
		return 0, fmt.Errorf("%w: cannot express %s in %s", ErrUnitMismatch, q.dim, u)
	}
	return q.value / u.Scale, nil
}

// UncertaintyIn returns the uncertainty expressed in unit u.
func (q Quantity) UncertaintyIn(u Unit) (float64, error) {
	if q.dim != u.Dim {
		return 0, fmt.Errorf("%w: cannot express %s in %s", ErrUnitMismatch, q.dim, u)
	}
	return q.uncertainty / u.Scale, nil
}

// Is reports whether q has the dimension of u.
func (q Quantity) Is(u Unit) bool { return q.dim == u.Dim }

// Check returns ErrUnitMismatch unless q has the dimension of u. name is used
// in the error message.
func (q Quantity) Check(name string, u Unit) error {
	if q.dim != u.Dim {
		return fmt.Errorf("%w: %s has dimension %s, want %s", ErrUnitMismatch, name, q.dim, u.Dim)
	}
	return nil
}

// Add returns q + o.
func (q Quantity) Add(o Quantity) (Quantity, error) {
	if q.dim != o.dim {
		return Quantity{}, fmt.Errorf("%w: %s + %s", ErrUnitMismatch, q.dim, o.dim)
	}
	return Quantity{
		value:       q.value + o.value,
		uncertainty: math.Hypot(q.uncertainty, o.uncertainty),
		dim:         q.dim,
	}, nil
}

// Sub returns q - o.
func (q Quantity) Sub(o Quantity) (Quantity, error) {
	return q.Add(o.Neg())
}

// Mul returns q·o.
func (q Quantity) Mul(o Quantity) Quantity {
	v := q.value * o.value
	return Quantity{
		value:       v,
		uncertainty: math.Abs(v) * relativeQuadrature(q, o),
		dim:         q.dim.add(o.dim),
	}
}

// Div returns q/o. Division by an exact zero is a domain error.
func (q Quantity) Div(o Quantity) (Quantity, error) {
	if o.value == 0 {
		return Quantity{}, fmt.Errorf("%w: division by zero %s", ErrDomain, o.dim)
	}
	v := q.value / o.value
	return Quantity{
		value:       v,
		uncertainty: math.Abs(v) * relativeQuadrature(q, o),
		dim:         q.dim.sub(o.dim),
	}, nil
}

// Inv returns 1/q.
func (q Quantity) Inv() (Quantity, error) {
	return Scalar(1).Div(q)
}

// Scale multiplies by an exact dimensionless factor.
func (q Quantity) Scale(k float64) Quantity {
	return Quantity{value: q.value * k, uncertainty: q.uncertainty * math.Abs(k), dim: q.dim}
}

// Neg returns -q.
func (q Quantity) Neg() Quantity {
	q.value = -q.value
	return q
}

// Abs returns |q|.
func (q Quantity) Abs() Quantity {
	q.value = math.Abs(q.value)
	return q
}

// Pow returns q^n for integer n.
func (q Quantity) Pow(n int) (Quantity, error) {
	if n < 0 && q.value == 0 {
		return Quantity{}, fmt.Errorf("%w: zero raised to %d", ErrDomain, n)
	}
	v := math.Pow(q.value, float64(n))
	return Quantity{
		value:       v,
		uncertainty: math.Abs(v) * math.Abs(float64(n)) * q.RelativeUncertainty(),
		dim:         q.dim.times(n),
	}, nil
}

// Square returns q².
func (q Quantity) Square() Quantity {
	return q.Mul(q).WithUncertainty(2 * math.Abs(q.value) * q.uncertainty)
}

// Sqrt returns √q. Negative values are a domain error.
func (q Quantity) Sqrt() (Quantity, error) {
	if q.value < 0 {
		return Quantity{}, fmt.Errorf("%w: square root of negative value", ErrDomain)
	}
	d, ok := q.dim.half()
	if !ok {
		return Quantity{}, fmt.Errorf("%w: square root of %s", ErrUnsupportedUnit, q.dim)
	}
	v := math.Sqrt(q.value)
	return Quantity{
		value:       v,
		uncertainty: v * q.RelativeUncertainty() / 2,
		dim:         d,
	}, nil
}

// IsZero reports whether the value is exactly zero.
func (q Quantity) IsZero() bool { return q.value == 0 }

// Positive reports whether the value is strictly greater than zero.
func (q Quantity) Positive() bool { return q.value > 0 }

// Less reports whether q < o. Both must share a dimension.
func (q Quantity) Less(o Quantity) (bool, error) {
	if q.dim != o.dim {
		return false, fmt.Errorf("%w: %s < %s", ErrUnitMismatch, q.dim, o.dim)
	}
	return q.value < o.value, nil
}

// Unit returns the registered SI unit matching the dimension, or a synthetic
// unit named after the base dimensions.
func (q Quantity) Unit() Unit {
	if u, ok := CanonicalUnit(q.dim); ok {
		return u
	}
	return Unit{Symbol: q.dim.String(), Scale: 1, Dim: q.dim}
}

// String renders "v ± u unit" in the canonical unit.
func (q Quantity) String() string {
	u := q.Unit()
	if q.uncertainty == 0 {
		return fmt.Sprintf("%g %s", q.value, u)
	}
	return fmt.Sprintf("%g ± %g %s", q.value, q.uncertainty, u)
}

// Format renders q in unit u, falling back to String on mismatch.
func (q Quantity) Format(u Unit) string {
	v, err := q.In(u)
	if err != nil {
		return q.String()
	}
	if q.uncertainty == 0 {
		return fmt.Sprintf("%.4g %s", v, u)
	}
	return fmt.Sprintf("%.4g ± %.2g %s", v, q.uncertainty/u.Scale, u)
}

type quantityJSON struct {
	Value       float64 `json:"value"`
	Uncertainty float64 `json:"uncertainty"`
	Unit        string  `json:"unit"`
}

// MarshalJSON encodes the SI value, its uncertainty and the canonical unit.
func (q Quantity) MarshalJSON() ([]byte, error) {
	return json.Marshal(quantityJSON{
		Value:       q.value,
		Uncertainty: q.uncertainty,
		Unit:        q.Unit().String(),
	})
}

// UnmarshalJSON accepts the MarshalJSON layout; the unit may be any symbol
// ParseUnit understands.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	var raw quantityJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	u, err := ParseUnit(raw.Unit)
	if err != nil {
		return err
	}
	*q = NewWithUncertainty(raw.Value, raw.Uncertainty, u)
	return nil
}

func relativeQuadrature(a, b Quantity) float64 {
	var sum float64
	if a.value != 0 {
		r := a.uncertainty / a.value
		sum += r * r
	}
	if b.value != 0 {
		r := b.uncertainty / b.value
		sum += r * r
	}
	return math.Sqrt(sum)
}

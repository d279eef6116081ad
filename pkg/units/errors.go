package units

import "errors"

var (
	// ErrUnitMismatch is returned when two quantities of different dimension
	// are added, compared or converted into each other.
	ErrUnitMismatch = errors.New("unit mismatch")
	// ErrUnsupportedUnit is returned when an operation would leave the half
	// step exponent grid, e.g. the square root of m^1/2.
	ErrUnsupportedUnit = errors.New("unsupported unit combination")
	// ErrUnknownUnit is returned by ParseUnit for unrecognized symbols.
	ErrUnknownUnit = errors.New("unknown unit")
	// ErrDomain marks evaluation outside a function's physical domain, such as
	// division by zero or the root of a negative value.
	ErrDomain = errors.New("outside function domain")
)

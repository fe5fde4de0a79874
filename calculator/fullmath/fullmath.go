package fullmath

import (
	"errors"

	"github.com/holiman/uint256"
)

var (
	// ErrOverflow is returned when a result does not fit in 256 bits.
	ErrOverflow = errors.New("fullmath: result overflows uint256")
	// ErrDivideByZero is returned when the denominator is zero.
	ErrDivideByZero = errors.New("fullmath: division by zero")

	maxUint256 = new(uint256.Int).Not(new(uint256.Int))
)

// MulDiv calculates floor(a*b/denominator) with a full 512-bit intermediate product.
// dest may alias any of the inputs.
func MulDiv(dest, a, b, denominator *uint256.Int) error {
	if denominator.IsZero() {
		return ErrDivideByZero
	}

	var result uint256.Int
	if _, overflow := result.MulDivOverflow(a, b, denominator); overflow {
		return ErrOverflow
	}

	dest.Set(&result)
	return nil
}

// MulDivRoundingUp calculates ceil(a*b/denominator) with a full 512-bit intermediate product.
// dest may alias any of the inputs.
func MulDivRoundingUp(dest, a, b, denominator *uint256.Int) error {
	var result, remainder uint256.Int
	if err := MulDiv(&result, a, b, denominator); err != nil {
		return err
	}

	if !remainder.MulMod(a, b, denominator).IsZero() {
		if result.Eq(maxUint256) {
			return ErrOverflow
		}
		result.AddUint64(&result, 1)
	}

	dest.Set(&result)
	return nil
}

// DivRoundingUp calculates ceil(x/y).
func DivRoundingUp(dest, x, y *uint256.Int) error {
	if y.IsZero() {
		return ErrDivideByZero
	}

	var quotient, remainder uint256.Int
	quotient.DivMod(x, y, &remainder)
	if !remainder.IsZero() {
		// quotient < 2^256-1 whenever y > 1, and y == 1 never leaves a remainder.
		quotient.AddUint64(&quotient, 1)
	}

	dest.Set(&quotient)
	return nil
}

package sqrtpricemath

import (
	"errors"

	"github.com/defistate/v3swap/calculator/fullmath"
	"github.com/holiman/uint256"
)

// Resolution is the number of fractional bits in the Q64.96 format.
const Resolution = 96

var (
	// Q96 is the Q64.96 fixed-point number representing 1.
	Q96 = new(uint256.Int).Lsh(uint256.NewInt(1), Resolution)

	ErrLiquidityZero        = errors.New("liquidity must be greater than zero")
	ErrSqrtPriceZero        = errors.New("sqrt price must be greater than zero")
	ErrInsufficientReserves = errors.New("amount exceeds the virtual reserves at this price")

	maxUint128 = new(uint256.Int).SubUint64(new(uint256.Int).Lsh(uint256.NewInt(1), 128), 1)
	maxUint160 = new(uint256.Int).SubUint64(new(uint256.Int).Lsh(uint256.NewInt(1), 160), 1)
)

// toUint160 stores x in dest, failing if it does not fit in 160 bits.
func toUint160(dest, x *uint256.Int) error {
	if x.Gt(maxUint160) {
		return fullmath.ErrOverflow
	}
	dest.Set(x)
	return nil
}

// GetNextSqrtPriceFromAmount0RoundingUp calculates the next sqrt price given a delta of token0.
// The result is rounded up so the price never moves further than the exact amount allows.
//
// Products are computed modulo 2^256 and checked for wrap-around exactly as the on-chain code does,
// falling back to a less precise formula when the precise one would overflow.
func GetNextSqrtPriceFromAmount0RoundingUp(dest, sqrtPX96, liquidity, amount *uint256.Int, add bool) error {
	if amount.IsZero() {
		dest.Set(sqrtPX96)
		return nil
	}

	var numerator1, product, quotient, denominator, result uint256.Int
	numerator1.Lsh(liquidity, Resolution)
	product.Mul(amount, sqrtPX96)
	noWrap := quotient.Div(&product, amount).Eq(sqrtPX96)

	if add {
		if noWrap {
			denominator.Add(&numerator1, &product)
			if !denominator.Lt(&numerator1) {
				// always fits in 160 bits
				if err := fullmath.MulDivRoundingUp(&result, &numerator1, sqrtPX96, &denominator); err != nil {
					return err
				}
				return toUint160(dest, &result)
			}
		}

		// numerator1 / (numerator1 / sqrtPX96 + amount)
		denominator.Div(&numerator1, sqrtPX96)
		if _, overflow := denominator.AddOverflow(&denominator, amount); overflow {
			return fullmath.ErrOverflow
		}
		if err := fullmath.DivRoundingUp(&result, &numerator1, &denominator); err != nil {
			return err
		}
		dest.Set(&result)
		return nil
	}

	// the product must not wrap and the denominator must not underflow
	if !noWrap || !numerator1.Gt(&product) {
		return ErrInsufficientReserves
	}
	denominator.Sub(&numerator1, &product)
	if err := fullmath.MulDivRoundingUp(&result, &numerator1, sqrtPX96, &denominator); err != nil {
		return err
	}
	return toUint160(dest, &result)
}

// GetNextSqrtPriceFromAmount1RoundingDown calculates the next sqrt price given a delta of token1.
// The result is rounded down so the price never moves further than the exact amount allows.
func GetNextSqrtPriceFromAmount1RoundingDown(dest, sqrtPX96, liquidity, amount *uint256.Int, add bool) error {
	var quotient, result uint256.Int

	if add {
		if !amount.Gt(maxUint160) {
			quotient.Lsh(amount, Resolution)
			quotient.Div(&quotient, liquidity)
		} else if err := fullmath.MulDiv(&quotient, amount, Q96, liquidity); err != nil {
			return err
		}

		if _, overflow := result.AddOverflow(sqrtPX96, &quotient); overflow {
			return fullmath.ErrOverflow
		}
		return toUint160(dest, &result)
	}

	if !amount.Gt(maxUint160) {
		var shifted uint256.Int
		shifted.Lsh(amount, Resolution)
		if err := fullmath.DivRoundingUp(&quotient, &shifted, liquidity); err != nil {
			return err
		}
	} else if err := fullmath.MulDivRoundingUp(&quotient, amount, Q96, liquidity); err != nil {
		return err
	}

	if !sqrtPX96.Gt(&quotient) {
		return ErrInsufficientReserves
	}
	dest.Sub(sqrtPX96, &quotient)
	return nil
}

// GetNextSqrtPriceFromInput calculates the next sqrt price after adding amountIn of token0
// (zeroForOne) or token1 to the pool.
func GetNextSqrtPriceFromInput(dest, sqrtPX96, liquidity, amountIn *uint256.Int, zeroForOne bool) error {
	if sqrtPX96.IsZero() {
		return ErrSqrtPriceZero
	}
	if liquidity.IsZero() {
		return ErrLiquidityZero
	}

	if zeroForOne {
		return GetNextSqrtPriceFromAmount0RoundingUp(dest, sqrtPX96, liquidity, amountIn, true)
	}
	return GetNextSqrtPriceFromAmount1RoundingDown(dest, sqrtPX96, liquidity, amountIn, true)
}

// GetNextSqrtPriceFromOutput calculates the next sqrt price after removing amountOut of token1
// (zeroForOne) or token0 from the pool.
func GetNextSqrtPriceFromOutput(dest, sqrtPX96, liquidity, amountOut *uint256.Int, zeroForOne bool) error {
	if sqrtPX96.IsZero() {
		return ErrSqrtPriceZero
	}
	if liquidity.IsZero() {
		return ErrLiquidityZero
	}

	if zeroForOne {
		return GetNextSqrtPriceFromAmount1RoundingDown(dest, sqrtPX96, liquidity, amountOut, false)
	}
	return GetNextSqrtPriceFromAmount0RoundingUp(dest, sqrtPX96, liquidity, amountOut, false)
}

// GetAmount0Delta calculates liquidity / sqrt(lower) - liquidity / sqrt(upper), i.e.
// liquidity * (sqrt(upper) - sqrt(lower)) / (sqrt(upper) * sqrt(lower)).
// The prices may be passed in either order.
func GetAmount0Delta(dest, sqrtRatioAX96, sqrtRatioBX96, liquidity *uint256.Int, roundUp bool) error {
	if sqrtRatioAX96.Gt(sqrtRatioBX96) {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}
	if sqrtRatioAX96.IsZero() {
		return ErrSqrtPriceZero
	}
	if liquidity.Gt(maxUint128) {
		return fullmath.ErrOverflow
	}

	var numerator1, numerator2, result uint256.Int
	numerator1.Lsh(liquidity, Resolution)
	numerator2.Sub(sqrtRatioBX96, sqrtRatioAX96)

	if roundUp {
		if err := fullmath.MulDivRoundingUp(&result, &numerator1, &numerator2, sqrtRatioBX96); err != nil {
			return err
		}
		return fullmath.DivRoundingUp(dest, &result, sqrtRatioAX96)
	}

	if err := fullmath.MulDiv(&result, &numerator1, &numerator2, sqrtRatioBX96); err != nil {
		return err
	}
	dest.Div(&result, sqrtRatioAX96)
	return nil
}

// GetAmount1Delta calculates liquidity * (sqrt(upper) - sqrt(lower)).
// The prices may be passed in either order.
func GetAmount1Delta(dest, sqrtRatioAX96, sqrtRatioBX96, liquidity *uint256.Int, roundUp bool) error {
	if sqrtRatioAX96.Gt(sqrtRatioBX96) {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}

	var diff uint256.Int
	diff.Sub(sqrtRatioBX96, sqrtRatioAX96)

	if roundUp {
		return fullmath.MulDivRoundingUp(dest, liquidity, &diff, Q96)
	}
	return fullmath.MulDiv(dest, liquidity, &diff, Q96)
}

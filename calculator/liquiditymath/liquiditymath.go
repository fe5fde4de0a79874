package liquiditymath

import (
	"errors"
	"math/big"
)

var (
	// MaxUint128 is the largest liquidity value a pool can hold (2^128 - 1).
	MaxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

	ErrLiquidityOverflow  = errors.New("liquidity overflow")
	ErrLiquidityUnderflow = errors.New("liquidity underflow")
)

// AddDelta adds a signed liquidity delta y to an unsigned liquidity value x and stores the result in dest.
// dest is left untouched when an error is returned, and may alias x or y.
func AddDelta(dest *big.Int, x *big.Int, y *big.Int) error {
	sum := new(big.Int).Add(x, y)

	if sum.Sign() < 0 {
		return ErrLiquidityUnderflow
	}
	if sum.Cmp(MaxUint128) > 0 {
		return ErrLiquidityOverflow
	}

	dest.Set(sum)
	return nil
}

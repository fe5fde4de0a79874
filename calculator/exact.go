package calculator

import (
	"fmt"
	"math/big"

	"github.com/defistate/v3swap/calculator/exact"
	"github.com/defistate/v3swap/pool"
)

var minInt256 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 255))

// SwapExact runs req in exact integer arithmetic, matching the on-chain result bit for bit.
// A nil price limit defaults to the furthest limit the pool accepts in the swap direction.
func SwapExact(snap *pool.Snapshot, req Request[*big.Int]) (Result[*big.Int], error) {
	if req.AmountSpecified == nil {
		return Result[*big.Int]{}, fmt.Errorf("%w: missing", ErrInvalidAmount)
	}
	if req.AmountSpecified.Cmp(exact.MaxInt256) > 0 || req.AmountSpecified.Cmp(minInt256) < 0 {
		return Result[*big.Int]{}, fmt.Errorf("%w: %s does not fit int256", ErrInvalidAmount, req.AmountSpecified)
	}

	if req.SqrtPriceLimitX96 == nil {
		req.SqrtPriceLimitX96 = exact.DefaultPriceLimit(req.ZeroForOne)
	} else {
		req.SqrtPriceLimitX96 = new(big.Int).Set(req.SqrtPriceLimitX96)
	}
	return Swap[*big.Int](exact.Arithmetic{}, snap, req)
}

// swapPositive runs an exact-input (or exact-output) swap of a positive amount and returns
// the amount on the other side as a positive number.
func swapPositive(amount, sqrtPriceLimitX96 *big.Int, zeroForOne, exactInput bool, snap *pool.Snapshot) (*big.Int, Result[*big.Int], error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, Result[*big.Int]{}, fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}

	specified := new(big.Int).Set(amount)
	if !exactInput {
		specified.Neg(specified)
	}

	res, err := SwapExact(snap, Request[*big.Int]{
		ZeroForOne:        zeroForOne,
		AmountSpecified:   specified,
		SqrtPriceLimitX96: sqrtPriceLimitX96,
	})
	if err != nil {
		return nil, Result[*big.Int]{}, err
	}

	// the other side is token1 exactly when token0 is the one specified
	other := res.Amount1
	if zeroForOne != exactInput {
		other = res.Amount0
	}
	return new(big.Int).Abs(other), res, nil
}

// GetAmountOut calculates the amount out for a given exact amount in.
// A nil sqrtPriceLimitX96 lets the swap run to the end of the price range.
func GetAmountOut(amountIn, sqrtPriceLimitX96 *big.Int, zeroForOne bool, snap *pool.Snapshot) (*big.Int, error) {
	amountOut, _, err := swapPositive(amountIn, sqrtPriceLimitX96, zeroForOne, true, snap)
	return amountOut, err
}

// GetAmountIn calculates the required amount in for a given exact amount out.
func GetAmountIn(amountOut, sqrtPriceLimitX96 *big.Int, zeroForOne bool, snap *pool.Snapshot) (*big.Int, error) {
	amountIn, _, err := swapPositive(amountOut, sqrtPriceLimitX96, zeroForOne, false, snap)
	return amountIn, err
}

// SimulateExactInSwap calculates the resulting amount out and the new pool state for a given amount in.
func SimulateExactInSwap(amountIn, sqrtPriceLimitX96 *big.Int, zeroForOne bool, snap *pool.Snapshot) (*big.Int, *pool.Snapshot, error) {
	amountOut, res, err := swapPositive(amountIn, sqrtPriceLimitX96, zeroForOne, true, snap)
	if err != nil {
		return nil, nil, err
	}
	return amountOut, snap.WithState(res.SqrtPriceX96, res.Liquidity, res.Tick), nil
}

// SimulateExactOutSwap calculates the required amount in and the new pool state for a given amount out.
func SimulateExactOutSwap(amountOut, sqrtPriceLimitX96 *big.Int, zeroForOne bool, snap *pool.Snapshot) (*big.Int, *pool.Snapshot, error) {
	amountIn, res, err := swapPositive(amountOut, sqrtPriceLimitX96, zeroForOne, false, snap)
	if err != nil {
		return nil, nil, err
	}
	return amountIn, snap.WithState(res.SqrtPriceX96, res.Liquidity, res.Tick), nil
}

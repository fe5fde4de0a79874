// Package calculator simulates Uniswap V3 swaps against a pool snapshot. The tick crossing loop is
// written once, generic over a numeric policy, and instantiated for exact integer arithmetic and for
// float64 approximation.
package calculator

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/defistate/v3swap/calculator/approx"
	"github.com/defistate/v3swap/calculator/exact"
	"github.com/defistate/v3swap/calculator/swapmath"
	"github.com/defistate/v3swap/calculator/tickbitmap"
	"github.com/defistate/v3swap/calculator/tickmath"
	"github.com/defistate/v3swap/pool"
)

var (
	ErrPriceLimitOutOfRange       = exact.ErrPriceLimitOutOfRange
	ErrPriceLimitNotBeyondCurrent = exact.ErrPriceLimitNotBeyondCurrent
	ErrTickNotFound               = errors.New("initialized tick missing from the tick map")
	ErrInvalidAmount              = errors.New("amount specified must be non-zero")
)

// Arithmetic is the numeric policy a swap runs under. On top of the step math it supplies the
// conversions, bookkeeping and guards of the swap loop.
type Arithmetic[N any] interface {
	swapmath.Math[N]

	FromBig(x *big.Int) (N, error)
	Add(x, y N) N
	SqrtRatioAtTick(tick int32) (N, error)
	// TickAfterStep returns the tick for a step that ended strictly inside a tick range.
	TickAfterStep(sqrtPriceX96 N, tick int32) (int32, error)
	AddDelta(liquidity N, delta *big.Int) (N, error)
	CheckPriceLimit(sqrtPriceLimitX96, sqrtPriceX96 N, zeroForOne bool) error
	// Settled reports whether nothing is left to swap.
	Settled(amountRemaining N, exhausted bool) bool
}

var (
	_ Arithmetic[*big.Int] = exact.Arithmetic{}
	_ Arithmetic[float64]  = approx.Arithmetic{}
)

// Request describes a single swap.
type Request[N any] struct {
	// ZeroForOne is true when token0 is sold for token1, moving the price down.
	ZeroForOne bool
	// AmountSpecified is positive for an exact input and negative for an exact output.
	AmountSpecified N
	// SqrtPriceLimitX96 is the price the swap may not move beyond.
	SqrtPriceLimitX96 N
	// OnStep, if set, is called after every iteration of the loop.
	OnStep func(Step[N])
}

// Step describes one iteration of the swap loop.
type Step[N any] struct {
	SqrtPriceStartX96 N
	// TickNext is the next tick boundary in the swap direction, clamped to [MIN_TICK, MAX_TICK].
	TickNext    int32
	Initialized bool
	// SqrtPriceNextX96 is the price at TickNext.
	SqrtPriceNextX96 N
	// SqrtPriceTargetX96 is the price the step aimed for: the boundary or the limit.
	SqrtPriceTargetX96 N
	// SqrtPriceX96 is the price the step ended at.
	SqrtPriceX96 N
	AmountIn     N
	AmountOut    N
	FeeAmount    N
	Exhausted    bool
	// Crossed reports that the step ended on an initialized tick and its liquidity was applied.
	Crossed bool
}

// Result is the outcome of a swap. Positive amounts are paid into the pool, negative ones out of it.
type Result[N any] struct {
	Amount0      N
	Amount1      N
	SqrtPriceX96 N
	Liquidity    N
	Tick         int32
}

// Swap simulates req against snap using the numeric policy a. The snapshot is not modified.
//
// Swapping against a pool with no active liquidity returns zero amounts and the pool's current state.
// A swap stops once the amount specified is settled, the price limit is reached or the active liquidity
// drops to zero.
func Swap[N any](a Arithmetic[N], snap *pool.Snapshot, req Request[N]) (Result[N], error) {
	if a.Sign(req.AmountSpecified) == 0 {
		return Result[N]{}, ErrInvalidAmount
	}

	sqrtPriceX96, err := a.FromBig(snap.SqrtPriceX96)
	if err != nil {
		return Result[N]{}, err
	}
	liquidity, err := a.FromBig(snap.Liquidity)
	if err != nil {
		return Result[N]{}, err
	}
	if err := a.CheckPriceLimit(req.SqrtPriceLimitX96, sqrtPriceX96, req.ZeroForOne); err != nil {
		return Result[N]{}, err
	}

	tick := snap.Tick
	if a.Sign(liquidity) <= 0 {
		return Result[N]{Amount0: a.Zero(), Amount1: a.Zero(), SqrtPriceX96: sqrtPriceX96, Liquidity: liquidity, Tick: tick}, nil
	}

	limit, err := clampLimit(a, req.SqrtPriceLimitX96, req.ZeroForOne)
	if err != nil {
		return Result[N]{}, err
	}

	zeroForOne := req.ZeroForOne
	exactInput := a.Sign(req.AmountSpecified) > 0
	amountSpecifiedRemaining := req.AmountSpecified
	amountCalculated := a.Zero()
	exhausted := false

	// beyondLimit reports whether the price can still move toward the limit.
	beyondLimit := func(price N) bool {
		if zeroForOne {
			return a.Cmp(price, limit) > 0
		}
		return a.Cmp(price, limit) < 0
	}

	for !a.Settled(amountSpecifiedRemaining, exhausted) && a.Sign(liquidity) > 0 && beyondLimit(sqrtPriceX96) {
		step := Step[N]{SqrtPriceStartX96: sqrtPriceX96}

		step.TickNext, step.Initialized, err = tickbitmap.NextInitializedTickWithinOneWord(snap.Bitmap, tick, snap.TickSpacing, zeroForOne)
		if err != nil {
			return Result[N]{}, err
		}
		// the bitmap search is not aware of the global bounds
		if step.TickNext < tickmath.MIN_TICK {
			step.TickNext = tickmath.MIN_TICK
		} else if step.TickNext > tickmath.MAX_TICK {
			step.TickNext = tickmath.MAX_TICK
		}

		if step.SqrtPriceNextX96, err = a.SqrtRatioAtTick(step.TickNext); err != nil {
			return Result[N]{}, err
		}
		// a boundary behind the current price is one the price already sits on; the float policy can
		// place it a rounding error away from a price taken from the snapshot
		if (zeroForOne && a.Cmp(step.SqrtPriceNextX96, sqrtPriceX96) > 0) || (!zeroForOne && a.Cmp(step.SqrtPriceNextX96, sqrtPriceX96) < 0) {
			step.SqrtPriceNextX96 = sqrtPriceX96
		}

		step.SqrtPriceTargetX96 = step.SqrtPriceNextX96
		if (zeroForOne && a.Cmp(step.SqrtPriceNextX96, limit) < 0) || (!zeroForOne && a.Cmp(step.SqrtPriceNextX96, limit) > 0) {
			step.SqrtPriceTargetX96 = limit
		}

		var sr swapmath.StepResult[N]
		sr, err = swapmath.ComputeSwapStep[N](a, sqrtPriceX96, step.SqrtPriceTargetX96, liquidity, amountSpecifiedRemaining, snap.Fee)
		if err != nil {
			return Result[N]{}, fmt.Errorf("swap step at tick %d: %w", tick, err)
		}
		sqrtPriceX96 = sr.SqrtRatioNextX96
		step.SqrtPriceX96 = sr.SqrtRatioNextX96
		step.AmountIn, step.AmountOut, step.FeeAmount = sr.AmountIn, sr.AmountOut, sr.FeeAmount
		step.Exhausted = sr.Exhausted
		exhausted = sr.Exhausted

		if exactInput {
			amountSpecifiedRemaining = a.Sub(amountSpecifiedRemaining, a.Add(sr.AmountIn, sr.FeeAmount))
			amountCalculated = a.Sub(amountCalculated, sr.AmountOut)
		} else {
			amountSpecifiedRemaining = a.Add(amountSpecifiedRemaining, sr.AmountOut)
			amountCalculated = a.Add(amountCalculated, a.Add(sr.AmountIn, sr.FeeAmount))
		}

		if a.Cmp(sqrtPriceX96, step.SqrtPriceNextX96) == 0 {
			// the price reached the boundary, cross it if it holds liquidity
			if step.Initialized {
				info, ok := snap.Ticks[step.TickNext]
				if !ok {
					return Result[N]{}, fmt.Errorf("%w: %d", ErrTickNotFound, step.TickNext)
				}
				liquidityNet := info.LiquidityNet
				if zeroForOne {
					liquidityNet = new(big.Int).Neg(liquidityNet)
				}
				if liquidity, err = a.AddDelta(liquidity, liquidityNet); err != nil {
					return Result[N]{}, fmt.Errorf("cross tick %d: %w", step.TickNext, err)
				}
				step.Crossed = true
			}

			if zeroForOne {
				tick = step.TickNext - 1
			} else {
				tick = step.TickNext
			}
		} else if a.Cmp(sqrtPriceX96, step.SqrtPriceStartX96) != 0 {
			if tick, err = a.TickAfterStep(sqrtPriceX96, tick); err != nil {
				return Result[N]{}, err
			}
		}

		if req.OnStep != nil {
			req.OnStep(step)
		}
	}

	result := Result[N]{SqrtPriceX96: sqrtPriceX96, Liquidity: liquidity, Tick: tick}
	if zeroForOne == exactInput {
		result.Amount0 = a.Sub(req.AmountSpecified, amountSpecifiedRemaining)
		result.Amount1 = amountCalculated
	} else {
		result.Amount0 = amountCalculated
		result.Amount1 = a.Sub(req.AmountSpecified, amountSpecifiedRemaining)
	}
	return result, nil
}

// clampLimit bounds limit by the prices of the global tick range.
func clampLimit[N any](a Arithmetic[N], limit N, zeroForOne bool) (N, error) {
	if zeroForOne {
		minPrice, err := a.SqrtRatioAtTick(tickmath.MIN_TICK)
		if err != nil {
			return limit, err
		}
		if a.Cmp(limit, minPrice) < 0 {
			return minPrice, nil
		}
		return limit, nil
	}

	maxPrice, err := a.SqrtRatioAtTick(tickmath.MAX_TICK)
	if err != nil {
		return limit, err
	}
	if a.Cmp(limit, maxPrice) > 0 {
		return maxPrice, nil
	}
	return limit, nil
}

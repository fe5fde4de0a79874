// Package approx is the floating point regime of the swap engine. Values are float64 in the same Q64.96
// and native-unit scales as the exact regime; formulas are evaluated directly in double precision.
//
// The regime trades the bit-exact rounding and the range guards of the exact regime for speed: price limits,
// output reserves and liquidity bounds are not checked, and callers are expected to pass sane inputs.
package approx

import (
	"math"
	"math/big"

	"github.com/defistate/v3swap/calculator/swapmath"
)

const (
	// Q96 is 2^96 as a float.
	Q96 float64 = 1 << 96
	// Q192 is 2^192 as a float.
	Q192 float64 = 1 << 192
)

// Arithmetic implements the numeric policy over float64. The zero value is ready to use.
type Arithmetic struct{}

// feeFraction converts pips into a fraction of one.
func feeFraction(feePips uint32) float64 {
	return float64(feePips) / swapmath.FeeDenominator
}

func (Arithmetic) Zero() float64 { return 0 }

func (Arithmetic) Sign(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

func (Arithmetic) Cmp(x, y float64) int {
	switch {
	case x > y:
		return 1
	case x < y:
		return -1
	}
	return 0
}

func (Arithmetic) Neg(x float64) float64    { return -x }
func (Arithmetic) Add(x, y float64) float64 { return x + y }
func (Arithmetic) Sub(x, y float64) float64 { return x - y }

// FromBig rounds x to the nearest float64.
func (Arithmetic) FromBig(x *big.Int) (float64, error) {
	f, _ := new(big.Float).SetInt(x).Float64()
	return f, nil
}

// Amount0Delta returns L * Q96 * (upper - lower) / (lower * upper). Rounding is not controllable.
func (Arithmetic) Amount0Delta(sqrtRatioAX96, sqrtRatioBX96, liquidity float64, _ bool) (float64, error) {
	lower, upper := math.Min(sqrtRatioAX96, sqrtRatioBX96), math.Max(sqrtRatioAX96, sqrtRatioBX96)
	return liquidity * Q96 * (upper - lower) / (lower * upper), nil
}

// Amount1Delta returns L * (upper - lower) / Q96.
func (Arithmetic) Amount1Delta(sqrtRatioAX96, sqrtRatioBX96, liquidity float64, _ bool) (float64, error) {
	lower, upper := math.Min(sqrtRatioAX96, sqrtRatioBX96), math.Max(sqrtRatioAX96, sqrtRatioBX96)
	return liquidity * (upper - lower) / Q96, nil
}

func (Arithmetic) NextSqrtPriceFromInput(sqrtPX96, liquidity, amountIn float64, zeroForOne bool) (float64, error) {
	if zeroForOne {
		// solve L*Q96/lower - L*Q96/upper = amountIn for lower
		scaled := liquidity * Q96
		return scaled * sqrtPX96 / (scaled + amountIn*sqrtPX96), nil
	}
	// solve L*(upper - lower)/Q96 = amountIn for upper
	return sqrtPX96 + amountIn*Q96/liquidity, nil
}

func (Arithmetic) NextSqrtPriceFromOutput(sqrtPX96, liquidity, amountOut float64, zeroForOne bool) (float64, error) {
	if zeroForOne {
		return sqrtPX96 - amountOut*Q96/liquidity, nil
	}
	scaled := liquidity * Q96
	return scaled * sqrtPX96 / (scaled - amountOut*sqrtPX96), nil
}

func (Arithmetic) AmountLessFee(amount float64, feePips uint32) (float64, error) {
	return amount * (1 - feeFraction(feePips)), nil
}

func (Arithmetic) FeeOnAmount(amountIn float64, feePips uint32) (float64, error) {
	fee := feeFraction(feePips)
	return amountIn * fee / (1 - fee), nil
}

// SqrtRatioAtTick returns sqrt(1.0001^tick * 2^192). Ticks are not range checked.
func (Arithmetic) SqrtRatioAtTick(tick int32) (float64, error) {
	return math.Sqrt(math.Pow(1.0001, float64(tick)) * Q192), nil
}

// TickAfterStep keeps the current tick. A step that ends inside a tick range is always the last one
// of the swap, so the loop never reads the stale tick again.
func (Arithmetic) TickAfterStep(_ float64, tick int32) (int32, error) {
	return tick, nil
}

func (Arithmetic) AddDelta(liquidity float64, delta *big.Int) (float64, error) {
	d, _ := new(big.Float).SetInt(delta).Float64()
	return liquidity + d, nil
}

// CheckPriceLimit accepts any limit; a limit beyond the global price range is clamped by the swap loop.
func (Arithmetic) CheckPriceLimit(_, _ float64, _ bool) error {
	return nil
}

// Settled reports whether the swap is complete. Float subtraction rarely lands on exactly zero, so a step
// that exhausted the remaining amount ends the swap as well.
func (Arithmetic) Settled(amountRemaining float64, exhausted bool) bool {
	return exhausted || amountRemaining == 0
}

// DefaultPriceLimit returns the furthest price a swap in the given direction can reach.
func DefaultPriceLimit(zeroForOne bool) float64 {
	if zeroForOne {
		return 0
	}
	return math.Inf(1)
}

// DecimalsFactor returns 10^decimals, the number of native units in one whole token.
func DecimalsFactor(decimals uint8) float64 {
	return math.Pow10(int(decimals))
}

package swapmath

// FeeDenominator is the unit fees are expressed in: a fee of 3000 pips is 0.3%.
const FeeDenominator = 1_000_000

// Math is the numeric policy a swap step is computed under. Implementations define the value type N,
// the rounding of the conversion formulas and the guards applied to them; the step algorithm itself
// is shared.
//
// Amounts are signed: a positive remaining amount is an exact input still to be paid in, a negative one
// an exact output still owed.
type Math[N any] interface {
	Zero() N
	Sign(x N) int
	Cmp(x, y N) int
	Neg(x N) N
	Sub(x, y N) N

	// Amount0Delta and Amount1Delta return the token amounts between two sqrt prices at a
	// constant liquidity, rounded up or down where the regime supports rounding.
	Amount0Delta(sqrtRatioAX96, sqrtRatioBX96, liquidity N, roundUp bool) (N, error)
	Amount1Delta(sqrtRatioAX96, sqrtRatioBX96, liquidity N, roundUp bool) (N, error)

	// NextSqrtPriceFromInput and NextSqrtPriceFromOutput invert the amount formulas.
	NextSqrtPriceFromInput(sqrtPX96, liquidity, amountIn N, zeroForOne bool) (N, error)
	NextSqrtPriceFromOutput(sqrtPX96, liquidity, amountOut N, zeroForOne bool) (N, error)

	// AmountLessFee returns amount * (1 - fee), rounded down.
	AmountLessFee(amount N, feePips uint32) (N, error)
	// FeeOnAmount returns the fee charged on top of amountIn, amountIn * fee / (1 - fee), rounded up.
	FeeOnAmount(amountIn N, feePips uint32) (N, error)
}

// StepResult is the outcome of a single swap step.
type StepResult[N any] struct {
	// SqrtRatioNextX96 is the price after swapping, never beyond the target.
	SqrtRatioNextX96 N
	AmountIn         N
	AmountOut        N
	FeeAmount        N
	// Exhausted reports that the remaining amount was not enough to reach the target price,
	// i.e. it was fully consumed by this step.
	Exhausted bool
}

// ComputeSwapStep computes the result of swapping some amount in, or out, given the parameters of the swap.
// The fee, plus the amount in, will never exceed the amount remaining if the swap's amountRemaining is positive.
func ComputeSwapStep[N any](
	m Math[N],
	sqrtRatioCurrentX96, sqrtRatioTargetX96, liquidity, amountRemaining N,
	feePips uint32,
) (StepResult[N], error) {
	zeroForOne := m.Cmp(sqrtRatioCurrentX96, sqrtRatioTargetX96) >= 0
	exactIn := m.Sign(amountRemaining) >= 0

	step := StepResult[N]{
		AmountIn:  m.Zero(),
		AmountOut: m.Zero(),
		FeeAmount: m.Zero(),
	}

	// the amount needed to reach the target, and whether the remaining amount covers it
	var reached bool
	var err error
	var amountRemainingLessFee N
	if exactIn {
		if amountRemainingLessFee, err = m.AmountLessFee(amountRemaining, feePips); err != nil {
			return step, err
		}

		if zeroForOne {
			step.AmountIn, err = m.Amount0Delta(sqrtRatioTargetX96, sqrtRatioCurrentX96, liquidity, true)
		} else {
			step.AmountIn, err = m.Amount1Delta(sqrtRatioCurrentX96, sqrtRatioTargetX96, liquidity, true)
		}
		if err != nil {
			return step, err
		}

		if m.Cmp(amountRemainingLessFee, step.AmountIn) >= 0 {
			reached = true
			step.SqrtRatioNextX96 = sqrtRatioTargetX96
		} else {
			step.SqrtRatioNextX96, err = m.NextSqrtPriceFromInput(sqrtRatioCurrentX96, liquidity, amountRemainingLessFee, zeroForOne)
			if err != nil {
				return step, err
			}
		}
	} else {
		if zeroForOne {
			step.AmountOut, err = m.Amount1Delta(sqrtRatioTargetX96, sqrtRatioCurrentX96, liquidity, false)
		} else {
			step.AmountOut, err = m.Amount0Delta(sqrtRatioCurrentX96, sqrtRatioTargetX96, liquidity, false)
		}
		if err != nil {
			return step, err
		}

		if m.Cmp(m.Neg(amountRemaining), step.AmountOut) >= 0 {
			reached = true
			step.SqrtRatioNextX96 = sqrtRatioTargetX96
		} else {
			step.SqrtRatioNextX96, err = m.NextSqrtPriceFromOutput(sqrtRatioCurrentX96, liquidity, m.Neg(amountRemaining), zeroForOne)
			if err != nil {
				return step, err
			}
		}
	}
	// float rounding can carry a price derived from the amount past the target
	if (zeroForOne && m.Cmp(step.SqrtRatioNextX96, sqrtRatioTargetX96) < 0) || (!zeroForOne && m.Cmp(step.SqrtRatioNextX96, sqrtRatioTargetX96) > 0) {
		step.SqrtRatioNextX96 = sqrtRatioTargetX96
	}
	step.Exhausted = !reached

	// get the input/output amounts for the final price, reusing the side already computed at the target.
	// In integer arithmetic reached is the same as the price landing on the target; float rounding can
	// land an exhausted step on the target too, and that step must still be priced from its own amount.
	if zeroForOne {
		if !(reached && exactIn) {
			if step.AmountIn, err = m.Amount0Delta(step.SqrtRatioNextX96, sqrtRatioCurrentX96, liquidity, true); err != nil {
				return step, err
			}
		}
		if !(reached && !exactIn) {
			if step.AmountOut, err = m.Amount1Delta(step.SqrtRatioNextX96, sqrtRatioCurrentX96, liquidity, false); err != nil {
				return step, err
			}
		}
	} else {
		if !(reached && exactIn) {
			if step.AmountIn, err = m.Amount1Delta(sqrtRatioCurrentX96, step.SqrtRatioNextX96, liquidity, true); err != nil {
				return step, err
			}
		}
		if !(reached && !exactIn) {
			if step.AmountOut, err = m.Amount0Delta(sqrtRatioCurrentX96, step.SqrtRatioNextX96, liquidity, false); err != nil {
				return step, err
			}
		}
	}

	// cap the output amount to not exceed the remaining output amount
	if !exactIn && m.Cmp(step.AmountOut, m.Neg(amountRemaining)) > 0 {
		step.AmountOut = m.Neg(amountRemaining)
	}

	if exactIn && !reached {
		// the price was derived from amountRemainingLessFee, so the input never exceeds it; float
		// rounding of a very short step can break that
		if m.Cmp(step.AmountIn, amountRemainingLessFee) > 0 {
			step.AmountIn = amountRemainingLessFee
		}
		// we didn't reach the target, so take the remainder of the maximum input as fee
		step.FeeAmount = m.Sub(amountRemaining, step.AmountIn)
	} else {
		if step.FeeAmount, err = m.FeeOnAmount(step.AmountIn, feePips); err != nil {
			return step, err
		}
	}

	return step, nil
}

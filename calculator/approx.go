package calculator

import (
	"github.com/defistate/v3swap/calculator/approx"
	"github.com/defistate/v3swap/pool"
)

// ApproxRequest is a float64 swap request in whole token units.
type ApproxRequest struct {
	// Request.AmountSpecified is in whole tokens of the specified asset: the input for an exact
	// input swap, the output otherwise. A zero price limit means no limit.
	Request[float64]
	// Factor0 and Factor1 are the native units per whole token of each asset, 10^decimals.
	// Zero factors are taken from the snapshot's decimals.
	Factor0 float64
	Factor1 float64
}

// SwapApprox runs req in float64 arithmetic. Amounts in the result are in whole tokens, the price and
// liquidity in the pool's native scale. Steps passed to OnStep carry native amounts.
func SwapApprox(snap *pool.Snapshot, req ApproxRequest) (Result[float64], error) {
	factor0, factor1 := req.Factor0, req.Factor1
	if factor0 == 0 {
		factor0 = approx.DecimalsFactor(snap.Decimals0)
	}
	if factor1 == 0 {
		factor1 = approx.DecimalsFactor(snap.Decimals1)
	}

	inner := req.Request
	// token0 is specified when selling it exactly or buying token1 exactly
	exactInput := inner.AmountSpecified > 0
	if inner.ZeroForOne == exactInput {
		inner.AmountSpecified *= factor0
	} else {
		inner.AmountSpecified *= factor1
	}
	if inner.SqrtPriceLimitX96 == 0 {
		inner.SqrtPriceLimitX96 = approx.DefaultPriceLimit(inner.ZeroForOne)
	}

	res, err := Swap[float64](approx.Arithmetic{}, snap, inner)
	if err != nil {
		return Result[float64]{}, err
	}
	res.Amount0 /= factor0
	res.Amount1 /= factor1
	return res, nil
}

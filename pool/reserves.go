package pool

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// spotPricePrecision is the number of decimal places SpotPrice keeps.
const spotPricePrecision = 18

var (
	q96  = new(big.Int).Lsh(big.NewInt(1), 96)
	q192 = decimal.NewFromBigInt(new(big.Int).Lsh(big.NewInt(1), 192), 0)
)

// VirtualReserves returns the reserves of a constant product pool with the same liquidity and
// price as the current tick range: reserve0 = L * 2^96 / sqrtP, reserve1 = L * sqrtP / 2^96, in
// native units of each token.
func (s *Snapshot) VirtualReserves() (reserve0, reserve1 *big.Int) {
	reserve0 = new(big.Int).Lsh(s.Liquidity, 96)
	reserve0.Div(reserve0, s.SqrtPriceX96)

	reserve1 = new(big.Int).Mul(s.Liquidity, s.SqrtPriceX96)
	reserve1.Div(reserve1, q96)
	return reserve0, reserve1
}

// SpotPrice returns the marginal price of one whole unit of the base token, in whole units of the
// other token, adjusted for both tokens' decimals. base0 selects token0 as the base.
//
// For a WETH (18 decimals) / USDC (6 decimals) pool with WETH as token0, SpotPrice(true) is the
// price of one WETH in USDC.
func (s *Snapshot) SpotPrice(base0 bool) decimal.Decimal {
	sqrtP := decimal.NewFromBigInt(s.SqrtPriceX96, 0)
	// raw price of token0 in token1 is sqrtP^2 / 2^192
	squared := sqrtP.Mul(sqrtP)
	shift := int32(s.Decimals0) - int32(s.Decimals1)

	if base0 {
		return squared.Shift(shift).DivRound(q192, spotPricePrecision)
	}
	return q192.Shift(-shift).DivRound(squared, spotPricePrecision)
}

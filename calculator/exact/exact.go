// Package exact is the integer arithmetic regime of the swap engine. Values are *big.Int holding the
// uint160/uint128/uint256/int256 quantities of the on-chain contracts; every formula is evaluated with the
// on-chain rounding in 256-bit fixed point and every guard is enforced, so results match the chain bit for bit.
package exact

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/defistate/v3swap/calculator/fullmath"
	"github.com/defistate/v3swap/calculator/liquiditymath"
	"github.com/defistate/v3swap/calculator/sqrtpricemath"
	"github.com/defistate/v3swap/calculator/swapmath"
	"github.com/defistate/v3swap/calculator/tickmath"
	"github.com/holiman/uint256"
)

var (
	ErrValueOutOfRange            = errors.New("value out of uint256 range")
	ErrInvalidFee                 = errors.New("fee must be below 1e6 pips")
	ErrPriceLimitOutOfRange       = errors.New("price limit outside (MIN_SQRT_RATIO, MAX_SQRT_RATIO)")
	ErrPriceLimitNotBeyondCurrent = errors.New("price limit is not beyond the current price in the swap direction")

	// MinSqrtRatio and MaxSqrtRatio mirror the tickmath bounds as big integers.
	MinSqrtRatio = tickmath.MIN_SQRT_RATIO.ToBig()
	MaxSqrtRatio = tickmath.MAX_SQRT_RATIO.ToBig()
	// MaxInt256 bounds the magnitude of a specified swap amount.
	MaxInt256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 255), big.NewInt(1))

	feeDenominator = uint256.NewInt(swapmath.FeeDenominator)
)

// Arithmetic implements the numeric policy over *big.Int. The zero value is ready to use.
// Returned values are always freshly allocated; inputs are never modified. The uint256 scratch space
// of each call comes from a pool, so the policy is safe for concurrent use.
type Arithmetic struct{}

// operands holds the 256-bit scratch values of one policy call.
type operands struct {
	x, y, z, result uint256.Int
}

// operandsPool manages a pool of operands objects for safe concurrent use.
var operandsPool = sync.Pool{
	New: func() any {
		return new(operands)
	},
}

// setUint256 stores a non-negative big integer in dest, failing if it is nil or does not fit 256 bits.
func setUint256(dest *uint256.Int, x *big.Int) error {
	if x == nil {
		return fmt.Errorf("%w: nil value", ErrValueOutOfRange)
	}
	if x.Sign() < 0 {
		return fmt.Errorf("%w: %s is negative", ErrValueOutOfRange, x)
	}
	if overflow := dest.SetFromBig(x); overflow {
		return fmt.Errorf("%w: %s", ErrValueOutOfRange, x)
	}
	return nil
}

// load fills x, y and z from a, b and c.
func (o *operands) load(a, b, c *big.Int) error {
	if err := setUint256(&o.x, a); err != nil {
		return err
	}
	if err := setUint256(&o.y, b); err != nil {
		return err
	}
	return setUint256(&o.z, c)
}

// Sign treats a nil value as zero.
func (Arithmetic) Sign(x *big.Int) int {
	if x == nil {
		return 0
	}
	return x.Sign()
}

func (Arithmetic) Zero() *big.Int          { return new(big.Int) }
func (Arithmetic) Cmp(x, y *big.Int) int   { return x.Cmp(y) }
func (Arithmetic) Neg(x *big.Int) *big.Int { return new(big.Int).Neg(x) }

func (Arithmetic) Add(x, y *big.Int) *big.Int { return new(big.Int).Add(x, y) }
func (Arithmetic) Sub(x, y *big.Int) *big.Int { return new(big.Int).Sub(x, y) }

// FromBig copies x after checking it fits in 256 bits.
func (Arithmetic) FromBig(x *big.Int) (*big.Int, error) {
	var z uint256.Int
	if err := setUint256(&z, x); err != nil {
		return nil, err
	}
	return new(big.Int).Set(x), nil
}

func (Arithmetic) Amount0Delta(sqrtRatioAX96, sqrtRatioBX96, liquidity *big.Int, roundUp bool) (*big.Int, error) {
	o := operandsPool.Get().(*operands)
	defer operandsPool.Put(o)

	if err := o.load(sqrtRatioAX96, sqrtRatioBX96, liquidity); err != nil {
		return nil, err
	}
	if err := sqrtpricemath.GetAmount0Delta(&o.result, &o.x, &o.y, &o.z, roundUp); err != nil {
		return nil, err
	}
	return o.result.ToBig(), nil
}

func (Arithmetic) Amount1Delta(sqrtRatioAX96, sqrtRatioBX96, liquidity *big.Int, roundUp bool) (*big.Int, error) {
	o := operandsPool.Get().(*operands)
	defer operandsPool.Put(o)

	if err := o.load(sqrtRatioAX96, sqrtRatioBX96, liquidity); err != nil {
		return nil, err
	}
	if err := sqrtpricemath.GetAmount1Delta(&o.result, &o.x, &o.y, &o.z, roundUp); err != nil {
		return nil, err
	}
	return o.result.ToBig(), nil
}

func (Arithmetic) NextSqrtPriceFromInput(sqrtPX96, liquidity, amountIn *big.Int, zeroForOne bool) (*big.Int, error) {
	o := operandsPool.Get().(*operands)
	defer operandsPool.Put(o)

	if err := o.load(sqrtPX96, liquidity, amountIn); err != nil {
		return nil, err
	}
	if err := sqrtpricemath.GetNextSqrtPriceFromInput(&o.result, &o.x, &o.y, &o.z, zeroForOne); err != nil {
		return nil, err
	}
	return o.result.ToBig(), nil
}

func (Arithmetic) NextSqrtPriceFromOutput(sqrtPX96, liquidity, amountOut *big.Int, zeroForOne bool) (*big.Int, error) {
	o := operandsPool.Get().(*operands)
	defer operandsPool.Put(o)

	if err := o.load(sqrtPX96, liquidity, amountOut); err != nil {
		return nil, err
	}
	if err := sqrtpricemath.GetNextSqrtPriceFromOutput(&o.result, &o.x, &o.y, &o.z, zeroForOne); err != nil {
		return nil, err
	}
	return o.result.ToBig(), nil
}

// AmountLessFee returns floor(amount * (1e6 - fee) / 1e6).
func (Arithmetic) AmountLessFee(amount *big.Int, feePips uint32) (*big.Int, error) {
	if feePips >= swapmath.FeeDenominator {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFee, feePips)
	}
	o := operandsPool.Get().(*operands)
	defer operandsPool.Put(o)

	if err := setUint256(&o.x, amount); err != nil {
		return nil, err
	}
	o.y.SetUint64(uint64(swapmath.FeeDenominator - feePips))
	if err := fullmath.MulDiv(&o.result, &o.x, &o.y, feeDenominator); err != nil {
		return nil, err
	}
	return o.result.ToBig(), nil
}

// FeeOnAmount returns ceil(amountIn * fee / (1e6 - fee)).
func (Arithmetic) FeeOnAmount(amountIn *big.Int, feePips uint32) (*big.Int, error) {
	if feePips >= swapmath.FeeDenominator {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFee, feePips)
	}
	o := operandsPool.Get().(*operands)
	defer operandsPool.Put(o)

	if err := setUint256(&o.x, amountIn); err != nil {
		return nil, err
	}
	o.y.SetUint64(uint64(feePips))
	o.z.SetUint64(uint64(swapmath.FeeDenominator - feePips))
	if err := fullmath.MulDivRoundingUp(&o.result, &o.x, &o.y, &o.z); err != nil {
		return nil, err
	}
	return o.result.ToBig(), nil
}

func (Arithmetic) SqrtRatioAtTick(tick int32) (*big.Int, error) {
	var sqrtP uint256.Int
	if err := tickmath.GetSqrtRatioAtTick(&sqrtP, tick); err != nil {
		return nil, err
	}
	return sqrtP.ToBig(), nil
}

// TickAfterStep recomputes the tick from the price a step ended at.
func (Arithmetic) TickAfterStep(sqrtPriceX96 *big.Int, _ int32) (int32, error) {
	var sqrtP uint256.Int
	if err := setUint256(&sqrtP, sqrtPriceX96); err != nil {
		return 0, err
	}
	return tickmath.GetTickAtSqrtRatio(&sqrtP)
}

func (Arithmetic) AddDelta(liquidity, delta *big.Int) (*big.Int, error) {
	out := new(big.Int)
	if err := liquiditymath.AddDelta(out, liquidity, delta); err != nil {
		return nil, err
	}
	return out, nil
}

// CheckPriceLimit requires MIN_SQRT_RATIO < limit < MAX_SQRT_RATIO and the limit to lie strictly
// below the current price when selling token0, strictly above it otherwise.
func (Arithmetic) CheckPriceLimit(sqrtPriceLimitX96, sqrtPriceX96 *big.Int, zeroForOne bool) error {
	if sqrtPriceLimitX96 == nil {
		return fmt.Errorf("%w: no limit given", ErrPriceLimitOutOfRange)
	}
	if sqrtPriceLimitX96.Cmp(MinSqrtRatio) <= 0 || sqrtPriceLimitX96.Cmp(MaxSqrtRatio) >= 0 {
		return fmt.Errorf("%w: %s", ErrPriceLimitOutOfRange, sqrtPriceLimitX96)
	}
	if zeroForOne && sqrtPriceLimitX96.Cmp(sqrtPriceX96) >= 0 {
		return fmt.Errorf("%w: limit %s >= price %s", ErrPriceLimitNotBeyondCurrent, sqrtPriceLimitX96, sqrtPriceX96)
	}
	if !zeroForOne && sqrtPriceLimitX96.Cmp(sqrtPriceX96) <= 0 {
		return fmt.Errorf("%w: limit %s <= price %s", ErrPriceLimitNotBeyondCurrent, sqrtPriceLimitX96, sqrtPriceX96)
	}
	return nil
}

// Settled reports whether the swap is complete. Integer subtraction lands on zero exactly, so the
// exhausted signal is not needed.
func (Arithmetic) Settled(amountRemaining *big.Int, _ bool) bool {
	return amountRemaining.Sign() == 0
}

// DefaultPriceLimit returns the furthest limit a swap in the given direction accepts.
func DefaultPriceLimit(zeroForOne bool) *big.Int {
	if zeroForOne {
		return new(big.Int).Add(MinSqrtRatio, big.NewInt(1))
	}
	return new(big.Int).Sub(MaxSqrtRatio, big.NewInt(1))
}

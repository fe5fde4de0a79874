// Package pool models the read-only Uniswap V3 pool state a swap is simulated against.
package pool

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/defistate/v3swap/calculator/liquiditymath"
	"github.com/defistate/v3swap/calculator/swapmath"
	"github.com/defistate/v3swap/calculator/tickbitmap"
	"github.com/defistate/v3swap/calculator/tickmath"
	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrInvalidSnapshot is wrapped by every validation failure of New.
	ErrInvalidSnapshot = errors.New("invalid pool snapshot")

	ErrInvalidSqrtPrice   = fmt.Errorf("%w: sqrt price", ErrInvalidSnapshot)
	ErrInvalidLiquidity   = fmt.Errorf("%w: liquidity", ErrInvalidSnapshot)
	ErrInvalidTick        = fmt.Errorf("%w: tick", ErrInvalidSnapshot)
	ErrInvalidTickSpacing = fmt.Errorf("%w: tick spacing", ErrInvalidSnapshot)
	ErrInvalidFee         = fmt.Errorf("%w: fee", ErrInvalidSnapshot)
	ErrDuplicateTick      = fmt.Errorf("%w: duplicate tick", ErrInvalidSnapshot)
)

// Params holds the scalar state of a pool.
type Params struct {
	// Address only labels the pool; the engine never reads it.
	Address      common.Address
	SqrtPriceX96 *big.Int
	// Liquidity is the liquidity active at the current tick.
	Liquidity   *big.Int
	Tick        int32
	TickSpacing int32
	// Fee is in pips, parts per million.
	Fee       uint32
	Decimals0 uint8
	Decimals1 uint8
}

// TickInfo is the liquidity data of an initialized tick.
type TickInfo struct {
	Index          int32
	LiquidityGross *big.Int
	// LiquidityNet is added to the active liquidity when the price crosses the tick upward
	// and subtracted when it crosses downward.
	LiquidityNet *big.Int
}

// Snapshot is the full view of a pool a swap reads: its scalar state, the initialized ticks
// and the bitmap locating them. A Snapshot is never mutated after New returns, so it may be
// shared between goroutines.
type Snapshot struct {
	Params
	Ticks  map[int32]TickInfo
	Bitmap tickbitmap.Bitmap
}

// New validates params and ticks and builds a snapshot owning copies of them.
// The bitmap is derived from the tick list.
func New(params Params, ticks []TickInfo) (*Snapshot, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	s := &Snapshot{
		Params: params,
		Ticks:  make(map[int32]TickInfo, len(ticks)),
		Bitmap: make(tickbitmap.Bitmap),
	}
	s.SqrtPriceX96 = new(big.Int).Set(params.SqrtPriceX96)
	s.Liquidity = new(big.Int).Set(params.Liquidity)

	for _, t := range ticks {
		if err := t.validate(params.TickSpacing); err != nil {
			return nil, err
		}
		if _, ok := s.Ticks[t.Index]; ok {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateTick, t.Index)
		}
		s.Ticks[t.Index] = copyTickInfo(t)
		if err := s.Bitmap.FlipTick(t.Index, params.TickSpacing); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTick, err)
		}
	}
	return s, nil
}

func (p Params) validate() error {
	if p.SqrtPriceX96 == nil {
		return fmt.Errorf("%w: missing", ErrInvalidSqrtPrice)
	}
	if p.SqrtPriceX96.Cmp(tickmath.MIN_SQRT_RATIO.ToBig()) < 0 || p.SqrtPriceX96.Cmp(tickmath.MAX_SQRT_RATIO.ToBig()) >= 0 {
		return fmt.Errorf("%w: %s outside [MIN_SQRT_RATIO, MAX_SQRT_RATIO)", ErrInvalidSqrtPrice, p.SqrtPriceX96)
	}
	if err := checkUint128(p.Liquidity); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLiquidity, err)
	}
	if p.Tick < tickmath.MIN_TICK || p.Tick > tickmath.MAX_TICK {
		return fmt.Errorf("%w: %d out of range", ErrInvalidTick, p.Tick)
	}
	if p.TickSpacing <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTickSpacing, p.TickSpacing)
	}
	if p.Fee >= swapmath.FeeDenominator {
		return fmt.Errorf("%w: %d pips", ErrInvalidFee, p.Fee)
	}
	return nil
}

func (t TickInfo) validate(spacing int32) error {
	if t.Index < tickmath.MIN_TICK || t.Index > tickmath.MAX_TICK {
		return fmt.Errorf("%w: %d out of range", ErrInvalidTick, t.Index)
	}
	if t.Index%spacing != 0 {
		return fmt.Errorf("%w: %d is not a multiple of %d", ErrInvalidTick, t.Index, spacing)
	}
	if err := checkUint128(t.LiquidityGross); err != nil {
		return fmt.Errorf("%w: %d gross liquidity: %v", ErrInvalidTick, t.Index, err)
	}
	if t.LiquidityNet == nil {
		return fmt.Errorf("%w: %d net liquidity missing", ErrInvalidTick, t.Index)
	}
	if new(big.Int).Abs(t.LiquidityNet).Cmp(t.LiquidityGross) > 0 {
		return fmt.Errorf("%w: %d |net| %s exceeds gross %s", ErrInvalidTick, t.Index, t.LiquidityNet, t.LiquidityGross)
	}
	return nil
}

func checkUint128(x *big.Int) error {
	switch {
	case x == nil:
		return errors.New("missing")
	case x.Sign() < 0:
		return fmt.Errorf("%s is negative", x)
	case x.Cmp(liquiditymath.MaxUint128) > 0:
		return fmt.Errorf("%s exceeds 2^128-1", x)
	}
	return nil
}

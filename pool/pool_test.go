package pool

import (
	"math/big"
	"testing"

	"github.com/defistate/v3swap/calculator/tickmath"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var q96Big = new(big.Int).Lsh(big.NewInt(1), 96)

func testParams() Params {
	return Params{
		Address:      common.HexToAddress("0x88e6A0c2dDD26FEEb64F039a2c41296FcB3f5640"),
		SqrtPriceX96: new(big.Int).Set(q96Big),
		Liquidity:    big.NewInt(1_000_000_000_000_000_000),
		Tick:         0,
		TickSpacing:  60,
		Fee:          3000,
		Decimals0:    18,
		Decimals1:    6,
	}
}

func testTicks() []TickInfo {
	return []TickInfo{
		{Index: -120, LiquidityGross: big.NewInt(500), LiquidityNet: big.NewInt(500)},
		{Index: 60, LiquidityGross: big.NewInt(500), LiquidityNet: big.NewInt(-500)},
		{Index: 15360, LiquidityGross: big.NewInt(7), LiquidityNet: big.NewInt(-7)},
	}
}

func TestNew(t *testing.T) {
	s, err := New(testParams(), testTicks())
	require.NoError(t, err)

	assert.Len(t, s.Ticks, 3)
	for _, tick := range testTicks() {
		assert.True(t, s.Bitmap.IsInitialized(tick.Index, 60), "tick %d should be in the bitmap", tick.Index)
	}
	assert.False(t, s.Bitmap.IsInitialized(0, 60))
	// 15360/60 = 256 lives in the second word
	assert.Len(t, s.Bitmap, 3)
}

func TestNew_CopiesInputs(t *testing.T) {
	params := testParams()
	ticks := testTicks()
	s, err := New(params, ticks)
	require.NoError(t, err)

	params.Liquidity.SetInt64(1)
	params.SqrtPriceX96.SetInt64(1)
	ticks[1].LiquidityNet.SetInt64(0)

	assert.Equal(t, "1000000000000000000", s.Liquidity.String())
	assert.Equal(t, q96Big.String(), s.SqrtPriceX96.String())
	assert.Equal(t, int64(-500), s.Ticks[60].LiquidityNet.Int64())
}

func TestNew_Validation(t *testing.T) {
	testCases := []struct {
		name        string
		mutate      func(p *Params, ticks *[]TickInfo)
		expectedErr error
	}{
		{"missing sqrt price", func(p *Params, _ *[]TickInfo) { p.SqrtPriceX96 = nil }, ErrInvalidSqrtPrice},
		{"sqrt price below min", func(p *Params, _ *[]TickInfo) {
			p.SqrtPriceX96 = new(big.Int).Sub(tickmath.MIN_SQRT_RATIO.ToBig(), big.NewInt(1))
		}, ErrInvalidSqrtPrice},
		{"sqrt price at max", func(p *Params, _ *[]TickInfo) { p.SqrtPriceX96 = tickmath.MAX_SQRT_RATIO.ToBig() }, ErrInvalidSqrtPrice},
		{"missing liquidity", func(p *Params, _ *[]TickInfo) { p.Liquidity = nil }, ErrInvalidLiquidity},
		{"negative liquidity", func(p *Params, _ *[]TickInfo) { p.Liquidity = big.NewInt(-1) }, ErrInvalidLiquidity},
		{"liquidity above uint128", func(p *Params, _ *[]TickInfo) {
			p.Liquidity = new(big.Int).Lsh(big.NewInt(1), 128)
		}, ErrInvalidLiquidity},
		{"tick out of range", func(p *Params, _ *[]TickInfo) { p.Tick = tickmath.MAX_TICK + 1 }, ErrInvalidTick},
		{"zero tick spacing", func(p *Params, _ *[]TickInfo) { p.TickSpacing = 0 }, ErrInvalidTickSpacing},
		{"fee of 100%", func(p *Params, _ *[]TickInfo) { p.Fee = 1_000_000 }, ErrInvalidFee},
		{"tick not spaced", func(_ *Params, ticks *[]TickInfo) { (*ticks)[0].Index = -121 }, ErrInvalidTick},
		{"tick beyond max", func(p *Params, ticks *[]TickInfo) { p.TickSpacing = 1; (*ticks)[0].Index = tickmath.MAX_TICK + 1 }, ErrInvalidTick},
		{"net exceeds gross", func(_ *Params, ticks *[]TickInfo) { (*ticks)[1].LiquidityNet = big.NewInt(-501) }, ErrInvalidTick},
		{"missing net", func(_ *Params, ticks *[]TickInfo) { (*ticks)[1].LiquidityNet = nil }, ErrInvalidTick},
		{"negative gross", func(_ *Params, ticks *[]TickInfo) { (*ticks)[1].LiquidityGross = big.NewInt(-1) }, ErrInvalidTick},
		{"duplicate tick", func(_ *Params, ticks *[]TickInfo) { (*ticks)[2].Index = 60 }, ErrDuplicateTick},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			params, ticks := testParams(), testTicks()
			tc.mutate(&params, &ticks)

			s, err := New(params, ticks)
			require.Error(t, err)
			assert.Nil(t, s)
			assert.ErrorIs(t, err, tc.expectedErr)
			assert.ErrorIs(t, err, ErrInvalidSnapshot)
		})
	}
}

func TestSnapshot_SortedTicks(t *testing.T) {
	s, err := New(testParams(), testTicks())
	require.NoError(t, err)

	sorted := s.SortedTicks()
	require.Len(t, sorted, 3)
	assert.Equal(t, []int32{-120, 60, 15360}, []int32{sorted[0].Index, sorted[1].Index, sorted[2].Index})
}

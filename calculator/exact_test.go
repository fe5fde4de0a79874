package calculator

import (
	"math/big"
	"testing"

	"github.com/defistate/v3swap/calculator/exact"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwapExact(t *testing.T) {
	snap := standardSnapshot(t)

	t.Run("nil limit defaults to the price range", func(t *testing.T) {
		res, err := SwapExact(snap, Request[*big.Int]{AmountSpecified: amountToTick60(t)})
		require.NoError(t, err)
		assert.Equal(t, int32(60), res.Tick)
	})

	t.Run("the caller's limit is not aliased", func(t *testing.T) {
		limit := sqrtAtTick(t, 30)
		res, err := SwapExact(snap, Request[*big.Int]{AmountSpecified: amountToTick60(t), SqrtPriceLimitX96: limit})
		require.NoError(t, err)
		assert.Equal(t, limit.String(), res.SqrtPriceX96.String())
		limit.SetInt64(0)
		assert.NotZero(t, res.SqrtPriceX96.Sign())
	})

	testCases := []struct {
		name   string
		amount *big.Int
	}{
		{"missing amount", nil},
		{"zero amount", new(big.Int)},
		{"above int256", new(big.Int).Add(exact.MaxInt256, big.NewInt(1))},
		{"below int256", new(big.Int).Sub(minInt256, big.NewInt(1))},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := SwapExact(snap, Request[*big.Int]{AmountSpecified: tc.amount})
			assert.ErrorIs(t, err, ErrInvalidAmount)
		})
	}
}

func TestGetAmountOut(t *testing.T) {
	snap := standardSnapshot(t)

	amountOut, err := GetAmountOut(amountToTick60(t), nil, false, snap)
	require.NoError(t, err)
	assert.Equal(t, "2995354955910780", amountOut.String())

	// selling token0 mirrors the trade around tick 0 down to the limit
	amountOut, err = GetAmountOut(big.NewInt(100_000_000_000_000_000), sqrtAtTick(t, -60), true, snap)
	require.NoError(t, err)
	assert.Equal(t, "2995354955910780", amountOut.String())

	for _, amount := range []*big.Int{nil, new(big.Int), big.NewInt(-5)} {
		_, err = GetAmountOut(amount, nil, true, snap)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}
}

func TestGetAmountIn(t *testing.T) {
	snap := standardSnapshot(t)

	amountIn, err := GetAmountIn(big.NewInt(2995354955910780), nil, false, snap)
	require.NoError(t, err)
	assert.Equal(t, "3013394245478362", amountIn.String())

	// one more unit of output needs a second step beyond tick 60
	amountIn, err = GetAmountIn(big.NewInt(2995354955910781), nil, false, snap)
	require.NoError(t, err)
	assert.Equal(t, "3013394245478365", amountIn.String())

	_, err = GetAmountIn(big.NewInt(0), nil, false, snap)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestSimulateExactInSwap(t *testing.T) {
	snap := standardSnapshot(t)

	amountOut, next, err := SimulateExactInSwap(amountToTick60(t), nil, false, snap)
	require.NoError(t, err)
	assert.Equal(t, "2995354955910780", amountOut.String())
	assert.Equal(t, sqrtAtTick(t, 60).String(), next.SqrtPriceX96.String())
	assert.Equal(t, halfL.String(), next.Liquidity.String())
	assert.Equal(t, int32(60), next.Tick)
	assert.Equal(t, snap.Ticks, next.Ticks)

	// the original snapshot keeps its state
	assert.Equal(t, q96.String(), snap.SqrtPriceX96.String())
	assert.Equal(t, int32(0), snap.Tick)

	// swapping back from the new state returns close to the start
	back, _, err := SimulateExactInSwap(amountOut, nil, true, next)
	require.NoError(t, err)
	assert.True(t, back.Cmp(amountToTick60(t)) < 0, "round trip pays the fee twice")

	_, _, err = SimulateExactInSwap(nil, nil, false, snap)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestSimulateExactOutSwap(t *testing.T) {
	snap := standardSnapshot(t)

	amountIn, next, err := SimulateExactOutSwap(big.NewInt(2995354955910780), nil, false, snap)
	require.NoError(t, err)
	assert.Equal(t, "3013394245478362", amountIn.String())
	assert.Equal(t, int32(60), next.Tick)
	assert.Equal(t, halfL.String(), next.Liquidity.String())

	_, _, err = SimulateExactOutSwap(big.NewInt(-1), nil, false, snap)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	// a price limit at the current price is rejected
	_, _, err = SimulateExactOutSwap(big.NewInt(1), q96, false, snap)
	assert.ErrorIs(t, err, ErrPriceLimitNotBeyondCurrent)
}

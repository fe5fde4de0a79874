package pool

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVirtualReserves(t *testing.T) {
	t.Run("price of one", func(t *testing.T) {
		s, err := New(testParams(), nil)
		require.NoError(t, err)

		r0, r1 := s.VirtualReserves()
		assert.Equal(t, "1000000000000000000", r0.String())
		assert.Equal(t, "1000000000000000000", r1.String())
	})

	t.Run("price of four", func(t *testing.T) {
		params := testParams()
		// sqrt price 2 means token0 is worth 4 token1
		params.SqrtPriceX96 = new(big.Int).Lsh(big.NewInt(1), 97)
		s, err := New(params, nil)
		require.NoError(t, err)

		r0, r1 := s.VirtualReserves()
		assert.Equal(t, "500000000000000000", r0.String())
		assert.Equal(t, "2000000000000000000", r1.String())
		// constant product holds: r0 * r1 == L^2
		assert.Equal(t, new(big.Int).Mul(s.Liquidity, s.Liquidity), new(big.Int).Mul(r0, r1))
	})
}

func TestSpotPrice(t *testing.T) {
	testCases := []struct {
		name      string
		sqrtShift uint
		dec0      uint8
		dec1      uint8
		base0     string
		base1     string
	}{
		{"equal decimals at parity", 96, 18, 18, "1", "1"},
		{"equal decimals at four", 97, 18, 18, "4", "0.25"},
		{"token1 has fewer decimals", 96, 18, 6, "1000000000000", "0.000000000001"},
		{"token0 has fewer decimals", 97, 6, 18, "0.000000000004", "250000000000"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			params := testParams()
			params.SqrtPriceX96 = new(big.Int).Lsh(big.NewInt(1), tc.sqrtShift)
			params.Decimals0, params.Decimals1 = tc.dec0, tc.dec1
			s, err := New(params, nil)
			require.NoError(t, err)

			assert.True(t, decimal.RequireFromString(tc.base0).Equal(s.SpotPrice(true)), "base0: got %s", s.SpotPrice(true))
			assert.True(t, decimal.RequireFromString(tc.base1).Equal(s.SpotPrice(false)), "base1: got %s", s.SpotPrice(false))
		})
	}
}

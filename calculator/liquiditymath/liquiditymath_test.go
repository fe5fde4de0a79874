package liquiditymath

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddDelta(t *testing.T) {
	testCases := []struct {
		name        string
		x, y        *big.Int
		expected    *big.Int
		expectedErr error
	}{
		{"1 + 0", big.NewInt(1), big.NewInt(0), big.NewInt(1), nil},
		{"1 + -1", big.NewInt(1), big.NewInt(-1), big.NewInt(0), nil},
		{"1 + 1", big.NewInt(1), big.NewInt(1), big.NewInt(2), nil},
		{"max + 0", MaxUint128, big.NewInt(0), MaxUint128, nil},
		{"2^128-15 + 15 overflows", new(big.Int).Sub(new(big.Int).Add(MaxUint128, big.NewInt(1)), big.NewInt(15)), big.NewInt(15), nil, ErrLiquidityOverflow},
		{"0 + -1 underflows", big.NewInt(0), big.NewInt(-1), nil, ErrLiquidityUnderflow},
		{"3 + -4 underflows", big.NewInt(3), big.NewInt(-4), nil, ErrLiquidityUnderflow},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dest := big.NewInt(42)
			err := AddDelta(dest, tc.x, tc.y)
			if tc.expectedErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.expectedErr)
				assert.Equal(t, int64(42), dest.Int64(), "destination must be untouched on error")
				return
			}
			require.NoError(t, err)
			assert.Zero(t, tc.expected.Cmp(dest), "expected %s, got %s", tc.expected, dest)
		})
	}

	t.Run("aliased destination", func(t *testing.T) {
		x := big.NewInt(10)
		require.NoError(t, AddDelta(x, x, big.NewInt(-4)))
		assert.Equal(t, int64(6), x.Int64())
	})
}

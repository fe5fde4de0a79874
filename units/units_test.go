package units

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	testCases := []struct {
		name        string
		input       string
		decimals    uint8
		expected    string
		expectedErr error
	}{
		{"whole ether", "1", 18, "1000000000000000000", nil},
		{"fractional usdc", "1.5", 6, "1500000", nil},
		{"smallest unit", "0.000001", 6, "1", nil},
		{"zero decimals", "42", 0, "42", nil},
		{"negative", "-2.25", 2, "-225", nil},
		{"trailing zeros beyond precision", "1.2500000", 2, "125", nil},
		{"scientific notation", "3e2", 0, "300", nil},
		{"too precise", "0.0000001", 6, "", ErrExcessPrecision},
		{"empty", "", 18, "", ErrMalformedAmount},
		{"garbage", "1.2.3", 18, "", ErrMalformedAmount},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := ParseAmount(tc.input, tc.decimals)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				assert.Nil(t, raw)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, raw.String())
		})
	}
}

func TestFormatAmount(t *testing.T) {
	testCases := []struct {
		name     string
		raw      *big.Int
		decimals uint8
		expected string
	}{
		{"whole ether", big.NewInt(1_000_000_000_000_000_000), 18, "1"},
		{"fractional usdc", big.NewInt(1_500_000), 6, "1.5"},
		{"smallest unit", big.NewInt(1), 18, "0.000000000000000001"},
		{"negative", big.NewInt(-3_005_265), 6, "-3.005265"},
		{"zero", new(big.Int), 18, "0"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, FormatAmount(tc.raw, tc.decimals))
		})
	}
}

func TestParseFloat(t *testing.T) {
	f, err := ParseFloat("0.003023394245478362")
	require.NoError(t, err)
	assert.InEpsilon(t, 0.003023394245478362, f, 1e-15)

	_, err = ParseFloat("abc")
	assert.ErrorIs(t, err, ErrMalformedAmount)
}

// TestFormatAmount_Invariants checks that formatting and parsing back returns the raw amount.
func TestFormatAmount_Invariants(t *testing.T) {
	limit := new(big.Int).Lsh(big.NewInt(1), 128)
	for i := 0; i < 500; i++ {
		raw, _ := rand.Int(rand.Reader, limit)
		d, _ := rand.Int(rand.Reader, big.NewInt(37))
		decimals := uint8(d.Int64())

		parsed, err := ParseAmount(FormatAmount(raw, decimals), decimals)
		require.NoError(t, err)
		assert.Equal(t, raw.String(), parsed.String())
	}
}

// Package units converts between human readable token amounts and the raw integers a pool works in.
package units

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

var (
	ErrMalformedAmount = errors.New("malformed amount")
	// ErrExcessPrecision is returned when an amount has more fractional digits than the token has decimals.
	ErrExcessPrecision = errors.New("amount is more precise than the token allows")
)

// ParseAmount converts a decimal string in whole tokens, such as "1.5", into native units of a token
// with the given decimals.
func ParseAmount(s string, decimals uint8) (*big.Int, error) {
	d, err := parse(s)
	if err != nil {
		return nil, err
	}

	raw := d.Shift(int32(decimals))
	if !raw.IsInteger() {
		return nil, fmt.Errorf("%w: %s with %d decimals", ErrExcessPrecision, s, decimals)
	}
	return raw.BigInt(), nil
}

// ParseFloat converts a decimal string in whole tokens into a float64.
func ParseFloat(s string) (float64, error) {
	d, err := parse(s)
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	return f, nil
}

func parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q: %v", ErrMalformedAmount, s, err)
	}
	return d, nil
}

// FormatAmount renders native units of a token with the given decimals in whole tokens,
// without trailing zeros.
func FormatAmount(raw *big.Int, decimals uint8) string {
	return decimal.NewFromBigInt(raw, -int32(decimals)).String()
}

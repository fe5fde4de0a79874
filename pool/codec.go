package pool

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
)

// snapshotJSON is the wire form of a Snapshot. Unsigned quantities accept hex or decimal text;
// the bitmap is not serialized since New derives it from the ticks.
type snapshotJSON struct {
	Address      common.Address        `json:"address"`
	SqrtPriceX96 *math.HexOrDecimal256 `json:"sqrtPriceX96"`
	Liquidity    *math.HexOrDecimal256 `json:"liquidity"`
	Tick         int32                 `json:"tick"`
	TickSpacing  int32                 `json:"tickSpacing"`
	Fee          uint32                `json:"fee"`
	Decimals0    uint8                 `json:"decimals0"`
	Decimals1    uint8                 `json:"decimals1"`
	Ticks        []tickJSON            `json:"ticks"`
}

type tickJSON struct {
	Index          int32                 `json:"index"`
	LiquidityGross *math.HexOrDecimal256 `json:"liquidityGross"`
	LiquidityNet   *signedInt            `json:"liquidityNet"`
}

// signedInt is a big integer that encodes as decimal text, so negative values survive a round trip.
// It decodes the same forms as math.HexOrDecimal256.
type signedInt big.Int

func (i *signedInt) MarshalText() ([]byte, error) {
	return []byte((*big.Int)(i).String()), nil
}

func (i *signedInt) UnmarshalText(input []byte) error {
	v, ok := math.ParseBig256(string(input))
	if !ok {
		return fmt.Errorf("invalid hex or decimal integer %q", input)
	}
	*i = signedInt(*v)
	return nil
}

// UnmarshalJSON accepts quoted text and bare JSON numbers.
func (i *signedInt) UnmarshalJSON(input []byte) error {
	if len(input) > 1 && input[0] == '"' {
		input = input[1 : len(input)-1]
	}
	return i.UnmarshalText(input)
}

func toBig(x *math.HexOrDecimal256) *big.Int {
	if x == nil {
		return nil
	}
	return (*big.Int)(x)
}

// MarshalJSON encodes the snapshot with its ticks in ascending order.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	out := snapshotJSON{
		Address:      s.Address,
		SqrtPriceX96: (*math.HexOrDecimal256)(s.SqrtPriceX96),
		Liquidity:    (*math.HexOrDecimal256)(s.Liquidity),
		Tick:         s.Tick,
		TickSpacing:  s.TickSpacing,
		Fee:          s.Fee,
		Decimals0:    s.Decimals0,
		Decimals1:    s.Decimals1,
	}
	for _, t := range s.SortedTicks() {
		out.Ticks = append(out.Ticks, tickJSON{
			Index:          t.Index,
			LiquidityGross: (*math.HexOrDecimal256)(t.LiquidityGross),
			LiquidityNet:   (*signedInt)(t.LiquidityNet),
		})
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes and validates a snapshot, rebuilding its bitmap.
func (s *Snapshot) UnmarshalJSON(input []byte) error {
	var in snapshotJSON
	if err := json.Unmarshal(input, &in); err != nil {
		return err
	}

	ticks := make([]TickInfo, len(in.Ticks))
	for i, t := range in.Ticks {
		ticks[i] = TickInfo{
			Index:          t.Index,
			LiquidityGross: toBig(t.LiquidityGross),
			LiquidityNet:   (*big.Int)(t.LiquidityNet),
		}
	}

	decoded, err := New(Params{
		Address:      in.Address,
		SqrtPriceX96: toBig(in.SqrtPriceX96),
		Liquidity:    toBig(in.Liquidity),
		Tick:         in.Tick,
		TickSpacing:  in.TickSpacing,
		Fee:          in.Fee,
		Decimals0:    in.Decimals0,
		Decimals1:    in.Decimals1,
	}, ticks)
	if err != nil {
		return err
	}
	*s = *decoded
	return nil
}

// ReadFile loads a JSON snapshot from path.
func ReadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	s := new(Snapshot)
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return s, nil
}

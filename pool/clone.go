package pool

import (
	"math/big"
	"sort"
)

// copyTickInfo creates a deep copy of a TickInfo struct, ensuring *big.Int pointers are new.
func copyTickInfo(t TickInfo) TickInfo {
	newTick := t
	newTick.LiquidityNet = new(big.Int).Set(t.LiquidityNet)
	newTick.LiquidityGross = new(big.Int).Set(t.LiquidityGross)
	return newTick
}

// Clone returns a snapshot with its own memory for all pointer types, including the tick map
// and the bitmap.
func (s *Snapshot) Clone() *Snapshot {
	c := &Snapshot{Params: s.Params}
	c.SqrtPriceX96 = new(big.Int).Set(s.SqrtPriceX96)
	c.Liquidity = new(big.Int).Set(s.Liquidity)

	if s.Ticks != nil {
		c.Ticks = make(map[int32]TickInfo, len(s.Ticks))
		for idx, t := range s.Ticks {
			c.Ticks[idx] = copyTickInfo(t)
		}
	}
	c.Bitmap = s.Bitmap.Clone()
	return c
}

// WithState returns the snapshot a swap leaves behind: s with its price, liquidity and tick replaced.
// The tick data does not change during a swap, so it is shared with s.
func (s *Snapshot) WithState(sqrtPriceX96, liquidity *big.Int, tick int32) *Snapshot {
	next := *s
	next.SqrtPriceX96 = new(big.Int).Set(sqrtPriceX96)
	next.Liquidity = new(big.Int).Set(liquidity)
	next.Tick = tick
	return &next
}

// SortedTicks returns copies of the initialized ticks in ascending index order.
func (s *Snapshot) SortedTicks() []TickInfo {
	ticks := make([]TickInfo, 0, len(s.Ticks))
	for _, t := range s.Ticks {
		ticks = append(ticks, copyTickInfo(t))
	}
	sort.Slice(ticks, func(i, j int) bool { return ticks[i].Index < ticks[j].Index })
	return ticks
}

package tickbitmap

import (
	"errors"
	"fmt"

	"github.com/defistate/v3swap/calculator/bitmath"
	"github.com/holiman/uint256"
)

var (
	ErrInvalidTickSpacing = errors.New("tick spacing must be positive")
	ErrTickNotSpaced      = errors.New("tick is not a multiple of the tick spacing")
)

// Bitmap is a sparse bitset of initialized ticks. Ticks are compressed by the pool's tick spacing
// and bucketed into 256-bit words: the word at index w holds compressed ticks [w*256, w*256+255],
// one bit per tick, least significant bit first. Missing words are all zero.
type Bitmap map[int16]uint256.Int

// Position computes the word index and the bit within that word for a compressed tick.
func Position(compressed int32) (wordPos int16, bitPos uint8) {
	return int16(compressed >> 8), uint8(compressed & 0xff)
}

// compress divides tick by spacing, rounding toward negative infinity.
func compress(tick, spacing int32) int32 {
	compressed := tick / spacing
	if tick < 0 && tick%spacing != 0 {
		compressed--
	}
	return compressed
}

// FlipTick toggles the initialized state of tick, which must be a multiple of spacing.
func (b Bitmap) FlipTick(tick, spacing int32) error {
	if spacing <= 0 {
		return ErrInvalidTickSpacing
	}
	if tick%spacing != 0 {
		return fmt.Errorf("%w: tick %d, spacing %d", ErrTickNotSpaced, tick, spacing)
	}

	wordPos, bitPos := Position(tick / spacing)
	var mask uint256.Int
	mask.Lsh(uint256.NewInt(1), uint(bitPos))

	word := b[wordPos]
	word.Xor(&word, &mask)
	if word.IsZero() {
		delete(b, wordPos)
	} else {
		b[wordPos] = word
	}
	return nil
}

// IsInitialized reports whether tick is set in the bitmap.
func (b Bitmap) IsInitialized(tick, spacing int32) bool {
	if spacing <= 0 || tick%spacing != 0 {
		return false
	}
	wordPos, bitPos := Position(tick / spacing)
	word := b[wordPos]
	return word[bitPos/64]&(1<<(bitPos%64)) != 0
}

// Clone returns a copy of the bitmap that shares no memory with b.
func (b Bitmap) Clone() Bitmap {
	if b == nil {
		return nil
	}
	out := make(Bitmap, len(b))
	for wordPos, word := range b {
		out[wordPos] = word
	}
	return out
}

// NextInitializedTickWithinOneWord returns the next initialized tick contained in the same word
// (or the adjacent word when searching upward) as tick. The search never leaves that word.
//
// When lte is true it returns the largest initialized tick <= tick; otherwise the smallest
// initialized tick > tick. If the rest of the word is empty it returns the word's edge tick with
// initialized == false, which may lie outside [MIN_TICK, MAX_TICK] and must be clamped by the caller.
func NextInitializedTickWithinOneWord(b Bitmap, tick, spacing int32, lte bool) (next int32, initialized bool, err error) {
	if spacing <= 0 {
		return 0, false, ErrInvalidTickSpacing
	}

	compressed := compress(tick, spacing)

	var bit, mask, masked uint256.Int
	if lte {
		wordPos, bitPos := Position(compressed)
		// all the 1s at or to the right of bitPos
		bit.Lsh(uint256.NewInt(1), uint(bitPos))
		mask.SubUint64(&bit, 1)
		mask.Add(&mask, &bit)

		word := b[wordPos]
		masked.And(&word, &mask)
		if masked.IsZero() {
			return (compressed - int32(bitPos)) * spacing, false, nil
		}

		msb, err := bitmath.MostSignificantBit(&masked)
		if err != nil {
			return 0, false, err
		}
		return (compressed - int32(bitPos) + int32(msb)) * spacing, true, nil
	}

	// start from the word of the next tick, since the current tick state doesn't matter
	wordPos, bitPos := Position(compressed + 1)
	// all the 1s at or to the left of bitPos
	bit.Lsh(uint256.NewInt(1), uint(bitPos))
	mask.SubUint64(&bit, 1)
	mask.Not(&mask)

	word := b[wordPos]
	masked.And(&word, &mask)
	if masked.IsZero() {
		return (compressed + 1 + int32(255-bitPos)) * spacing, false, nil
	}

	lsb, err := bitmath.LeastSignificantBit(&masked)
	if err != nil {
		return 0, false, err
	}
	return (compressed + 1 + int32(lsb) - int32(bitPos)) * spacing, true, nil
}

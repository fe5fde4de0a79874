package tickmath

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

const (
	// MIN_TICK is the minimum tick that may be passed to GetSqrtRatioAtTick.
	MIN_TICK int32 = -887272
	// MAX_TICK is the maximum tick that may be passed to GetSqrtRatioAtTick.
	MAX_TICK int32 = 887272
)

var (
	// MIN_SQRT_RATIO is the value returned by GetSqrtRatioAtTick(MIN_TICK).
	MIN_SQRT_RATIO = uint256.MustFromDecimal("4295128739")
	// MAX_SQRT_RATIO is the value returned by GetSqrtRatioAtTick(MAX_TICK).
	MAX_SQRT_RATIO = uint256.MustFromDecimal("1461446703485210103287273052203988822378723970342")

	ErrTickOutOfRange      = errors.New("tick out of range")
	ErrSqrtPriceOutOfRange = errors.New("sqrt price out of range")

	maxUint256 = new(uint256.Int).Not(new(uint256.Int))

	// Constants for getSqrtRatioAtTick, pre-parsed from hex.
	// These represent 1/sqrt(1.0001^2^i) in Q128.128 for i in 0..19, and a mask.
	ratioConstants = [22]*uint256.Int{
		uint256.MustFromHex("0xfffcb933bd6fad37aa2d162d1a594001"),  // sqrt(1.0001^1)
		uint256.MustFromHex("0x100000000000000000000000000000000"), // 1 in UQ128.128
		uint256.MustFromHex("0xfff97272373d413259a46990580e213a"),  // sqrt(1.0001^2)
		uint256.MustFromHex("0xfff2e50f5f656932ef12357cf3c7fdcc"),  // sqrt(1.0001^4)
		uint256.MustFromHex("0xffe5caca7e10e4e61c3624eaa0941cd0"),  // sqrt(1.0001^8)
		uint256.MustFromHex("0xffcb9843d60f6159c9db58835c926644"),  // sqrt(1.0001^16)
		uint256.MustFromHex("0xff973b41fa98c081472e6896dfb254c0"),  // sqrt(1.0001^32)
		uint256.MustFromHex("0xff2ea16466c96a3843ec78b326b52861"),  // sqrt(1.0001^64)
		uint256.MustFromHex("0xfe5dee046a99a2a811c461f1969c3053"),  // sqrt(1.0001^128)
		uint256.MustFromHex("0xfcbe86c7900a88aedcffc83b479aa3a4"),  // sqrt(1.0001^256)
		uint256.MustFromHex("0xf987a7253ac413176f2b074cf7815e54"),  // sqrt(1.0001^512)
		uint256.MustFromHex("0xf3392b0822b70005940c7a398e4b70f3"),  // sqrt(1.0001^1024)
		uint256.MustFromHex("0xe7159475a2c29b7443b29c7fa6e889d9"),  // sqrt(1.0001^2048)
		uint256.MustFromHex("0xd097f3bdfd2022b8845ad8f792aa5825"),  // sqrt(1.0001^4096)
		uint256.MustFromHex("0xa9f746462d870fdf8a65dc1f90e061e5"),  // sqrt(1.0001^8192)
		uint256.MustFromHex("0x70d869a156d2a1b890bb3df62baf32f7"),  // sqrt(1.0001^16384)
		uint256.MustFromHex("0x31be135f97d08fd981231505542fcfa6"),  // sqrt(1.0001^32768)
		uint256.MustFromHex("0x9aa508b5b7a84e1c677de54f3e99bc9"),   // sqrt(1.0001^65536)
		uint256.MustFromHex("0x5d6af8dedb81196699c329225ee604"),    // sqrt(1.0001^131072)
		uint256.MustFromHex("0x2216e584f5fa1ea926041bedfe98"),      // sqrt(1.0001^262144)
		uint256.MustFromHex("0x48a170391f7dc42444e8fa2"),           // sqrt(1.0001^524288)
		uint256.MustFromHex("0xffffffff"),                          // mask for rounding
	}
)

// GetSqrtRatioAtTick calculates sqrt(1.0001^tick) * 2^96 and stores it in dest.
func GetSqrtRatioAtTick(dest *uint256.Int, tick int32) error {
	if tick < MIN_TICK || tick > MAX_TICK {
		return fmt.Errorf("%w: %d", ErrTickOutOfRange, tick)
	}

	absTick := int64(tick)
	if absTick < 0 {
		absTick = -absTick
	}

	var ratio uint256.Int
	if (absTick & 0x1) != 0 {
		ratio.Set(ratioConstants[0])
	} else {
		ratio.Set(ratioConstants[1])
	}

	for i := 2; i < 21; i++ {
		if (absTick & (1 << (i - 1))) != 0 {
			ratio.Mul(&ratio, ratioConstants[i]).Rsh(&ratio, 128)
		}
	}

	// The table holds reciprocals, so positive ticks invert the product.
	if tick > 0 {
		ratio.Div(maxUint256, &ratio)
	}

	// Q128.128 -> Q64.96, rounding up so that GetTickAtSqrtRatio stays consistent.
	var rem uint256.Int
	rem.And(&ratio, ratioConstants[21])
	ratio.Rsh(&ratio, 32)
	if !rem.IsZero() {
		ratio.AddUint64(&ratio, 1)
	}

	dest.Set(&ratio)
	return nil
}

// GetTickAtSqrtRatio calculates the greatest tick value such that GetSqrtRatioAtTick(tick) <= sqrtPriceX96.
// sqrtPriceX96 must lie in [MIN_SQRT_RATIO, MAX_SQRT_RATIO).
func GetTickAtSqrtRatio(sqrtPriceX96 *uint256.Int) (int32, error) {
	if sqrtPriceX96.Lt(MIN_SQRT_RATIO) || !sqrtPriceX96.Lt(MAX_SQRT_RATIO) {
		return 0, fmt.Errorf("%w: %s", ErrSqrtPriceOutOfRange, sqrtPriceX96.Dec())
	}

	low, high := MIN_TICK, MAX_TICK
	var tick int32
	var sqrtRatio uint256.Int

	for low <= high {
		mid := low + (high-low)/2
		if err := GetSqrtRatioAtTick(&sqrtRatio, mid); err != nil {
			return 0, err
		}

		if !sqrtRatio.Gt(sqrtPriceX96) {
			tick = mid
			low = mid + 1
		} else {
			high = mid - 1
		}
	}

	return tick, nil
}

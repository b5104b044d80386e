package tickmath

import (
	"errors"
	"math"
	"math/big"
	"sort"
	"sync"

	"github.com/holiman/uint256"
)

var (
	// MIN_TICK is the lowest tick a tier can price at.
	MIN_TICK = int64(-887272)
	// MAX_TICK is the highest tick a tier can price at.
	MAX_TICK = int64(887272)

	// MIN_SQRT_RATIO is GetSqrtRatioAtTick(MIN_TICK).
	MIN_SQRT_RATIO, _ = new(big.Int).SetString("4295128739", 10)
	// MAX_SQRT_RATIO is GetSqrtRatioAtTick(MAX_TICK).
	MAX_SQRT_RATIO, _ = new(big.Int).SetString("1461446703485210103287273052203988822378723970342", 10)

	ErrTickOutOfBounds      = errors.New("tick out of bounds")
	ErrSqrtPriceOutOfBounds = errors.New("sqrt price out of bounds")
)

// powers[i] is 1/sqrt(1.0001^(2^i)) as a UQ128.128 number.
var powers = mustParse(
	"fffcb933bd6fad37aa2d162d1a594001",
	"fff97272373d413259a46990580e213a",
	"fff2e50f5f656932ef12357cf3c7fdcc",
	"ffe5caca7e10e4e61c3624eaa0941cd0",
	"ffcb9843d60f6159c9db58835c926644",
	"ff973b41fa98c081472e6896dfb254c0",
	"ff2ea16466c96a3843ec78b326b52861",
	"fe5dee046a99a2a811c461f1969c3053",
	"fcbe86c7900a88aedcffc83b479aa3a4",
	"f987a7253ac413176f2b074cf7815e54",
	"f3392b0822b70005940c7a398e4b70f3",
	"e7159475a2c29b7443b29c7fa6e889d9",
	"d097f3bdfd2022b8845ad8f792aa5825",
	"a9f746462d870fdf8a65dc1f90e061e5",
	"70d869a156d2a1b890bb3df62baf32f7",
	"31be135f97d08fd981231505542fcfa6",
	"9aa508b5b7a84e1c677de54f3e99bc9",
	"5d6af8dedb81196699c329225ee604",
	"2216e584f5fa1ea926041bedfe98",
	"48a170391f7dc42444e8fa2",
)

var (
	q128       = new(uint256.Int).Lsh(uint256.NewInt(1), 128)
	maxUint256 = new(uint256.Int).SetAllOne()
	lowMask    = uint256.NewInt(0xffffffff)
)

func mustParse(hex ...string) []*uint256.Int {
	out := make([]*uint256.Int, len(hex))
	for i, h := range hex {
		out[i] = uint256.MustFromHex("0x" + h)
	}
	return out
}

type scratch struct {
	ratio *uint256.Int
	rem   *uint256.Int
	probe *big.Int
}

var pool = sync.Pool{
	New: func() any {
		return &scratch{
			ratio: new(uint256.Int),
			rem:   new(uint256.Int),
			probe: new(big.Int),
		}
	},
}

// GetSqrtRatioAtTick writes sqrt(1.0001^tick) as a Q64.96 number into dest.
func GetSqrtRatioAtTick(dest *big.Int, tick int64) error {
	if tick < MIN_TICK || tick > MAX_TICK {
		return ErrTickOutOfBounds
	}

	s := pool.Get().(*scratch)
	defer pool.Put(s)

	abs := uint64(tick)
	if tick < 0 {
		abs = uint64(-tick)
	}

	// Multiply together the factor of every set bit of |tick|. This yields the
	// ratio for -|tick|; positive ticks take the reciprocal.
	s.ratio.Set(q128)
	for i, p := range powers {
		if abs&(1<<i) != 0 {
			s.ratio.Mul(s.ratio, p).Rsh(s.ratio, 128)
		}
	}
	if tick > 0 {
		s.ratio.Div(maxUint256, s.ratio)
	}

	// Q128.128 -> Q64.96, rounding up.
	s.rem.And(s.ratio, lowMask)
	s.ratio.Rsh(s.ratio, 32)
	if !s.rem.IsZero() {
		s.ratio.AddUint64(s.ratio, 1)
	}

	s.ratio.IntoBig(&dest)
	return nil
}

// GetTickAtSqrtRatio returns the greatest tick whose sqrt ratio is <= sqrtPriceX96.
func GetTickAtSqrtRatio(sqrtPriceX96 *big.Int) (int64, error) {
	if sqrtPriceX96.Cmp(MIN_SQRT_RATIO) < 0 || sqrtPriceX96.Cmp(MAX_SQRT_RATIO) >= 0 {
		return 0, ErrSqrtPriceOutOfBounds
	}

	s := pool.Get().(*scratch)
	defer pool.Put(s)

	// first offset whose ratio exceeds the target; the tick before it is the answer.
	span := int(MAX_TICK - MIN_TICK + 1)
	above := sort.Search(span, func(i int) bool {
		// in range by construction
		_ = GetSqrtRatioAtTick(s.probe, MIN_TICK+int64(i))
		return s.probe.Cmp(sqrtPriceX96) > 0
	})
	return MIN_TICK + int64(above) - 1, nil
}

// TickToPrice returns the price of token0 in units of token1 at a tick, adjusted for
// token decimals: 1.0001^tick * 10^(decimals0-decimals1).
func TickToPrice(tick int64, decimals0, decimals1 uint8) float64 {
	return math.Pow(1.0001, float64(tick)) * math.Pow10(int(decimals0)-int(decimals1))
}

// TickToPrices returns the price of token0 in token1 and its reciprocal.
// The reciprocal is zero when the forward price underflows to zero.
func TickToPrices(tick int64, decimals0, decimals1 uint8) (price0, price1 float64) {
	price0 = TickToPrice(tick, decimals0, decimals1)
	if price0 == 0 {
		return 0, 0
	}
	return price0, 1 / price0
}

package sqrtpricemath

import (
	"errors"
	"math/big"
	"sync"
)

// Q96 is 1 in Q64.96 fixed point.
var Q96 = new(big.Int).Lsh(big.NewInt(1), 96)

var ErrSqrtPriceZero = errors.New("sqrt price must be greater than zero")

type work struct {
	num  *big.Int
	diff *big.Int
	tmp  *big.Int
	rem  *big.Int
}

var pool = sync.Pool{
	New: func() any {
		return &work{num: new(big.Int), diff: new(big.Int), tmp: new(big.Int), rem: new(big.Int)}
	},
}

// div writes num/den into dest, rounding up when roundUp is set and the division is inexact.
func (w *work) div(dest, num, den *big.Int, roundUp bool) {
	if !roundUp {
		dest.Quo(num, den)
		return
	}
	dest.QuoRem(num, den, w.rem)
	if w.rem.Sign() > 0 {
		dest.Add(dest, big.NewInt(1))
	}
}

func ordered(a, b *big.Int) (lo, hi *big.Int) {
	if a.Cmp(b) > 0 {
		return b, a
	}
	return a, b
}

// GetAmount0Delta writes the token0 amount that liquidity holds between two sqrt prices:
// L * 2^96 * (hi - lo) / hi / lo.
func GetAmount0Delta(dest, sqrtRatioAX96, sqrtRatioBX96, liquidity *big.Int, roundUp bool) error {
	lo, hi := ordered(sqrtRatioAX96, sqrtRatioBX96)
	if lo.Sign() <= 0 {
		return ErrSqrtPriceZero
	}

	w := pool.Get().(*work)
	defer pool.Put(w)

	w.diff.Sub(hi, lo)
	w.num.Lsh(liquidity, 96)
	w.num.Mul(w.num, w.diff)
	w.div(w.tmp, w.num, hi, roundUp)
	w.div(dest, w.tmp, lo, roundUp)
	return nil
}

// GetAmount1Delta writes the token1 amount that liquidity holds between two sqrt prices:
// L * (hi - lo) / 2^96.
func GetAmount1Delta(dest, sqrtRatioAX96, sqrtRatioBX96, liquidity *big.Int, roundUp bool) {
	lo, hi := ordered(sqrtRatioAX96, sqrtRatioBX96)

	w := pool.Get().(*work)
	defer pool.Put(w)

	w.num.Sub(hi, lo)
	w.num.Mul(w.num, liquidity)
	w.div(dest, w.num, Q96, roundUp)
}

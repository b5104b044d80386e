package liquiditymath

import (
	"errors"
	"math/big"
)

var (
	ErrLiquidityOverflow  = errors.New("liquidity overflow")
	ErrLiquidityUnderflow = errors.New("liquidity underflow")
)

// MaxLiquidity is the largest liquidity a tier can hold, 2^128 - 1.
var MaxLiquidity = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// Check reports whether x is a valid uint128 liquidity value.
func Check(x *big.Int) error {
	switch {
	case x.Sign() < 0:
		return ErrLiquidityUnderflow
	case x.Cmp(MaxLiquidity) > 0:
		return ErrLiquidityOverflow
	}
	return nil
}

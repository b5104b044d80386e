package uniswapv3

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var ErrInvalidTierKey = errors.New("invalid tier key")

// TierKey identifies one fee tier of a pool. A pool is keyed by its hash and owns
// several tiers, each with its own price, liquidity and tick set.
type TierKey struct {
	PoolID common.Hash
	TierID uint8
}

// String renders the key as "<poolId>#<tierId>", the form used by the indexing service.
func (k TierKey) String() string {
	return k.PoolID.Hex() + "#" + strconv.FormatUint(uint64(k.TierID), 10)
}

// ParseTierKey is the inverse of TierKey.String.
func ParseTierKey(s string) (TierKey, error) {
	poolHex, tierStr, found := strings.Cut(s, "#")
	if !found {
		return TierKey{}, fmt.Errorf("%w: missing '#' in %q", ErrInvalidTierKey, s)
	}
	poolID, err := hexutil.Decode(poolHex)
	if err != nil || len(poolID) != common.HashLength {
		return TierKey{}, fmt.Errorf("%w: bad pool id %q", ErrInvalidTierKey, poolHex)
	}
	tierID, err := strconv.ParseUint(tierStr, 10, 8)
	if err != nil {
		return TierKey{}, fmt.Errorf("%w: bad tier id %q: %v", ErrInvalidTierKey, tierStr, err)
	}
	return TierKey{PoolID: common.BytesToHash(poolID), TierID: uint8(tierID)}, nil
}

// MarshalText lets TierKey be used as a JSON value and map key.
func (k TierKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses the "<poolId>#<tierId>" form.
func (k *TierKey) UnmarshalText(text []byte) error {
	parsed, err := ParseTierKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Token is the minimal token view needed for pricing.
type Token struct {
	Address  common.Address `json:"address"`
	Symbol   string         `json:"symbol"`
	Decimals uint8          `json:"decimals"`
}

// TickInfo is one initialized tick. Only ticks with a nonzero net liquidity are
// reported by the indexer; every other tick is implicitly zero.
type TickInfo struct {
	Index        int64    `json:"index"`
	LiquidityNet *big.Int `json:"liquidityNet"`
}

// DayData is one daily aggregate for a tier. Date is a unix timestamp in seconds.
type DayData struct {
	Date      int64   `json:"date"`
	VolumeUSD float64 `json:"volumeUSD"`
	FeesUSD   float64 `json:"feesUSD"`
	TVLUSD    float64 `json:"tvlUSD"`
}

// Tier is the indexed view of a single fee tier.
type Tier struct {
	Key          TierKey    `json:"key"`
	FeeTier      uint64     `json:"feeTier"`
	TickSpacing  int64      `json:"tickSpacing"`
	Tick         int64      `json:"tick"`
	Liquidity    *big.Int   `json:"liquidity"`
	SqrtPriceX96 *big.Int   `json:"sqrtPriceX96"`
	Token0       Token      `json:"token0"`
	Token1       Token      `json:"token1"`
	Ticks        []TickInfo `json:"ticks,omitempty"`
	Days         []DayData  `json:"days,omitempty"`
}

package indexer

import (
	"github.com/defistate/defistate-analytics-go/protocols/uniswapv3"
	"github.com/ethereum/go-ethereum/common"
)

// IndexedTiers provides a read-only view over a snapshot of indexed tiers.
// Tiers of the same pool trade the same pair and are charted together.
type IndexedTiers interface {
	GetByKey(key uniswapv3.TierKey) (uniswapv3.Tier, bool)
	TicksSurrounding(key uniswapv3.TierKey, n int) ([]uniswapv3.TickInfo, bool)
	ByPool(poolID common.Hash) []uniswapv3.Tier
	Pools() []common.Hash
	All() []uniswapv3.Tier
}

package indexer

import (
	"sort"

	"github.com/defistate/defistate-analytics-go/protocols/uniswapv3"
	"github.com/defistate/defistate-analytics-go/protocols/uniswapv3/calculator/tickwindow"
	"github.com/ethereum/go-ethereum/common"
)

// Indexer builds IndexedTiers snapshots.
type Indexer struct{}

// New creates a new Indexer.
func New() *Indexer {
	return &Indexer{}
}

// Index creates an indexed view from a raw slice of tiers.
func (i *Indexer) Index(tiers []uniswapv3.Tier) IndexedTiers {
	return NewIndexableTiers(tiers)
}

// IndexableTiers provides fast lookups by tier key and by pool.
type IndexableTiers struct {
	byKey  map[uniswapv3.TierKey]uniswapv3.Tier
	byPool map[common.Hash][]uniswapv3.Tier
	pools  []common.Hash
	all    []uniswapv3.Tier
}

// NewIndexableTiers indexes tiers. When two tiers share a key the later one wins.
// Each tier's ticks are copied and sorted by index.
func NewIndexableTiers(tiers []uniswapv3.Tier) *IndexableTiers {
	byKey := make(map[uniswapv3.TierKey]uniswapv3.Tier, len(tiers))
	for _, t := range tiers {
		t.Ticks = tickwindow.Sorted(t.Ticks)
		byKey[t.Key] = t
	}

	all := make([]uniswapv3.Tier, 0, len(byKey))
	byPool := make(map[common.Hash][]uniswapv3.Tier)
	var pools []common.Hash
	for _, t := range byKey {
		all = append(all, t)
		if _, seen := byPool[t.Key.PoolID]; !seen {
			pools = append(pools, t.Key.PoolID)
		}
		byPool[t.Key.PoolID] = append(byPool[t.Key.PoolID], t)
	}

	// map iteration order is random; keep every view deterministic.
	sort.Slice(all, func(i, j int) bool { return lessKey(all[i].Key, all[j].Key) })
	sort.Slice(pools, func(i, j int) bool { return pools[i].Cmp(pools[j]) < 0 })
	for _, pool := range byPool {
		sort.Slice(pool, func(i, j int) bool { return pool[i].Key.TierID < pool[j].Key.TierID })
	}

	return &IndexableTiers{
		byKey:  byKey,
		byPool: byPool,
		pools:  pools,
		all:    all,
	}
}

// GetByKey retrieves a tier by key.
func (it *IndexableTiers) GetByKey(key uniswapv3.TierKey) (uniswapv3.Tier, bool) {
	t, ok := it.byKey[key]
	return t, ok
}

// TicksSurrounding returns the tier's initialized ticks within n tick spacings of its
// current tick.
func (it *IndexableTiers) TicksSurrounding(key uniswapv3.TierKey, n int) ([]uniswapv3.TickInfo, bool) {
	t, ok := it.byKey[key]
	if !ok {
		return nil, false
	}
	window := tickwindow.Surrounding(t.Ticks, t.Tick, t.TickSpacing, n)
	out := make([]uniswapv3.TickInfo, len(window))
	copy(out, window)
	return out, true
}

// ByPool returns a defensive copy of the pool's tiers ordered by tier id.
func (it *IndexableTiers) ByPool(poolID common.Hash) []uniswapv3.Tier {
	tiers := it.byPool[poolID]
	out := make([]uniswapv3.Tier, len(tiers))
	copy(out, tiers)
	return out
}

// Pools returns the ids of every indexed pool in ascending order.
func (it *IndexableTiers) Pools() []common.Hash {
	out := make([]common.Hash, len(it.pools))
	copy(out, it.pools)
	return out
}

// All returns a defensive copy of all tiers ordered by key.
func (it *IndexableTiers) All() []uniswapv3.Tier {
	allCopy := make([]uniswapv3.Tier, len(it.all))
	copy(allCopy, it.all)
	return allCopy
}

func lessKey(a, b uniswapv3.TierKey) bool {
	if a.PoolID != b.PoolID {
		return a.PoolID.Cmp(b.PoolID) < 0
	}
	return a.TierID < b.TierID
}

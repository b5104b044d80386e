// Package tickwindow selects the initialized ticks a density window needs.
package tickwindow

import (
	"sort"

	"github.com/defistate/defistate-analytics-go/density"
	"github.com/defistate/defistate-analytics-go/protocols/uniswapv3"
)

// Sorted returns a copy of ticks ordered by index.
func Sorted(ticks []uniswapv3.TickInfo) []uniswapv3.TickInfo {
	out := make([]uniswapv3.TickInfo, len(ticks))
	copy(out, ticks)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// Range returns the initialized ticks with lower <= Index <= upper.
// ticks must be sorted by index; the result shares its backing array.
func Range(ticks []uniswapv3.TickInfo, lower, upper int64) []uniswapv3.TickInfo {
	if lower > upper {
		return nil
	}

	// smallest index `i` where `ticks[i].Index >= lower`
	from := sort.Search(len(ticks), func(i int) bool {
		return ticks[i].Index >= lower
	})
	// smallest index `i` where `ticks[i].Index > upper`
	to := sort.Search(len(ticks), func(i int) bool {
		return ticks[i].Index > upper
	})
	return ticks[from:to]
}

// Surrounding returns the initialized ticks within n spacings of tick on either side,
// the set the indexing service serves for a density chart. ticks must be sorted.
func Surrounding(ticks []uniswapv3.TickInfo, tick, spacing int64, n int) []uniswapv3.TickInfo {
	if spacing <= 0 || n < 0 {
		return nil
	}

	active, ok := density.Snap(tick, spacing)
	if !ok {
		return nil
	}
	reach := int64(n) * spacing
	return Range(ticks, active-reach, active+reach)
}

package tickwindow

import (
	"math"
	"testing"

	"github.com/defistate/defistate-analytics-go/protocols/uniswapv3"
	"github.com/stretchr/testify/assert"
)

// makeTickInfoSlice is a helper function to convert a slice of tick indices
// into a slice of TickInfo structs for testing purposes.
func makeTickInfoSlice(indices []int64) []uniswapv3.TickInfo {
	tickInfos := make([]uniswapv3.TickInfo, len(indices))
	for i, idx := range indices {
		tickInfos[i] = uniswapv3.TickInfo{Index: idx}
	}
	return tickInfos
}

func indicesOf(ticks []uniswapv3.TickInfo) []int64 {
	out := make([]int64, len(ticks))
	for i, t := range ticks {
		out[i] = t.Index
	}
	return out
}

func TestSorted(t *testing.T) {
	in := makeTickInfoSlice([]int64{50, -100, 0})
	sorted := Sorted(in)

	assert.Equal(t, []int64{-100, 0, 50}, indicesOf(sorted))
	assert.Equal(t, []int64{50, -100, 0}, indicesOf(in), "input must not be reordered")
}

func TestRange(t *testing.T) {
	initializedTickIndices := []int64{-200, -100, -50, 0, 50, 100, 200}

	testCases := []struct {
		name         string
		ticks        []int64
		lower, upper int64
		expected     []int64
	}{
		{"Inclusive Bounds", initializedTickIndices, -50, 50, []int64{-50, 0, 50}},
		{"Between Ticks", initializedTickIndices, -60, 60, []int64{-50, 0, 50}},
		{"Everything", initializedTickIndices, -1000, 1000, initializedTickIndices},
		{"Below All", initializedTickIndices, -1000, -300, []int64{}},
		{"Above All", initializedTickIndices, 300, 1000, []int64{}},
		{"Single Point", initializedTickIndices, 100, 100, []int64{100}},
		{"Empty Gap", initializedTickIndices, 1, 49, []int64{}},
		{"Inverted", initializedTickIndices, 50, -50, []int64{}},
		{"Edge: Empty Slice", []int64{}, -10, 10, []int64{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Range(makeTickInfoSlice(tc.ticks), tc.lower, tc.upper)
			assert.Equal(t, tc.expected, indicesOf(got))
		})
	}
}

func TestSurrounding(t *testing.T) {
	ticks := makeTickInfoSlice([]int64{-120, -60, 0, 60, 120, 180})

	testCases := []struct {
		name     string
		tick     int64
		spacing  int64
		n        int
		expected []int64
	}{
		{"Aligned Tick", 0, 60, 1, []int64{-60, 0, 60}},
		{"Snaps Down", 59, 60, 1, []int64{-60, 0, 60}},
		{"Negative Snaps Down", -1, 60, 1, []int64{-120, -60, 0}},
		{"Zero Reach", 61, 60, 0, []int64{60}},
		{"Wide", 0, 60, 10, []int64{-120, -60, 0, 60, 120, 180}},
		{"Bad Spacing", 0, 0, 1, []int64{}},
		{"Negative Reach", 0, 60, -1, []int64{}},
		{"No Grid Position Below Tick", math.MinInt64 + 1, 10, 1, []int64{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, indicesOf(Surrounding(ticks, tc.tick, tc.spacing, tc.n)))
		})
	}
}

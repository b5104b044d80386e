package series

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// row builds an expected Merged without metadata.
func row(position int64, values ...*float64) Merged {
	return Merged{Position: position, Values: values}
}

func data(pairs ...float64) []Datum {
	out := make([]Datum, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, Datum{Position: int64(pairs[i]), Value: pairs[i+1]})
	}
	return out
}

func assertRows(t *testing.T, expected, actual []Merged) {
	t.Helper()
	require.Len(t, actual, len(expected))
	for i := range expected {
		assert.Equal(t, expected[i].Position, actual[i].Position, "row %d", i)
		require.Len(t, actual[i].Values, len(expected[i].Values), "row %d", i)
		for j, v := range expected[i].Values {
			if v == nil {
				assert.Nil(t, actual[i].Values[j], "row %d series %d", i, j)
				continue
			}
			require.NotNil(t, actual[i].Values[j], "row %d series %d", i, j)
			assert.Equal(t, *v, *actual[i].Values[j], "row %d series %d", i, j)
		}
	}
}

func TestMerge(t *testing.T) {
	s1 := data(1, 10, 3, 30, 5, 50)
	s2 := data(2, 20, 3, 33, 4, 40)

	testCases := []struct {
		name      string
		list      [][]Datum
		ascending bool
		fill      *float64
		expected  []Merged
	}{
		{
			name:      "union with carry forward and absent start",
			list:      [][]Datum{s1, s2},
			ascending: true,
			expected: []Merged{
				row(1, Float(10), nil),
				row(2, Float(10), Float(20)),
				row(3, Float(30), Float(33)),
				row(4, Float(30), Float(40)),
				row(5, Float(50), Float(40)),
			},
		},
		{
			name:      "fill before first datum",
			list:      [][]Datum{s1, s2},
			ascending: true,
			fill:      Float(0),
			expected: []Merged{
				row(1, Float(10), Float(0)),
				row(2, Float(10), Float(20)),
				row(3, Float(30), Float(33)),
				row(4, Float(30), Float(40)),
				row(5, Float(50), Float(40)),
			},
		},
		{
			name:      "descending",
			list:      [][]Datum{s1, s2},
			ascending: false,
			fill:      Float(-1),
			expected: []Merged{
				row(5, Float(50), Float(-1)),
				row(4, Float(50), Float(40)),
				row(3, Float(30), Float(33)),
				row(2, Float(30), Float(20)),
				row(1, Float(10), Float(20)),
			},
		},
		{
			name:      "unsorted input is sorted",
			list:      [][]Datum{data(5, 50, 1, 10, 3, 30), data(4, 40, 2, 20)},
			ascending: true,
			expected: []Merged{
				row(1, Float(10), nil),
				row(2, Float(10), Float(20)),
				row(3, Float(30), Float(20)),
				row(4, Float(30), Float(40)),
				row(5, Float(50), Float(40)),
			},
		},
		{
			name:      "duplicate position keeps the last datum",
			list:      [][]Datum{data(1, 10, 2, 20, 2, 22), data(2, 5)},
			ascending: true,
			expected: []Merged{
				row(1, Float(10), nil),
				row(2, Float(22), Float(5)),
			},
		},
		{
			name:      "empty series stays absent",
			list:      [][]Datum{data(1, 10, 2, 20), {}},
			ascending: true,
			expected: []Merged{
				row(1, Float(10), nil),
				row(2, Float(20), nil),
			},
		},
		{
			name:      "all series empty",
			list:      [][]Datum{{}, {}},
			ascending: true,
			expected:  []Merged{},
		},
		{
			name:      "single series is projected in input order",
			list:      [][]Datum{data(3, 30, 1, 10, 1, 11)},
			ascending: true,
			fill:      Float(0),
			expected: []Merged{
				row(3, Float(30)),
				row(1, Float(10)),
				row(1, Float(11)),
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assertRows(t, tc.expected, Merge(tc.list, tc.ascending, tc.fill))
		})
	}
}

func TestMerge_EmptyList(t *testing.T) {
	merged := Merge(nil, true, Float(0))
	assert.NotNil(t, merged)
	assert.Empty(t, merged)

	merged = Merge([][]Datum{}, false, nil)
	assert.NotNil(t, merged)
	assert.Empty(t, merged)
}

func TestMerge_Metadata(t *testing.T) {
	s1 := []Datum{{Position: 1, Value: 1, Metadata: "a"}, {Position: 3, Value: 3, Metadata: "b"}}
	s2 := []Datum{{Position: 2, Value: 2, Metadata: "c"}}

	merged := Merge([][]Datum{s1, s2}, true, Float(0))
	require.Len(t, merged, 3)

	// filled slots carry no metadata, carried slots keep the carried datum's
	assert.Equal(t, []any{"a", nil}, merged[0].Metadatas)
	assert.Equal(t, []any{"a", "c"}, merged[1].Metadatas)
	assert.Equal(t, []any{"b", "c"}, merged[2].Metadatas)
}

func TestMerge_DoesNotModifyInput(t *testing.T) {
	s1 := data(3, 30, 1, 10)
	s2 := data(2, 20)
	fill := Float(7)

	merged := Merge([][]Datum{s1, s2}, true, fill)
	require.Len(t, merged, 3)

	assert.Equal(t, data(3, 30, 1, 10), s1)
	require.NotNil(t, merged[0].Values[1])
	*merged[0].Values[1] = 99
	assert.Equal(t, 7.0, *fill)
	assert.Equal(t, 10.0, *merged[1].Values[0])
}

func TestClean(t *testing.T) {
	merged := Clean([][]Datum{data(2, 2, 1, 1), data(1, 5)}, nil)
	assertRows(t, []Merged{
		row(1, Float(1), Float(5)),
		row(2, Float(2), Float(5)),
	}, merged)
}

func TestMerge_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 300; i++ {
		n := rng.Intn(5) + 2
		list := make([][]Datum, n)
		union := make(map[int64]bool)
		for j := range list {
			seen := make(map[int64]bool)
			m := rng.Intn(20)
			for k := 0; k < m; k++ {
				p := int64(rng.Intn(50))
				if seen[p] {
					continue
				}
				seen[p] = true
				union[p] = true
				list[j] = append(list[j], Datum{Position: p, Value: float64(rng.Intn(1000))})
			}
		}
		ascending := rng.Intn(2) == 0

		merged := Merge(list, ascending, Float(0))

		// completeness: exactly the union of positions, strictly ordered
		require.Len(t, merged, len(union))
		for r := 1; r < len(merged); r++ {
			if ascending {
				assert.Less(t, merged[r-1].Position, merged[r].Position)
			} else {
				assert.Greater(t, merged[r-1].Position, merged[r].Position)
			}
		}

		// own value wherever a series has a datum at the row's position
		for _, m := range merged {
			for j, s := range list {
				for _, d := range s {
					if d.Position == m.Position {
						require.NotNil(t, m.Values[j])
						assert.Equal(t, d.Value, *m.Values[j])
					}
				}
			}
		}

		// determinism under permuted series contents
		permuted := make([][]Datum, n)
		for j, s := range list {
			permuted[j] = append([]Datum(nil), s...)
			rng.Shuffle(len(permuted[j]), func(a, b int) { permuted[j][a], permuted[j][b] = permuted[j][b], permuted[j][a] })
		}
		assert.Equal(t, merged, Merge(permuted, ascending, Float(0)))
	}
}

package series

import "sort"

// Merge aligns several ordered series on the union of their positions.
//
//	list[0]:  ──a─────────b──────▶
//	list[1]:  ─────c──d───────e──▶
//
//	value0:   ──a──a──a───b───b──▶
//	value1:   ──f──c──d───d───e──▶   (f = fill)
//
// Each row carries, per series, the datum at that position or else the last datum the
// series had before it. Before a series' first datum the row holds fill, or nil when
// fill is nil. Rows are ordered ascending or descending by position.
//
// A single series is projected as is, in input order and without fill. Within one
// series a repeated position keeps only the datum given last. Inputs are not modified.
func Merge(list [][]Datum, ascending bool, fill *float64) []Merged {
	switch len(list) {
	case 0:
		return []Merged{}
	case 1:
		return project(list[0])
	}

	sorted := make([][]Datum, len(list))
	for j, data := range list {
		sorted[j] = sortSeries(data, ascending)
	}

	// cursor[j] is the index of the last datum consumed from series j, -1 before the first.
	cursor := make([]int, len(sorted))
	for j := range cursor {
		cursor[j] = -1
	}

	var merged []Merged
	for {
		position, ok := nextPosition(sorted, cursor, ascending)
		if !ok {
			break
		}

		row := Merged{
			Position:  position,
			Values:    make([]*float64, len(sorted)),
			Metadatas: make([]any, len(sorted)),
		}
		for j, data := range sorted {
			if i := cursor[j] + 1; i < len(data) && data[i].Position == position {
				cursor[j] = i
			}

			i := cursor[j]
			if i == -1 {
				if fill != nil {
					row.Values[j] = Float(*fill)
				}
				continue
			}
			row.Values[j] = Float(data[i].Value)
			row.Metadatas[j] = data[i].Metadata
		}
		merged = append(merged, row)
	}

	if merged == nil {
		return []Merged{}
	}
	return merged
}

// Clean merges list ascending, the ordering every chart consumes.
func Clean(list [][]Datum, fill *float64) []Merged {
	return Merge(list, true, fill)
}

func project(data []Datum) []Merged {
	merged := make([]Merged, len(data))
	for i, d := range data {
		merged[i] = Merged{
			Position:  d.Position,
			Values:    []*float64{Float(d.Value)},
			Metadatas: []any{d.Metadata},
		}
	}
	return merged
}

// sortSeries returns a sorted copy of data with repeated positions collapsed to the
// datum that came last.
func sortSeries(data []Datum, ascending bool) []Datum {
	sorted := make([]Datum, len(data))
	copy(sorted, data)
	sort.SliceStable(sorted, func(a, b int) bool {
		if ascending {
			return sorted[a].Position < sorted[b].Position
		}
		return sorted[a].Position > sorted[b].Position
	})

	out := sorted[:0]
	for _, d := range sorted {
		if n := len(out); n > 0 && out[n-1].Position == d.Position {
			out[n-1] = d
			continue
		}
		out = append(out, d)
	}
	return out
}

// nextPosition returns the extremal position among the data each cursor would consume next.
func nextPosition(sorted [][]Datum, cursor []int, ascending bool) (int64, bool) {
	var (
		next  int64
		found bool
	)
	for j, data := range sorted {
		i := cursor[j] + 1
		if i >= len(data) {
			continue
		}
		p := data[i].Position
		if !found || (ascending && p < next) || (!ascending && p > next) {
			next = p
			found = true
		}
	}
	return next, found
}

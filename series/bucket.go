package series

import (
	"fmt"
	"sort"
	"time"
)

// Bucket groups a daily series (Position in unix seconds) into weekly or monthly
// buckets and sums their values. A bucket is positioned at the first datum that fell
// into it and buckets are returned in calendar order. Metadata is dropped.
func Bucket(data []Datum, period Period) ([]Datum, error) {
	return bucket(data, period, func(acc *Datum, d Datum) { acc.Value += d.Value })
}

// BucketLast is Bucket for levels such as TVL: each bucket keeps the value of the
// last datum that fell into it instead of a sum.
func BucketLast(data []Datum, period Period) ([]Datum, error) {
	return bucket(data, period, func(acc *Datum, d Datum) { acc.Value = d.Value })
}

func bucket(data []Datum, period Period, combine func(acc *Datum, d Datum)) ([]Datum, error) {
	if period != Week && period != Month {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPeriod, period)
	}

	index := make(map[int64]int)
	var (
		starts  []int64
		buckets []Datum
	)
	for _, d := range data {
		start := period.start(time.Unix(d.Position, 0)).Unix()
		if i, ok := index[start]; ok {
			combine(&buckets[i], d)
			continue
		}
		index[start] = len(buckets)
		starts = append(starts, start)
		buckets = append(buckets, Datum{Position: d.Position, Value: d.Value})
	}

	order := make([]int, len(buckets))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return starts[order[a]] < starts[order[b]] })

	sorted := make([]Datum, len(buckets))
	for i, j := range order {
		sorted[i] = buckets[j]
	}
	return sorted, nil
}

// start truncates t to the beginning of its bucket in UTC. Weeks start on Monday.
func (p Period) start(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)

	switch p {
	case Week:
		days := int(day.Weekday())
		if days == 0 { // Sunday
			days = 7
		}
		return day.AddDate(0, 0, 1-days)
	default:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
}

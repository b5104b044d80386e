// Package series merges independently keyed ordered series into one aligned series.
package series

import "errors"

var ErrUnknownPeriod = errors.New("unknown bucket period")

// Datum is one observation of a series. Position is the ordering key (a tick, a unix
// timestamp); Metadata is carried through the merge untouched.
type Datum struct {
	Position int64   `json:"position"`
	Value    float64 `json:"value"`
	Metadata any     `json:"metadata,omitempty"`
}

// Merged is one aligned row of a merge. Values and Metadatas hold one entry per input
// series, in input order. A nil value marks a series with nothing to report yet.
type Merged struct {
	Position  int64      `json:"position"`
	Values    []*float64 `json:"values"`
	Metadatas []any      `json:"metadatas"`
}

// Period selects the calendar bucket used by Bucket.
type Period int

const (
	Week Period = iota + 1
	Month
)

func (p Period) String() string {
	switch p {
	case Week:
		return "week"
	case Month:
		return "month"
	default:
		return "unknown"
	}
}

// ParsePeriod maps "week" and "month" to a Period.
func ParsePeriod(s string) (Period, error) {
	switch s {
	case "week":
		return Week, nil
	case "month":
		return Month, nil
	default:
		return 0, ErrUnknownPeriod
	}
}

// Float returns a pointer to v, for fill values and expected rows.
func Float(v float64) *float64 {
	return &v
}

package density

import (
	"errors"
	"math/big"
)

var (
	ErrInvalidStep       = errors.New("step must be positive")
	ErrInvalidWindowSize = errors.New("window size must not be negative")
	ErrInvalidDomain     = errors.New("invalid domain")
	ErrAnchorOutOfDomain = errors.New("anchor outside domain")
	ErrNilAnchorValue    = errors.New("anchor value is nil")
)

// Anchor is the one position whose value is known absolutely, e.g. the
// current tick and the tier's in-range liquidity.
type Anchor struct {
	Position int64
	Value    *big.Int
}

// DeltaSample is a signed change of the tracked quantity recorded exactly at Position.
// Positions without a sample have an implicit delta of zero.
type DeltaSample struct {
	Position int64
	Delta    *big.Int
}

// Point is one position of a reconstructed profile.
// Value is the cumulative quantity at Position; Delta is the raw sample recorded there.
type Point struct {
	Position int64    `json:"position"`
	Value    *big.Int `json:"value"`
	Delta    *big.Int `json:"delta"`
}

// Float64 returns Value as a float for plotting.
func (p Point) Float64() float64 {
	if p.Value == nil {
		return 0
	}
	f, _ := new(big.Float).SetInt(p.Value).Float64()
	return f
}

// Window describes which positions are reconstructed around the anchor.
//
// Only multiples of Step are addressable. Size is the number of positions
// requested on each side of the anchor; fewer are returned when Min or Max
// is reached first.
type Window struct {
	Step int64
	Size int
	Min  int64
	Max  int64
}

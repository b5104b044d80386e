package chart

import (
	"math/big"

	"github.com/defistate/defistate-analytics-go/protocols/uniswapv3"
	"github.com/defistate/defistate-analytics-go/series"
	"github.com/shopspring/decimal"
)

// Logger defines a standard interface for structured, leveled logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Metric selects which daily aggregate TierSeries charts.
type Metric int

const (
	Volume Metric = iota + 1
	Fees
	TVL
)

func (m Metric) String() string {
	switch m {
	case Volume:
		return "volume"
	case Fees:
		return "fees"
	case TVL:
		return "tvl"
	default:
		return "unknown"
	}
}

// ParseMetric maps "volume", "fees" and "tvl" to a Metric.
func ParseMetric(s string) (Metric, error) {
	switch s {
	case "volume":
		return Volume, nil
	case "fees":
		return Fees, nil
	case "tvl":
		return TVL, nil
	default:
		return 0, ErrUnknownMetric
	}
}

func (m Metric) valid() bool {
	return m == Volume || m == Fees || m == TVL
}

// flow reports whether daily values add up over time, as opposed to levels.
func (m Metric) flow() bool {
	return m == Volume || m == Fees
}

func (m Metric) of(d uniswapv3.DayData) float64 {
	switch m {
	case Volume:
		return d.VolumeUSD
	case Fees:
		return d.FeesUSD
	default:
		return d.TVLUSD
	}
}

// DensityPoint is one tick of a tier's liquidity density chart.
type DensityPoint struct {
	Tick         int64    `json:"tick"`
	Liquidity    *big.Int `json:"liquidity"`
	LiquidityNet *big.Int `json:"liquidityNet"`
	IsActive     bool     `json:"isActive"`

	// Price0 is token0 quoted in token1, Price1 its reciprocal.
	Price0 float64 `json:"price0"`
	Price1 float64 `json:"price1"`

	// Locked is the amount of LockedToken (0 or 1) held by Liquidity between this tick
	// and the next one. Ticks left of the active tick hold token1, ticks right of it
	// token0. The active tick itself reports zero.
	Locked      decimal.Decimal `json:"locked"`
	LockedToken uint8           `json:"lockedToken"`
}

// TierDensity is the reconstructed density around one tier's current tick.
type TierDensity struct {
	Key    uniswapv3.TierKey `json:"key"`
	Points []*DensityPoint   `json:"points"`
	Active *DensityPoint     `json:"active"`
}

// CombinedDensity aligns the densities of several tiers on the union of their ticks.
// Rows[i].Metadatas holds the *DensityPoint of each tier, nil where a tier was filled.
type CombinedDensity struct {
	Keys   []uniswapv3.TierKey `json:"keys"`
	Rows   []series.Merged     `json:"rows"`
	Active []*DensityPoint     `json:"active"`
}

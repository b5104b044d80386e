package chart

import (
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/defistate/defistate-analytics-go/density"
	"github.com/defistate/defistate-analytics-go/protocols/uniswapv3"
	"github.com/defistate/defistate-analytics-go/protocols/uniswapv3/calculator/sqrtpricemath"
	"github.com/defistate/defistate-analytics-go/protocols/uniswapv3/calculator/tickmath"
	"github.com/defistate/defistate-analytics-go/series"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// DefaultSurroundingTicks is the number of tick spacings charted on each side of the
// current tick when the config leaves it unset.
const DefaultSurroundingTicks = 500

var (
	ErrUnknownMetric     = errors.New("unknown tier metric")
	ErrTickPriceMismatch = errors.New("tier tick does not match its sqrt price")
)

const (
	opDensity         = "density"
	opCombinedDensity = "combined_density"
	opTierSeries      = "tier_series"
	opTierBuckets     = "tier_buckets"
)

// --- Config and Main Struct ---

// Config holds the builder's dependencies.
type Config struct {
	Registry prometheus.Registerer
	Logger   Logger

	// SurroundingTicks is the number of tick spacings reconstructed on each side of
	// the current tick. Zero means DefaultSurroundingTicks.
	SurroundingTicks int
}

// validate checks if the configuration is valid, ensuring required dependencies are present.
func (c *Config) validate() error {
	if c.Registry == nil {
		return errors.New("config: Registry cannot be nil")
	}
	if c.Logger == nil {
		return errors.New("config: Logger cannot be nil")
	}
	if c.SurroundingTicks < 0 {
		return errors.New("config: SurroundingTicks cannot be negative")
	}
	return nil
}

// Builder turns indexed tier data into chart-ready series.
// It holds no per-call state and is safe for concurrent use.
type Builder struct {
	metrics          *Metrics
	logger           Logger
	surroundingTicks int
}

// NewBuilder constructs a builder from a configuration, returning an error if the config is invalid.
func NewBuilder(cfg *Config) (*Builder, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	surrounding := cfg.SurroundingTicks
	if surrounding == 0 {
		surrounding = DefaultSurroundingTicks
	}

	return &Builder{
		metrics:          NewMetrics(cfg.Registry),
		logger:           cfg.Logger,
		surroundingTicks: surrounding,
	}, nil
}

// Samples adapts a tier's initialized ticks into reconstruction samples.
func Samples(ticks []uniswapv3.TickInfo) []density.DeltaSample {
	samples := make([]density.DeltaSample, len(ticks))
	for i, t := range ticks {
		samples[i] = density.DeltaSample{Position: t.Index, Delta: t.LiquidityNet}
	}
	return samples
}

// Density reconstructs the liquidity held at every tick spacing around the tier's
// current tick and prices each point.
func (b *Builder) Density(tier uniswapv3.Tier) (*TierDensity, error) {
	timer := prometheus.NewTimer(b.metrics.buildDuration.WithLabelValues(opDensity))
	defer timer.ObserveDuration()

	d, err := b.density(tier)
	if err != nil {
		b.metrics.failures.WithLabelValues(opDensity).Inc()
		b.logger.Warn("failed to build tier density", "tier", tier.Key, "error", err)
		return nil, fmt.Errorf("tier %s: %w", tier.Key, err)
	}

	b.metrics.points.WithLabelValues(opDensity).Add(float64(len(d.Points)))
	b.logger.Debug("built tier density", "tier", tier.Key, "points", len(d.Points))
	return d, nil
}

// currentTick returns tier.Tick after checking it against tier.SqrtPriceX96, when the
// snapshot carries a price. A pool that crossed a tick downward sits one tick below
// the tick its price maps to.
func currentTick(tier uniswapv3.Tier) (int64, error) {
	if tier.SqrtPriceX96 == nil {
		return tier.Tick, nil
	}
	priceTick, err := tickmath.GetTickAtSqrtRatio(tier.SqrtPriceX96)
	if err != nil {
		return 0, err
	}
	if d := priceTick - tier.Tick; d < 0 || d > 1 {
		return 0, fmt.Errorf("%w: tick %d, price at tick %d", ErrTickPriceMismatch, tier.Tick, priceTick)
	}
	return tier.Tick, nil
}

func (b *Builder) density(tier uniswapv3.Tier) (*TierDensity, error) {
	tick, err := currentTick(tier)
	if err != nil {
		return nil, err
	}

	window := density.Window{
		Step: tier.TickSpacing,
		Size: b.surroundingTicks,
		Min:  tickmath.MIN_TICK,
		Max:  tickmath.MAX_TICK,
	}
	anchor := density.Anchor{Position: tick, Value: tier.Liquidity}

	points, err := density.Reconstruct(anchor, Samples(tier.Ticks), window)
	if err != nil {
		return nil, err
	}
	activeTick, err := window.SnapInto(tick)
	if err != nil {
		return nil, err
	}

	out := &TierDensity{
		Key:    tier.Key,
		Points: make([]*DensityPoint, len(points)),
	}
	for i, p := range points {
		dp := &DensityPoint{
			Tick:         p.Position,
			Liquidity:    p.Value,
			LiquidityNet: p.Delta,
			IsActive:     p.Position == activeTick,
		}
		dp.Price0, dp.Price1 = tickmath.TickToPrices(p.Position, tier.Token0.Decimals, tier.Token1.Decimals)
		if err := lockedAmount(dp, tier, activeTick); err != nil {
			return nil, err
		}

		out.Points[i] = dp
		if dp.IsActive {
			out.Active = dp
		}
	}
	return out, nil
}

// lockedAmount fills in the token amount dp.Liquidity holds over [dp.Tick, dp.Tick+spacing].
func lockedAmount(dp *DensityPoint, tier uniswapv3.Tier, activeTick int64) error {
	dp.Locked = decimal.Zero
	if dp.IsActive || dp.Liquidity.Sign() <= 0 {
		return nil
	}

	upper := min(dp.Tick+tier.TickSpacing, tickmath.MAX_TICK)
	if upper <= dp.Tick {
		return nil
	}

	sqrtLower, sqrtUpper := new(big.Int), new(big.Int)
	if err := tickmath.GetSqrtRatioAtTick(sqrtLower, dp.Tick); err != nil {
		return err
	}
	if err := tickmath.GetSqrtRatioAtTick(sqrtUpper, upper); err != nil {
		return err
	}

	amount := new(big.Int)
	if dp.Tick < activeTick {
		sqrtpricemath.GetAmount1Delta(amount, sqrtLower, sqrtUpper, dp.Liquidity, false)
		dp.LockedToken = 1
		dp.Locked = decimal.NewFromBigInt(amount, -int32(tier.Token1.Decimals))
		return nil
	}

	if err := sqrtpricemath.GetAmount0Delta(amount, sqrtLower, sqrtUpper, dp.Liquidity, false); err != nil {
		return err
	}
	dp.LockedToken = 0
	dp.Locked = decimal.NewFromBigInt(amount, -int32(tier.Token0.Decimals))
	return nil
}

// CombinedDensity builds the density of every tier and aligns them on the union of
// their ticks. Ticks run ascending when token0 is the base token and descending
// otherwise. A tier reports zero liquidity before its first tick.
func (b *Builder) CombinedDensity(tiers []uniswapv3.Tier, token0Base bool) (*CombinedDensity, error) {
	timer := prometheus.NewTimer(b.metrics.buildDuration.WithLabelValues(opCombinedDensity))
	defer timer.ObserveDuration()

	densities := make([]*TierDensity, len(tiers))
	var g errgroup.Group
	for i, tier := range tiers {
		g.Go(func() error {
			d, err := b.Density(tier)
			if err != nil {
				return err
			}
			densities[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		b.metrics.failures.WithLabelValues(opCombinedDensity).Inc()
		return nil, err
	}

	combined := &CombinedDensity{
		Keys:   make([]uniswapv3.TierKey, len(densities)),
		Active: make([]*DensityPoint, len(densities)),
	}
	list := make([][]series.Datum, len(densities))
	for i, d := range densities {
		combined.Keys[i] = d.Key
		combined.Active[i] = d.Active
		list[i] = densitySeries(d, token0Base)
	}
	combined.Rows = series.Merge(list, token0Base, series.Float(0))

	b.metrics.points.WithLabelValues(opCombinedDensity).Add(float64(len(combined.Rows)))
	b.logger.Debug("built combined density", "tiers", len(tiers), "rows", len(combined.Rows))
	return combined, nil
}

func densitySeries(d *TierDensity, token0Base bool) []series.Datum {
	data := make([]series.Datum, len(d.Points))
	for i, p := range d.Points {
		j := i
		if !token0Base {
			j = len(d.Points) - 1 - i
		}
		f, _ := new(big.Float).SetInt(p.Liquidity).Float64()
		data[j] = series.Datum{Position: p.Tick, Value: f, Metadata: p}
	}
	return data
}

// TierSeries merges one daily metric of every tier into a single series keyed by date.
// Days a tier did not report repeat its previous value; days before its first report
// are absent.
func (b *Builder) TierSeries(tiers []uniswapv3.Tier, metric Metric, ascending bool) ([]series.Merged, error) {
	timer := prometheus.NewTimer(b.metrics.buildDuration.WithLabelValues(opTierSeries))
	defer timer.ObserveDuration()

	if !metric.valid() {
		b.metrics.failures.WithLabelValues(opTierSeries).Inc()
		return nil, fmt.Errorf("%w: %d", ErrUnknownMetric, metric)
	}

	list := make([][]series.Datum, len(tiers))
	for i, tier := range tiers {
		data := make([]series.Datum, len(tier.Days))
		for j, day := range tier.Days {
			data[j] = series.Datum{Position: day.Date, Value: metric.of(day), Metadata: day}
		}
		list[i] = data
	}

	merged := series.Merge(list, ascending, nil)

	b.metrics.points.WithLabelValues(opTierSeries).Add(float64(len(merged)))
	b.logger.Debug("built tier series", "metric", metric, "tiers", len(tiers), "rows", len(merged))
	return merged, nil
}

// TierBuckets totals one daily metric across tiers per week or month.
// Volume and fees are flows: every reported day counts once and days a tier did not
// report count as nothing. TVL is a level: each bucket holds the pool total on its last
// day, with tiers that did not report that day repeating their previous value.
func (b *Builder) TierBuckets(tiers []uniswapv3.Tier, metric Metric, period series.Period) ([]series.Datum, error) {
	timer := prometheus.NewTimer(b.metrics.buildDuration.WithLabelValues(opTierBuckets))
	defer timer.ObserveDuration()

	buckets, err := b.tierBuckets(tiers, metric, period)
	if err != nil {
		b.metrics.failures.WithLabelValues(opTierBuckets).Inc()
		return nil, err
	}

	b.metrics.points.WithLabelValues(opTierBuckets).Add(float64(len(buckets)))
	b.logger.Debug("built tier buckets", "metric", metric, "period", period, "buckets", len(buckets))
	return buckets, nil
}

func (b *Builder) tierBuckets(tiers []uniswapv3.Tier, metric Metric, period series.Period) ([]series.Datum, error) {
	if !metric.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMetric, metric)
	}

	list := make([][]series.Datum, len(tiers))
	for i, tier := range tiers {
		list[i] = dailySeries(tier, metric)
	}

	if metric.flow() {
		var days []series.Datum
		for _, data := range list {
			days = append(days, data...)
		}
		sort.SliceStable(days, func(i, j int) bool { return days[i].Position < days[j].Position })
		return series.Bucket(days, period)
	}
	return series.BucketLast(series.Totals(series.Merge(list, true, nil)), period)
}

// dailySeries returns the tier's daily metric ordered by date.
func dailySeries(tier uniswapv3.Tier, metric Metric) []series.Datum {
	data := make([]series.Datum, len(tier.Days))
	for i, day := range tier.Days {
		data[i] = series.Datum{Position: day.Date, Value: metric.of(day)}
	}
	sort.SliceStable(data, func(i, j int) bool { return data[i].Position < data[j].Position })
	return data
}

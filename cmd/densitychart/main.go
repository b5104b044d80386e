package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/defistate/defistate-analytics-go/chart"
	"github.com/defistate/defistate-analytics-go/cmd/densitychart/config"
	"github.com/defistate/defistate-analytics-go/protocols/uniswapv3"
	"github.com/defistate/defistate-analytics-go/protocols/uniswapv3/calculator/tickmath"
	"github.com/defistate/defistate-analytics-go/protocols/uniswapv3/indexer"
	"github.com/defistate/defistate-analytics-go/series"
	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
)

// --- VISUAL CONSTANTS ---
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Cyan  = "\033[36m"
)

// header prints a styled section header
func header(w io.Writer, title string) {
	fmt.Fprintln(w, "\n"+Bold+Cyan+":: "+title+" ::"+Reset)
}

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the configuration file.")
	snapshot := flag.String("snapshot", "", "Path to a JSON tier snapshot. Overrides the config.")
	pool := flag.String("pool", "", "Pool id to chart. Empty charts every pool in the snapshot.")
	seriesName := flag.String("series", "", "Daily tier series to print: volume, fees or tvl.")
	bucket := flag.String("bucket", "", "Aggregate the series by week or month.")
	flag.Parse()

	bootLogger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLogger.Error("Failed to load configuration", "path", *configPath, "error", err)
		os.Exit(1)
	}
	if applyFlags(cfg, *snapshot, *pool, *seriesName, *bucket) {
		if err := cfg.Validate(); err != nil {
			bootLogger.Error("Invalid flags", "error", err)
			os.Exit(1)
		}
	}

	rootLogger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, rootLogger, prometheus.DefaultRegisterer, os.Stdout); err != nil {
		rootLogger.Error("densitychart failed", "error", err)
		os.Exit(1)
	}
}

// applyFlags copies non-empty flag values over the loaded config and reports whether any was set.
func applyFlags(cfg *config.Config, snapshot, pool, seriesName, bucket string) bool {
	changed := false
	for _, f := range []struct {
		value string
		dest  *string
	}{
		{snapshot, &cfg.Snapshot},
		{pool, &cfg.Pool},
		{seriesName, &cfg.Series},
		{bucket, &cfg.Bucket},
	} {
		if f.value != "" {
			*f.dest = f.value
			changed = true
		}
	}
	return changed
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer, out io.Writer) error {
	tiers, err := loadSnapshot(cfg.Snapshot)
	if err != nil {
		return err
	}
	indexed := indexer.New().Index(tiers)
	logger.Info("Loaded snapshot", "path", cfg.Snapshot, "tiers", len(tiers), "pools", len(indexed.Pools()))

	builder, err := chart.NewBuilder(&chart.Config{
		Registry:         reg,
		Logger:           logger.With("component", "chart"),
		SurroundingTicks: cfg.SurroundingTicks,
	})
	if err != nil {
		return err
	}

	surrounding := cfg.SurroundingTicks
	if surrounding == 0 {
		surrounding = chart.DefaultSurroundingTicks
	}

	pools := indexed.Pools()
	if cfg.Pool != "" {
		pools = []common.Hash{cfg.PoolID()}
	}

	for _, poolID := range pools {
		if err := ctx.Err(); err != nil {
			return err
		}

		poolTiers := indexed.ByPool(poolID)
		if len(poolTiers) == 0 {
			return fmt.Errorf("pool %s not found in snapshot", poolID.Hex())
		}
		// Only the ticks around the current price are charted, as served by the indexer.
		for i := range poolTiers {
			poolTiers[i].Ticks, _ = indexed.TicksSurrounding(poolTiers[i].Key, surrounding)
		}

		combined, err := builder.CombinedDensity(poolTiers, cfg.Token0Base)
		if err != nil {
			return err
		}
		printDensity(out, poolID, poolTiers, combined, cfg.Token0Base)

		if cfg.Series == "" {
			continue
		}
		metric, err := chart.ParseMetric(cfg.Series)
		if err != nil {
			return err
		}
		merged, err := builder.TierSeries(poolTiers, metric, true)
		if err != nil {
			return err
		}
		printSeries(out, metric, poolTiers, merged)

		if cfg.Bucket == "" {
			continue
		}
		period, err := series.ParsePeriod(cfg.Bucket)
		if err != nil {
			return err
		}
		buckets, err := builder.TierBuckets(poolTiers, metric, period)
		if err != nil {
			return err
		}
		printBuckets(out, metric, period, buckets)
	}
	return nil
}

func loadSnapshot(path string) ([]uniswapv3.Tier, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var tiers []uniswapv3.Tier
	if err := json.Unmarshal(b, &tiers); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return tiers, nil
}

func tierLabel(t uniswapv3.Tier) string {
	return fmt.Sprintf("T%d (%d)", t.Key.TierID, t.FeeTier)
}

func printDensity(out io.Writer, poolID common.Hash, tiers []uniswapv3.Tier, combined *chart.CombinedDensity, token0Base bool) {
	token0, token1 := tiers[0].Token0, tiers[0].Token1
	base, quote := token0, token1
	if !token0Base {
		base, quote = token1, token0
	}
	header(out, fmt.Sprintf("LIQUIDITY DENSITY %s (%s/%s)", poolID.Hex(), base.Symbol, quote.Symbol))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, "TICK\tPRICE")
	for _, t := range tiers {
		fmt.Fprintf(w, "\t%s", tierLabel(t))
	}
	fmt.Fprintln(w, "\tTOTAL\t")

	for _, row := range combined.Rows {
		price0, price1 := tickmath.TickToPrices(row.Position, token0.Decimals, token1.Decimals)
		price := price0
		if !token0Base {
			price = price1
		}

		fmt.Fprintf(w, "%d\t%.6g", row.Position, price)
		for _, v := range row.Values {
			fmt.Fprintf(w, "\t%s", formatValue(v))
		}

		marker := ""
		for _, active := range combined.Active {
			if active != nil && active.Tick == row.Position {
				marker = "<- current"
				break
			}
		}
		fmt.Fprintf(w, "\t%.6g\t%s\n", series.Sum(row), marker)
	}
	w.Flush()
}

func printSeries(out io.Writer, metric chart.Metric, tiers []uniswapv3.Tier, merged []series.Merged) {
	header(out, "DAILY "+metric.String())

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, "DATE")
	for _, t := range tiers {
		fmt.Fprintf(w, "\t%s", tierLabel(t))
	}
	fmt.Fprintln(w, "\tTOTAL")

	for _, row := range merged {
		fmt.Fprint(w, formatDate(row.Position))
		for _, v := range row.Values {
			fmt.Fprintf(w, "\t%s", formatValue(v))
		}
		fmt.Fprintf(w, "\t%.2f\n", series.Sum(row))
	}
	w.Flush()
}

func printBuckets(out io.Writer, metric chart.Metric, period series.Period, buckets []series.Datum) {
	header(out, fmt.Sprintf("%s BY %s", metric, period))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FROM\tTOTAL")
	for _, b := range buckets {
		fmt.Fprintf(w, "%s\t%.2f\n", formatDate(b.Position), b.Value)
	}
	w.Flush()
}

func formatValue(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'g', 6, 64)
}

func formatDate(unix int64) string {
	return time.Unix(unix, 0).UTC().Format("2006-01-02")
}

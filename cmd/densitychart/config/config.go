package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. DENSITY_POOL.
const EnvPrefix = "DENSITY_"

// Config is the densitychart configuration. Values come from the YAML file first and
// are then overridden by environment variables.
type Config struct {
	Snapshot         string `yaml:"snapshot" env:"SNAPSHOT"`
	Pool             string `yaml:"pool" env:"POOL"`
	SurroundingTicks int    `yaml:"surrounding_ticks" env:"SURROUNDING_TICKS"`
	Token0Base       bool   `yaml:"token0_base" env:"TOKEN0_BASE"`
	Series           string `yaml:"series" env:"SERIES"`
	Bucket           string `yaml:"bucket" env:"BUCKET"`
	LogLevel         string `yaml:"log_level" env:"LOG_LEVEL"`
}

func defaults() Config {
	return Config{
		Snapshot:         "tiers.json",
		SurroundingTicks: 500,
		Token0Base:       true,
		LogLevel:         "info",
	}
}

// Load reads the YAML file at path, if it exists, then applies a .env file and
// DENSITY_* environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return nil, fmt.Errorf("parse yaml: %w", err)
			}
		}
	}

	// Load .env file if it exists
	_ = godotenv.Load()

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate normalizes and checks the configuration.
func (c *Config) Validate() error {
	c.Series = strings.ToLower(strings.TrimSpace(c.Series))
	c.Bucket = strings.ToLower(strings.TrimSpace(c.Bucket))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))

	if c.Snapshot == "" {
		return errors.New("config: snapshot cannot be empty")
	}
	if c.Pool != "" {
		b, err := hexutil.Decode(c.Pool)
		if err != nil || len(b) != common.HashLength {
			return fmt.Errorf("config: pool %q is not a 32 byte hex hash", c.Pool)
		}
	}
	if c.SurroundingTicks < 0 {
		return errors.New("config: surrounding_ticks cannot be negative")
	}
	switch c.Series {
	case "", "volume", "fees", "tvl":
	default:
		return fmt.Errorf(`config: series must be "volume", "fees" or "tvl", got %q`, c.Series)
	}
	switch c.Bucket {
	case "":
	case "week", "month":
		if c.Series == "" {
			return errors.New("config: bucket requires series")
		}
	default:
		return fmt.Errorf(`config: bucket must be "week" or "month", got %q`, c.Bucket)
	}
	if _, ok := levels[c.LogLevel]; !ok {
		return fmt.Errorf("config: unknown log_level %q", c.LogLevel)
	}
	return nil
}

// PoolID returns the configured pool, or the zero hash when every pool is charted.
func (c *Config) PoolID() common.Hash {
	if c.Pool == "" {
		return common.Hash{}
	}
	return common.HexToHash(c.Pool)
}

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// Level maps LogLevel to a slog level.
func (c *Config) Level() slog.Level {
	return levels[c.LogLevel]
}

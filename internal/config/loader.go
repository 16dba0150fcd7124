package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variables read by Load.
const (
	EnvPrefix     = "IMPACT_"
	EnvConfigFile = "IMPACT_CONFIG"
)

// listKeys are settings whose env value is a comma-separated list.
var listKeys = map[string]bool{
	"tickers": true,
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if IMPACT_CONFIG is set
//  3. env (prefix IMPACT_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// IMPACT_QUEUE_SIZE -> queue_size. Underscores are kept so keys stay flat.
	// List keys are split on commas: IMPACT_TICKERS=TCS,INFY.
	envProvider := env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(EnvPrefix))
		if listKeys[key] {
			return key, splitList(value)
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}
	// The file path itself is not a setting.
	k.Delete("config")

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.WeightFloor < 0 || c.WeightFloor >= c.WeightCeiling:
		return fmt.Errorf("%w: weight range [%g, %g]", ErrInvalidConfig, c.WeightFloor, c.WeightCeiling)
	case c.PerformanceLogBackend != BackendCSV && c.PerformanceLogBackend != BackendSQLite:
		return fmt.Errorf("%w: unknown performance_log_backend %q", ErrInvalidConfig, c.PerformanceLogBackend)
	case c.PerformanceLogPath == "":
		return fmt.Errorf("%w: performance_log_path must not be empty", ErrInvalidConfig)
	case c.MaxLeaderboardLimit < 1:
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	case c.WorkerCount < 0 || c.QueueSize < 0 || c.LearnIntervalSec < 0:
		return fmt.Errorf("%w: worker_count, queue_size and learn_interval_sec must not be negative", ErrInvalidConfig)
	}
	for i, f := range c.Feeds {
		if f.URL == "" {
			return fmt.Errorf("%w: feeds[%d] has no url", ErrInvalidConfig, i)
		}
	}
	return nil
}

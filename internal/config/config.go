// Package config defines service configuration and its defaults.
package config

import (
	"runtime"
	"time"

	"github.com/okian/impact/internal/adapters/feed"
)

// Performance log backends.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory scoring task queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of scoring workers. Zero scores inline.
	WorkerCount int `koanf:"worker_count"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// HistorySize is the number of scoring passes kept in memory.
	HistorySize int `koanf:"history_size"`

	// WeightsPath is where learned category weights are persisted.
	WeightsPath string `koanf:"weights_path"`

	// WeightFloor and WeightCeiling bound every category weight.
	WeightFloor   float64 `koanf:"weight_floor"`
	WeightCeiling float64 `koanf:"weight_ceiling"`

	// PerformanceLogBackend selects csv or sqlite.
	PerformanceLogBackend string `koanf:"performance_log_backend"`
	PerformanceLogPath    string `koanf:"performance_log_path"`

	// LearnMinSamples is the number of resolved records needed to learn.
	LearnMinSamples int `koanf:"learn_min_samples"`

	// LearnIntervalSec runs the learner periodically. Zero disables it.
	LearnIntervalSec int `koanf:"learn_interval_sec"`

	// LearnOnAnalyze runs the learner before every scoring pass.
	LearnOnAnalyze bool `koanf:"learn_on_analyze"`

	// RecordPredictions appends every scored result to the performance log.
	RecordPredictions bool `koanf:"record_predictions"`

	// Tickers are matched against collected headlines.
	Tickers []string `koanf:"tickers"`

	// Feeds are the news feeds polled by POST /collect.
	Feeds []feed.Feed `koanf:"feeds"`

	// FeedRatePerMin limits fetches per feed, FeedTimeoutSec bounds each one.
	FeedRatePerMin float64 `koanf:"feed_rate_per_min"`
	FeedTimeoutSec int     `koanf:"feed_timeout_sec"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		Addr:                  ":9080",
		QueueSize:             1024,
		WorkerCount:           runtime.NumCPU(),
		MaxLeaderboardLimit:   100,
		HistorySize:           32,
		WeightsPath:           "data/weights.json",
		WeightFloor:           4,
		WeightCeiling:         10,
		PerformanceLogBackend: BackendCSV,
		PerformanceLogPath:    "data/performance_log.csv",
		LearnMinSamples:       20,
		LearnIntervalSec:      0,
		LearnOnAnalyze:        true,
		RecordPredictions:     true,
		Tickers:               []string{"RELIANCE", "TCS", "INFY", "HDFCBANK", "ICICIBANK", "SBIN", "ITC", "LT", "WIPRO", "TATAMOTORS"},
		Feeds: []feed.Feed{
			{Name: "Moneycontrol", URL: "https://www.moneycontrol.com/rss/business.xml"},
			{Name: "Economic Times", URL: "https://economictimes.indiatimes.com/markets/rssfeeds/1977021501.cms"},
		},
		FeedRatePerMin: 6,
		FeedTimeoutSec: 10,
	}
}

// LearnInterval returns LearnIntervalSec as a duration.
func (c *Config) LearnInterval() time.Duration {
	return time.Duration(c.LearnIntervalSec) * time.Second
}

// FeedTimeout returns FeedTimeoutSec as a duration.
func (c *Config) FeedTimeout() time.Duration {
	return time.Duration(c.FeedTimeoutSec) * time.Second
}

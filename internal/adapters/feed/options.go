package feed

import (
	"time"

	"github.com/okian/impact/pkg/logger"
)

// Option applies a configuration option to the Collector.
type Option func(*Collector)

// WithTimeout bounds a single feed fetch.
func WithTimeout(d time.Duration) Option {
	return func(c *Collector) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRatePerMinute limits how often each feed is fetched.
func WithRatePerMinute(n float64) Option {
	return func(c *Collector) {
		if n > 0 {
			c.ratePerMin = n
		}
	}
}

// WithLogger sets a custom logger for the collector.
func WithLogger(l logger.Logger) Option {
	return func(c *Collector) {
		if l != nil {
			c.logger = l
		}
	}
}

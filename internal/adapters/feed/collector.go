// Package feed collects stock headline observations from RSS and Atom feeds.
package feed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"github.com/okian/impact/internal/domain/model"
	"github.com/okian/impact/pkg/logger"
	"github.com/okian/impact/pkg/metrics"
)

// ErrNoFeeds is returned by Collect when no feed is configured.
var ErrNoFeeds = errors.New("no feeds configured")

const (
	defaultTimeout    = 10 * time.Second
	defaultRatePerMin = 6
)

// Feed is a named news feed.
type Feed struct {
	Name string `koanf:"name" json:"name"`
	URL  string `koanf:"url" json:"url"`
}

type source struct {
	feed    Feed
	parser  *gofeed.Parser
	limiter *rate.Limiter
}

// Collector turns feed items into observations for the configured tickers.
type Collector struct {
	sources    []*source
	tickers    []string
	timeout    time.Duration
	ratePerMin float64
	logger     logger.Logger
}

// New creates a collector over feeds that reports headlines mentioning any
// of tickers.
func New(feeds []Feed, tickers []string, opts ...Option) *Collector {
	c := &Collector{
		timeout:    defaultTimeout,
		ratePerMin: defaultRatePerMin,
		logger:     logger.Get().Named("collector"),
	}
	for _, opt := range opts {
		opt(c)
	}

	for _, t := range tickers {
		if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
			c.tickers = append(c.tickers, t)
		}
	}
	for _, f := range feeds {
		if f.URL == "" {
			continue
		}
		if f.Name == "" {
			f.Name = f.URL
		}
		c.sources = append(c.sources, &source{
			feed:    f,
			parser:  gofeed.NewParser(),
			limiter: rate.NewLimiter(rate.Limit(c.ratePerMin/60), 1),
		})
	}
	return c
}

// Feeds returns the configured feeds.
func (c *Collector) Feeds() []Feed {
	out := make([]Feed, len(c.sources))
	for i, s := range c.sources {
		out[i] = s.feed
	}
	return out
}

// Collect fetches every feed concurrently. Failing feeds are reported in the
// error slice and do not stop the others. Observations keep feed order.
func (c *Collector) Collect(ctx context.Context) ([]model.Observation, []error) {
	if len(c.sources) == 0 {
		return nil, []error{ErrNoFeeds}
	}

	perFeed := make([][]model.Observation, len(c.sources))
	errs := make([]error, len(c.sources))

	var wg sync.WaitGroup
	for i, s := range c.sources {
		wg.Add(1)
		go func() {
			defer wg.Done()
			perFeed[i], errs[i] = c.fetch(ctx, s)
		}()
	}
	wg.Wait()

	var (
		out    []model.Observation
		failed []error
	)
	for i := range c.sources {
		if errs[i] != nil {
			failed = append(failed, errs[i])
			continue
		}
		out = append(out, perFeed[i]...)
	}
	return out, failed
}

func (c *Collector) fetch(ctx context.Context, s *source) ([]model.Observation, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("feed %s: rate limiter: %w", s.feed.Name, err)
	}

	fctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	parsed, err := s.parser.ParseURLWithContext(s.feed.URL, fctx)
	if err != nil {
		metrics.RecordCollectorError(s.feed.Name)
		c.logger.Warn(ctx, "feed fetch failed", logger.String("feed", s.feed.Name), logger.Error(err))
		return nil, fmt.Errorf("feed %s: %w", s.feed.Name, err)
	}

	var out []model.Observation
	for _, item := range parsed.Items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		link := item.Link
		if link == "" {
			link = s.feed.URL
		}
		upper := strings.ToUpper(title)
		for _, t := range c.tickers {
			if strings.Contains(upper, t) {
				out = append(out, model.Observation{Stock: t, Headline: title, Source: s.feed.Name, Link: link})
			}
		}
	}

	metrics.RecordCollectorItems(s.feed.Name, len(out))
	c.logger.Debug(ctx, "feed fetched",
		logger.String("feed", s.feed.Name),
		logger.Int("items", len(parsed.Items)),
		logger.Int("observations", len(out)))
	return out, nil
}

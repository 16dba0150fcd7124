package service

import (
	"strings"
	"time"

	"github.com/okian/impact/internal/adapters/feed"
	"github.com/okian/impact/internal/domain/perflog"
	"github.com/okian/impact/internal/domain/weights"
	"github.com/okian/impact/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of scoring workers. Zero scores every item
// inline on the caller's goroutine.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count >= 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the scoring task queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithHistorySize sets how many scoring passes are kept.
func WithHistorySize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.historySize = size
		}
	}
}

// WithWeightRange bounds every category weight.
func WithWeightRange(floor, ceiling float64) Option {
	return func(s *Service) {
		s.weightRange = weights.Range{Floor: floor, Ceiling: ceiling}
	}
}

// WithWeightsPath persists weights as JSON at path. An empty path keeps
// weights in memory.
func WithWeightsPath(path string) Option {
	return func(s *Service) {
		s.weightsPath = path
	}
}

// WithWeightPersister overrides the weight persister. It wins over WithWeightsPath.
func WithWeightPersister(p weights.Persister) Option {
	return func(s *Service) {
		if p != nil {
			s.persister = p
		}
	}
}

// WithPerformanceLog selects the performance log backend (csv or sqlite)
// and its location.
func WithPerformanceLog(backend, path string) Option {
	return func(s *Service) {
		s.perfBackend = strings.ToLower(strings.TrimSpace(backend))
		s.perfPath = path
	}
}

// WithPerformanceLogStore overrides the performance log. The service closes
// it on Stop.
func WithPerformanceLogStore(l perflog.Log) Option {
	return func(s *Service) {
		if l != nil {
			s.perf = l
		}
	}
}

// WithMinSamples sets the resolved record threshold of the learner.
func WithMinSamples(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.minSamples = n
		}
	}
}

// WithLearnInterval runs the learner periodically. Zero disables the loop.
func WithLearnInterval(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.learnInterval = d
		}
	}
}

// WithLearnOnAnalyze runs the learner before every scoring pass.
func WithLearnOnAnalyze(on bool) Option {
	return func(s *Service) {
		s.learnOnAnalyze = on
	}
}

// WithRecordPredictions appends every scored result to the performance log.
func WithRecordPredictions(on bool) Option {
	return func(s *Service) {
		s.recordPredictions = on
	}
}

// WithFeeds sets the news feeds polled by Collect.
func WithFeeds(feeds []feed.Feed) Option {
	return func(s *Service) {
		s.feeds = feeds
	}
}

// WithTickers sets the tickers matched against collected headlines.
func WithTickers(tickers []string) Option {
	return func(s *Service) {
		s.tickers = tickers
	}
}

// WithFeedLimits sets the per-feed fetch rate and timeout.
func WithFeedLimits(ratePerMin float64, timeout time.Duration) Option {
	return func(s *Service) {
		s.feedRate = ratePerMin
		s.feedTimeout = timeout
	}
}

// WithClock overrides the clock used to stamp passes.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

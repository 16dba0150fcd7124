// Package service wires the scoring engine, weight store, performance log
// and adapters into the operations exposed by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/okian/impact/internal/adapters/feed"
	"github.com/okian/impact/internal/adapters/mq/queue"
	"github.com/okian/impact/internal/adapters/mq/worker"
	"github.com/okian/impact/internal/adapters/repository"
	"github.com/okian/impact/internal/domain/classify"
	"github.com/okian/impact/internal/domain/engine"
	"github.com/okian/impact/internal/domain/learner"
	"github.com/okian/impact/internal/domain/model"
	"github.com/okian/impact/internal/domain/perflog"
	"github.com/okian/impact/internal/domain/scoring"
	"github.com/okian/impact/internal/domain/technical"
	"github.com/okian/impact/internal/domain/types"
	"github.com/okian/impact/internal/domain/weights"
	"github.com/okian/impact/pkg/logger"
	"github.com/okian/impact/pkg/metrics"
)

// Performance log backends understood by Start.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"

	memoryDSN = ":memory:"
)

// Service implements the API dependencies of the impact engine.
type Service struct {
	mu sync.RWMutex

	// Core components
	table     classify.Table
	store     *weights.Store
	perf      perflog.Log
	learner   *learner.Learner
	engine    *engine.Engine
	history   repository.Store
	queue     *queue.InMemoryQueue
	pool      *worker.Pool
	collector *feed.Collector
	persister weights.Persister

	// Configuration
	workerCount       int
	queueSize         int
	historySize       int
	weightRange       weights.Range
	weightsPath       string
	perfBackend       string
	perfPath          string
	minSamples        int
	learnInterval     time.Duration
	learnOnAnalyze    bool
	recordPredictions bool
	feeds             []feed.Feed
	tickers           []string
	feedRate          float64
	feedTimeout       time.Duration
	now               func() time.Time

	// State
	started bool
	cancel  context.CancelFunc
	loops   sync.WaitGroup

	logger logger.Logger
}

// New constructs a Service. Without options weights and the performance log
// live in memory and items are scored by NumCPU workers.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:       runtime.NumCPU(),
		queueSize:         1024,
		historySize:       32,
		weightRange:       weights.DefaultRange(),
		perfBackend:       BackendSQLite,
		perfPath:          memoryDSN,
		minSamples:        learner.DefaultMinSamples,
		learnOnAnalyze:    true,
		recordPredictions: true,
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the weights, opens the performance log and starts the worker
// pool and the learning loop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.logger.Info(ctx, "starting impact service...")

	s.table = classify.DefaultTable()
	if s.persister == nil {
		if s.weightsPath != "" {
			s.persister = weights.NewFilePersister(s.weightsPath)
		} else {
			s.persister = weights.NewMemoryPersister()
		}
	}
	store, err := weights.NewStore(s.table.Defaults(),
		weights.WithRange(s.weightRange),
		weights.WithPersister(s.persister),
	)
	if err != nil {
		return fmt.Errorf("create weight store: %w", err)
	}
	persisted := store.Load(ctx)
	s.store = store

	if s.perf == nil {
		perf, err := s.openPerformanceLog()
		if err != nil {
			return err
		}
		s.perf = perf
	}

	s.learner = learner.New(s.store, learner.WithMinSamples(s.minSamples))
	s.history = repository.NewHistoryStore(repository.WithHistorySize(s.historySize))

	engineOpts := []engine.Option{
		engine.WithClassifier(classify.NewKeywordClassifier(s.table)),
		engine.WithCalculator(scoring.NewCalculator(scoring.WithCeiling(s.weightRange.Ceiling))),
		engine.WithClock(s.now),
	}
	if s.workerCount > 0 {
		s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
		engineOpts = append(engineOpts, engine.WithDispatcher(s.queue))
	}
	s.engine = engine.New(s.store, engineOpts...)

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	if s.queue != nil {
		s.pool = worker.NewPool(s.workerCount, s.queue, s.engine)
		s.pool.Start(runCtx)
	}

	s.collector = feed.New(s.feeds, s.tickers,
		feed.WithRatePerMinute(s.feedRate),
		feed.WithTimeout(s.feedTimeout),
	)

	if s.learnInterval > 0 {
		s.loops.Add(1)
		go s.learnLoop(runCtx)
	}

	s.started = true
	s.logger.Info(ctx, "impact service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Bool("persistedWeights", persisted),
		logger.String("performanceLog", s.perfBackend),
		logger.Duration("learnInterval", s.learnInterval),
		logger.Int("feeds", len(s.collector.Feeds())),
	)
	return nil
}

func (s *Service) openPerformanceLog() (perflog.Log, error) {
	switch s.perfBackend {
	case BackendCSV:
		if s.perfPath == "" {
			return nil, fmt.Errorf("%w: csv needs a path", ErrInvalidInput)
		}
		return perflog.NewCSVLog(s.perfPath), nil
	case BackendSQLite:
		path := s.perfPath
		if path == "" {
			path = memoryDSN
		}
		l, err := perflog.OpenSQLite(path)
		if err != nil {
			return nil, fmt.Errorf("open performance log: %w", err)
		}
		return l, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, s.perfBackend)
	}
}

func (s *Service) learnLoop(ctx context.Context) {
	defer s.loops.Done()

	ticker := time.NewTicker(s.learnInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			out := s.learner.Learn(ctx, s.perf)
			s.logger.Debug(ctx, "scheduled learning run",
				logger.String("reason", out.Reason),
				logger.Int("resolved", out.Resolved),
			)
		}
	}
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping impact service...")

	s.cancel()
	s.loops.Wait()

	if s.pool != nil {
		if err := s.pool.Shutdown(ctx); err != nil {
			s.logger.Warn(ctx, "worker pool shutdown incomplete", logger.Error(err))
		}
		s.pool = nil
		s.queue = nil
	}

	if s.perf != nil {
		if err := s.perf.Close(); err != nil {
			s.logger.Warn(ctx, "closing performance log failed", logger.Error(err))
		}
		s.perf = nil
	}

	s.started = false
	s.logger.Info(ctx, "impact service stopped")
}

// Analyze scores a batch of observations, stores the pass and records its
// predictions. When learning on analyze is enabled the learner runs first so
// the pass uses the freshest weights.
func (s *Service) Analyze(ctx context.Context, observations []model.Observation) (engine.Pass, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return engine.Pass{}, ErrNotStarted
	}

	if s.learnOnAnalyze {
		s.learner.Learn(ctx, s.perf)
	}

	pass := s.engine.Analyze(ctx, observations)
	if err := s.history.Save(ctx, pass); err != nil {
		return pass, fmt.Errorf("save pass: %w", err)
	}

	if s.recordPredictions && len(pass.Results) > 0 {
		if err := s.perf.Append(ctx, predictions(pass)...); err != nil {
			s.logger.Warn(ctx, "recording predictions failed",
				logger.String("pass_id", pass.ID),
				logger.Error(err),
			)
			metrics.RecordErrorByComponent("service", "record_predictions")
		}
	}
	return pass, nil
}

// predictions turns the results of a pass into pending performance records.
func predictions(pass engine.Pass) []model.PerformanceRecord {
	date := pass.At.Format(model.DateLayout)
	out := make([]model.PerformanceRecord, 0, len(pass.Results))
	for _, r := range pass.Results {
		if r.Stock == "" {
			continue
		}
		out = append(out, model.PerformanceRecord{
			Stock:     r.Stock,
			Category:  r.Category,
			Predicted: r.RawScore,
			Date:      date,
		})
	}
	return out
}

// Collect polls the configured feeds and analyzes what they returned. Feed
// failures are returned alongside the pass and do not abort it.
func (s *Service) Collect(ctx context.Context) (engine.Pass, []error, error) {
	s.mu.RLock()
	collector := s.collector
	started := s.started
	s.mu.RUnlock()

	if !started {
		return engine.Pass{}, nil, ErrNotStarted
	}
	if len(collector.Feeds()) == 0 {
		return engine.Pass{}, nil, feed.ErrNoFeeds
	}

	observations, feedErrs := collector.Collect(ctx)
	for _, err := range feedErrs {
		s.logger.Warn(ctx, "feed fetch failed", logger.Error(err))
	}

	pass, err := s.Analyze(ctx, observations)
	return pass, feedErrs, err
}

// Learn runs the adaptive learner now.
func (s *Service) Learn(ctx context.Context) (learner.Outcome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return learner.Outcome{}, ErrNotStarted
	}
	return s.learner.Learn(ctx, s.perf), nil
}

// Weights returns a snapshot of the current category weights.
func (s *Service) Weights() model.WeightTable {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return classify.DefaultTable().Defaults()
	}
	return s.store.Snapshot()
}

// Resolve fills the actual outcome of the pending predictions of stock made
// on date. It returns how many records were resolved.
func (s *Service) Resolve(ctx context.Context, stock, date string, actual float64) (int, error) {
	stock = strings.ToUpper(strings.TrimSpace(stock))
	if stock == "" {
		return 0, fmt.Errorf("%w: empty stock", ErrInvalidInput)
	}
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		return 0, fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidInput, date)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return 0, ErrNotStarted
	}
	return s.perf.Resolve(ctx, stock, date, actual)
}

// TopN returns the top n entries of the latest pass.
func (s *Service) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.history.TopN(ctx, n)
}

// Rank returns the best entry of stock in the latest pass.
func (s *Service) Rank(ctx context.Context, stock string) (types.Entry, error) {
	if err := s.ready(); err != nil {
		return types.Entry{}, err
	}
	return s.history.Rank(ctx, strings.ToUpper(strings.TrimSpace(stock)))
}

// Pass returns a stored pass by id, or the latest one when id is empty.
func (s *Service) Pass(ctx context.Context, id string) (engine.Pass, error) {
	if err := s.ready(); err != nil {
		return engine.Pass{}, err
	}
	if id == "" {
		return s.history.Latest(ctx)
	}
	return s.history.Get(ctx, id)
}

// Technical evaluates RSI and moving-average signals over closing prices.
func (s *Service) Technical(_ context.Context, closes []float64) (technical.Signal, error) {
	return technical.Evaluate(closes)
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":           s.started,
		"workerCount":       s.workerCount,
		"queueSize":         s.queueSize,
		"historySize":       s.historySize,
		"performanceLog":    s.perfBackend,
		"learnOnAnalyze":    s.learnOnAnalyze,
		"recordPredictions": s.recordPredictions,
		"weightFloor":       s.weightRange.Floor,
		"weightCeiling":     s.weightRange.Ceiling,
	}

	if s.started {
		passes := s.history.Count(ctx)
		stats["passes"] = passes
		stats["feeds"] = len(s.collector.Feeds())
		stats["weights"] = s.store.Snapshot()

		if s.queue != nil {
			queueLen := s.queue.Len()
			stats["queueLength"] = queueLen
			metrics.UpdateQueueSize(queueLen)
		}
		if latest, err := s.history.Latest(ctx); err == nil {
			stats["latestPassID"] = latest.ID
			stats["latestResults"] = len(latest.Results)
		} else if !errors.Is(err, repository.ErrEmpty) {
			s.logger.Debug(ctx, "latest pass unavailable", logger.Error(err))
		}
		metrics.UpdateHistoryPasses(passes)
	}

	return stats
}

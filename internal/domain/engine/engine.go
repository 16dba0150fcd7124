// Package engine runs a scoring pass: consolidate, classify, score,
// normalize and rank, all against one weight snapshot.
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/okian/impact/internal/domain/classify"
	"github.com/okian/impact/internal/domain/consolidate"
	"github.com/okian/impact/internal/domain/model"
	"github.com/okian/impact/internal/domain/scoring"
	"github.com/okian/impact/internal/domain/sentiment"
	"github.com/okian/impact/pkg/logger"
	"github.com/okian/impact/pkg/metrics"
)

// WeightSource hands out the weight table used for a pass.
type WeightSource interface {
	Snapshot() model.WeightTable
}

// Dispatcher hands a task to asynchronous scorers. The scorer answers on
// the task's Reply channel.
type Dispatcher interface {
	Enqueue(ctx context.Context, task model.Task) error
}

// Pass is the ranked outcome of scoring one batch of observations.
// Normalized scores are relative to this pass only.
type Pass struct {
	ID      string               `json:"pass_id"`
	At      time.Time            `json:"at"`
	Results []model.ScoredResult `json:"results"`
}

// Engine scores batches of observations.
type Engine struct {
	weights      WeightSource
	consolidator consolidate.Consolidator
	classifier   classify.Classifier
	sentiment    sentiment.Scorer
	calculator   *scoring.Calculator
	dispatcher   Dispatcher
	logger       logger.Logger
	now          func() time.Time
}

// New creates an Engine reading weights from ws. Components not set by
// options get their defaults.
func New(ws WeightSource, opts ...Option) *Engine {
	e := &Engine{
		weights:      ws,
		consolidator: consolidate.New(),
		classifier:   classify.NewKeywordClassifier(classify.DefaultTable()),
		sentiment:    sentiment.NewLexiconScorer(),
		calculator:   scoring.NewCalculator(),
		logger:       logger.Get().Named("engine"),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Analyze scores a batch. An empty batch yields a pass without results.
func (e *Engine) Analyze(ctx context.Context, observations []model.Observation) Pass {
	start := time.Now()
	pass := Pass{ID: uuid.NewString(), At: e.now().UTC(), Results: []model.ScoredResult{}}

	table := e.weights.Snapshot()
	items := e.consolidator.Consolidate(ctx, observations)
	if len(items) == 0 {
		metrics.RecordPass(len(observations), 0, 0, msSince(start))
		return pass
	}

	var scored []model.ScoredResult
	if e.dispatcher != nil {
		scored = e.fanOut(ctx, pass.ID, items, table)
	} else {
		scored = make([]model.ScoredResult, len(items))
		for i, item := range items {
			scored[i] = e.ScoreItem(ctx, item, table)
		}
	}

	normalized, ok := scoring.Normalize(scored)
	if !ok {
		metrics.RecordDegenerateNormalization()
		e.logger.Debug(ctx, "no positive raw score in pass, all normalized to zero", logger.String("pass_id", pass.ID))
	}
	scoring.Rank(normalized)
	pass.Results = normalized

	metrics.RecordPass(len(observations), len(items), len(normalized), msSince(start))
	e.logger.Debug(ctx, "pass scored",
		logger.String("pass_id", pass.ID),
		logger.Int("observations", len(observations)),
		logger.Int("items", len(items)),
		logger.Duration("took", time.Since(start)))
	return pass
}

// ScoreItem scores one consolidated item against table. It is pure apart
// from metrics, so workers may call it concurrently.
func (e *Engine) ScoreItem(_ context.Context, item model.ConsolidatedItem, table model.WeightTable) model.ScoredResult {
	start := time.Now()
	polarity := e.sentiment.Score(item.Headline)
	match := e.classifier.Classify(item.Headline, table)
	raw, adjusted := e.calculator.Score(polarity, match.Weight, item.SourceCount())

	metrics.RecordCategory(match.Category, match.Fallback)
	metrics.RecordItemScoringLatency(msSince(start))

	return model.ScoredResult{
		Stock:          item.Stock,
		Headline:       item.Headline,
		Sources:        item.Sources,
		Link:           item.Link,
		Sentiment:      scoring.Round(polarity, scoring.SentimentPlaces),
		Category:       match.Category,
		CategoryWeight: adjusted,
		RawScore:       raw,
	}
}

// fanOut scores items through the dispatcher and puts answers back in input
// order. Items that cannot be dispatched, or whose answer does not arrive
// before ctx ends, are scored inline.
func (e *Engine) fanOut(ctx context.Context, passID string, items []model.ConsolidatedItem, table model.WeightTable) []model.ScoredResult {
	out := make([]model.ScoredResult, len(items))
	done := make([]bool, len(items))
	reply := make(chan model.TaskResult, len(items))

	pending := 0
	for i, item := range items {
		task := model.Task{PassID: passID, Index: i, Item: item, Weights: table, Reply: reply}
		if err := e.dispatcher.Enqueue(ctx, task); err != nil {
			metrics.RecordInlineScoringFallback()
			e.logger.Debug(ctx, "dispatch failed, scoring inline", logger.Int("index", i), logger.Error(err))
			out[i] = e.ScoreItem(ctx, item, table)
			done[i] = true
			continue
		}
		pending++
	}

	for pending > 0 {
		select {
		case r := <-reply:
			if r.Index < 0 || r.Index >= len(out) || done[r.Index] {
				continue
			}
			if r.Err != nil {
				metrics.RecordInlineScoringFallback()
				e.logger.Warn(ctx, "worker failed, scoring inline", logger.Int("index", r.Index), logger.Error(r.Err))
				r.Result = e.ScoreItem(ctx, items[r.Index], table)
			}
			out[r.Index] = r.Result
			done[r.Index] = true
			pending--
		case <-ctx.Done():
			e.logger.Warn(ctx, "pass cancelled while waiting for workers, finishing inline",
				logger.String("pass_id", passID), logger.Int("pending", pending))
			for i, item := range items {
				if !done[i] {
					metrics.RecordInlineScoringFallback()
					out[i] = e.ScoreItem(ctx, item, table)
					done[i] = true
				}
			}
			pending = 0
		}
	}
	return out
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}

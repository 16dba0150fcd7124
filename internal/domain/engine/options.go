package engine

import (
	"time"

	"github.com/okian/impact/internal/domain/classify"
	"github.com/okian/impact/internal/domain/consolidate"
	"github.com/okian/impact/internal/domain/scoring"
	"github.com/okian/impact/internal/domain/sentiment"
	"github.com/okian/impact/pkg/logger"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithConsolidator sets how duplicate observations are merged.
func WithConsolidator(c consolidate.Consolidator) Option {
	return func(e *Engine) {
		if c != nil {
			e.consolidator = c
		}
	}
}

// WithClassifier sets the category classifier.
func WithClassifier(c classify.Classifier) Option {
	return func(e *Engine) {
		if c != nil {
			e.classifier = c
		}
	}
}

// WithSentiment sets the sentiment scorer.
func WithSentiment(s sentiment.Scorer) Option {
	return func(e *Engine) {
		if s != nil {
			e.sentiment = s
		}
	}
}

// WithCalculator sets the score calculator.
func WithCalculator(c *scoring.Calculator) Option {
	return func(e *Engine) {
		if c != nil {
			e.calculator = c
		}
	}
}

// WithDispatcher scores items through asynchronous workers.
func WithDispatcher(d Dispatcher) Option {
	return func(e *Engine) {
		e.dispatcher = d
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock sets the time source for pass timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

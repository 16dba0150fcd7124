// Package scoring turns sentiment, category weight and source corroboration
// into impact scores, then normalizes and ranks a batch.
package scoring

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/okian/impact/internal/domain/model"
)

// Scoring constants.
const (
	SentimentFactor = 0.3
	WeightFactor    = 0.7
	SourceBonus     = 0.05
	ScaleMax        = 10

	defaultCeiling = 10

	// Decimal places of reported values.
	RawPlaces        = 4
	WeightPlaces     = 4
	SentimentPlaces  = 2
	NormalizedPlaces = 2
)

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithCeiling caps the source-adjusted weight. Non-positive values are ignored.
func WithCeiling(ceiling float64) Option {
	return func(c *Calculator) {
		if ceiling > 0 {
			c.ceiling = ceiling
		}
	}
}

// Calculator computes the raw impact score of one item.
type Calculator struct {
	ceiling float64
}

// NewCalculator creates a Calculator with a ceiling of 10.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{ceiling: defaultCeiling}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ceiling returns the weight cap.
func (c *Calculator) Ceiling() float64 { return c.ceiling }

// Score returns the raw score and the source-adjusted weight. Every extra
// source adds a small bonus to the weight, up to the ceiling. A single source
// leaves the base weight untouched.
func (c *Calculator) Score(sentiment, baseWeight float64, sourceCount int) (raw, adjusted float64) {
	adjusted = baseWeight
	if sourceCount > 1 {
		adjusted = Round(min(baseWeight+SourceBonus*float64(sourceCount-1), c.ceiling), WeightPlaces)
	}
	raw = Round(SentimentFactor*sentiment+WeightFactor*adjusted, RawPlaces)
	return raw, adjusted
}

// Normalize rescales raw scores so the batch maximum maps to 10. When the
// maximum is not positive every normalized score is 0. It returns false in
// that degenerate case. The input slice is not modified.
func Normalize(results []model.ScoredResult) ([]model.ScoredResult, bool) {
	out := slices.Clone(results)
	if len(out) == 0 {
		return out, true
	}

	maxRaw := out[0].RawScore
	for _, r := range out[1:] {
		maxRaw = max(maxRaw, r.RawScore)
	}

	if maxRaw <= 0 {
		for i := range out {
			out[i].NormalizedScore = 0
		}
		return out, false
	}

	for i := range out {
		out[i].NormalizedScore = Round(out[i].RawScore/maxRaw*ScaleMax, NormalizedPlaces)
	}
	return out, true
}

// Rank sorts results by normalized score, highest first. Equal scores keep
// their input order.
func Rank(results []model.ScoredResult) {
	slices.SortStableFunc(results, func(a, b model.ScoredResult) int {
		return cmp.Compare(b.NormalizedScore, a.NormalizedScore)
	})
}

// Round rounds v to places decimal places, half away from zero.
func Round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

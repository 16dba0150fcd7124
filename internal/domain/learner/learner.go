// Package learner nudges category weights toward observed outcomes.
package learner

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/okian/impact/internal/domain/model"
	"github.com/okian/impact/pkg/logger"
	"github.com/okian/impact/pkg/metrics"
)

// DefaultMinSamples is the number of resolved records needed before learning.
const DefaultMinSamples = 20

// Reasons reported in Outcome.
const (
	ReasonApplied          = "applied"
	ReasonReadFailed       = "read_failed"
	ReasonTooFewSamples    = "too_few_samples"
	ReasonNoNewSamples     = "no_new_samples"
	ReasonNoKnownCategory  = "no_known_category"
	ReasonPersistFailed    = "persist_failed"
	ReasonRecoveredFailure = "recovered_failure"
)

// RecordSource provides performance records.
type RecordSource interface {
	Records(ctx context.Context) ([]model.PerformanceRecord, error)
}

// WeightStore is the part of the weight store the learner writes through.
type WeightStore interface {
	Snapshot() model.WeightTable
	Update(ctx context.Context, fn func(current model.WeightTable) map[string]float64) error
}

// Outcome describes one learning run.
type Outcome struct {
	Applied  bool               `json:"applied"`
	Resolved int                `json:"resolved"`
	Fresh    int                `json:"fresh"`
	Deltas   map[string]float64 `json:"deltas,omitempty"`
	Reason   string             `json:"reason"`
}

// Learner adjusts each category weight by the mean prediction error of its
// resolved records. Every resolved record is learned from once; records
// already applied are remembered for the lifetime of the Learner.
type Learner struct {
	mu         sync.Mutex
	learned    map[string]int
	store      WeightStore
	minSamples int
	logger     logger.Logger
}

// New creates a Learner writing through store.
func New(store WeightStore, opts ...Option) *Learner {
	l := &Learner{
		learned:    make(map[string]int),
		store:      store,
		minSamples: DefaultMinSamples,
		logger:     logger.Get().Named("learner"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Learn runs one update over the resolved records not learned from yet. It
// never fails: problems leave the weights as they were and are reported in
// the Outcome.
func (l *Learner) Learn(ctx context.Context, src RecordSource) (out Outcome) {
	l.mu.Lock()
	defer l.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			l.logger.Error(ctx, "learner panicked, weights unchanged", logger.String("panic", fmt.Sprint(r)))
			out = Outcome{Resolved: out.Resolved, Reason: ReasonRecoveredFailure}
		}
		metrics.RecordLearnerRun(out.Reason, out.Resolved)
	}()

	records, err := src.Records(ctx)
	if err != nil {
		l.logger.Warn(ctx, "reading performance log failed, skipping learning", logger.Error(err))
		return Outcome{Reason: ReasonReadFailed}
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	seen := make(map[string]int)
	var fresh []string
	resolved := 0
	for _, r := range records {
		if !r.Resolved() {
			continue
		}
		resolved++
		key := recordKey(r)
		seen[key]++
		if seen[key] <= l.learned[key] {
			continue
		}
		fresh = append(fresh, key)
		sums[r.Category] += *r.Actual - r.Predicted
		counts[r.Category]++
	}

	if len(fresh) < l.minSamples {
		reason := ReasonTooFewSamples
		if len(fresh) == 0 && resolved > 0 {
			reason = ReasonNoNewSamples
		}
		l.logger.Debug(ctx, "not enough new resolved records to learn",
			logger.Int("resolved", resolved), logger.Int("fresh", len(fresh)), logger.Int("min_samples", l.minSamples))
		return Outcome{Resolved: resolved, Fresh: len(fresh), Reason: reason}
	}

	current := l.store.Snapshot()
	deltas := make(map[string]float64, len(sums))
	for cat, sum := range sums {
		if _, known := current[cat]; !known {
			continue
		}
		deltas[cat] = sum / float64(counts[cat])
	}
	if len(deltas) == 0 {
		return Outcome{Resolved: resolved, Fresh: len(fresh), Reason: ReasonNoKnownCategory}
	}

	err = l.store.Update(ctx, func(current model.WeightTable) map[string]float64 {
		next := make(map[string]float64, len(deltas))
		for cat, d := range deltas {
			next[cat] = current[cat] + d
		}
		return next
	})
	if err != nil {
		l.logger.Error(ctx, "persisting learned weights failed", logger.Error(err))
		return Outcome{Resolved: resolved, Fresh: len(fresh), Deltas: deltas, Reason: ReasonPersistFailed}
	}

	for _, key := range fresh {
		l.learned[key]++
	}

	l.logger.Info(ctx, "weights updated from performance log",
		logger.Int("resolved", resolved), logger.Int("fresh", len(fresh)), logger.Strings("categories", sortedKeys(deltas)))
	return Outcome{Applied: true, Resolved: resolved, Fresh: len(fresh), Deltas: deltas, Reason: ReasonApplied}
}

// recordKey identifies a resolved record. Identical records are counted, not
// collapsed, so repeated predictions are each learned from once.
func recordKey(r model.PerformanceRecord) string {
	return r.Stock + "|" + r.Category + "|" + r.Date + "|" +
		strconv.FormatFloat(r.Predicted, 'g', -1, 64) + "|" +
		strconv.FormatFloat(*r.Actual, 'g', -1, 64)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

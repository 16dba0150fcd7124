// Package weights keeps the current category weights. Readers get immutable
// snapshots without locking, a single writer clamps, persists and publishes.
package weights

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"sync/atomic"

	"github.com/okian/impact/internal/domain/model"
	"github.com/okian/impact/pkg/logger"
	"github.com/okian/impact/pkg/metrics"
)

// Store holds the live weight table.
type Store struct {
	current atomic.Pointer[model.WeightTable]
	writeMu sync.Mutex

	bounds    Range
	defaults  model.WeightTable
	persister Persister
	logger    logger.Logger
}

// NewStore creates a store seeded with defaults, clamped to the range.
// An invalid range or an empty default table is an error.
func NewStore(defaults map[string]float64, opts ...Option) (*Store, error) {
	s := &Store{
		bounds:    DefaultRange(),
		persister: NewMemoryPersister(),
		logger:    logger.Get().Named("weights"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.bounds.Validate(); err != nil {
		return nil, err
	}
	if len(defaults) == 0 {
		return nil, ErrNoCategories
	}

	s.defaults = s.clampAll(defaults)
	s.publish(s.defaults.Clone())
	return s, nil
}

// Load replaces the table with persisted weights. Unknown categories are
// ignored, missing ones come from the defaults and values are clamped.
// A missing document keeps the defaults silently, an unreadable one keeps
// them with a warning. It reports whether persisted weights were used.
func (s *Store) Load(ctx context.Context) bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	stored, err := s.persister.Load(ctx)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.logger.Debug(ctx, "no persisted weights, using defaults")
		s.publish(s.defaults.Clone())
		return false
	case err != nil:
		s.logger.Warn(ctx, "persisted weights unreadable, using defaults", logger.Error(err))
		metrics.RecordWeightLoadFallback()
		s.publish(s.defaults.Clone())
		return false
	}

	table := s.defaults.Clone()
	for cat, w := range stored {
		if _, known := table[cat]; !known {
			s.logger.Debug(ctx, "ignoring unknown persisted category", logger.String("category", cat))
			continue
		}
		table[cat] = s.bounds.Clamp(w)
	}
	s.publish(table)
	s.logger.Info(ctx, "weights loaded", logger.Int("categories", len(table)))
	return true
}

// Get returns the current weight of category.
func (s *Store) Get(category string) (float64, bool) {
	return s.Snapshot().Weight(category)
}

// Snapshot returns the current table. It must not be modified.
func (s *Store) Snapshot() model.WeightTable {
	return *s.current.Load()
}

// Range returns the weight bounds.
func (s *Store) Range() Range { return s.bounds }

// Defaults returns a copy of the default table.
func (s *Store) Defaults() model.WeightTable { return s.defaults.Clone() }

// SetAll overwrites the given categories. Unknown categories are ignored.
func (s *Store) SetAll(ctx context.Context, table map[string]float64) error {
	return s.Update(ctx, func(model.WeightTable) map[string]float64 {
		return table
	})
}

// Update applies fn to a copy of the current table as one write: the values
// fn returns are clamped, persisted and then published. When persisting fails
// the previous table stays in effect.
func (s *Store) Update(ctx context.Context, fn func(current model.WeightTable) map[string]float64) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next := s.Snapshot().Clone()
	for cat, w := range fn(next.Clone()) {
		if _, known := next[cat]; !known {
			continue
		}
		next[cat] = s.bounds.Clamp(w)
	}

	if err := s.persister.Save(ctx, next); err != nil {
		metrics.RecordWeightPersistError()
		s.logger.Error(ctx, "persisting weights failed, keeping previous table", logger.Error(err))
		return fmt.Errorf("persist weights: %w", err)
	}
	s.publish(next)
	return nil
}

// Persist saves the current table.
func (s *Store) Persist(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.persister.Save(ctx, s.Snapshot()); err != nil {
		metrics.RecordWeightPersistError()
		return fmt.Errorf("persist weights: %w", err)
	}
	return nil
}

func (s *Store) publish(table model.WeightTable) {
	s.current.Store(&table)
	metrics.UpdateCategoryWeights(table)
}

func (s *Store) clampAll(in map[string]float64) model.WeightTable {
	out := make(model.WeightTable, len(in))
	for cat, w := range in {
		out[cat] = s.bounds.Clamp(w)
	}
	return out
}

package repository

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/okian/impact/internal/domain/engine"
	"github.com/okian/impact/pkg/metrics"
)

const defaultHistorySize = 32

// snapshot is the read view of the latest pass.
type snapshot struct {
	pass    engine.Pass
	entries []Entry
	byStock map[string]int // index of a stock's best entry
}

// HistoryStore is a bounded in-memory Store. Reads of the latest pass go
// through an atomic snapshot and never take the lock.
type HistoryStore struct {
	mu     sync.RWMutex
	passes []engine.Pass // oldest first
	byID   map[string]int
	size   int

	latest atomic.Pointer[snapshot]
}

// NewHistoryStore creates an empty history.
func NewHistoryStore(opts ...Option) *HistoryStore {
	s := &HistoryStore{size: defaultHistorySize, byID: make(map[string]int)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save implements Store. The oldest pass is evicted when the history is full.
func (s *HistoryStore) Save(_ context.Context, pass engine.Pass) error {
	snap := buildSnapshot(pass)

	s.mu.Lock()
	s.passes = append(s.passes, pass)
	if len(s.passes) > s.size {
		s.passes = s.passes[len(s.passes)-s.size:]
	}
	s.byID = make(map[string]int, len(s.passes))
	for i, p := range s.passes {
		s.byID[p.ID] = i
	}
	count := len(s.passes)
	s.latest.Store(snap)
	s.mu.Unlock()

	metrics.UpdateHistoryPasses(count)
	return nil
}

// Latest implements Store.
func (s *HistoryStore) Latest(_ context.Context) (engine.Pass, error) {
	snap := s.latest.Load()
	if snap == nil {
		return engine.Pass{}, ErrEmpty
	}
	return snap.pass, nil
}

// Get implements Store.
func (s *HistoryStore) Get(_ context.Context, id string) (engine.Pass, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return engine.Pass{}, ErrNotFound
	}
	return s.passes[i], nil
}

// TopN implements Store. Fewer than n entries are returned when the pass is
// smaller.
func (s *HistoryStore) TopN(_ context.Context, n int) ([]Entry, error) {
	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}
	snap := s.latest.Load()
	if snap == nil {
		return []Entry{}, nil
	}
	n = min(n, len(snap.entries))
	out := make([]Entry, n)
	copy(out, snap.entries[:n])
	return out, nil
}

// Rank implements Store.
func (s *HistoryStore) Rank(_ context.Context, stock string) (Entry, error) {
	snap := s.latest.Load()
	if snap == nil {
		return Entry{}, ErrNotFound
	}
	i, ok := snap.byStock[stock]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, ErrNotFound
	}
	return snap.entries[i], nil
}

// Count implements Store.
func (s *HistoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.passes)
}

// buildSnapshot ranks the results of a pass. Results arrive sorted by
// normalized score, highest first.
func buildSnapshot(pass engine.Pass) *snapshot {
	entries := make([]Entry, len(pass.Results))
	for i, r := range pass.Results {
		entries[i] = Entry{
			Stock:    r.Stock,
			Headline: r.Headline,
			Category: r.Category,
			Sources:  r.SourceCount(),
			Score:    r.NormalizedScore,
		}
	}
	assignRanksWithTies(entries)

	byStock := make(map[string]int, len(entries))
	for i, e := range entries {
		if _, seen := byStock[e.Stock]; !seen {
			byStock[e.Stock] = i
		}
	}
	return &snapshot{pass: pass, entries: entries, byStock: byStock}
}

// assignRanksWithTies gives equal scores the same rank. Ranks are dense:
// 10, 10, 8 rank as 1, 1, 2.
func assignRanksWithTies(entries []Entry) {
	rank := 0
	for i := range entries {
		if i == 0 || entries[i].Score != entries[i-1].Score {
			rank++
		}
		entries[i].Rank = rank
	}
}

// Package repository keeps the history of recent scoring passes and answers
// leaderboard queries against the latest one.
package repository

import (
	"context"

	"github.com/okian/impact/internal/domain/engine"
	"github.com/okian/impact/internal/domain/types"
)

// Entry is a ranked leaderboard row.
type Entry = types.Entry

// Store provides read/write access to pass history.
type Store interface {
	// Save records a pass and makes it the latest.
	Save(ctx context.Context, pass engine.Pass) error

	// Latest returns the most recent pass, or ErrEmpty.
	Latest(ctx context.Context) (engine.Pass, error)

	// Get returns a retained pass by id, or ErrNotFound.
	Get(ctx context.Context, id string) (engine.Pass, error)

	// TopN returns the first n ranked entries of the latest pass.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Rank returns the best entry of stock in the latest pass, or ErrNotFound.
	Rank(ctx context.Context, stock string) (Entry, error)

	// Count returns the number of retained passes.
	Count(ctx context.Context) int
}

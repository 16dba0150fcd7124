// Package perflog records predicted impact scores and the actual outcomes
// observed later. Resolved records drive weight learning.
package perflog

import (
	"context"
	"errors"

	"github.com/okian/impact/internal/domain/model"
)

// Sentinel errors for the perflog package.
var (
	ErrInvalidRecord = errors.New("invalid performance record")
	ErrClosed        = errors.New("performance log closed")
)

// Log is an append-only store of performance records.
type Log interface {
	Append(ctx context.Context, records ...model.PerformanceRecord) error
	Records(ctx context.Context) ([]model.PerformanceRecord, error)
	// Resolve sets the actual score on pending records of stock and date.
	// Already resolved records are left alone. It returns how many changed.
	Resolve(ctx context.Context, stock, date string, actual float64) (int, error)
	Close() error
}

func validate(r model.PerformanceRecord) error {
	switch {
	case r.Stock == "":
		return errors.Join(ErrInvalidRecord, errors.New("empty stock"))
	case r.Category == "":
		return errors.Join(ErrInvalidRecord, errors.New("empty category"))
	case r.Date == "":
		return errors.Join(ErrInvalidRecord, errors.New("empty date"))
	}
	return nil
}

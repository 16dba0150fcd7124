package weights

import (
	"fmt"
	"math"
)

// Default weight bounds.
const (
	DefaultFloor   = 4.0
	DefaultCeiling = 10.0
)

// Range bounds every stored weight.
type Range struct {
	Floor   float64
	Ceiling float64
}

// DefaultRange returns [4, 10].
func DefaultRange() Range {
	return Range{Floor: DefaultFloor, Ceiling: DefaultCeiling}
}

// Validate reports whether 0 <= Floor < Ceiling.
func (r Range) Validate() error {
	if r.Floor < 0 || r.Floor >= r.Ceiling {
		return fmt.Errorf("%w: [%g, %g]", ErrInvalidRange, r.Floor, r.Ceiling)
	}
	return nil
}

// Clamp limits v to the range. NaN maps to the floor.
func (r Range) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return r.Floor
	}
	return min(max(v, r.Floor), r.Ceiling)
}

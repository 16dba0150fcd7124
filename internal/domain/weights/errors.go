package weights

import "errors"

// Sentinel errors for the weights package.
var (
	ErrInvalidRange = errors.New("invalid weight range")
	ErrNoCategories = errors.New("weight store needs at least one category")
)

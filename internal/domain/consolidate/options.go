package consolidate

// Option applies a configuration option to the ExactConsolidator.
type Option func(*ExactConsolidator)

// WithKeepEmptyStock keeps observations that carry no ticker. By default they
// are dropped as malformed input.
func WithKeepEmptyStock(keep bool) Option {
	return func(c *ExactConsolidator) {
		c.keepEmptyStock = keep
	}
}

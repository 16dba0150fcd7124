package weights

import "github.com/okian/impact/pkg/logger"

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithRange sets the weight bounds. The range is validated by NewStore.
func WithRange(r Range) Option {
	return func(s *Store) {
		s.bounds = r
	}
}

// WithPersister sets where weights are loaded from and saved to.
func WithPersister(p Persister) Option {
	return func(s *Store) {
		if p != nil {
			s.persister = p
		}
	}
}

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

package repository

// Option applies a configuration option to the HistoryStore.
type Option func(*HistoryStore)

// WithHistorySize sets how many passes are retained.
func WithHistorySize(n int) Option {
	return func(s *HistoryStore) {
		if n > 0 {
			s.size = n
		}
	}
}

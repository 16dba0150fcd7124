package learner

import "github.com/okian/impact/pkg/logger"

// Option applies a configuration option to the Learner.
type Option func(*Learner)

// WithMinSamples sets how many resolved records are needed to learn.
func WithMinSamples(n int) Option {
	return func(l *Learner) {
		if n > 0 {
			l.minSamples = n
		}
	}
}

// WithLogger sets a custom logger for the learner.
func WithLogger(lg logger.Logger) Option {
	return func(l *Learner) {
		if lg != nil {
			l.logger = lg
		}
	}
}

package sentiment

import "strings"

// Option applies a configuration option to the LexiconScorer.
type Option func(*LexiconScorer)

// WithWords adds or overrides word polarities. Values are clamped to [-1, 1].
func WithWords(words map[string]float64) Option {
	return func(s *LexiconScorer) {
		for w, p := range words {
			s.lexicon[strings.ToLower(w)] = clamp(p)
		}
	}
}

// WithIntensifiers adds words that amplify the next polar word.
func WithIntensifiers(words ...string) Option {
	return func(s *LexiconScorer) {
		for _, w := range words {
			s.intensifiers[strings.ToLower(w)] = struct{}{}
		}
	}
}

// WithNegations adds words that invert and dampen the next polar word.
func WithNegations(words ...string) Option {
	return func(s *LexiconScorer) {
		for _, w := range words {
			s.negations[strings.ToLower(w)] = struct{}{}
		}
	}
}

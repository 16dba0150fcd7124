// Package sentiment scores the polarity of a headline in [-1, 1].
package sentiment

import (
	"strings"
	"unicode"
)

// Scorer returns the polarity of text, -1 most negative and 1 most positive.
type Scorer interface {
	Score(text string) float64
}

const (
	intensifierFactor = 1.3
	negationFactor    = -0.5
)

// LexiconScorer averages the polarity of known words. An intensifier or a
// negation modifies the word right after it.
type LexiconScorer struct {
	lexicon      map[string]float64
	intensifiers map[string]struct{}
	negations    map[string]struct{}
}

// NewLexiconScorer creates a scorer with the built-in market lexicon.
func NewLexiconScorer(opts ...Option) *LexiconScorer {
	s := &LexiconScorer{
		lexicon:      make(map[string]float64, len(defaultLexicon)),
		intensifiers: toSet(defaultIntensifiers),
		negations:    toSet(defaultNegations),
	}
	for w, p := range defaultLexicon {
		s.lexicon[w] = p
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score implements Scorer. Text without polar words scores 0.
func (s *LexiconScorer) Score(text string) float64 {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})

	var (
		sum      float64
		matched  int
		modifier = 1.0
	)
	for _, tok := range tokens {
		if _, ok := s.intensifiers[tok]; ok {
			modifier *= intensifierFactor
			continue
		}
		if _, ok := s.negations[tok]; ok {
			modifier *= negationFactor
			continue
		}
		if p, ok := s.lexicon[tok]; ok {
			sum += clamp(p * modifier)
			matched++
		}
		modifier = 1.0
	}
	if matched == 0 {
		return 0
	}
	return clamp(sum / float64(matched))
}

func clamp(v float64) float64 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	default:
		return v
	}
}

func toSet(words []string) map[string]struct{} {
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[w] = struct{}{}
	}
	return out
}

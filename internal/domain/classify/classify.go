package classify

import "strings"

// WeightReader resolves the current weight of a category.
// model.WeightTable satisfies it.
type WeightReader interface {
	Weight(category string) (float64, bool)
}

// Match is the outcome of classifying one headline.
type Match struct {
	Category string
	Weight   float64
	Fallback bool
}

// Classifier assigns an impact category and its weight to a headline.
type Classifier interface {
	Classify(headline string, weights WeightReader) Match
}

// KeywordClassifier picks the first category in table order that has a
// keyword contained in the lower-cased headline.
type KeywordClassifier struct {
	table Table
}

// NewKeywordClassifier creates a classifier over table.
func NewKeywordClassifier(table Table) *KeywordClassifier {
	return &KeywordClassifier{table: table}
}

// Table returns the category table the classifier matches against.
func (k *KeywordClassifier) Table() Table { return k.table }

// Classify implements Classifier. The weight comes from weights when it knows
// the category, otherwise from the category default.
func (k *KeywordClassifier) Classify(headline string, weights WeightReader) Match {
	lower := strings.ToLower(headline)
	for _, c := range k.table.categories {
		for _, kw := range c.Keywords {
			if strings.Contains(lower, kw) {
				return Match{Category: c.Name, Weight: lookup(weights, c)}
			}
		}
	}
	return Match{Category: k.table.fallback.Name, Weight: lookup(weights, k.table.fallback), Fallback: true}
}

func lookup(weights WeightReader, c Category) float64 {
	if weights != nil {
		if w, ok := weights.Weight(c.Name); ok {
			return w
		}
	}
	return c.DefaultWeight
}

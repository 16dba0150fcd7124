// Package model contains domain models passed between layers.
package model

// Observation is one mention of a stock in a headline, as returned by a collector.
type Observation struct {
	Stock    string `json:"stock"`
	Headline string `json:"headline"`
	Source   string `json:"source"`
	Link     string `json:"link,omitempty"`
}

// ConsolidatedItem is one distinct headline with every source that reported it.
type ConsolidatedItem struct {
	Stock    string
	Headline string
	Sources  []string // non-empty, first-seen order, no duplicates
	Link     string   // link of the first observation
}

// SourceCount returns the number of distinct sources, never less than one.
func (c ConsolidatedItem) SourceCount() int {
	if len(c.Sources) < 1 {
		return 1
	}
	return len(c.Sources)
}

// ScoredResult is a consolidated item enriched with its impact analysis.
// NormalizedScore is only comparable with results of the same pass.
type ScoredResult struct {
	Stock           string   `json:"stock"`
	Headline        string   `json:"headline"`
	Sources         []string `json:"sources"`
	Link            string   `json:"link,omitempty"`
	Sentiment       float64  `json:"sentiment"`
	Category        string   `json:"category"`
	CategoryWeight  float64  `json:"category_weight"`
	RawScore        float64  `json:"raw_score"`
	NormalizedScore float64  `json:"normalized_score"`
}

// SourceCount mirrors ConsolidatedItem.SourceCount for scored results.
func (r ScoredResult) SourceCount() int {
	if len(r.Sources) < 1 {
		return 1
	}
	return len(r.Sources)
}

// Package consolidate merges headline observations reported by several sources.
package consolidate

import (
	"context"
	"strings"

	"github.com/okian/impact/internal/domain/model"
)

// Consolidator merges duplicate observations of one scoring pass.
type Consolidator interface {
	// Consolidate returns one item per distinct headline, in first-seen order.
	Consolidate(ctx context.Context, observations []model.Observation) []model.ConsolidatedItem
}

// ExactConsolidator merges observations whose headline text is byte-for-byte
// equal. Near-duplicates (paraphrases, different casing) stay separate.
//
// Stock and link are taken from the first observation of a headline, so a
// collector with non-deterministic ordering yields a non-deterministic pick.
type ExactConsolidator struct {
	keepEmptyStock bool
}

// New creates an ExactConsolidator.
func New(opts ...Option) *ExactConsolidator {
	c := &ExactConsolidator{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Consolidate implements Consolidator.
func (c *ExactConsolidator) Consolidate(_ context.Context, observations []model.Observation) []model.ConsolidatedItem {
	if len(observations) == 0 {
		return []model.ConsolidatedItem{}
	}

	items := make([]model.ConsolidatedItem, 0, len(observations))
	index := make(map[string]int, len(observations))
	seenSources := make([]map[string]struct{}, 0, len(observations))

	for _, obs := range observations {
		if strings.TrimSpace(obs.Headline) == "" {
			continue
		}
		stock := strings.ToUpper(strings.TrimSpace(obs.Stock))
		if stock == "" && !c.keepEmptyStock {
			continue
		}

		if i, ok := index[obs.Headline]; ok {
			if _, dup := seenSources[i][obs.Source]; !dup {
				seenSources[i][obs.Source] = struct{}{}
				items[i].Sources = append(items[i].Sources, obs.Source)
			}
			continue
		}

		index[obs.Headline] = len(items)
		seenSources = append(seenSources, map[string]struct{}{obs.Source: {}})
		items = append(items, model.ConsolidatedItem{
			Stock:    stock,
			Headline: obs.Headline,
			Sources:  []string{obs.Source},
			Link:     obs.Link,
		})
	}
	return items
}

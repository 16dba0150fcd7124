// Package classify maps headlines to impact categories by keyword matching.
package classify

import "strings"

// FallbackCategory is assigned when no keyword of any category matches.
const FallbackCategory = "generic"

// Category is an impact category with its trigger keywords.
type Category struct {
	Name          string
	Keywords      []string
	DefaultWeight float64
}

// Table is an ordered list of categories. Earlier categories win when a
// headline matches keywords of several categories.
type Table struct {
	categories []Category
	fallback   Category
}

// NewTable builds a table from categories in priority order. Keywords are
// lower-cased here so matching against a lower-cased headline is exact.
func NewTable(fallback Category, categories ...Category) Table {
	t := Table{
		categories: make([]Category, 0, len(categories)),
		fallback:   Category{Name: fallback.Name, DefaultWeight: fallback.DefaultWeight},
	}
	for _, c := range categories {
		kws := make([]string, 0, len(c.Keywords))
		for _, kw := range c.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				kws = append(kws, kw)
			}
		}
		t.categories = append(t.categories, Category{Name: c.Name, Keywords: kws, DefaultWeight: c.DefaultWeight})
	}
	return t
}

// DefaultTable returns the built-in market news categories.
func DefaultTable() Table {
	return NewTable(
		Category{Name: FallbackCategory, DefaultWeight: 4},
		Category{Name: "government", DefaultWeight: 9, Keywords: []string{
			"govt", "cabinet", "ministry", "policy change", "budget", "duty hike", "duty cut", "export tax", "import duty",
		}},
		Category{Name: "contract", DefaultWeight: 8.5, Keywords: []string{
			"bags order", "secures contract", "wins order", "award contract", "deal worth", "contract", "bags",
		}},
		Category{Name: "investment", DefaultWeight: 8, Keywords: []string{
			"FII", "DII", "bulk deal", "block deal", "stake bought", "stake acquired",
		}},
		Category{Name: "raw_material", DefaultWeight: 7.5, Keywords: []string{
			"input cost", "steel prices", "commodity price drop", "material cost", "raw material fall",
		}},
		Category{Name: "merger", DefaultWeight: 8, Keywords: []string{
			"merger", "acquires", "takeover", "M&A", "strategic acquisition",
		}},
		Category{Name: "broker_upgrade", DefaultWeight: 7, Keywords: []string{
			"buy rating", "target raised", "upgrade", "top pick", "rating upgrade",
		}},
		Category{Name: "profit", DefaultWeight: 6.5, Keywords: []string{
			"Q1 profit", "net profit rises", "PAT jumps", "quarterly earnings", "beats estimate",
		}},
	)
}

// Categories returns the prioritized categories, fallback excluded.
func (t Table) Categories() []Category {
	out := make([]Category, len(t.categories))
	copy(out, t.categories)
	return out
}

// Fallback returns the fallback category.
func (t Table) Fallback() Category { return t.fallback }

// Names lists every category name, fallback last.
func (t Table) Names() []string {
	names := make([]string, 0, len(t.categories)+1)
	for _, c := range t.categories {
		names = append(names, c.Name)
	}
	return append(names, t.fallback.Name)
}

// Defaults returns the default weight of every category, fallback included.
func (t Table) Defaults() map[string]float64 {
	out := make(map[string]float64, len(t.categories)+1)
	for _, c := range t.categories {
		out[c.Name] = c.DefaultWeight
	}
	out[t.fallback.Name] = t.fallback.DefaultWeight
	return out
}

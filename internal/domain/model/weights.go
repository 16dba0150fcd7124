package model

// WeightTable maps an impact category to its weight. A table handed out by
// the weight store is a snapshot and must not be mutated by readers.
type WeightTable map[string]float64

// Weight returns the weight of category and whether it is present.
func (t WeightTable) Weight(category string) (float64, bool) {
	w, ok := t[category]
	return w, ok
}

// Clone returns an independent copy of the table.
func (t WeightTable) Clone() WeightTable {
	out := make(WeightTable, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

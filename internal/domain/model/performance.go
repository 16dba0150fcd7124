package model

// DateLayout is the calendar-date format used by performance records.
const DateLayout = "2006-01-02"

// PerformanceRecord links a past prediction to its observed outcome.
// Actual stays nil until an external resolver fills it exactly once.
type PerformanceRecord struct {
	Stock     string   `json:"stock"`
	Category  string   `json:"category"`
	Predicted float64  `json:"predicted"`
	Actual    *float64 `json:"actual,omitempty"`
	Date      string   `json:"date"`
}

// Resolved reports whether the record carries an actual outcome.
func (r PerformanceRecord) Resolved() bool {
	return r.Actual != nil
}

// Float returns a pointer to v, handy for filling Actual.
func Float(v float64) *float64 {
	return &v
}

// Package types contains read shapes shared by the repository and the API.
package types

// Entry is one ranked row of a scoring pass.
type Entry struct {
	Rank     int     `json:"rank"`
	Stock    string  `json:"stock"`
	Headline string  `json:"headline"`
	Category string  `json:"category"`
	Sources  int     `json:"sources"`
	Score    float64 `json:"score"`
}

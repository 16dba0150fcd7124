// Package replay drives a running impact service with synthetic headline
// batches and checks that what it ranks is consistent.
package replay

import "time"

// Config holds configuration for a replay run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Batches    int           // Number of /analyze calls
	BatchSize  int           // Observations per batch
	TopN       int           // Leaderboard size to verify
	Workers    int           // Concurrent submitters
	Timeout    time.Duration // HTTP request timeout
	Seed       uint64        // Generator seed, same seed same batches
	Resolve    bool          // Resolve predictions and trigger learning afterwards
	OutputFile string        // Where generated batches are saved, empty skips saving
}

// Observation mirrors the request shape of POST /analyze.
type Observation struct {
	Stock    string `json:"stock"`
	Headline string `json:"headline"`
	Source   string `json:"source"`
	Link     string `json:"link,omitempty"`
}

// Batch is one /analyze request body.
type Batch struct {
	Observations []Observation `json:"observations"`
}

// Result mirrors one scored result of a pass.
type Result struct {
	Stock           string   `json:"stock"`
	Headline        string   `json:"headline"`
	Sources         []string `json:"sources"`
	Category        string   `json:"category"`
	RawScore        float64  `json:"raw_score"`
	NormalizedScore float64  `json:"normalized_score"`
}

// Pass mirrors the response of POST /analyze.
type Pass struct {
	ID      string    `json:"pass_id"`
	At      time.Time `json:"at"`
	Results []Result  `json:"results"`
}

// Entry mirrors a leaderboard entry.
type Entry struct {
	Rank     int     `json:"rank"`
	Stock    string  `json:"stock"`
	Headline string  `json:"headline"`
	Category string  `json:"category"`
	Sources  int     `json:"sources"`
	Score    float64 `json:"score"`
}

// Outcome mirrors the response of POST /learn.
type Outcome struct {
	Applied  bool               `json:"applied"`
	Resolved int                `json:"resolved"`
	Fresh    int                `json:"fresh"`
	Deltas   map[string]float64 `json:"deltas"`
	Reason   string             `json:"reason"`
}

// Stats holds run statistics.
type Stats struct {
	BatchesSubmitted int
	BatchesFailed    int
	Observations     int
	Results          int
	Resolved         int
	LeaderboardSize  int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
	LastPass         Pass
	Learn            Outcome
}

package replay

import "os"

// ShowHelp prints usage information for the replay tool.
func ShowHelp() {
	os.Stdout.WriteString(`News Impact Replay Tool
=======================

Drives a running impact service with synthetic headline batches, then checks
that the leaderboard and per-stock ranks agree with the latest pass.

Usage:
  go run ./cmd/replay [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -batches int
        Number of batches posted to /analyze (default 20)
  -size int
        Observations per batch (default 40)
  -top int
        Leaderboard size to verify (default 10)
  -workers int
        Concurrent submitters (default CPU cores)
  -seed uint
        Generator seed (default 1)
  -resolve
        Resolve the latest predictions and trigger learning
  -timeout duration
        HTTP request timeout (default 30s)
  -output string
        Save generated batches as JSON
  -help
        Show this help message

Examples:
  go run ./cmd/replay -batches 100 -size 80
  go run ./cmd/replay -resolve -seed 42 -output replay/batches.json
`)
}

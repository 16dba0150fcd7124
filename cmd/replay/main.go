package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/impact/internal/replay"
	"github.com/okian/impact/pkg/logger"
)

// Default configuration constants.
const (
	defaultBatches   = 20
	defaultBatchSize = 40
	defaultTopN      = 10
	defaultTimeout   = 30 * time.Second
	runTimeout       = 10 * time.Minute
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:9080", "Base URL of the service")
		batches   = flag.Int("batches", defaultBatches, "Number of batches posted to /analyze")
		batchSize = flag.Int("size", defaultBatchSize, "Observations per batch")
		topN      = flag.Int("top", defaultTopN, "Leaderboard size to verify")
		workers   = flag.Int("workers", runtime.NumCPU(), "Concurrent submitters")
		seed      = flag.Uint64("seed", 1, "Generator seed")
		resolve   = flag.Bool("resolve", false, "Resolve the latest predictions and trigger learning")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		output    = flag.String("output", "", "Save generated batches as JSON")
		verbose   = flag.Bool("verbose", false, "Enable debug logging")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		replay.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	_, err := replay.Run(ctx, &replay.Config{
		BaseURL:    *baseURL,
		Batches:    *batches,
		BatchSize:  *batchSize,
		TopN:       *topN,
		Workers:    *workers,
		Timeout:    *timeout,
		Seed:       *seed,
		Resolve:    *resolve,
		OutputFile: *output,
	})
	if err != nil {
		os.Stderr.WriteString("replay failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1) //nolint:gocritic // exitAfterDefer: cancel already called
	}
}

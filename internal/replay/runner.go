package replay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/impact/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

// ErrNoPasses is returned when every batch submission failed.
var ErrNoPasses = errors.New("no batch was scored")

// Run executes a complete replay against cfg.BaseURL.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	log := logger.Get().Named("replay")
	stats := &Stats{StartTime: time.Now()}
	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	log.Info(ctx, "starting replay",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("batches", cfg.Batches),
		logger.Int("batchSize", cfg.BatchSize),
		logger.Int("workers", cfg.Workers),
		logger.Int("topN", cfg.TopN),
	)

	if err := client.Get(ctx, "/healthz", nil); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	gen := newGenerator(cfg.Seed)
	batches := gen.batches(cfg.Batches, cfg.BatchSize)
	if cfg.OutputFile != "" {
		if err := saveBatches(cfg.OutputFile, batches); err != nil {
			log.Warn(ctx, "failed to save batches", logger.Error(err))
		}
	}

	if err := submitBatches(ctx, client, cfg.Workers, batches, stats); err != nil {
		return stats, err
	}

	var latest Pass
	if err := client.Get(ctx, "/passes/latest", &latest); err != nil {
		return stats, fmt.Errorf("latest pass: %w", err)
	}
	stats.LastPass = latest

	if err := verify(ctx, client, latest, cfg.TopN, stats); err != nil {
		return stats, fmt.Errorf("result verification failed: %w", err)
	}

	if cfg.Resolve {
		if err := resolveAndLearn(ctx, client, gen, latest, stats); err != nil {
			return stats, fmt.Errorf("feedback loop failed: %w", err)
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)
	return stats, nil
}

// submitBatches posts batches to /analyze from workers goroutines.
func submitBatches(ctx context.Context, client *HTTPClient, workers int, batches []Batch, stats *Stats) error {
	var (
		submitted, failed, observations, results int64
		wg                                       sync.WaitGroup
	)

	work := make(chan Batch, workers*2)
	for i := 0; i < max(workers, 1); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for b := range work {
				var pass Pass
				atomic.AddInt64(&submitted, 1)
				if err := client.Post(ctx, "/analyze", b, &pass); err != nil {
					atomic.AddInt64(&failed, 1)
					logger.Get().Debug(ctx, "batch failed", logger.Error(err))
					continue
				}
				atomic.AddInt64(&observations, int64(len(b.Observations)))
				atomic.AddInt64(&results, int64(len(pass.Results)))
			}
		}()
	}

	go func() {
		defer close(work)
		for _, b := range batches {
			select {
			case <-ctx.Done():
				return
			case work <- b:
			}
		}
	}()
	wg.Wait()

	stats.BatchesSubmitted = int(submitted)
	stats.BatchesFailed = int(failed)
	stats.Observations = int(observations)
	stats.Results = int(results)

	if submitted > 0 && submitted == failed {
		return ErrNoPasses
	}
	return ctx.Err()
}

// resolveAndLearn feeds synthetic outcomes for the latest pass back and
// triggers a learning run.
func resolveAndLearn(ctx context.Context, client *HTTPClient, gen *generator, pass Pass, stats *Stats) error {
	date := pass.At.Format("2006-01-02")
	done := make(map[string]struct{}, len(pass.Results))
	for _, r := range pass.Results {
		if _, ok := done[r.Stock]; ok {
			continue
		}
		done[r.Stock] = struct{}{}

		var resp struct {
			Resolved int `json:"resolved"`
		}
		body := map[string]any{"stock": r.Stock, "date": date, "actual": gen.outcome(r.RawScore)}
		if err := client.Post(ctx, "/performance/resolve", body, &resp); err != nil {
			return err
		}
		stats.Resolved += resp.Resolved
	}
	return client.Post(ctx, "/learn", nil, &stats.Learn)
}

func saveBatches(filename string, batches []Batch) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(batches, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal batches: %w", err)
	}
	return os.WriteFile(filename, data, filePermission)
}

func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var batchesPerSecond float64
	if stats.Duration > 0 {
		batchesPerSecond = float64(stats.BatchesSubmitted) / stats.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int("batchesSubmitted", stats.BatchesSubmitted),
		logger.Int("batchesFailed", stats.BatchesFailed),
		logger.Int("observations", stats.Observations),
		logger.Int("results", stats.Results),
		logger.Int("leaderboardEntries", stats.LeaderboardSize),
		logger.Int("resolved", stats.Resolved),
		logger.String("learn", stats.Learn.Reason),
		logger.Duration("duration", stats.Duration),
		logger.Float64("batchesPerSecond", batchesPerSecond),
	)
}

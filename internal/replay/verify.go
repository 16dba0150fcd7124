package replay

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
)

const scoreTolerance = 1e-9

// verify checks the leaderboard and per-stock ranks against the latest pass.
func verify(ctx context.Context, client *HTTPClient, pass Pass, topN int, stats *Stats) error {
	if err := verifyPass(pass); err != nil {
		return err
	}

	var board []Entry
	if err := client.Get(ctx, "/leaderboard?limit="+strconv.Itoa(topN), &board); err != nil {
		return err
	}
	stats.LeaderboardSize = len(board)
	if err := verifyLeaderboard(pass, board, topN); err != nil {
		return err
	}

	for _, e := range board {
		var got Entry
		if err := client.Get(ctx, "/rank/"+url.PathEscape(e.Stock), &got); err != nil {
			return err
		}
		if got.Rank > e.Rank || got.Score < e.Score-scoreTolerance {
			return fmt.Errorf("rank of %s (%d, %.2f) is worse than its leaderboard entry (%d, %.2f)",
				e.Stock, got.Rank, got.Score, e.Rank, e.Score)
		}
	}
	return nil
}

// verifyPass checks ordering and normalization of a pass.
func verifyPass(pass Pass) error {
	if len(pass.Results) == 0 {
		return nil
	}
	maxRaw := math.Inf(-1)
	for i, r := range pass.Results {
		maxRaw = math.Max(maxRaw, r.RawScore)
		if r.NormalizedScore < 0 || r.NormalizedScore > 10 {
			return fmt.Errorf("result %d: normalized score %.2f out of [0,10]", i, r.NormalizedScore)
		}
		if len(r.Sources) == 0 {
			return fmt.Errorf("result %d: no sources", i)
		}
		if i > 0 && r.NormalizedScore > pass.Results[i-1].NormalizedScore {
			return fmt.Errorf("pass not sorted: result %d outranks result %d", i, i-1)
		}
	}
	if maxRaw > 0 && pass.Results[0].NormalizedScore != 10 {
		return fmt.Errorf("top normalized score is %.2f, want 10", pass.Results[0].NormalizedScore)
	}
	return nil
}

// verifyLeaderboard checks that board is the ranked head of pass.
func verifyLeaderboard(pass Pass, board []Entry, topN int) error {
	if want := min(topN, len(pass.Results)); len(board) != want {
		return fmt.Errorf("leaderboard has %d entries, want %d", len(board), want)
	}
	for i, e := range board {
		r := pass.Results[i]
		if e.Stock != r.Stock || e.Headline != r.Headline {
			return fmt.Errorf("leaderboard entry %d is %s/%q, pass has %s/%q", i, e.Stock, e.Headline, r.Stock, r.Headline)
		}
		if math.Abs(e.Score-r.NormalizedScore) > scoreTolerance {
			return fmt.Errorf("leaderboard entry %d score %.2f, pass has %.2f", i, e.Score, r.NormalizedScore)
		}
		if i > 0 && e.Rank < board[i-1].Rank {
			return fmt.Errorf("leaderboard ranks decrease at entry %d", i)
		}
	}
	return nil
}

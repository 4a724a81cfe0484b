package loadtest

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/crowdguess/internal/domain/types"
)

// ErrLostUpdates is returned when a leaderboard total disagrees with the
// points a player was awarded.
var ErrLostUpdates = errors.New("leaderboard totals do not match awarded points")

// verifyTotals compares every player's server total against the points
// reported to that player. Players whose run failed are skipped because
// their last round may or may not have been recorded.
func verifyTotals(ctx context.Context, client *HTTPClient, results []PlayerResult) ([]Mismatch, int, error) {
	var (
		mismatches []Mismatch
		verified   int
	)
	for _, r := range results {
		if r.Err != "" {
			continue
		}
		st, err := fetchStanding(ctx, client, r.PlayerID)
		if err != nil {
			return nil, verified, err
		}
		verified++
		if st.Score != r.Awarded {
			mismatches = append(mismatches, Mismatch{PlayerID: r.PlayerID, Expected: r.Awarded, Actual: st.Score})
		}
	}
	return mismatches, verified, nil
}

// verifyLeaderboardOrder checks that the top of the leaderboard is sorted
// by score descending, then player id ascending, with consecutive ranks.
func verifyLeaderboardOrder(ctx context.Context, client *HTTPClient) error {
	var view types.LeaderboardView
	if err := client.get(ctx, "/leaderboard?limit=100", &view); err != nil {
		return err
	}
	return checkOrder(view.Top)
}

func checkOrder(top []types.Standing) error {
	for i, st := range top {
		if st.Rank != i {
			return fmt.Errorf("entry %d has rank %d", i, st.Rank)
		}
		if i == 0 {
			continue
		}
		prev := top[i-1]
		if st.Score > prev.Score || (st.Score == prev.Score && st.PlayerID < prev.PlayerID) {
			return fmt.Errorf("leaderboard not properly sorted at entry %d", i)
		}
	}
	return nil
}

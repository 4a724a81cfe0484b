// Package leaderboard aggregates cumulative player scores over a sorted-set store.
package leaderboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/crowdguess/internal/domain/model"
	"github.com/okian/crowdguess/internal/domain/types"
	"github.com/okian/crowdguess/pkg/metrics"
)

// Errors returned by the aggregator.
var (
	ErrInvalidPoints  = errors.New("points must not be negative")
	ErrInvalidLimit   = errors.New("limit must be at least 1")
	ErrPlayerNotFound = errors.New("player not found")
)

// Aggregator records and queries cumulative scores. Ordering is score
// descending with ties broken by player id ascending, so ranks are unique.
type Aggregator struct {
	store Store
}

// New wraps a store.
func New(store Store) *Aggregator {
	return &Aggregator{store: store}
}

// RecordScore adds points to the player's total and returns the new total.
func (a *Aggregator) RecordScore(ctx context.Context, playerID string, points int) (int64, error) {
	if points < 0 {
		return 0, ErrInvalidPoints
	}
	total, err := a.store.Increment(ctx, playerID, int64(points))
	if err != nil {
		metrics.RecordLeaderboardError()
		return 0, fmt.Errorf("record score for %s: %w: %w", playerID, model.ErrStoreUnavailable, err)
	}
	metrics.RecordLeaderboardUpdate()
	return total, nil
}

// TopN returns up to n standings in leaderboard order.
func (a *Aggregator) TopN(ctx context.Context, n int) ([]types.Standing, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}
	entries, err := a.store.Range(ctx, 0, n-1)
	if err != nil {
		return nil, fmt.Errorf("top %d: %w: %w", n, model.ErrStoreUnavailable, err)
	}
	out := make([]types.Standing, len(entries))
	for i, e := range entries {
		out[i] = types.Standing{Rank: e.Rank, PlayerID: e.PlayerID, Score: e.Score}
	}
	return out, nil
}

// Rank returns the player's 0-based position.
func (a *Aggregator) Rank(ctx context.Context, playerID string) (int, error) {
	rank, err := a.store.Rank(ctx, playerID)
	if err != nil {
		return 0, a.wrapLookup("rank", playerID, err)
	}
	return rank, nil
}

// Score returns the player's cumulative score.
func (a *Aggregator) Score(ctx context.Context, playerID string) (int64, error) {
	score, err := a.store.Score(ctx, playerID)
	if err != nil {
		return 0, a.wrapLookup("score", playerID, err)
	}
	return score, nil
}

// Standing returns the player's rank and score together.
func (a *Aggregator) Standing(ctx context.Context, playerID string) (types.Standing, error) {
	rank, err := a.Rank(ctx, playerID)
	if err != nil {
		return types.Standing{}, err
	}
	score, err := a.Score(ctx, playerID)
	if err != nil {
		return types.Standing{}, err
	}
	return types.Standing{Rank: rank, PlayerID: playerID, Score: score}, nil
}

// View returns the top n plus the player's own standing when known.
// An empty playerID or an unranked player leaves Player nil.
func (a *Aggregator) View(ctx context.Context, playerID string, n int) (types.LeaderboardView, error) {
	top, err := a.TopN(ctx, n)
	if err != nil {
		return types.LeaderboardView{}, err
	}
	view := types.LeaderboardView{Top: top}
	if playerID == "" {
		return view, nil
	}
	st, err := a.Standing(ctx, playerID)
	switch {
	case errors.Is(err, ErrPlayerNotFound):
		return view, nil
	case err != nil:
		return types.LeaderboardView{}, err
	}
	view.Player = &st
	return view, nil
}

// Count returns the number of ranked players.
func (a *Aggregator) Count(ctx context.Context) (int, error) {
	n, err := a.store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count: %w: %w", model.ErrStoreUnavailable, err)
	}
	return n, nil
}

func (a *Aggregator) wrapLookup(op, playerID string, err error) error {
	if errors.Is(err, ErrPlayerNotFound) {
		return fmt.Errorf("%s %s: %w", op, playerID, ErrPlayerNotFound)
	}
	return fmt.Errorf("%s %s: %w: %w", op, playerID, model.ErrStoreUnavailable, err)
}

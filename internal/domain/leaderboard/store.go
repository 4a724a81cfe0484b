package leaderboard

import "context"

// Entry is one row of the ordering. Rank is the 0-based position in the
// full ordering (score desc, player id asc).
type Entry struct {
	Rank     int
	PlayerID string
	Score    int64
}

// Store is the sorted set of cumulative player scores the aggregator runs
// on. Implementations live in the repository adapter.
type Store interface {
	// Increment atomically adds amount to the player's score, creating the
	// member at zero first if needed, and returns the new total.
	Increment(ctx context.Context, playerID string, amount int64) (int64, error)

	// Range returns entries at positions start..stop inclusive. A negative
	// stop means through the end.
	Range(ctx context.Context, start, stop int) ([]Entry, error)

	// Score returns the player's cumulative score or ErrPlayerNotFound.
	Score(ctx context.Context, playerID string) (int64, error)

	// Rank returns the player's 0-based position or ErrPlayerNotFound.
	Rank(ctx context.Context, playerID string) (int, error)

	// Count returns the number of players tracked.
	Count(ctx context.Context) (int, error)

	Close() error
}

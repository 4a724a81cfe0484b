// Package repository holds the leaderboard sorted-set stores and the
// SQLite persistence shared by the played tracker and the badge store.
package repository

import "github.com/okian/crowdguess/internal/domain/leaderboard"

// Both stores in this package implement leaderboard.Store.
type (
	Entry = leaderboard.Entry
	Store = leaderboard.Store
)

var (
	_ Store = (*TreapStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)

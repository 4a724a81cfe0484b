// Package types contains read-only shapes handed to the presentation layer.
package types

import (
	"time"

	"github.com/okian/crowdguess/internal/domain/round"
)

// Standing is a player's position on the leaderboard. Rank is 0-based.
type Standing struct {
	Rank     int    `json:"rank"`
	PlayerID string `json:"player_id"`
	Score    int64  `json:"score"`
}

// LeaderboardView is the top of the leaderboard plus the requester's own standing.
type LeaderboardView struct {
	Top    []Standing `json:"top"`
	Player *Standing  `json:"player,omitempty"`
}

// Badge is an award granted to a player.
type Badge struct {
	PlayerID   string    `json:"player_id" db:"player_id"`
	Badge      string    `json:"badge" db:"badge"`
	Title      string    `json:"title" db:"title"`
	QuestionID string    `json:"question_id" db:"question_id"`
	AwardedAt  time.Time `json:"awarded_at" db:"awarded_at"`
}

// SessionSnapshot is what a client sees of its game session after every
// transition. Round is nil once the feed is exhausted. Unrecorded means the
// resolved round could not be saved yet; resubmitting a guess retries it.
type SessionSnapshot struct {
	SessionID    string          `json:"session_id"`
	PlayerID     string          `json:"player_id"`
	Round        *round.Snapshot `json:"round,omitempty"`
	TotalScore   int64           `json:"total_score"`
	RoundsPlayed int             `json:"rounds_played"`
	Exhausted    bool            `json:"exhausted"`
	Unrecorded   bool            `json:"unrecorded,omitempty"`
}

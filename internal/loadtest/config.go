// Package loadtest drives a running crowdguess server with concurrent
// simulated players and verifies that no leaderboard update was lost.
package loadtest

import "time"

// Config holds configuration for a load test run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Players    int           // Number of simulated players
	Rounds     int           // Rounds each player tries to play
	Workers    int           // Number of concurrent players in flight
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Optional JSON report of per-player results
	Verbose    bool          // Log every round
}

// PlayerResult is what one simulated player observed.
type PlayerResult struct {
	PlayerID  string `json:"player_id"`
	Rounds    int    `json:"rounds"`
	Matches   int    `json:"matches"`
	Awarded   int64  `json:"awarded"`
	Exhausted bool   `json:"exhausted"`
	Err       string `json:"error,omitempty"`
}

// Mismatch records a player whose server total differs from the points
// the player was awarded.
type Mismatch struct {
	PlayerID string `json:"player_id"`
	Expected int64  `json:"expected"`
	Actual   int64  `json:"actual"`
}

// Stats holds test statistics.
type Stats struct {
	Players       int
	RoundsPlayed  int
	Matches       int
	Guesses       int
	Failures      int
	PointsAwarded int64
	Verified      int
	Mismatches    []Mismatch
	StartTime     time.Time
	EndTime       time.Time
	Duration      time.Duration
}

// Package config defines service configuration structures and loading hooks.
package config

import (
	"context"
	"runtime"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Feed backends.
const (
	FeedFile   = "file"
	FeedReddit = "reddit"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// EventQueueSize bounds the in-memory award event queue.
	EventQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of award workers.
	WorkerCount int `koanf:"worker_count"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// LeaderboardDefaultLimit is used when no limit is given.
	LeaderboardDefaultLimit int `koanf:"leaderboard_default_limit"`

	// DegenerateScore is awarded when every answer has the same popularity.
	DegenerateScore int `koanf:"degenerate_score"`

	// MaxAttempts is informational; rounds always allow three attempts.
	MaxAttempts int `koanf:"max_attempts"`

	// MaxRounds bounds how far into the feed a session may go.
	MaxRounds int `koanf:"max_rounds"`

	// SessionTTLSeconds expires idle sessions.
	SessionTTLSeconds int `koanf:"session_ttl_seconds"`

	// Store selects the leaderboard backend: memory or sqlite.
	Store string `koanf:"store"`

	// SQLitePath is the database file used when Store is sqlite.
	SQLitePath string `koanf:"sqlite_path"`

	// Feed selects the question source: file or reddit.
	Feed string `koanf:"feed"`

	// FeedFile is the YAML question bank used when Feed is file.
	FeedFile string `koanf:"feed_file"`

	RedditClientID     string `koanf:"reddit_client_id"`
	RedditClientSecret string `koanf:"reddit_client_secret"`
	RedditSubreddit    string `koanf:"reddit_subreddit"`
	RedditPostLimit    int    `koanf:"reddit_post_limit"`
	RedditCommentLimit int    `koanf:"reddit_comment_limit"`
}

// New creates a Config with defaults. Context is accepted first to
// satisfy the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:                "info",
		LogFormat:               "text",
		Addr:                    ":9080",
		EventQueueSize:          10_000,
		WorkerCount:             runtime.NumCPU(),
		MaxLeaderboardLimit:     100,
		LeaderboardDefaultLimit: 10,
		DegenerateScore:         50,
		MaxAttempts:             3,
		MaxRounds:               100,
		SessionTTLSeconds:       1800,
		Store:                   StoreMemory,
		SQLitePath:              "crowdguess.db",
		Feed:                    FeedFile,
		FeedFile:                "questions.yaml",
		RedditSubreddit:         "AskReddit",
		RedditPostLimit:         100,
		RedditCommentLimit:      100,
	}
}

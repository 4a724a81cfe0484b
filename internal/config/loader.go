package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/crowdguess/internal/domain/round"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CROWDGUESS_"

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML): path if given, otherwise CROWDGUESS_CONFIG
//  3. env (prefix CROWDGUESS_)
func Load(ctx context.Context, path string) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path == "" {
		path = os.Getenv(EnvPrefix + "CONFIG")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// CROWDGUESS_QUEUE_SIZE -> queue_size; underscores are kept to match
	// the flat koanf tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that would otherwise fail at startup.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DegenerateScore < 1 || c.DegenerateScore > 100:
		return fmt.Errorf("%w: degenerate_score must be within [1,100], got %d", ErrInvalidConfig, c.DegenerateScore)
	case c.MaxAttempts != round.MaxAttempts:
		return fmt.Errorf("%w: max_attempts is fixed at %d", ErrInvalidConfig, round.MaxAttempts)
	case c.MaxLeaderboardLimit < 1:
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	}

	switch c.Store {
	case StoreMemory:
	case StoreSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("%w: sqlite_path must not be empty", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store %q", ErrInvalidConfig, c.Store)
	}

	switch c.Feed {
	case FeedFile:
		if c.FeedFile == "" {
			return fmt.Errorf("%w: feed_file must not be empty", ErrInvalidConfig)
		}
	case FeedReddit:
		if c.RedditClientID == "" || c.RedditClientSecret == "" {
			return fmt.Errorf("%w: reddit feed needs reddit_client_id and reddit_client_secret", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown feed %q", ErrInvalidConfig, c.Feed)
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/crowdguess/internal/adapters/feed"
	"github.com/okian/crowdguess/internal/adapters/repository"
	app "github.com/okian/crowdguess/internal/app"
	"github.com/okian/crowdguess/internal/config"
	"github.com/okian/crowdguess/internal/domain/scoring"
	"github.com/okian/crowdguess/pkg/logger"
)

// setup initializes logging and loads configuration.
func setup(ctx context.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx, cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return cfg, nil
}

// buildService assembles the service from configuration. The caller
// starts and stops it.
func buildService(cfg *config.Config, l logger.Logger) (*app.Service, error) {
	opts := []app.Option{
		app.WithLogger(l),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.EventQueueSize),
		app.WithMaxRounds(cfg.MaxRounds),
		app.WithSessionTTL(time.Duration(cfg.SessionTTLSeconds) * time.Second),
		app.WithScorer(scoring.NewRarityScorer(scoring.WithDegenerateScore(cfg.DegenerateScore))),
	}

	provider, err := buildFeed(cfg, l)
	if err != nil {
		return nil, err
	}
	opts = append(opts, app.WithFeed(provider))

	if cfg.Store == config.StoreSQLite {
		db, err := repository.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		opts = append(opts,
			app.WithStore(db),
			app.WithPlayedTracker(db.Played()),
			app.WithBadgeStore(db.Badges()),
		)
	}

	return app.New(opts...), nil
}

func buildFeed(cfg *config.Config, l logger.Logger) (feed.Provider, error) {
	switch cfg.Feed {
	case config.FeedReddit:
		return feed.NewReddit(cfg.RedditClientID, cfg.RedditClientSecret,
			feed.WithSubreddit(cfg.RedditSubreddit),
			feed.WithPostLimit(cfg.RedditPostLimit),
			feed.WithCommentLimit(cfg.RedditCommentLimit),
			feed.WithRedditLogger(l.Named("reddit")),
		), nil
	default:
		bank, err := feed.LoadFile(cfg.FeedFile)
		if err != nil {
			return nil, fmt.Errorf("load question bank: %w", err)
		}
		return bank, nil
	}
}

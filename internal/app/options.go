package service

import (
	"time"

	"github.com/okian/crowdguess/internal/adapters/feed"
	"github.com/okian/crowdguess/internal/domain/award"
	"github.com/okian/crowdguess/internal/domain/leaderboard"
	"github.com/okian/crowdguess/internal/domain/played"
	"github.com/okian/crowdguess/internal/domain/scoring"
	"github.com/okian/crowdguess/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of award workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the award queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithFeed sets the content feed. Required.
func WithFeed(p feed.Provider) Option {
	return func(s *Service) {
		if p != nil {
			s.feed = p
		}
	}
}

// WithStore sets the leaderboard store. Defaults to an in-memory treap.
func WithStore(st leaderboard.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithPlayedTracker sets the played tracker. Defaults to in-memory.
func WithPlayedTracker(t played.Tracker) Option {
	return func(s *Service) {
		if t != nil {
			s.played = t
		}
	}
}

// WithBadgeStore sets the badge store. Defaults to in-memory.
func WithBadgeStore(b award.Store) Option {
	return func(s *Service) {
		if b != nil {
			s.badges = b
		}
	}
}

// WithScorer replaces the rarity scorer.
func WithScorer(sc scoring.Scorer) Option {
	return func(s *Service) {
		if sc != nil {
			s.scorer = sc
		}
	}
}

// WithMaxRounds caps how many feed positions a session walks through.
func WithMaxRounds(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxRounds = n
		}
	}
}

// WithSessionTTL sets how long an idle session is kept.
func WithSessionTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.sessionTTL = d
		}
	}
}

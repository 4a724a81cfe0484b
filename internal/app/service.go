// Package service wires the game core to its stores, feed and award
// workers, and implements the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/crowdguess/internal/adapters/feed"
	eventqueue "github.com/okian/crowdguess/internal/adapters/mq/queue"
	workerpool "github.com/okian/crowdguess/internal/adapters/mq/worker"
	"github.com/okian/crowdguess/internal/adapters/repository"
	"github.com/okian/crowdguess/internal/domain/award"
	"github.com/okian/crowdguess/internal/domain/leaderboard"
	"github.com/okian/crowdguess/internal/domain/model"
	"github.com/okian/crowdguess/internal/domain/played"
	"github.com/okian/crowdguess/internal/domain/round"
	"github.com/okian/crowdguess/internal/domain/scoring"
	"github.com/okian/crowdguess/internal/domain/types"
	"github.com/okian/crowdguess/pkg/logger"
	"github.com/okian/crowdguess/pkg/metrics"
)

// Default service configuration.
const (
	DefaultMaxRounds  = 100
	DefaultSessionTTL = 30 * time.Minute
	defaultQueueSize  = 10000
	minSweepInterval  = time.Second
)

// Service runs game sessions and exposes the leaderboard.
type Service struct {
	mu sync.RWMutex

	// Core components
	feed        feed.Provider
	store       leaderboard.Store
	played      played.Tracker
	badges      award.Store
	scorer      scoring.Scorer
	leaderboard *leaderboard.Aggregator
	eventQueue  eventqueue.Queue
	workerPool  *workerpool.Pool

	// Configuration
	workerCount int
	queueSize   int
	maxRounds   int
	sessionTTL  time.Duration

	sessMu   sync.RWMutex
	sessions map[string]*session

	// State
	started bool
	stopCh  chan struct{}
	wg      sync.WaitGroup

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   defaultQueueSize,
		maxRounds:   DefaultMaxRounds,
		sessionTTL:  DefaultSessionTTL,
		sessions:    make(map[string]*session),
		stopCh:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.feed == nil {
		return ErrNoFeed
	}

	s.logger.Info(ctx, "starting game service...")

	if s.store == nil {
		s.store = repository.NewTreapStore(ctx)
		s.logger.Info(ctx, "using treap store")
	}
	if s.played == nil {
		s.played = played.NewMemoryTracker()
	}
	if s.badges == nil {
		s.badges = award.NewMemoryStore()
	}
	if s.scorer == nil {
		s.scorer = scoring.NewRarityScorer()
	}
	s.leaderboard = leaderboard.New(s.store)

	q := eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.eventQueue = q
	s.workerPool = workerpool.NewPool(s.workerCount, q, award.NewGranter(s.badges, nil))
	s.workerPool.Start(context.WithoutCancel(ctx))

	s.stopCh = make(chan struct{})
	s.wg.Add(1)
	go s.sweepSessions()

	s.started = true
	s.logger.Info(ctx, "game service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("maxRounds", s.maxRounds),
		logger.String("sessionTTL", s.sessionTTL.String()),
	)
	return nil
}

// Stop drains pending awards and shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping game service...")

	close(s.stopCh)
	s.wg.Wait()

	if err := s.workerPool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "award workers did not drain", logger.Error(err))
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warn(ctx, "closing store failed", logger.Error(err))
	}

	s.sessMu.Lock()
	for id, sess := range s.sessions {
		sess.mu.Lock()
		sess.close()
		sess.mu.Unlock()
		delete(s.sessions, id)
	}
	s.sessMu.Unlock()
	metrics.UpdateActiveSessions(0)

	s.started = false
	s.logger.Info(ctx, "game service stopped")
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// StartSession opens a session for playerID positioned on the first
// question the player has not played yet.
func (s *Service) StartSession(ctx context.Context, playerID string) (types.SessionSnapshot, error) {
	if err := s.ready(); err != nil {
		return types.SessionSnapshot{}, err
	}
	if playerID == "" {
		return types.SessionSnapshot{}, ErrInvalidPlayer
	}

	total, err := s.leaderboard.Score(ctx, playerID)
	if err != nil && !errors.Is(err, leaderboard.ErrPlayerNotFound) {
		return types.SessionSnapshot{}, err
	}

	q, index, err := s.selectQuestion(ctx, playerID, 0)
	if err != nil {
		return types.SessionSnapshot{}, err
	}

	sess := &session{
		id:         uuid.NewString(),
		playerID:   playerID,
		index:      index,
		round:      round.New(q, round.WithScorer(s.scorer)),
		total:      total,
		lastActive: time.Now(),
		subs:       make(map[int]chan types.SessionSnapshot),
	}
	metrics.RecordRoundStarted()

	s.sessMu.Lock()
	s.sessions[sess.id] = sess
	active := len(s.sessions)
	s.sessMu.Unlock()
	metrics.UpdateActiveSessions(active)

	s.logger.Info(ctx, "session started",
		logger.String("session_id", sess.id),
		logger.String("player_id", playerID),
		logger.String("question_id", q.ID),
	)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshot(), nil
}

// selectQuestion walks the feed from index, skipping unplayable questions
// and ones the player already resolved.
func (s *Service) selectQuestion(ctx context.Context, playerID string, from int) (model.Question, int, error) {
	for i := from; i < s.maxRounds; i++ {
		q, err := s.feed.Question(ctx, i)
		if errors.Is(err, feed.ErrNotFound) {
			break
		}
		if err != nil {
			return model.Question{}, 0, fmt.Errorf("question %d: %w: %w", i, model.ErrFeedUnavailable, err)
		}
		if !q.Playable() {
			continue
		}
		seen, err := s.played.HasPlayed(ctx, playerID, q.ID)
		if err != nil {
			return model.Question{}, 0, fmt.Errorf("played lookup: %w: %w", model.ErrStoreUnavailable, err)
		}
		if seen {
			continue
		}
		return q, i, nil
	}
	return model.Question{}, 0, model.ErrNoCorpusAvailable
}

func (s *Service) lookup(sessionID string) (*session, error) {
	s.sessMu.RLock()
	defer s.sessMu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Session returns the current snapshot of a session.
func (s *Service) Session(ctx context.Context, sessionID string) (types.SessionSnapshot, error) {
	if err := s.ready(); err != nil {
		return types.SessionSnapshot{}, err
	}
	sess, err := s.lookup(sessionID)
	if err != nil {
		return types.SessionSnapshot{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastActive = time.Now()
	return sess.snapshot(), nil
}

// Guess submits a guess for the session's current round.
//
// Rejected guesses (round.ErrRoundResolved, round.ErrEmptyGuess) return the
// unchanged snapshot with the error. When the round resolves the played
// marker is set, and a match also adds the points to the leaderboard and
// queues an award event. If the store fails while recording, the result
// stays pending on the session and the next Guess or NextRound call
// retries it before doing anything else.
func (s *Service) Guess(ctx context.Context, sessionID, guess string) (types.SessionSnapshot, error) {
	if err := s.ready(); err != nil {
		return types.SessionSnapshot{}, err
	}
	sess, err := s.lookup(sessionID)
	if err != nil {
		return types.SessionSnapshot{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastActive = time.Now()

	if sess.exhausted {
		return sess.snapshot(), model.ErrNoCorpusAvailable
	}
	if sess.pending != nil {
		err := s.settle(ctx, sess)
		sess.publish()
		return sess.snapshot(), err
	}

	outcome, err := sess.round.Guess(guess)
	switch {
	case errors.Is(err, round.ErrEmptyGuess):
		metrics.RecordGuess("empty")
		return sess.snapshot(), err
	case errors.Is(err, round.ErrRoundResolved):
		metrics.RecordGuess("resolved")
		return sess.snapshot(), err
	case err != nil:
		return sess.snapshot(), err
	}
	if outcome.Matched {
		metrics.RecordGuess("match")
	} else {
		metrics.RecordGuess("miss")
	}

	defer sess.publish()
	if !outcome.Resolved() {
		return sess.snapshot(), nil
	}

	sess.roundsPlayed++
	metrics.RecordRoundResolved(string(outcome.Status))
	sess.pending = &pendingResult{
		questionID: sess.round.Question().ID,
		matched:    outcome.Matched,
		points:     outcome.Points,
	}
	return sess.snapshot(), s.settle(ctx, sess)
}

// settle writes a resolved round's score, played marker and award event.
// Each step runs once; on failure the remaining steps stay pending.
// Must be called with sess.mu held.
func (s *Service) settle(ctx context.Context, sess *session) error {
	p := sess.pending
	if p.matched && !p.scored {
		total, err := s.leaderboard.RecordScore(ctx, sess.playerID, p.points)
		if err != nil {
			s.logger.Error(ctx, "recording score failed",
				logger.String("player_id", sess.playerID),
				logger.Int("points", p.points),
				logger.Error(err),
			)
			return err
		}
		p.scored = true
		sess.total = total
		metrics.RecordPointsAwarded(p.points)

		ev := model.NewAwardEvent(sess.playerID, p.questionID, p.points)
		if !s.eventQueue.Enqueue(ctx, ev) {
			s.logger.Warn(ctx, "award event dropped",
				logger.String("event_id", ev.EventID),
				logger.Error(eventqueue.ErrRejected),
			)
		}
	}

	if err := s.played.MarkPlayed(ctx, sess.playerID, p.questionID); err != nil {
		return fmt.Errorf("mark played: %w: %w", model.ErrStoreUnavailable, err)
	}
	sess.pending = nil

	s.logger.Debug(ctx, "round recorded",
		logger.String("session_id", sess.id),
		logger.String("question_id", p.questionID),
		logger.Bool("matched", p.matched),
		logger.Int("points", p.points),
	)
	return nil
}

// NextRound moves a session to the next unplayed question. The current
// round must be resolved. When the feed runs out the session is marked
// exhausted and model.ErrNoCorpusAvailable is returned with the snapshot.
func (s *Service) NextRound(ctx context.Context, sessionID string) (types.SessionSnapshot, error) {
	if err := s.ready(); err != nil {
		return types.SessionSnapshot{}, err
	}
	sess, err := s.lookup(sessionID)
	if err != nil {
		return types.SessionSnapshot{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastActive = time.Now()

	if sess.exhausted {
		return sess.snapshot(), model.ErrNoCorpusAvailable
	}
	if sess.pending != nil {
		if err := s.settle(ctx, sess); err != nil {
			return sess.snapshot(), err
		}
	}
	if !sess.round.Resolved() {
		return sess.snapshot(), ErrRoundInProgress
	}

	q, index, err := s.selectQuestion(ctx, sess.playerID, sess.index+1)
	if errors.Is(err, model.ErrNoCorpusAvailable) {
		sess.exhausted = true
		sess.publish()
		return sess.snapshot(), err
	}
	if err != nil {
		return sess.snapshot(), err
	}

	sess.index = index
	sess.round = round.New(q, round.WithScorer(s.scorer))
	metrics.RecordRoundStarted()
	sess.publish()
	return sess.snapshot(), nil
}

// Subscribe streams snapshots of a session. The current snapshot is sent
// first. The channel closes when cancel is called or the session ends.
func (s *Service) Subscribe(sessionID string) (<-chan types.SessionSnapshot, func(), error) {
	if err := s.ready(); err != nil {
		return nil, nil, err
	}
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	ch, cancel := sess.subscribe()
	return ch, cancel, nil
}

// sweepSessions drops sessions idle longer than the TTL.
func (s *Service) sweepSessions() {
	defer s.wg.Done()

	interval := s.sessionTTL / 2
	if interval < minSweepInterval {
		interval = minSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.expireSessions(time.Now())
		}
	}
}

func (s *Service) expireSessions(now time.Time) int {
	s.sessMu.Lock()
	defer s.sessMu.Unlock()

	var expired int
	for id, sess := range s.sessions {
		sess.mu.Lock()
		if now.Sub(sess.lastActive) > s.sessionTTL {
			sess.close()
			delete(s.sessions, id)
			expired++
		}
		sess.mu.Unlock()
	}
	metrics.UpdateActiveSessions(len(s.sessions))
	if expired > 0 {
		s.logger.Debug(context.Background(), "expired idle sessions", logger.Int("count", expired))
	}
	return expired
}

// Leaderboard returns the top n standings plus playerID's own standing.
func (s *Service) Leaderboard(ctx context.Context, playerID string, n int) (types.LeaderboardView, error) {
	if err := s.ready(); err != nil {
		return types.LeaderboardView{}, err
	}
	return s.leaderboard.View(ctx, playerID, n)
}

// TopN returns the top n standings.
func (s *Service) TopN(ctx context.Context, n int) ([]types.Standing, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.leaderboard.TopN(ctx, n)
}

// Rank returns a player's standing.
func (s *Service) Rank(ctx context.Context, playerID string) (types.Standing, error) {
	if err := s.ready(); err != nil {
		return types.Standing{}, err
	}
	return s.leaderboard.Standing(ctx, playerID)
}

// Badges lists the badges a player holds.
func (s *Service) Badges(ctx context.Context, playerID string) ([]types.Badge, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	list, err := s.badges.List(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("badges: %w: %w", model.ErrStoreUnavailable, err)
	}
	return list, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"maxRounds":   s.maxRounds,
	}
	if !s.started {
		return stats
	}

	ctx := context.Background()
	s.sessMu.RLock()
	active := len(s.sessions)
	s.sessMu.RUnlock()

	stats["queueLength"] = s.eventQueue.Len(ctx)
	stats["activeSessions"] = active
	stats["awardsProcessed"] = s.workerPool.Processed()
	if n, err := s.leaderboard.Count(ctx); err == nil {
		stats["totalPlayers"] = n
		metrics.UpdateTotalPlayers(n)
	}
	metrics.UpdateActiveSessions(active)
	return stats
}

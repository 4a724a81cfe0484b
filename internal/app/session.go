package service

import (
	"sync"
	"time"

	"github.com/okian/crowdguess/internal/domain/round"
	"github.com/okian/crowdguess/internal/domain/types"
)

const subscriberBuffer = 8

// session is one player's walk through the feed. Requests for the same
// session may race, so every field is guarded by mu.
type session struct {
	mu sync.Mutex

	id       string
	playerID string

	index        int // feed position of the current round
	round        *round.Round
	roundsPlayed int
	total        int64
	exhausted    bool
	lastActive   time.Time
	pending      *pendingResult // resolved round not yet fully recorded


	subs    map[int]chan types.SessionSnapshot
	nextSub int
	closed  bool
}

// pendingResult is a resolved round whose writes have not all succeeded.
type pendingResult struct {
	questionID string
	matched    bool
	points     int
	scored     bool
}

// snapshot must be called with mu held.
func (s *session) snapshot() types.SessionSnapshot {
	snap := types.SessionSnapshot{
		SessionID:    s.id,
		PlayerID:     s.playerID,
		TotalScore:   s.total,
		RoundsPlayed: s.roundsPlayed,
		Exhausted:    s.exhausted,
		Unrecorded:   s.pending != nil,
	}
	if s.round != nil && !s.exhausted {
		rs := s.round.Snapshot()
		snap.Round = &rs
	}
	return snap
}

// publish pushes the current snapshot to every subscriber, replacing the
// oldest buffered one when a subscriber lags. Must be called with mu held.
func (s *session) publish() {
	if len(s.subs) == 0 {
		return
	}
	snap := s.snapshot()
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

// subscribe must be called with mu held.
func (s *session) subscribe() (<-chan types.SessionSnapshot, func()) {
	ch := make(chan types.SessionSnapshot, subscriberBuffer)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.snapshot()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
}

// close ends every subscription. Must be called with mu held.
func (s *session) close() {
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

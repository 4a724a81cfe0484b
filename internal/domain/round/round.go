// Package round implements the per-question attempt state machine.
//
//	Unresolved(0) -miss-> Unresolved(1) -miss-> Unresolved(2) -miss-> Failure
//	Unresolved(n) -match-> Success
//
// Success and Failure are terminal; later guesses are rejected without
// touching the state. A Round is owned by a single session and is not safe
// for concurrent use.
package round

import (
	"errors"
	"fmt"

	"github.com/okian/crowdguess/internal/domain/corpus"
	"github.com/okian/crowdguess/internal/domain/match"
	"github.com/okian/crowdguess/internal/domain/model"
	"github.com/okian/crowdguess/internal/domain/scoring"
	"github.com/okian/crowdguess/internal/domain/text"
)

// MaxAttempts is the number of guesses a player gets per round.
const MaxAttempts = 3

// Feedback messages shown after each transition.
const (
	FeedbackRetry    = "No match found. Try again!"
	FeedbackGameOver = "Game Over, you have used all your attempts!"
)

// Sentinel errors for rejected guesses.
var (
	ErrRoundResolved = errors.New("round already resolved")
	ErrEmptyGuess    = errors.New("guess is empty")
)

// Status is the round's position in the state machine.
type Status string

// Round statuses.
const (
	StatusUnresolved Status = "unresolved"
	StatusSuccess    Status = "success"
	StatusFailure    Status = "failure"
)

// Outcome describes the effect of one accepted guess.
type Outcome struct {
	Matched bool
	Entry   corpus.Entry // matched answer, zero when Matched is false
	Points  int          // rarity points, 0 on a miss
	Status  Status       // status after the guess
}

// Resolved reports whether the guess ended the round.
func (o Outcome) Resolved() bool { return o.Status != StatusUnresolved }

// Snapshot is a read-only view of a round for the presentation layer.
type Snapshot struct {
	QuestionID   string        `json:"question_id"`
	Question     string        `json:"question"`
	Attempts     int           `json:"attempts"`
	AttemptsLeft int           `json:"attempts_left"`
	Status       Status        `json:"status"`
	Resolved     bool          `json:"resolved"`
	Score        *int          `json:"score,omitempty"`
	Matched      *corpus.Entry `json:"matched,omitempty"`
	Feedback     string        `json:"feedback,omitempty"`
}

// Option applies a configuration option to a Round.
type Option func(*Round)

// WithScorer replaces the default rarity scorer.
func WithScorer(s scoring.Scorer) Option {
	return func(r *Round) {
		if s != nil {
			r.scorer = s
		}
	}
}

// Round tracks attempts and resolution for one question.
type Round struct {
	question model.Question
	scorer   scoring.Scorer

	attempts int
	status   Status
	score    *int
	matched  *corpus.Entry
	feedback string
}

// New starts an unresolved round with zero attempts.
func New(q model.Question, opts ...Option) *Round {
	r := &Round{
		question: q,
		scorer:   scoring.NewRarityScorer(),
		status:   StatusUnresolved,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Guess evaluates a guess and advances the state machine.
//
// It returns ErrRoundResolved once the round is over and ErrEmptyGuess when
// the guess normalizes to nothing; neither consumes an attempt.
func (r *Round) Guess(guess string) (Outcome, error) {
	if r.status != StatusUnresolved {
		return Outcome{Status: r.status}, ErrRoundResolved
	}
	normalized := text.Normalize(guess)
	if normalized == "" {
		return Outcome{Status: r.status}, ErrEmptyGuess
	}

	if i := match.Index(normalized, r.question.Corpus); i >= 0 {
		entry := r.question.Corpus.At(i)
		points := r.scorer.Score(entry, r.question.Corpus)
		r.status = StatusSuccess
		r.score = &points
		r.matched = &entry
		r.feedback = fmt.Sprintf("Matched! You earned %d points.", points)
		return Outcome{Matched: true, Entry: entry, Points: points, Status: r.status}, nil
	}

	r.attempts++
	if r.attempts >= MaxAttempts {
		zero := 0
		r.status = StatusFailure
		r.score = &zero
		r.feedback = FeedbackGameOver
	} else {
		r.feedback = FeedbackRetry
	}
	return Outcome{Status: r.status}, nil
}

// Question returns the question this round is bound to.
func (r *Round) Question() model.Question { return r.question }

// Status returns the current status.
func (r *Round) Status() Status { return r.status }

// Resolved reports whether the round reached a terminal state.
func (r *Round) Resolved() bool { return r.status != StatusUnresolved }

// Attempts returns the number of failed guesses so far.
func (r *Round) Attempts() int { return r.attempts }

// Snapshot returns a copy of the round state.
func (r *Round) Snapshot() Snapshot {
	s := Snapshot{
		QuestionID:   r.question.ID,
		Question:     r.question.Title,
		Attempts:     r.attempts,
		AttemptsLeft: MaxAttempts - r.attempts,
		Status:       r.status,
		Resolved:     r.Resolved(),
		Feedback:     r.feedback,
	}
	if r.score != nil {
		v := *r.score
		s.Score = &v
	}
	if r.matched != nil {
		m := *r.matched
		s.Matched = &m
	}
	return s
}

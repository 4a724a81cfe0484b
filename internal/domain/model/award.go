package model

import (
	"time"

	"github.com/google/uuid"
)

// AwardEvent is emitted when a round resolves with a match, and consumed by the
// award workers to grant badges.
type AwardEvent struct {
	EventID    string    // unique id for idempotency
	PlayerID   string    // player who scored
	QuestionID string    // question the points were earned on
	Points     int       // rarity points of the match
	TS         time.Time // when the round resolved
}

// NewAwardEvent stamps a fresh event id and timestamp.
func NewAwardEvent(playerID, questionID string, points int) AwardEvent {
	return AwardEvent{
		EventID:    uuid.NewString(),
		PlayerID:   playerID,
		QuestionID: questionID,
		Points:     points,
		TS:         time.Now().UTC(),
	}
}

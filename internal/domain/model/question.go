// Package model contains domain models passed between layers.
package model

import (
	"github.com/okian/crowdguess/internal/domain/corpus"
)

// Question is one playable prompt (a popular post title) and its answer corpus.
type Question struct {
	ID     string        // stable id from the content feed, used for played markers
	Title  string        // question text shown to the player
	Corpus corpus.Corpus // crowd answers, in feed order
}

// Playable reports whether the question has at least one answer to match.
func (q Question) Playable() bool {
	return q.ID != "" && q.Corpus.Len() > 0
}

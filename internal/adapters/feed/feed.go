// Package feed supplies questions and their answer corpora.
package feed

import (
	"context"
	"errors"

	"github.com/okian/crowdguess/internal/domain/model"
)

// ErrNotFound means the index is past the end of the feed.
var ErrNotFound = errors.New("no question at index")

// Provider returns the question at a 0-based position in the feed.
// Indexes are stable for the lifetime of a listing.
type Provider interface {
	Question(ctx context.Context, index int) (model.Question, error)
}

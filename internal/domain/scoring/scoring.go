// Package scoring turns a matched answer into rarity points.
//
// Rarer answers score higher: the matched entry's popularity is min-max
// normalized against the whole corpus and inverted onto a 1..100 scale.
package scoring

import (
	"math"

	"github.com/okian/crowdguess/internal/domain/corpus"
)

// Score bounds.
const (
	MinScore = 1
	MaxScore = 100

	// DefaultDegenerateScore is awarded when every answer is equally popular.
	DefaultDegenerateScore = 50
)

// Option applies a configuration option to the RarityScorer.
type Option func(*RarityScorer)

// WithDegenerateScore sets the fixed score used when the corpus popularity
// range is empty (all entries share one value). Out-of-range values are ignored.
func WithDegenerateScore(score int) Option {
	return func(s *RarityScorer) {
		if score >= MinScore && score <= MaxScore {
			s.degenerateScore = score
		}
	}
}

// Scorer computes the points for a matched entry.
type Scorer interface {
	Score(matched corpus.Entry, c corpus.Corpus) int
}

// RarityScorer implements Scorer with min-max rarity scaling.
type RarityScorer struct {
	degenerateScore int
}

// NewRarityScorer creates a scorer with configuration options.
func NewRarityScorer(opts ...Option) *RarityScorer {
	s := &RarityScorer{degenerateScore: DefaultDegenerateScore}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score returns a value in [MinScore, MaxScore]. The least popular answer
// earns MaxScore and the most popular earns MinScore.
func (s *RarityScorer) Score(matched corpus.Entry, c corpus.Corpus) int {
	lo, hi, ok := c.Range()
	if !ok {
		// matched must come from c; an empty corpus only happens on misuse.
		return s.degenerateScore
	}
	lo = min(lo, matched.Popularity)
	hi = max(hi, matched.Popularity)
	if hi == lo {
		return s.degenerateScore
	}

	fraction := float64(matched.Popularity-lo) / float64(hi-lo)
	raw := int(math.Round(MaxScore - fraction*MaxScore))
	return max(MinScore, min(MaxScore, raw))
}

// Compute scores matched against c with the default options.
func Compute(matched corpus.Entry, c corpus.Corpus) int {
	return NewRarityScorer().Score(matched, c)
}

// Package match finds the corpus answer a guess refers to.
//
// Matching is a linear scan in corpus order: the first entry whose normalized
// text contains the normalized guess wins. Corpus order is the tie-break when
// several answers contain the guess, so callers must not reorder the corpus.
package match

import (
	"strings"

	"github.com/okian/crowdguess/internal/domain/corpus"
	"github.com/okian/crowdguess/internal/domain/text"
)

// Find returns the first entry containing guess. ok is false when nothing matches.
func Find(guess string, c corpus.Corpus) (corpus.Entry, bool) {
	i := Index(text.Normalize(guess), c)
	if i < 0 {
		return corpus.Entry{}, false
	}
	return c.At(i), true
}

// Index returns the position of the first entry containing the already
// normalized guess, or -1.
func Index(normalizedGuess string, c corpus.Corpus) int {
	for i := 0; i < c.Len(); i++ {
		if strings.Contains(c.Normalized(i), normalizedGuess) {
			return i
		}
	}
	return -1
}

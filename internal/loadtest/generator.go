package loadtest

import (
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"

	"github.com/okian/crowdguess/internal/domain/text"
)

// fallbackGuesses are common words that tend to appear in crowd answers.
var fallbackGuesses = []string{
	"the", "yes", "no", "dog", "cat", "money", "sleep", "pizza", "love",
	"time", "work", "game", "music", "coffee", "friend", "food",
}

// generatePlayerIDs returns n unique player ids scoped to one run.
func generatePlayerIDs(n int) []string {
	run := uuid.NewString()[:8]
	ids := make([]string, n)
	for i := range ids {
		ids[i] = "load-" + run + "-" + uuid.NewString()
	}
	return ids
}

// guessFor picks a guess for a question, mixing words of the question
// title with common words so that some rounds match and some do not.
func guessFor(rng *rand.Rand, title string) string {
	words := strings.Fields(text.Normalize(title))
	if len(words) > 0 && rng.IntN(2) == 0 {
		return words[rng.IntN(len(words))]
	}
	return fallbackGuesses[rng.IntN(len(fallbackGuesses))]
}

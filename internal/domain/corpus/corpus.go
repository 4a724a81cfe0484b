// Package corpus holds the crowd-sourced answers a round is matched against.
package corpus

import (
	"github.com/okian/crowdguess/internal/domain/text"
)

// Entry is a single candidate answer with its popularity weight.
type Entry struct {
	Text       string `json:"text" yaml:"text"`
	Popularity int    `json:"popularity" yaml:"popularity"`
}

// Corpus is an immutable, ordered set of answers for one round.
// Order is significant: matching picks the first containing entry.
type Corpus struct {
	entries    []Entry
	normalized []string
}

// New builds a corpus from entries in the given order. Negative popularity
// values are clamped to zero.
func New(entries ...Entry) Corpus {
	c := Corpus{
		entries:    make([]Entry, len(entries)),
		normalized: make([]string, len(entries)),
	}
	for i, e := range entries {
		if e.Popularity < 0 {
			e.Popularity = 0
		}
		c.entries[i] = e
		c.normalized[i] = text.Normalize(e.Text)
	}
	return c
}

// Len returns the number of entries.
func (c Corpus) Len() int { return len(c.entries) }

// At returns the i-th entry.
func (c Corpus) At(i int) Entry { return c.entries[i] }

// Normalized returns the normalized text of the i-th entry.
func (c Corpus) Normalized(i int) string { return c.normalized[i] }

// Entries returns a copy of the entries in corpus order.
func (c Corpus) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Range returns the lowest and highest popularity. ok is false for an empty corpus.
func (c Corpus) Range() (lo, hi int, ok bool) {
	if len(c.entries) == 0 {
		return 0, 0, false
	}
	lo, hi = c.entries[0].Popularity, c.entries[0].Popularity
	for _, e := range c.entries[1:] {
		lo = min(lo, e.Popularity)
		hi = max(hi, e.Popularity)
	}
	return lo, hi, true
}

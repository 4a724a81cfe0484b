// Package played tracks which questions a player has already answered.
package played

import (
	"context"
	"sync"
)

// Tracker records played (player, question) pairs. A marker is never
// forgotten: a player must not be served a question they already resolved.
type Tracker interface {
	// HasPlayed reports whether the player already resolved the question.
	HasPlayed(ctx context.Context, playerID, questionID string) (bool, error)

	// MarkPlayed records the pair. Marking twice is a no-op.
	MarkPlayed(ctx context.Context, playerID, questionID string) error
}

type marker struct {
	playerID   string
	questionID string
}

// MemoryTracker keeps every marker for the life of the process.
type MemoryTracker struct {
	mu   sync.RWMutex
	seen map[marker]struct{}
}

// NewMemoryTracker creates an in-memory tracker.
func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{seen: make(map[marker]struct{})}
}

// HasPlayed implements Tracker.
func (t *MemoryTracker) HasPlayed(_ context.Context, playerID, questionID string) (bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.seen[marker{playerID, questionID}]
	return ok, nil
}

// MarkPlayed implements Tracker.
func (t *MemoryTracker) MarkPlayed(_ context.Context, playerID, questionID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seen[marker{playerID, questionID}] = struct{}{}
	return nil
}

// Size returns the number of markers held.
func (t *MemoryTracker) Size() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.seen)
}

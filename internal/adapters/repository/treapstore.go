package repository

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/okian/crowdguess/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: score DESC, then playerID ASC (deterministic).
// "less" means ranks earlier, so in-order traversal yields the leaderboard
// from best to worst. Subtree sizes give O(log n) rank and range queries.

type node struct {
	id    string
	score int64
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aScore, aID) should appear before (bScore, bID).
func less(aScore int64, aID string, bScore int64, bID string) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n, nn *node) *node {
	if n == nil {
		return nn
	}
	if less(nn.score, nn.id, n.score, n.id) {
		n.left = insert(n.left, nn)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, nn)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

// remove detaches the node keyed (score, id) and returns it with the new root.
func remove(n *node, id string, score int64) (*node, *node) {
	if n == nil {
		return nil, nil
	}
	var found *node
	switch {
	case score == n.score && id == n.id:
		if n.left == nil {
			r := n.right
			n.right = nil
			return r, n
		}
		if n.right == nil {
			l := n.left
			n.left = nil
			return l, n
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right, found = remove(n.right, id, score)
		} else {
			n = rotateLeft(n)
			n.left, found = remove(n.left, id, score)
		}
	case less(score, id, n.score, n.id):
		n.left, found = remove(n.left, id, score)
	default:
		n.right, found = remove(n.right, id, score)
	}
	fix(n)
	return n, found
}

// position returns the 0-based in-order index of the node keyed (score, id).
func position(n *node, id string, score int64) int {
	pos := 0
	for n != nil {
		switch {
		case score == n.score && id == n.id:
			return pos + nsize(n.left)
		case less(score, id, n.score, n.id):
			n = n.left
		default:
			pos += nsize(n.left) + 1
			n = n.right
		}
	}
	return -1
}

// collectRange appends up to limit entries starting at in-order index from.
func collectRange(n *node, from, limit int, out *[]Entry) {
	if n == nil || len(*out) >= limit {
		return
	}
	ls := nsize(n.left)
	if from < ls {
		collectRange(n.left, from, limit, out)
	}
	if len(*out) < limit && from <= ls {
		*out = append(*out, Entry{PlayerID: n.id, Score: n.score})
	}
	if len(*out) < limit {
		next := from - ls - 1
		if next < 0 {
			next = 0
		}
		collectRange(n.right, next, limit, out)
	}
}

// TreapStore is an in-memory Store guarded by a RWMutex.
type TreapStore struct {
	mu   sync.RWMutex
	root *node
	byID map[string]*node
	rng  *rand.Rand
	seed uint64

	metricsUpdateInterval time.Duration

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewTreapStore constructs a treap store and starts its metrics updater.
func NewTreapStore(ctx context.Context, opts ...Option) *TreapStore {
	s := &TreapStore{
		byID:                  make(map[string]*node),
		metricsUpdateInterval: 5 * time.Second,
		seed:                  uint64(time.Now().UnixNano()),
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.rng = rand.New(rand.NewPCG(s.seed, s.seed^0x9e3779b97f4a7c15))

	s.startMetricsUpdater(ctx)
	return s
}

// Close stops the metrics updater.
func (s *TreapStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

// Increment implements Store.Increment in O(log n) expected time.
func (s *TreapStore) Increment(ctx context.Context, playerID string, amount int64) (int64, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if amount < 0 {
		metrics.RecordErrorByComponent("repository", "invalid_amount")
		return 0, ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.byID[playerID]
	if ok {
		if amount == 0 {
			return n.score, nil
		}
		s.root, _ = remove(s.root, playerID, n.score)
		n.score += amount
		n.size = 1
	} else {
		n = &node{id: playerID, score: amount, prio: s.rng.Uint64(), size: 1}
		s.byID[playerID] = n
	}
	s.root = insert(s.root, n)
	return n.score, nil
}

// Range implements Store.Range.
func (s *TreapStore) Range(ctx context.Context, start, stop int) ([]Entry, error) {
	begin := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(begin).Microseconds()) / 1000)
	}()

	if start < 0 || (stop >= 0 && stop < start) {
		metrics.RecordErrorByComponent("repository", "invalid_range")
		return nil, ErrInvalidRange
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	total := nsize(s.root)
	if stop < 0 || stop >= total {
		stop = total - 1
	}
	if start > stop {
		return []Entry{}, nil
	}
	limit := stop - start + 1
	out := make([]Entry, 0, limit)
	collectRange(s.root, start, limit, &out)
	for i := range out {
		out[i].Rank = start + i
	}
	return out, nil
}

// Score implements Store.Score.
func (s *TreapStore) Score(ctx context.Context, playerID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.byID[playerID]
	if !ok {
		return 0, ErrNotFound
	}
	return n.score, nil
}

// Rank implements Store.Rank in O(log n).
func (s *TreapStore) Rank(ctx context.Context, playerID string) (int, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.byID[playerID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return 0, ErrNotFound
	}
	return position(s.root, n.id, n.score), nil
}

// Count implements Store.Count.
func (s *TreapStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID), nil
}

func (s *TreapStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				n, _ := s.Count(ctx)
				metrics.UpdateTotalPlayers(n)
			}
		}
	}()
}

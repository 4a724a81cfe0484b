package repository

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"sort"
	"sync"
	"testing"
)

// storeFactories runs each contract test against every Store implementation.
func storeFactories(t *testing.T) map[string]func() Store {
	return map[string]func() Store{
		"treap": func() Store {
			return NewTreapStore(context.Background(), WithSeed(42))
		},
		"sqlite": func() Store {
			s, err := OpenSQLite(filepath.Join(t.TempDir(), "lb.db"))
			if err != nil {
				t.Fatalf("open sqlite: %v", err)
			}
			return s
		},
	}
}

func TestStore_BasicOperations(t *testing.T) {
	ctx := context.Background()
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := newStore()
			defer store.Close()

			if n, _ := store.Count(ctx); n != 0 {
				t.Errorf("expected count 0, got %d", n)
			}

			total, err := store.Increment(ctx, "alice", 100)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if total != 100 {
				t.Errorf("expected total 100, got %d", total)
			}
			total, err = store.Increment(ctx, "alice", 50)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if total != 150 {
				t.Errorf("expected total 150, got %d", total)
			}

			score, err := store.Score(ctx, "alice")
			if err != nil || score != 150 {
				t.Errorf("expected score 150, got %d (%v)", score, err)
			}
			rank, err := store.Rank(ctx, "alice")
			if err != nil || rank != 0 {
				t.Errorf("expected rank 0, got %d (%v)", rank, err)
			}
			if n, _ := store.Count(ctx); n != 1 {
				t.Errorf("expected count 1, got %d", n)
			}
		})
	}
}

func TestStore_NotFound(t *testing.T) {
	ctx := context.Background()
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := newStore()
			defer store.Close()

			if _, err := store.Score(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
			if _, err := store.Rank(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestStore_ZeroIncrementCreatesMember(t *testing.T) {
	ctx := context.Background()
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := newStore()
			defer store.Close()

			total, err := store.Increment(ctx, "zed", 0)
			if err != nil || total != 0 {
				t.Fatalf("expected 0, got %d (%v)", total, err)
			}
			if _, err := store.Rank(ctx, "zed"); err != nil {
				t.Errorf("expected zed to be ranked, got %v", err)
			}
			if _, err := store.Increment(ctx, "zed", -1); !errors.Is(err, ErrInvalidAmount) {
				t.Errorf("expected ErrInvalidAmount, got %v", err)
			}
		})
	}
}

func TestStore_OrderingAndTieBreak(t *testing.T) {
	ctx := context.Background()
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := newStore()
			defer store.Close()

			_, _ = store.Increment(ctx, "carol", 40)
			_, _ = store.Increment(ctx, "bob", 70)
			_, _ = store.Increment(ctx, "alice", 70)
			_, _ = store.Increment(ctx, "dave", 90)

			entries, err := store.Range(ctx, 0, -1)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			want := []Entry{
				{Rank: 0, PlayerID: "dave", Score: 90},
				{Rank: 1, PlayerID: "alice", Score: 70},
				{Rank: 2, PlayerID: "bob", Score: 70},
				{Rank: 3, PlayerID: "carol", Score: 40},
			}
			if len(entries) != len(want) {
				t.Fatalf("expected %d entries, got %d", len(want), len(entries))
			}
			for i := range want {
				if entries[i] != want[i] {
					t.Errorf("position %d: expected %+v, got %+v", i, want[i], entries[i])
				}
				rank, _ := store.Rank(ctx, want[i].PlayerID)
				if rank != i {
					t.Errorf("rank of %s: expected %d, got %d", want[i].PlayerID, i, rank)
				}
			}
		})
	}
}

func TestStore_Range(t *testing.T) {
	ctx := context.Background()
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := newStore()
			defer store.Close()

			for i := 0; i < 10; i++ {
				_, _ = store.Increment(ctx, fmt.Sprintf("p%02d", i), int64(i*10))
			}

			top3, err := store.Range(ctx, 0, 2)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(top3) != 3 || top3[0].PlayerID != "p09" || top3[2].PlayerID != "p07" {
				t.Errorf("unexpected top3: %+v", top3)
			}

			mid, _ := store.Range(ctx, 4, 5)
			if len(mid) != 2 || mid[0].PlayerID != "p05" || mid[0].Rank != 4 || mid[1].PlayerID != "p04" {
				t.Errorf("unexpected middle: %+v", mid)
			}

			past, _ := store.Range(ctx, 8, 100)
			if len(past) != 2 {
				t.Errorf("expected 2 entries past the end, got %d", len(past))
			}

			empty, err := store.Range(ctx, 20, 30)
			if err != nil || len(empty) != 0 {
				t.Errorf("expected empty range, got %+v (%v)", empty, err)
			}

			if _, err := store.Range(ctx, -1, 3); !errors.Is(err, ErrInvalidRange) {
				t.Errorf("expected ErrInvalidRange, got %v", err)
			}
			if _, err := store.Range(ctx, 5, 2); !errors.Is(err, ErrInvalidRange) {
				t.Errorf("expected ErrInvalidRange, got %v", err)
			}
		})
	}
}

func TestStore_ConcurrentIncrements(t *testing.T) {
	ctx := context.Background()
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := newStore()
			defer store.Close()

			const goroutines = 10
			const perGoroutine = 50
			var wg sync.WaitGroup
			for g := 0; g < goroutines; g++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for i := 0; i < perGoroutine; i++ {
						if _, err := store.Increment(ctx, "alice", 3); err != nil {
							t.Errorf("increment: %v", err)
						}
					}
				}()
			}
			wg.Wait()

			score, err := store.Score(ctx, "alice")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if score != goroutines*perGoroutine*3 {
				t.Errorf("expected %d, got %d", goroutines*perGoroutine*3, score)
			}
		})
	}
}

func TestTreapStore_MatchesSortedModel(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore(ctx, WithSeed(7))
	defer store.Close()

	rng := rand.New(rand.NewSource(1))
	model := map[string]int64{}
	for i := 0; i < 2000; i++ {
		id := fmt.Sprintf("p%03d", rng.Intn(200))
		amount := int64(rng.Intn(101))
		model[id] += amount
		total, err := store.Increment(ctx, id, amount)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if total != model[id] {
			t.Fatalf("total for %s: expected %d, got %d", id, model[id], total)
		}
	}

	want := make([]Entry, 0, len(model))
	for id, score := range model {
		want = append(want, Entry{PlayerID: id, Score: score})
	}
	sort.Slice(want, func(i, j int) bool {
		return less(want[i].Score, want[i].PlayerID, want[j].Score, want[j].PlayerID)
	})

	got, _ := store.Range(ctx, 0, -1)
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].PlayerID != want[i].PlayerID || got[i].Score != want[i].Score {
			t.Fatalf("position %d: expected %+v, got %+v", i, want[i], got[i])
		}
		rank, _ := store.Rank(ctx, want[i].PlayerID)
		if rank != i {
			t.Fatalf("rank of %s: expected %d, got %d", want[i].PlayerID, i, rank)
		}
	}
	if nsize(store.root) != len(model) {
		t.Errorf("tree size %d does not match %d players", nsize(store.root), len(model))
	}
}

func TestTreapStore_CloseIsIdempotent(t *testing.T) {
	store := NewTreapStore(context.Background())
	if err := store.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("unexpected error on second close: %v", err)
	}
}

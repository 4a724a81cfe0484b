// Package award grants badges for notable round results.
package award

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/okian/crowdguess/internal/domain/model"
	"github.com/okian/crowdguess/internal/domain/scoring"
	"github.com/okian/crowdguess/internal/domain/types"
)

// Badge identifiers.
const (
	BadgeCrowdWhisperer = "crowd_whisperer"
	BadgeNPCEnergy      = "npc_energy"
)

// Rule grants Badge when Applies holds for a match's points.
type Rule struct {
	Badge   string
	Title   string
	Applies func(points int) bool
}

// DefaultRules rewards the rarest and the most obvious answers.
var DefaultRules = []Rule{
	{
		Badge:   BadgeCrowdWhisperer,
		Title:   "Certified Crowd Whisperer",
		Applies: func(p int) bool { return p == scoring.MaxScore },
	},
	{
		Badge:   BadgeNPCEnergy,
		Title:   "NPC Energy",
		Applies: func(p int) bool { return p == scoring.MinScore },
	},
}

// Store persists granted badges. A (player, badge) pair is granted once.
type Store interface {
	// Grant stores the badge and reports whether it was new.
	Grant(ctx context.Context, b types.Badge) (bool, error)
	// List returns the player's badges, oldest first.
	List(ctx context.Context, playerID string) ([]types.Badge, error)
}

// Granter applies rules to award events.
type Granter struct {
	store Store
	rules []Rule
}

// NewGranter builds a Granter. Nil rules means DefaultRules.
func NewGranter(store Store, rules []Rule) *Granter {
	if rules == nil {
		rules = DefaultRules
	}
	return &Granter{store: store, rules: rules}
}

// Process grants every badge whose rule matches the event and returns the
// newly granted ones.
func (g *Granter) Process(ctx context.Context, ev model.AwardEvent) ([]types.Badge, error) {
	var granted []types.Badge
	for _, r := range g.rules {
		if !r.Applies(ev.Points) {
			continue
		}
		b := types.Badge{
			PlayerID:   ev.PlayerID,
			Badge:      r.Badge,
			Title:      r.Title,
			QuestionID: ev.QuestionID,
			AwardedAt:  ev.TS,
		}
		isNew, err := g.store.Grant(ctx, b)
		if err != nil {
			return granted, fmt.Errorf("grant %s to %s: %w", r.Badge, ev.PlayerID, err)
		}
		if isNew {
			granted = append(granted, b)
		}
	}
	return granted, nil
}

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mu     sync.RWMutex
	badges map[string]map[string]types.Badge
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{badges: make(map[string]map[string]types.Badge)}
}

// Grant implements Store.
func (s *MemoryStore) Grant(ctx context.Context, b types.Badge) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byBadge, ok := s.badges[b.PlayerID]
	if !ok {
		byBadge = make(map[string]types.Badge)
		s.badges[b.PlayerID] = byBadge
	}
	if _, exists := byBadge[b.Badge]; exists {
		return false, nil
	}
	byBadge[b.Badge] = b
	return true, nil
}

// List implements Store.
func (s *MemoryStore) List(ctx context.Context, playerID string) ([]types.Badge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Badge, 0, len(s.badges[playerID]))
	for _, b := range s.badges[playerID] {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AwardedAt.Equal(out[j].AwardedAt) {
			return out[i].AwardedAt.Before(out[j].AwardedAt)
		}
		return out[i].Badge < out[j].Badge
	})
	return out, nil
}

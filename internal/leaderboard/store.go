package leaderboard

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"
)

// Player identifies one side of an outcome.
type Player struct {
	UserID   string
	Username string
}

type Store interface {
	// Get returns the user's stats, or fresh stats when none are recorded.
	Get(ctx context.Context, userID string) (Stats, error)
	// UpdatePair loads both records, lets update change them and saves the
	// result atomically.
	UpdatePair(ctx context.Context, a, b Player, now time.Time, update func(a, b *Stats)) error
	Top(ctx context.Context, limit int) ([]Stats, error)
}

type MemoryStore struct {
	mu    sync.Mutex
	stats map[string]Stats
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{stats: make(map[string]Stats)}
}

func (m *MemoryStore) Get(_ context.Context, userID string) (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.stats[userID]; ok {
		return s, nil
	}
	return newStats(userID, ""), nil
}

func (m *MemoryStore) load(p Player) Stats {
	s, ok := m.stats[p.UserID]
	if !ok {
		s = newStats(p.UserID, p.Username)
	}
	if p.Username != "" {
		s.Username = p.Username
	}
	return s
}

func (m *MemoryStore) UpdatePair(_ context.Context, a, b Player, now time.Time, update func(a, b *Stats)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sa, sb := m.load(a), m.load(b)
	update(&sa, &sb)
	sa.UpdatedAt, sb.UpdatedAt = now, now
	m.stats[sa.UserID] = sa
	m.stats[sb.UserID] = sb
	return nil
}

func (m *MemoryStore) Top(_ context.Context, limit int) ([]Stats, error) {
	m.mu.Lock()
	all := make([]Stats, 0, len(m.stats))
	for _, s := range m.stats {
		all = append(all, s)
	}
	m.mu.Unlock()

	slices.SortFunc(all, func(x, y Stats) int {
		if c := cmp.Compare(y.Elo, x.Elo); c != 0 {
			return c
		}
		return cmp.Compare(x.Username, y.Username)
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}
